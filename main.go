package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/habedi/nodecli/cmd"
	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/logging"
	"github.com/rs/zerolog/log"
)

const interruptMessage = "Interrupt signal received. Exiting..."

// main sets up logging from DEBUG_NODECLI, exits on interrupt, and runs the CLI.
func main() {
	if err := configureLogging(); err != nil {
		fmt.Fprint(os.Stderr, apperr.From(err).Render())
		os.Exit(1)
	}

	stopChan := setupInterruptListener()
	go handleInterrupt(stopChan, func(msg string) {
		log.Warn().Msg(msg)
		fmt.Fprintln(os.Stderr, msg)
	}, os.Exit)

	cmd.Execute()
}

// configureLogging installs the process-wide logger. A second call fails
// with a Logger error.
func configureLogging() error {
	return apperr.Logger(logging.Init(os.Stderr, logging.LevelFromEnv()))
}

func setupInterruptListener() chan os.Signal {
	stopChan := make(chan os.Signal, 1)
	signal.Notify(stopChan, os.Interrupt)
	return stopChan
}

func handleInterrupt(stopChan chan os.Signal, fatalLog func(string), exit func(int)) {
	<-stopChan
	fatalLog(interruptMessage)
	exit(1)
}
