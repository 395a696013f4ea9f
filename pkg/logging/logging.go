// Package logging installs the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvDebug enables debug logging when set to anything other than "", "0" or "false".
const EnvDebug = "DEBUG_NODECLI"

// SetLoggerError is returned when the global logger has already been installed.
type SetLoggerError struct {
	Level zerolog.Level
}

func (e *SetLoggerError) Error() string {
	return "attempted to set a logger after the logging system was already initialized"
}

func (e *SetLoggerError) GoString() string {
	return fmt.Sprintf("logging.SetLoggerError{Level: %q}", e.Level.String())
}

var (
	mu          sync.Mutex
	initialized bool
	installed   zerolog.Level
)

// Init replaces the global logger with a console logger writing to w.
// Only the first successful call takes effect.
func Init(w io.Writer, level zerolog.Level) error {
	mu.Lock()
	defer mu.Unlock()

	if initialized {
		return &SetLoggerError{Level: installed}
	}
	if w == nil {
		w = os.Stderr
	}

	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger()

	initialized = true
	installed = level
	return nil
}

// LevelFromEnv maps the DEBUG_NODECLI value to a zerolog level.
func LevelFromEnv() zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvDebug))) {
	case "", "0", "false":
		return zerolog.Disabled
	default:
		return zerolog.DebugLevel
	}
}
