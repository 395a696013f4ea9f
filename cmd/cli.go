package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/habedi/nodecli/client"
	"github.com/habedi/nodecli/db"
	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// session carries the resolved settings for one invocation.
type session struct {
	cfg        config.Config
	configPath string
}

func (s *session) client() *client.Client {
	return client.NewClient(client.BaseURL(s.cfg.Host, s.cfg.Port), s.cfg.Timeout)
}

// openHistory opens the lookup history on first use.
func (s *session) openHistory() error {
	if db.Db != nil {
		return nil
	}
	if s.cfg.DBPath != "" {
		db.Path = s.cfg.DBPath
	}
	return db.InitDB()
}

// Execute runs the CLI. Any failure is rendered once to stderr and the
// process exits with status 1.
func Execute() {
	rootCmd := createRootCmd()
	if err := run(rootCmd); err != nil {
		os.Exit(reportError(rootCmd.ErrOrStderr(), err))
	}
}

func run(rootCmd *cobra.Command) error {
	err := rootCmd.Execute()
	if closeErr := closeDatabase(); err == nil {
		err = closeErr
	}
	return err
}

// reportError prints the rendered form of err and returns the exit status.
func reportError(w io.Writer, err error) int {
	appErr := apperr.From(err)
	log.Debug().Object("error", appErr).Msg("Command execution failed")
	fmt.Fprint(w, appErr.Render())
	return 1
}

func createRootCmd() *cobra.Command {
	s := &session{cfg: config.Default()}
	client.UserAgent = "nodecli/" + version

	rootCmd := &cobra.Command{
		Use:           "nodecli",
		Short:         "A command-line client for a blockchain node",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return s.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.configPath, "config", config.DefaultPath(), "Path to the configuration file")
	flags.StringP("node", "n", config.DefaultHost, "Node host name or IP address")
	flags.IntP("port", "p", config.DefaultPort, "Node port")
	flags.DurationP("timeout", "T", config.DefaultTimeout, "Timeout for each request to the node")
	flags.String("db", "", "Path to the lookup history database")
	flags.BoolP("help", "h", false, "Show help for a command")

	rootCmd.AddCommand(
		statusCmd(s),
		blockCmd(s),
		historyCmd(s),
		snapshotCmd(s),
		fileCmd(),
		configCmd(s),
		versionCmd(),
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{
		Use:    "no-help",
		Hidden: true,
	})

	return rootCmd
}

// flagForEnv maps NODECLI_ keys to the flag that overrides them.
var flagForEnv = map[string]string{
	"HOST":    "node",
	"PORT":    "port",
	"TIMEOUT": "timeout",
	"DB":      "db",
}

// load resolves settings: defaults, then the config file, then NODECLI_
// variables, then flags given on the command line.
func (s *session) load(cmd *cobra.Command) error {
	cfg := config.Default()
	if err := config.LoadFile(&cfg, s.configPath); err != nil {
		return err
	}

	flags := cmd.Flags()
	if err := config.ApplyEnv(&cfg, func(key string) bool {
		return flags.Changed(flagForEnv[key])
	}); err != nil {
		return err
	}

	if flags.Changed("node") {
		cfg.Host, _ = flags.GetString("node")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("timeout") {
		cfg.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("db") {
		cfg.DBPath, _ = flags.GetString("db")
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cfg = cfg
	log.Debug().Str("host", cfg.Host).Int("port", cfg.Port).Dur("timeout", cfg.Timeout).Msg("Settings resolved")
	return nil
}

func closeDatabase() error {
	if err := db.CloseDB(); err != nil {
		log.Error().Err(err).Msg("Failed to close the database.")
		return err
	}
	return nil
}
