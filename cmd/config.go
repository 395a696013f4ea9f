package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/config"
	"github.com/spf13/cobra"
)

func configCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the node settings",
	}
	cmd.AddCommand(configShowCmd(s), configInitCmd(s))
	return cmd
}

func configShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the settings in effect",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := s.cfg.DBPath
			if dbPath == "" {
				dbPath = "(default)"
			}
			table := newTable(cmd.OutOrStdout(), "Setting", "Value")
			table.AppendBulk([][]string{
				{"Config file", s.configPath},
				{"Host", s.cfg.Host},
				{"Port", strconv.Itoa(s.cfg.Port)},
				{"Timeout", s.cfg.Timeout.String()},
				{"History DB", dbPath},
			})
			table.Render()
			return nil
		},
	}
}

func configInitCmd(s *session) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the settings in effect to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.configPath == "" {
				return apperr.Custom("No config file path; pass --config.")
			}
			_, err := os.Stat(s.configPath)
			switch {
			case err == nil && !force:
				return apperr.Customf("%s already exists; use --force to overwrite it.", s.configPath)
			case err != nil && !errors.Is(err, fs.ErrNotExist):
				return apperr.IO(err)
			}
			if err := config.Save(s.cfg, s.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", s.configPath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}
