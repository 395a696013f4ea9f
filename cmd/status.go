package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
)

func statusCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the node",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := s.client()
			status, err := c.FetchStatus(cmd.Context())
			if err != nil {
				return err
			}

			table := newTable(cmd.OutOrStdout(), "Field", "Value")
			table.AppendBulk([][]string{
				{"Node", c.URL()},
				{"Network", status.Network},
				{"Version", status.Version},
				{"Height", strconv.FormatInt(status.Height, 10)},
				{"Peers", strconv.Itoa(status.Peers)},
				{"Head", status.Head.OrElse("(none)")},
				{"Syncing", strconv.FormatBool(status.Syncing)},
			})
			table.Render()
			return nil
		},
	}
}
