package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/habedi/nodecli/db"
	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/validation"
	"github.com/spf13/cobra"
)

func historyCmd(s *session) *cobra.Command {
	var limit int
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List blocks fetched earlier",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.openHistory(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if clear {
				if err := db.ClearLookups(); err != nil {
					return err
				}
				fmt.Fprintln(out, "Lookup history cleared.")
				return nil
			}

			lookups, err := db.ListLookups(limit)
			if err != nil {
				return err
			}
			if len(lookups) == 0 {
				fmt.Fprintln(out, "No lookups recorded yet. Use `nodecli block` to fetch a block.")
				return nil
			}

			table := newTable(out, "#", "Hash", "Height", "Node", "Fetched At")
			for i, l := range lookups {
				table.Append([]string{
					strconv.Itoa(i + 1),
					shortHash(l.Hash),
					strconv.FormatInt(l.Height, 10),
					l.Node,
					l.FetchedAt.Local().Format(time.DateTime),
				})
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "L", 20, "Maximum number of lookups to show (0 shows all)")
	cmd.Flags().BoolVarP(&clear, "clear", "c", false, "Remove every recorded lookup")
	cmd.AddCommand(historyShowCmd(s))
	return cmd
}

func historyShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <hash>",
		Short: "Print the stored JSON of a fetched block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.openHistory(); err != nil {
				return err
			}
			hash := validation.NormalizeBlockHash(args[0])
			lookup, err := db.GetLookup(hash)
			if err != nil {
				return err
			}
			if lookup == nil {
				return apperr.Customf("Block %s is not in the lookup history.", hash)
			}

			var buf bytes.Buffer
			if err := json.Indent(&buf, []byte(lookup.Data), "", "  "); err != nil {
				return apperr.JSON(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), buf.String())
			return nil
		},
	}
}
