package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/habedi/nodecli/client"
	"github.com/habedi/nodecli/db"
	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func blockCmd(s *session) *cobra.Command {
	var latest bool
	var savePath string

	cmd := &cobra.Command{
		Use:   "block [hash]",
		Short: "Fetch a block by hash, or the head block with --latest",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if latest == (len(args) == 1) {
				return apperr.Custom("Give either a block hash or --latest, not both.")
			}

			c := s.client()
			var (
				block client.Block
				raw   []byte
				err   error
			)
			if latest {
				block, raw, err = c.FetchHead(cmd.Context())
			} else {
				hash := validation.NormalizeBlockHash(args[0])
				if err := validation.ValidateBlockHash(hash); err != nil {
					return err
				}
				block, raw, err = c.FetchBlock(cmd.Context(), hash)
			}
			if err != nil {
				return err
			}

			if err := s.openHistory(); err != nil {
				return err
			}
			if err := db.RecordLookup(db.Lookup{
				Hash:   block.Hash,
				Node:   c.URL(),
				Height: block.Height,
				Data:   string(raw),
			}); err != nil {
				return err
			}

			if savePath != "" {
				if err := saveBlockJSON(savePath, raw); err != nil {
					return err
				}
			}

			printBlock(cmd.OutOrStdout(), block)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&latest, "latest", "l", false, "Fetch the block at the head of the chain")
	cmd.Flags().StringVarP(&savePath, "save", "s", "", "Also write the block JSON to this file")
	return cmd
}

// saveBlockJSON writes the node's block JSON, indented, to path.
func saveBlockJSON(path string, raw []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return apperr.JSON(err)
	}
	buf.WriteByte('\n')
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to save block")
		return apperr.IO(err)
	}
	log.Info().Str("path", path).Msg("Block saved")
	return nil
}

func printBlock(w io.Writer, block client.Block) {
	fmt.Fprintf(w, "Block %s\n", block.Hash)
	fmt.Fprintf(w, "Height: %d  Parent: %s", block.Height, shortHash(block.Parent))
	if block.Timestamp > 0 {
		fmt.Fprintf(w, "  Time: %s", time.Unix(block.Timestamp, 0).UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(w)

	if len(block.Transactions) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return
	}
	table := newTable(w, "#", "ID", "From", "To", "Amount")
	for i, tx := range block.Transactions {
		table.Append([]string{
			strconv.Itoa(i + 1),
			shortHash(tx.ID),
			shortHash(tx.From),
			shortHash(tx.To),
			strconv.FormatUint(tx.Amount, 10),
		})
	}
	table.Render()
}
