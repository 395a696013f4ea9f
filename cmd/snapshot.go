package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/habedi/nodecli/client"
	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/hasher"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// progressOutput returns w when it is a terminal and io.Discard otherwise.
func progressOutput(w io.Writer) io.Writer {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return f
	}
	return io.Discard
}

func snapshotCmd(s *session) *cobra.Command {
	var digest string
	var rateLimit int64

	cmd := &cobra.Command{
		Use:   "snapshot <dest>",
		Short: "Download the node's chain snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dest := args[0]
			if rateLimit < 0 {
				return apperr.Customf("Rate limit must be zero or positive, got %d.", rateLimit)
			}
			if digest != "" {
				// Reject a malformed digest before downloading anything.
				if _, err := hasher.DecodeDigest(digest, "sha256"); err != nil {
					return err
				}
			}

			client.SetDownloadRateLimit(rateLimit)
			defer client.SetDownloadRateLimit(0)

			n, err := s.client().DownloadSnapshot(cmd.Context(), dest, progressOutput(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			if digest != "" {
				if err := hasher.Verify(dest, "sha256", digest); err != nil {
					if rmErr := os.Remove(dest); rmErr != nil {
						log.Warn().Err(rmErr).Str("path", dest).Msg("Failed to remove unverified snapshot")
					}
					return err
				}
				log.Info().Str("path", dest).Msg("Snapshot checksum verified")
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Saved %d bytes to %s\n", n, dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&digest, "sha256", "", "Expected SHA-256 digest of the snapshot (hex)")
	cmd.Flags().Int64Var(&rateLimit, "limit-rate", 0, "Maximum download rate in bytes per second (0 is unlimited)")
	return cmd
}
