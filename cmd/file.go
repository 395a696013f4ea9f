package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/hasher"
	"github.com/habedi/nodecli/pkg/operations"
	"github.com/habedi/nodecli/pkg/validation"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// fileCmd groups the local file operations.
func fileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Hash and verify local snapshot files",
		// File operations do not talk to the node.
		PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	}

	cmd.AddCommand(hashCmd(), verifyCmd())
	return cmd
}

func defaultThreads() int {
	return max(validation.MinThreads, min(runtime.NumCPU(), validation.MaxThreads))
}

func checkAlgo(algo string) error {
	if !hasher.IsValidHashAlgo(algo) {
		return apperr.Customf("Unsupported hash algorithm %q; use one of %s.", algo, strings.Join(hasher.HashAlgorithms, ", "))
	}
	return nil
}

// hashCmd prints (and optionally saves) digests for the files in a directory.
func hashCmd() *cobra.Command {
	var saveToFile, clean, recursive bool
	var algo string
	var threads int

	cmd := &cobra.Command{
		Use:   "hash <dir>",
		Short: "Generate hash values for the files in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			if err := checkAlgo(algo); err != nil {
				return err
			}
			if err := validation.ValidateThreadCount(threads); err != nil {
				return err
			}

			if clean {
				log.Info().Str("dir", dir).Msg("Cleaning old hash files")
				if err := operations.CleanHashes(dir, recursive); err != nil {
					return err
				}
			}

			files, err := operations.FindFilesToHash(dir, recursive, operations.DefaultHashExclusions)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No files to hash in %s.\n", dir)
				return nil
			}

			var firstErr error
			out := cmd.OutOrStdout()
			for _, result := range operations.GenerateHashes(cmd.Context(), files, algo, threads) {
				if result.Err != nil {
					log.Error().Err(result.Err).Str("file", result.File).Msg("Failed to hash file")
					if firstErr == nil {
						firstErr = result.Err
					}
					continue
				}
				fmt.Fprintf(out, "%s  %s\n", result.Hash, result.File)
				if saveToFile {
					if err := operations.WriteHashFile(result, algo); err != nil && firstErr == nil {
						firstErr = err
					}
				}
			}
			return firstErr
		},
	}

	cmd.Flags().StringVarP(&algo, "algo", "a", "sha256", "Hash algorithm to use [md5, sha1, sha256, sha512]")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "Process files in subdirectories? [true, false]")
	cmd.Flags().BoolVarP(&saveToFile, "save", "s", false, "Save each hash next to its file? [true, false]")
	cmd.Flags().BoolVarP(&clean, "clean", "c", false, "Remove old hash files first? [true, false]")
	cmd.Flags().IntVarP(&threads, "threads", "t", defaultThreads(), "Number of files hashed in parallel")
	return cmd
}

// verifyCmd checks one file against an expected hex digest.
func verifyCmd() *cobra.Command {
	var algo string

	cmd := &cobra.Command{
		Use:   "verify <file> <digest>",
		Short: "Check a file against an expected digest",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkAlgo(algo); err != nil {
				return err
			}
			if err := hasher.Verify(args[0], algo, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK  %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&algo, "algo", "a", "sha256", "Hash algorithm of the digest [md5, sha1, sha256, sha512]")
	return cmd
}
