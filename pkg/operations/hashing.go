package operations

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/habedi/nodecli/pkg/hasher"
	"github.com/habedi/nodecli/pkg/pool"
	"github.com/rs/zerolog/log"
)

// HashResult is the outcome of hashing one file.
type HashResult struct {
	File string
	Hash string
	Err  error
}

// DefaultHashExclusions are skipped when hashing a snapshot directory.
var DefaultHashExclusions = []string{
	".git", ".DS_Store", "Thumbs.db", "*.log", "*.lock", "*.tmp",
	"*.md5", "*.sha1", "*.sha256", "*.sha512",
}

func excluded(name string, exclusions []string) bool {
	for _, pattern := range exclusions {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

// FindFilesToHash walks dir and returns the files to hash. Walk failures are
// reported as IO errors.
func FindFilesToHash(dir string, recursive bool, exclusions []string) ([]string, error) {
	var files []string
	walkErr := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && (!recursive || excluded(info.Name(), exclusions)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !excluded(info.Name(), exclusions) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		return nil, apperr.IO(walkErr)
	}
	return files, nil
}

// GenerateHashes hashes files with numThreads workers. Results come back in
// the order of files; a file skipped by cancellation carries ctx's error.
func GenerateHashes(ctx context.Context, files []string, algo string, numThreads int) []HashResult {
	results := make([]HashResult, len(files))
	indexes := make([]int, len(files))
	for i, f := range files {
		indexes[i] = i
		results[i] = HashResult{File: f}
	}

	pool.Run(ctx, indexes, numThreads, func(ctx context.Context, i int) error {
		hash, err := hasher.GenerateHash(files[i], algo)
		results[i].Hash = hash
		results[i].Err = err
		return err
	})

	if ctxErr := ctx.Err(); ctxErr != nil {
		for i := range results {
			if results[i].Hash == "" && results[i].Err == nil {
				results[i].Err = apperr.Other(ctxErr)
			}
		}
	}
	return results
}

// WriteHashFile stores the digest of a result next to its file as
// "<file>.<algo>".
func WriteHashFile(result HashResult, algo string) error {
	if result.Err != nil {
		return result.Err
	}
	path := result.File + "." + strings.ToLower(algo)
	if err := os.WriteFile(path, []byte(result.Hash+"\n"), 0o644); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to write hash file")
		return apperr.IO(err)
	}
	return nil
}

// CleanHashes removes hash files left by earlier runs.
func CleanHashes(dir string, recursive bool) error {
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if !recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		for _, algo := range hasher.HashAlgorithms {
			if strings.HasSuffix(info.Name(), "."+algo) {
				if err := os.Remove(path); err != nil {
					log.Warn().Err(err).Str("path", path).Msg("Failed to remove old hash file")
				}
				break
			}
		}
		return nil
	})
	return apperr.IO(err)
}
