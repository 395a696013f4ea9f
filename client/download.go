package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/habedi/nodecli/pkg/apperr"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// readTracker remembers whether a copy failed on the read side.
type readTracker struct {
	r   io.Reader
	err error
}

func (t *readTracker) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

// ensureDirExists creates dir if needed and fails if the path is not a directory.
func ensureDirExists(dir string) error {
	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return apperr.Customf("%s exists and is not a directory.", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return apperr.IO(err)
	}
	return apperr.IO(os.MkdirAll(dir, 0o750))
}

// DownloadSnapshot streams the node's snapshot into destPath, drawing a
// progress bar on progressWriter. It returns the number of bytes written.
// A partially written file is removed on failure.
func (c *Client) DownloadSnapshot(ctx context.Context, destPath string, progressWriter io.Writer) (int64, error) {
	if err := ensureDirExists(filepath.Dir(destPath)); err != nil {
		return 0, err
	}

	req, err := c.createRequest(ctx, "/snapshot")
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.sendRequest(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close response body")
		}
	}()

	file, err := os.Create(destPath)
	if err != nil {
		log.Error().Err(err).Str("path", destPath).Msg("Failed to create snapshot file")
		return 0, apperr.IO(err)
	}

	fileName := filepath.Base(destPath)
	bar := progressbar.NewOptions64(
		resp.ContentLength, // -1 shows a spinner
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", fileName)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWriter(progressWriter),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
	)

	tracker := &readTracker{r: wrapWithRateLimiter(ctx, resp.Body)}
	progressReader := progressbar.NewReader(tracker, bar)

	written, copyErr := io.CopyBuffer(file, &progressReader, make([]byte, 32*1024))
	closeErr := file.Close()

	if copyErr != nil || closeErr != nil {
		_ = os.Remove(destPath)
		switch {
		case tracker.err != nil:
			log.Error().Err(tracker.err).Str("url", req.URL.String()).Msg("Snapshot download interrupted")
			return written, apperr.HTTP(tracker.err)
		case copyErr != nil:
			log.Error().Err(copyErr).Str("path", destPath).Msg("Failed to write snapshot")
			return written, apperr.IO(copyErr)
		default:
			log.Error().Err(closeErr).Str("path", destPath).Msg("Failed to close snapshot file")
			return written, apperr.IO(closeErr)
		}
	}

	if err := bar.Finish(); err != nil {
		log.Debug().Err(err).Msg("Failed to finish progress bar")
	}
	log.Info().Str("path", destPath).Int64("bytes", written).Msg("Snapshot downloaded")
	return written, nil
}
