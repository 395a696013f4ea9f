package client

import (
	"context"
	"io"
	"sync"
	"time"
)

// RateLimiter is a token bucket measured in bytes per second.
type RateLimiter struct {
	mu     sync.Mutex
	rate   int64
	tokens float64
	last   time.Time
}

var (
	globalRateLimiter *RateLimiter
	rateLimiterMu     sync.RWMutex
)

// SetDownloadRateLimit caps snapshot downloads to bytesPerSecond.
// A value <= 0 removes the limit.
func SetDownloadRateLimit(bytesPerSecond int64) {
	rateLimiterMu.Lock()
	defer rateLimiterMu.Unlock()

	if bytesPerSecond <= 0 {
		globalRateLimiter = nil
		return
	}
	if globalRateLimiter == nil {
		globalRateLimiter = &RateLimiter{rate: bytesPerSecond, tokens: float64(bytesPerSecond), last: time.Now()}
		return
	}

	lim := globalRateLimiter
	lim.mu.Lock()
	lim.rate = bytesPerSecond
	if lim.tokens > float64(bytesPerSecond) {
		lim.tokens = float64(bytesPerSecond)
	}
	lim.last = time.Now()
	lim.mu.Unlock()
}

// take blocks until at least one byte is available and returns how many of
// want may be read now.
func (l *RateLimiter) take(ctx context.Context, want int) (int, error) {
	for {
		l.mu.Lock()
		now := time.Now()
		if elapsed := now.Sub(l.last).Seconds(); elapsed > 0 {
			l.tokens += elapsed * float64(l.rate)
			if l.tokens > float64(l.rate) {
				l.tokens = float64(l.rate)
			}
			l.last = now
		}
		allowed := int(l.tokens)
		rate := l.rate
		l.mu.Unlock()

		if allowed > 0 {
			return min(allowed, want), nil
		}

		wait := time.Duration(float64(time.Second) / float64(rate))
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(wait):
		}
	}
}

func (l *RateLimiter) spend(n int) {
	l.mu.Lock()
	l.tokens -= float64(n)
	l.mu.Unlock()
}

type limitedReader struct {
	ctx   context.Context
	under io.Reader
	lim   *RateLimiter
}

func (lr *limitedReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return lr.under.Read(p)
	}
	allowed, err := lr.lim.take(lr.ctx, len(p))
	if err != nil {
		return 0, err
	}
	n, err := lr.under.Read(p[:allowed])
	if n > 0 {
		lr.lim.spend(n)
	}
	return n, err
}

func wrapWithRateLimiter(ctx context.Context, r io.Reader) io.Reader {
	rateLimiterMu.RLock()
	lim := globalRateLimiter
	rateLimiterMu.RUnlock()

	if lim == nil {
		return r
	}
	return &limitedReader{ctx: ctx, under: r, lim: lim}
}
