package booksearch

import (
	"context"
	"sync"
	"time"
)

const (
	// requestSpacing is the minimum gap between any two outbound
	// requests, across providers.
	requestSpacing = 500 * time.Millisecond
	// ratePenalty is armed after a 429 so the next request backs off
	// harder than plain spacing.
	ratePenalty = 2 * time.Second
)

// limiter enforces request spacing and the post-429 penalty. It is safe
// for concurrent use by the worker pool.
type limiter struct {
	mu      sync.Mutex
	nextAt  time.Time
	sleepFn func(context.Context, time.Duration) error
}

func newLimiter() *limiter {
	return &limiter{sleepFn: sleepCtx}
}

// wait blocks until the next request slot opens or the context is done.
func (l *limiter) wait(ctx context.Context) error {
	l.mu.Lock()
	now := time.Now()
	d := l.nextAt.Sub(now)
	if d < 0 {
		d = 0
	}
	l.nextAt = now.Add(d + requestSpacing)
	l.mu.Unlock()

	if d == 0 {
		return nil
	}
	return l.sleepFn(ctx, d)
}

// backoff pushes the next slot out after a transient failure. Delay is
// capped exponential on the attempt number; a 429 additionally arms the
// flat penalty.
func (l *limiter) backoff(attempt int, rateLimited bool) {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > 8*time.Second {
		d = 8 * time.Second
	}
	if rateLimited && d < ratePenalty {
		d = ratePenalty
	}

	l.mu.Lock()
	until := time.Now().Add(d)
	if until.After(l.nextAt) {
		l.nextAt = until
	}
	l.mu.Unlock()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
