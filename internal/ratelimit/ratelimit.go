package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/tailorin/internal/model"
)

// Ensure LimitedDoer implements model.Doer.
var _ model.Doer = (*LimitedDoer)(nil)

// NewLimiter returns a limiter allowing one request per minDelay.
// A zero or negative minDelay means no limit.
func NewLimiter(minDelay time.Duration) *rate.Limiter {
	if minDelay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(minDelay), 1)
}

// LimitedDoer is a decorator that paces requests to the backend before
// delegating to the wrapped Doer. Every caller sharing a backend should share
// the limiter.
type LimitedDoer struct {
	inner   model.Doer
	limiter *rate.Limiter
}

// NewLimitedDoer wraps a Doer with the given limiter.
func NewLimitedDoer(inner model.Doer, limiter *rate.Limiter) *LimitedDoer {
	return &LimitedDoer{inner: inner, limiter: limiter}
}

// Do waits for the limiter, then delegates to the wrapped doer.
func (d *LimitedDoer) Do(ctx context.Context, req model.Request) ([]byte, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
			// Wait gives up early when the deadline would pass first.
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
		return nil, &model.TransportError{Op: req.Method + " " + req.Path, Err: fmt.Errorf("rate limiter wait: %w", err)}
	}
	return d.inner.Do(ctx, req)
}
