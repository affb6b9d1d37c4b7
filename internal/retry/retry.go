package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/amishk599/tailorin/internal/model"
)

// Ensure RetryDoer implements model.Doer.
var _ model.Doer = (*RetryDoer)(nil)

// RetryDoer is a decorator that retries transient backend failures with
// exponential backoff and jitter before giving up.
type RetryDoer struct {
	inner      model.Doer
	maxRetries int
	baseDelay  time.Duration
	logger     *slog.Logger
}

// NewRetryDoer wraps a Doer with retry logic.
// maxRetries is the number of additional attempts after the first failure;
// zero disables retrying. baseDelay is doubled on each subsequent retry.
func NewRetryDoer(inner model.Doer, maxRetries int, baseDelay time.Duration, logger *slog.Logger) *RetryDoer {
	return &RetryDoer{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		logger:     logger,
	}
}

// Do sends req, retrying on transient errors.
func (d *RetryDoer) Do(ctx context.Context, req model.Request) ([]byte, error) {
	body, err := d.inner.Do(ctx, req)
	if err == nil {
		return body, nil
	}

	if !isRetryable(err) {
		return nil, err
	}

	lastErr := err
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		delay := d.backoffDelay(attempt, lastErr)

		d.logger.Warn("retrying after transient error",
			"path", req.Path,
			"attempt", attempt,
			"max_retries", d.maxRetries,
			"delay", delay,
			"error", lastErr,
		)

		select {
		case <-ctx.Done():
			return nil, &model.TransportError{Op: req.Method + " " + req.Path, Err: fmt.Errorf("retry cancelled: %w", ctx.Err())}
		case <-time.After(delay):
		}

		body, err = d.inner.Do(ctx, req)
		if err == nil {
			return body, nil
		}

		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// backoffDelay computes the delay for a given attempt with ±30% jitter.
// A Retry-After from the server takes precedence.
func (d *RetryDoer) backoffDelay(attempt int, err error) time.Duration {
	var appErr *model.ApplicationError
	if errors.As(err, &appErr) && appErr.RetryAfter > 0 {
		return appErr.RetryAfter
	}

	delay := d.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	jitter := float64(delay) * 0.3
	delay = time.Duration(float64(delay) + (rand.Float64()*2-1)*jitter)

	return delay
}

// isRetryable returns true for transport failures and 429/5xx responses.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var appErr *model.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.StatusCode == http.StatusTooManyRequests || appErr.StatusCode >= 500
	}

	var tErr *model.TransportError
	return errors.As(err, &tErr)
}
