package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// fetchSleepFunc waits between attempts; tests replace it
var fetchSleepFunc = func(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier retries a failed call a bounded number of times with a fixed wait
// between attempts
type Retrier struct {
	MaxAttempts int
	Wait        time.Duration
	Logger      *slog.Logger
}

// Do fetches req through f, retrying transient failures
func (r Retrier) Do(ctx context.Context, f Fetcher, req Request) ([]byte, error) {
	return Retry(ctx, r, req.URL, func(ctx context.Context) ([]byte, error) {
		return f.Fetch(ctx, req)
	})
}

// Retry runs op until it succeeds, fails permanently or runs out of
// attempts. The last error is returned.
func Retry[T any](ctx context.Context, r Retrier, item string, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !isRetryableFetchError(err) || attempt == attempts {
			break
		}

		if r.Logger != nil {
			r.Logger.Debug("retrying", "item", item, "attempt", attempt, "error", err)
		}
		if err := fetchSleepFunc(ctx, r.Wait); err != nil {
			return zero, err
		}
	}
	return zero, lastErr
}

// PermanentError marks a fetch failure that retrying cannot clear
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the retrier gives up after the first attempt
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// isRetryableFetchError reports whether a fetch error may clear on retry.
// Anything not known to be permanent is retried: cancellation, robots
// denial, client errors other than 429 and errors wrapped by Permanent.
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, ErrDisallowed) {
		return false
	}

	var pe *PermanentError
	if errors.As(err, &pe) {
		return false
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == 429 || se.Code >= 500 || se.Code < 400
	}
	return true
}
