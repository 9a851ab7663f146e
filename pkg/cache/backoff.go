package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is wrapped by errors from an unreachable backend.
var ErrUnavailable = errors.New("cache backend unavailable")

// transientError marks a failure worth another attempt.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err: err}
}

// IsRetryable reports whether err, or any error it wraps, was marked with
// Retryable.
func IsRetryable(err error) bool {
	var te transientError
	return errors.As(err, &te)
}

// Backoff retries transient failures with a doubling delay.
type Backoff struct {
	Attempts int
	Delay    time.Duration // first wait
	MaxDelay time.Duration // 0 means uncapped
}

// defaultBackoff is used by the Redis backend.
var defaultBackoff = Backoff{Attempts: 3, Delay: 100 * time.Millisecond, MaxDelay: time.Second}

// Do calls fn until it succeeds, returns an error not marked Retryable, or
// the attempts are used up. The last error is returned.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	var err error
	for i := range max(b.Attempts, 1) {
		if i > 0 {
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
			delay *= 2
			if b.MaxDelay > 0 && delay > b.MaxDelay {
				delay = b.MaxDelay
			}
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}
