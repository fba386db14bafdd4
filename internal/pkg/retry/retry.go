// Package retry provides a small configurable retry policy: max attempts plus
// a per-attempt delay function, applied generically so backoff strategies can
// be swapped without touching call sites.
package retry

import (
	"context"
	"errors"
	"time"
)

// ErrAttemptsExhausted is returned when every attempt failed.
var ErrAttemptsExhausted = errors.New("retry: attempts exhausted")

// Policy describes how often and how fast an operation is retried.
type Policy struct {
	MaxAttempts int
	// Delay returns the wait before the given attempt (1-based). No delay is
	// applied before the first attempt or after the last one.
	Delay func(attempt int) time.Duration
}

// Fixed returns a policy with a constant inter-attempt delay.
func Fixed(maxAttempts int, delay time.Duration) Policy {
	return Policy{
		MaxAttempts: maxAttempts,
		Delay:       func(int) time.Duration { return delay },
	}
}

// Do runs op until it succeeds or the policy is exhausted. Between attempts it
// sleeps per the delay function, aborting early when the context is done. The
// last attempt's error is wrapped together with ErrAttemptsExhausted.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == attempts {
			break
		}

		var wait time.Duration
		if p.Delay != nil {
			wait = p.Delay(attempt)
		}
		if wait > 0 {
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
	}

	return errors.Join(ErrAttemptsExhausted, lastErr)
}
