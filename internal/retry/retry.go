// Package retry wraps cenkalti/backoff/v4 with the retry policy shared by
// every strategy that can hit optimistic-concurrency contention against the
// backing store.
package retry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryable marks an error as worth retrying. Operations should wrap
// transient failures (e.g. a WATCH key changing under a transaction) with
// Retryable so Do knows to retry rather than give up; anything else is returned
// to the caller via backoff.Permanent on the first attempt.
type retryable struct{ err error }

func (r retryable) Error() string { return r.err.Error() }
func (r retryable) Unwrap() error { return r.err }

// Retryable wraps err so Do retries the operation instead of failing fast.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return retryable{err: err}
}

// Counter tallies retry attempts across the lifetime of a Core; it backs
// the InsertRetries metric.
type Counter struct {
	n atomic.Int64
}

// Add increments the counter by delta and returns the new total.
func (c *Counter) Add(delta int64) int64 { return c.n.Add(delta) }

// Load returns the current total.
func (c *Counter) Load() int64 { return c.n.Load() }

// Policy bounds how long Do keeps retrying; there is no separate cap on the
// number of attempts.
type Policy struct {
	MaxElapsedTime time.Duration
}

// DefaultPolicy matches the reference implementation's default retry
// budget for optimistic transactions.
func DefaultPolicy() Policy {
	return Policy{MaxElapsedTime: 5 * time.Second}
}

// Do runs op, retrying with exponential backoff while op returns an error
// wrapped with Retryable, up to p's elapsed-time budget. Every retry
// (including the first failed attempt) increments counter, if non-nil.
func Do(ctx context.Context, p Policy, counter *Counter, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = p.MaxElapsedTime
	bctx := backoff.WithContext(b, ctx)

	attempt := 0
	notify := func(err error, wait time.Duration) {
		attempt++
		if counter != nil {
			counter.Add(1)
		}
	}

	return backoff.RetryNotify(func() error {
		err := op()
		if err == nil {
			return nil
		}
		if _, ok := err.(retryable); ok {
			return err
		}
		return backoff.Permanent(err)
	}, bctx, notify)
}
