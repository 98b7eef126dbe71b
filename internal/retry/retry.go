// Package retry runs operations with a fixed backoff between attempts.
// It is used by one-time setup work such as seeding; search requests are never retried.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Policy bounds a retry loop.
type Policy struct {
	Attempts int
	Interval time.Duration
}

// DefaultPolicy matches the seeding loop: five attempts, two seconds apart.
var DefaultPolicy = Policy{Attempts: 5, Interval: 2 * time.Second}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as retryable. Errors not marked transient stop Do immediately.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err, or any error it wraps, was marked with Transient.
func IsTransient(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Do calls fn until it succeeds, returns a non-transient error, the attempts run out,
// or ctx is done. The returned error is the last one fn produced, without the transient mark.
func Do(ctx context.Context, p Policy, desc string, fn func(context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	attempt := 0
	op := func() error {
		attempt++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		if attempt < attempts {
			log.Warn().Err(err).Str("op", desc).Msgf("not ready, retry %d/%d", attempt, attempts)
		}
		return err
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Interval), uint64(attempts-1)),
		ctx,
	)
	return unwrapTransient(backoff.Retry(op, b))
}

// WaitUntil polls probe every interval until it returns nil or ctx is done.
func WaitUntil(ctx context.Context, interval time.Duration, probe func(context.Context) error) error {
	op := func() error {
		return probe(ctx)
	}
	b := backoff.WithContext(backoff.NewConstantBackOff(interval), ctx)
	return unwrapTransient(backoff.Retry(op, b))
}

func unwrapTransient(err error) error {
	var t *transientError
	if errors.As(err, &t) && err == error(t) {
		return t.err
	}
	return err
}
