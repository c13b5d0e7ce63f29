// Package retry wraps fallible remote operations with bounded exponential
// backoff. Delays start at InitialDelay and double on every failed attempt;
// there is no jitter, so recorded delays are strictly increasing. After
// MaxAttempts failures the last observed error is propagated unchanged.
//
// The policy does not interpret errors: a permission failure retries exactly
// like a network timeout unless the operation marks it with Permanent, in
// which case the retry loop stops immediately and returns the inner error.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	// DefaultMaxAttempts bounds how many times an operation is invoked.
	DefaultMaxAttempts = 3

	// DefaultInitialDelay is the sleep before the second attempt.
	DefaultInitialDelay = time.Second
)

// Policy describes one retry discipline. The zero value is usable and
// behaves like Default().
type Policy struct {
	// MaxAttempts is the total number of invocations, first try included.
	// Values below 1 still attempt the operation exactly once; the policy
	// never reports success without calling the operation.
	MaxAttempts int

	// InitialDelay is the sleep after the first failure. Each subsequent
	// delay doubles the previous one.
	InitialDelay time.Duration

	// Logger records per-attempt failures at debug level. Nil disables.
	Logger *zap.Logger

	// Timer overrides the backoff timer. Tests inject a recording timer
	// here; nil uses the real clock.
	Timer backoff.Timer
}

// Default returns the policy used across the data core: three attempts,
// one second initial delay.
func Default() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, InitialDelay: DefaultInitialDelay}
}

// Permanent marks err so the retry loop stops immediately and propagates it.
// The document store uses this for not-found, authentication and decode
// failures, which no amount of retrying can repair.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op under the policy and returns the last error after exhaustion.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue runs op under policy p and returns its value. On exhaustion the
// zero value and the last observed error are returned. Since Go methods
// cannot have type parameters this is a package-level function.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.InitialDelay
	if delay <= 0 {
		delay = DefaultInitialDelay
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = delay
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = 24 * time.Hour
	eb.MaxElapsedTime = 0 // bounded by attempts, not wall time

	var b backoff.BackOff = backoff.WithMaxRetries(eb, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	notify := func(err error, next time.Duration) {
		if p.Logger != nil {
			p.Logger.Debug("operation failed, backing off",
				zap.Error(err),
				zap.Duration("delay", next))
		}
	}

	return backoff.RetryNotifyWithTimerAndData(func() (T, error) {
		return op(ctx)
	}, b, notify, p.Timer)
}
