package retry

import (
	"context"
	"errors"
	"time"
)

// Policy is a bounded, fixed-delay retry policy.
type Policy struct {
	// Attempts is the maximum number of calls, including the first one.
	Attempts int
	// Delay is the fixed wait between two attempts.
	Delay time.Duration
}

// DefaultPolicy matches the rate limits of both remote services: 3 attempts, 5s apart.
func DefaultPolicy() Policy {
	return Policy{Attempts: 3, Delay: 5 * time.Second}
}

// permanentError marks an error that must not be retried.
type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent wraps err so that Do returns it immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

// Do calls fn until it succeeds, returns a permanent error, or the attempts run out.
// The last error is returned unchanged (permanent errors are unwrapped).
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if attempt == attempts {
			break
		}

		if werr := Wait(ctx, p.Delay); werr != nil {
			return werr
		}
	}

	return err
}

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
