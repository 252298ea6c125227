// Package readiness polls an external predicate until it reports ready or a
// bounded wait elapses.
//
// The predicate itself is a collaborator capability (typically an expression
// evaluated against a live page); this package only owns the polling policy.
// A timeout is reported as ErrTimeout so callers can apply a best-effort
// fallback instead of treating it like a hard failure.
package readiness

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout reports that the predicate never became ready within the bound.
var ErrTimeout = errors.New("readiness: wait timed out")

// Predicate reports whether the observed state is ready. Errors other than
// "not ready yet" should be returned, not swallowed; they abort the wait.
type Predicate func(ctx context.Context) (bool, error)

// Wait polls pred every interval until it returns true, the timeout elapses
// (ErrTimeout), the predicate errors, or ctx is cancelled. The predicate is
// checked once immediately before any sleep.
func Wait(ctx context.Context, pred Predicate, interval, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := pred(waitCtx)
		if err != nil {
			if waitCtx.Err() != nil && ctx.Err() == nil {
				// Predicate failed because our deadline fired mid-check.
				return ErrTimeout
			}
			return fmt.Errorf("readiness: predicate: %w", err)
		}
		if ok {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				// Outer cancellation, not our deadline.
				return ctx.Err()
			}
			return ErrTimeout
		case <-ticker.C:
		}
	}
}
