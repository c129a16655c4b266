package resilience

import (
	"context"
	"fmt"
	"time"
)

// WithTimeout runs fn under a deadline derived from ctx. When the deadline
// fires before fn returns, the call is abandoned and a wrapped
// context.DeadlineExceeded comes back; fn keeps the derived context so it can
// stop its own work. A non-positive timeout runs fn directly.
func WithTimeout(ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) error) error {
	if timeout <= 0 {
		return fn(ctx)
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- fn(runCtx) }()

	select {
	case err := <-errCh:
		return err
	case <-runCtx.Done():
		if ctx.Err() != nil {
			return fmt.Errorf("%s: parent context cancelled: %w", name, ctx.Err())
		}
		return fmt.Errorf("%s: %w (limit: %v)", name, context.DeadlineExceeded, timeout)
	}
}
