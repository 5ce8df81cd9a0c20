// Package worker provides the process body for a single supervised worker:
// the loop that repeatedly invokes the unit of work until it signals halt
// or its context is cancelled. The loop is deliberately simple and
// externally replaceable; everything interesting lives in the runner it
// invokes.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/runnerspec"
)

// DefaultBackoff is the pause after a failed or panicked invocation, so a
// persistently broken runner cannot spin hot.
const DefaultBackoff = 250 * time.Millisecond

// Config tunes the loop.
type Config struct {
	// Backoff is the pause after an invocation returns an error or
	// panics. Zero means DefaultBackoff.
	Backoff time.Duration
}

// Loop runs the unit of work for id until it signals halt or ctx is
// cancelled. A runner error is logged and the loop continues after a
// backoff; a runner panic is contained the same way. Crashes never
// propagate to the caller.
func Loop(ctx context.Context, id string, run runnerspec.Runner, cfg Config) {
	logger := ctxlog.FromContext(ctx)
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}

	logger.Debug("Worker loop started.")
	for {
		if ctx.Err() != nil {
			logger.Debug("Worker loop cancelled.")
			return
		}

		halt, err := invoke(ctx, id, run)
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("Worker loop cancelled mid-invocation.")
				return
			}
			logger.Warn("Unit of work failed.", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			continue
		}
		if halt {
			logger.Debug("Worker signalled halt.")
			return
		}
	}
}

// invoke calls the runner once, converting a panic into an error so the
// loop survives it.
func invoke(ctx context.Context, id string, run runnerspec.Runner) (halt bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			halt = false
			err = fmt.Errorf("unit of work panicked: %v", r)
		}
	}()
	return run(ctx, id)
}
