package tick

import (
	"context"
	"time"

	"github.com/vk/flockgo/internal/catalog"
	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/runnerspec"
)

// Module implements the catalog.Module interface for this package.
type Module struct{}

// NewRunner builds the tick runner: it logs a message every interval and
// halts after count ticks (count 0 means run until terminated).
func NewRunner(args runnerspec.Args) (runnerspec.Runner, error) {
	interval, err := args.Duration("interval", time.Second)
	if err != nil {
		return nil, err
	}
	count, err := args.Int("count", 0)
	if err != nil {
		return nil, err
	}
	message, err := args.String("message", "tick")
	if err != nil {
		return nil, err
	}

	ticks := 0
	return func(ctx context.Context, id string) (bool, error) {
		select {
		case <-ctx.Done():
			return true, nil
		case <-time.After(interval):
		}

		ticks++
		ctxlog.FromContext(ctx).Info(message, "id", id, "tick", ticks)
		return count > 0 && ticks >= count, nil
	}, nil
}

// Register registers the runner factory with the catalog.
func (m *Module) Register(c *catalog.Catalog) {
	c.RegisterRunner("tick", NewRunner)
}
