package supervisor

import (
	"context"
	"fmt"
	"time"

	"github.com/vk/flockgo/internal/ctxlog"
)

// ChildSpec declares one supervised child. Start must block for the
// child's whole lifetime and return when its context is cancelled;
// returning while the context is still live is treated as a death,
// whatever the returned error.
type ChildSpec struct {
	Name  string
	Start func(ctx context.Context) error
}

// Options tunes the restart policy.
type Options struct {
	// MaxRestarts is the number of child deaths tolerated within Window
	// before the supervisor gives up. Zero means DefaultMaxRestarts.
	MaxRestarts int
	// Window is the sliding window for MaxRestarts. Zero means DefaultWindow.
	Window time.Duration
}

const (
	DefaultMaxRestarts = 5
	DefaultWindow      = 10 * time.Second
)

// death is the control message a child goroutine sends when its Start
// returns while the supervisor is still running.
type death struct {
	idx int
	err error
}

// running tracks one live child.
type running struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Supervisor restarts a fixed, ordered list of children under the
// rest-for-one policy.
type Supervisor struct {
	name     string
	children []ChildSpec
	opts     Options
}

// New creates a Supervisor. The children slice order is the dependency
// order; it must not be empty and every child needs a Start func.
func New(name string, children []ChildSpec, opts Options) *Supervisor {
	if len(children) == 0 {
		panic("supervisor: no children declared")
	}
	for _, c := range children {
		if c.Start == nil {
			panic(fmt.Sprintf("supervisor: child %q has nil Start", c.Name))
		}
	}
	if opts.MaxRestarts <= 0 {
		opts.MaxRestarts = DefaultMaxRestarts
	}
	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	return &Supervisor{name: name, children: children, opts: opts}
}

// Serve starts all children in declaration order and supervises them until
// ctx is cancelled. It returns nil on clean shutdown, or an error when the
// restart intensity is exceeded.
func (s *Supervisor) Serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("supervisor", s.name)
	logger.Debug("Supervisor starting.", "children", len(s.children))

	deaths := make(chan death, len(s.children))
	live := make([]*running, len(s.children))
	for i := range s.children {
		live[i] = s.startChild(ctx, i, deaths)
	}

	var restarts []time.Time

	for {
		select {
		case <-ctx.Done():
			s.stopFrom(live, 0)
			logger.Debug("Supervisor stopped.")
			return nil

		case d := <-deaths:
			child := s.children[d.idx]
			logger.Warn("Supervised child died.", "child", child.Name, "error", d.err)

			now := time.Now()
			restarts = append(restarts, now)
			restarts = trimWindow(restarts, now.Add(-s.opts.Window))
			if len(restarts) > s.opts.MaxRestarts {
				s.stopFrom(live, 0)
				return fmt.Errorf("supervisor %s: restart intensity exceeded (%d restarts in %s)",
					s.name, len(restarts), s.opts.Window)
			}

			// Rest-for-one: everything after the dead child is torn down
			// before the dead child itself restarts, then the whole tail
			// comes back in declaration order.
			s.stopFrom(live, d.idx+1)
			drainDeaths(deaths, d.idx)
			for i := d.idx; i < len(s.children); i++ {
				logger.Info("Restarting supervised child.", "child", s.children[i].Name)
				live[i] = s.startChild(ctx, i, deaths)
			}
		}
	}
}

// startChild launches one child goroutine that reports its own death on
// the control channel. A panic inside Start is converted into a death.
func (s *Supervisor) startChild(ctx context.Context, idx int, deaths chan<- death) *running {
	childCtx, cancel := context.WithCancel(ctx)
	r := &running{cancel: cancel, done: make(chan struct{})}
	spec := s.children[idx]

	go func() {
		defer close(r.done)
		err := runChild(childCtx, spec)
		if childCtx.Err() != nil {
			return // asked to stop, not a death
		}
		deaths <- death{idx: idx, err: err}
	}()
	return r
}

// runChild invokes Start with panics converted to errors.
func runChild(ctx context.Context, spec ChildSpec) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("child %q panicked: %v", spec.Name, rec)
		}
	}()
	err = spec.Start(ctx)
	if err == nil {
		err = fmt.Errorf("child %q returned before shutdown", spec.Name)
	}
	return err
}

// stopFrom cancels children[from:] in reverse declaration order and waits
// for each to finish before cancelling the one before it.
func (s *Supervisor) stopFrom(live []*running, from int) {
	for i := len(live) - 1; i >= from; i-- {
		if live[i] == nil {
			continue
		}
		live[i].cancel()
		<-live[i].done
		live[i] = nil
	}
}

// drainDeaths discards queued deaths from children at or after idx; those
// children were just stopped deliberately and will be restarted anyway.
func drainDeaths(deaths chan death, idx int) {
	for {
		select {
		case d := <-deaths:
			if d.idx < idx {
				// A death of an earlier child must not be lost; put it back.
				deaths <- d
				return
			}
		default:
			return
		}
	}
}

// trimWindow drops timestamps older than cutoff.
func trimWindow(ts []time.Time, cutoff time.Time) []time.Time {
	out := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			out = append(out, t)
		}
	}
	return out
}
