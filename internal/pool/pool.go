package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/runnerspec"
	"github.com/vk/flockgo/internal/worker"
)

// DefaultTerminateGrace bounds how long Terminate waits for a worker loop
// to acknowledge cancellation before reporting a termination failure.
const DefaultTerminateGrace = 5 * time.Second

// StartRequest describes one worker to start.
type StartRequest struct {
	ID      string
	Spec    runnerspec.Spec
	Manager string
}

// Options configures a Pool.
type Options struct {
	// Manager is the owning manager's identity, stamped on log lines.
	Manager string
	// Catalog resolves Module specs. May be nil if no Module specs are used.
	Catalog runnerspec.Catalog
	// Fallback is the runner substituted for Default specs.
	Fallback runnerspec.Runner
	// TerminateGrace bounds Terminate's wait. Zero means DefaultTerminateGrace.
	TerminateGrace time.Duration
	// Backoff is passed to the worker loop. Zero means worker.DefaultBackoff.
	Backoff time.Duration
}

// proc tracks one live worker goroutine.
type proc struct {
	handle Handle
	cancel context.CancelFunc
	done   chan struct{}
}

// Pool starts and terminates worker processes by opaque handle. All
// methods are safe for concurrent use.
type Pool struct {
	opts Options

	mu      sync.Mutex
	running bool
	runCtx  context.Context
	workers map[string]*proc // keyed by handle token
}

// New creates a Pool. Workers cannot start until Serve runs.
func New(opts Options) *Pool {
	if opts.TerminateGrace <= 0 {
		opts.TerminateGrace = DefaultTerminateGrace
	}
	return &Pool{
		opts:    opts,
		workers: make(map[string]*proc),
	}
}

// Serve parents all worker goroutines to ctx and blocks until it is
// cancelled, then drains every live worker before returning.
func (p *Pool) Serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("component", "pool", "manager", p.opts.Manager)
	logger.Debug("Worker pool serving.")

	p.mu.Lock()
	p.runCtx = ctx
	p.running = true
	p.mu.Unlock()

	<-ctx.Done()

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	logger.Debug("Worker pool draining.", "workers", p.Len())
	return p.drain()
}

// Start resolves the request's spec and launches a worker loop for it.
// Resolution and pool-state problems surface here as start failures.
func (p *Pool) Start(ctx context.Context, req StartRequest) (Handle, error) {
	runner, err := runnerspec.Resolve(req.Spec, p.opts.Catalog, p.opts.Fallback)
	if err != nil {
		return Handle{}, fmt.Errorf("start worker %q: %w", req.ID, err)
	}

	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return Handle{}, fmt.Errorf("start worker %q: pool is not running", req.ID)
	}
	h := Handle{Key: req.ID, Token: uuid.NewString()}
	wctx, cancel := context.WithCancel(p.runCtx)
	pr := &proc{handle: h, cancel: cancel, done: make(chan struct{})}
	p.workers[h.Token] = pr
	p.mu.Unlock()

	wctx = ctxlog.With(wctx, "worker", req.ID, "handle", h.String(), "manager", req.Manager)
	ctxlog.FromContext(ctx).Debug("Worker starting.", "worker", req.ID, "handle", h.String(), "spec", runnerspec.Describe(req.Spec))

	go func() {
		defer close(pr.done)
		defer p.forget(h.Token)
		worker.Loop(wctx, req.ID, runner, worker.Config{Backoff: p.opts.Backoff})
	}()

	return h, nil
}

// Terminate cancels the worker behind h and waits for its loop to end.
// Terminating an unknown or already-dead handle is not an error.
func (p *Pool) Terminate(ctx context.Context, h Handle) error {
	p.mu.Lock()
	pr, ok := p.workers[h.Token]
	p.mu.Unlock()
	if !ok {
		return nil
	}

	pr.cancel()
	select {
	case <-pr.done:
		return nil
	case <-time.After(p.opts.TerminateGrace):
		return fmt.Errorf("terminate %s: worker did not stop within %s", h, p.opts.TerminateGrace)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Alive reports whether the worker behind h is still running.
func (p *Pool) Alive(h Handle) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.workers[h.Token]
	return ok
}

// Len returns the number of live workers.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// forget drops a finished worker from the tracking map.
func (p *Pool) forget(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.workers, token)
}

// drain cancels every live worker and waits for all loops to end.
func (p *Pool) drain() error {
	p.mu.Lock()
	procs := make([]*proc, 0, len(p.workers))
	for _, pr := range p.workers {
		procs = append(procs, pr)
	}
	p.mu.Unlock()

	var g errgroup.Group
	for _, pr := range procs {
		g.Go(func() error {
			pr.cancel()
			select {
			case <-pr.done:
				return nil
			case <-time.After(p.opts.TerminateGrace):
				return fmt.Errorf("drain %s: worker did not stop within %s", pr.handle, p.opts.TerminateGrace)
			}
		})
	}
	return g.Wait()
}
