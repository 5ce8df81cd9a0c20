package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/pool"
	"github.com/vk/flockgo/internal/roster"
	"github.com/vk/flockgo/internal/runnerspec"
)

// ErrNotFound is returned by Delete for a key with no live worker. It is a
// normal value-level outcome, not a fault.
var ErrNotFound = errors.New("no worker registered for id")

// InitialSpec is one entry of the declarative initial flock, replayed in
// order at startup.
type InitialSpec struct {
	ID   string
	Spec runnerspec.Spec
}

// ReplayError records one initial entry that failed to start. Replay
// failures are recoverable: the entry is skipped, the boot continues.
type ReplayError struct {
	ID  string
	Err error
}

// WorkerPool is the slice of the pool the coordinator drives.
type WorkerPool interface {
	Start(ctx context.Context, req pool.StartRequest) (pool.Handle, error)
	Terminate(ctx context.Context, h pool.Handle) error
}

// Roster is the slice of the roster store the coordinator mutates.
type Roster interface {
	Put(entry roster.Entry)
	Remove(id string)
	Lookup(id string) (roster.Entry, bool)
	SetPhase(p roster.Phase)
}

// Options configures a Coordinator.
type Options struct {
	Manager string
	Roster  Roster
	Pool    WorkerPool
	// ChildrenSpecs supplies the ordered initial flock. Consumed once per
	// Serve, before any external request is processed. Required.
	ChildrenSpecs func(ctx context.Context) []InitialSpec
	// OnStateChange is invoked after every phase change the coordinator
	// makes. Optional.
	OnStateChange func(p roster.Phase)
}

type opKind int

const (
	opPut opKind = iota
	opDelete
	opGet
	opReplayReport
)

type request struct {
	kind  opKind
	id    string
	spec  runnerspec.Spec
	reply chan response
}

type response struct {
	handle pool.Handle
	entry  roster.Entry
	ok     bool
	err    error
	replay []ReplayError
}

// Coordinator owns the put/delete/get serialization point. All exported
// methods are safe for concurrent use and block until the Serve loop has
// processed them.
type Coordinator struct {
	opts Options
	reqs chan request
}

// New creates a Coordinator. It validates wiring, not behavior: missing
// collaborators are programmer errors.
func New(opts Options) *Coordinator {
	if opts.Roster == nil || opts.Pool == nil {
		panic("coordinator: roster and pool are required")
	}
	if opts.ChildrenSpecs == nil {
		panic("coordinator: ChildrenSpecs callback is required")
	}
	return &Coordinator{
		opts: opts,
		reqs: make(chan request),
	}
}

// Serve replays the initial flock, flips the phase to up, then processes
// requests one at a time until ctx is cancelled.
func (c *Coordinator) Serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("component", "coordinator", "manager", c.opts.Manager)

	c.setPhase(roster.PhaseStarting)
	replay := c.replayInitial(ctx, logger)
	c.setPhase(roster.PhaseUp)
	logger.Info("Coordinator up.", "replay_failures", len(replay))

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Coordinator stopping.")
			return nil
		case req := <-c.reqs:
			switch req.kind {
			case opPut:
				h, err := c.doPut(ctx, req.id, req.spec)
				req.reply <- response{handle: h, err: err}
			case opDelete:
				e, err := c.doDelete(ctx, req.id)
				req.reply <- response{entry: e, err: err}
			case opGet:
				e, ok := c.opts.Roster.Lookup(req.id)
				req.reply <- response{entry: e, ok: ok}
			case opReplayReport:
				req.reply <- response{replay: replay}
			}
		}
	}
}

// replayInitial applies the declarative initial flock through the normal
// put path, in order. A failing entry is logged and skipped; the boot is
// never aborted by a single bad spec.
func (c *Coordinator) replayInitial(ctx context.Context, logger *slog.Logger) []ReplayError {
	specs := c.opts.ChildrenSpecs(ctx)
	logger.Debug("Replaying initial flock.", "count", len(specs))

	var failed []ReplayError
	for _, is := range specs {
		if _, err := c.doPut(ctx, is.ID, is.Spec); err != nil {
			logger.Warn("Initial worker failed to start, skipping.", "worker", is.ID, "error", err)
			failed = append(failed, ReplayError{ID: is.ID, Err: err})
		}
	}
	return failed
}

// doPut is the single put path shared by replay and runtime requests.
// Order matters: tear down any previous worker for the id, start the new
// one (failure here fails the whole put), then record the entry.
func (c *Coordinator) doPut(ctx context.Context, id string, spec runnerspec.Spec) (pool.Handle, error) {
	if _, err := c.doDelete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return pool.Handle{}, err
	}

	h, err := c.opts.Pool.Start(ctx, pool.StartRequest{ID: id, Spec: spec, Manager: c.opts.Manager})
	if err != nil {
		return pool.Handle{}, fmt.Errorf("put %q: %w", id, err)
	}

	c.opts.Roster.Put(roster.Entry{
		ID:        id,
		Handle:    h,
		Spec:      spec,
		StartedAt: time.Now(),
	})
	return h, nil
}

// doDelete removes the roster entry before requesting termination, so a
// concurrent put for the same id (queued behind this op) can never have
// its fresh handle erased by an in-flight teardown. A termination failure
// is reported in the log only; the entry stays removed — the worker's own
// supervision will reap it eventually.
func (c *Coordinator) doDelete(ctx context.Context, id string) (roster.Entry, error) {
	e, ok := c.opts.Roster.Lookup(id)
	if !ok {
		return roster.Entry{}, ErrNotFound
	}

	c.opts.Roster.Remove(id)
	if err := c.opts.Pool.Terminate(ctx, e.Handle); err != nil {
		ctxlog.FromContext(ctx).Warn("Worker termination failed; entry removed anyway.",
			"worker", id, "handle", e.Handle.String(), "error", err)
	}
	return e, nil
}

// setPhase writes the phase and notifies the hook.
func (c *Coordinator) setPhase(p roster.Phase) {
	c.opts.Roster.SetPhase(p)
	if c.opts.OnStateChange != nil {
		c.opts.OnStateChange(p)
	}
}

func (c *Coordinator) roundTrip(req request) response {
	req.reply = make(chan response, 1)
	c.reqs <- req
	return <-req.reply
}

// Put ensures exactly one live worker for id, running spec. Any previous
// worker for the id is torn down first. A pool start failure fails the
// call and leaves no entry behind.
func (c *Coordinator) Put(id string, spec runnerspec.Spec) (pool.Handle, error) {
	resp := c.roundTrip(request{kind: opPut, id: id, spec: spec})
	return resp.handle, resp.err
}

// Delete removes the worker for id and returns its prior entry, or
// ErrNotFound with no side effects.
func (c *Coordinator) Delete(id string) (roster.Entry, error) {
	resp := c.roundTrip(request{kind: opDelete, id: id})
	return resp.entry, resp.err
}

// Get returns the entry for id, if present. It passes through the same
// serialization point as the mutations, so it never observes an entry
// mid-replace.
func (c *Coordinator) Get(id string) (roster.Entry, bool) {
	resp := c.roundTrip(request{kind: opGet, id: id})
	return resp.entry, resp.ok
}

// ReplayReport returns the failures collected during the most recent
// initial replay.
func (c *Coordinator) ReplayReport() []ReplayError {
	return c.roundTrip(request{kind: opReplayReport}).replay
}
