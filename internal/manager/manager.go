package manager

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vk/flockgo/internal/catalog"
	"github.com/vk/flockgo/internal/coordinator"
	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/pool"
	"github.com/vk/flockgo/internal/roster"
	"github.com/vk/flockgo/internal/runnerspec"
	"github.com/vk/flockgo/internal/supervisor"
)

// ErrNotFound is returned by Delete for a key with no live worker.
var ErrNotFound = coordinator.ErrNotFound

// Options configures a Manager. ChildrenSpecs is the only required hook.
type Options struct {
	// Name is a human-readable label for logs. Defaults to "flock".
	Name string
	// Catalog resolves Module specs. Optional when only Func/Call/Default
	// specs are used.
	Catalog *catalog.Catalog
	// ChildrenSpecs supplies the ordered declarative initial flock,
	// consumed once per coordinator start. Required.
	ChildrenSpecs func(ctx context.Context) []coordinator.InitialSpec
	// Runner is the fallback unit of work behind Default specs. The
	// built-in placeholder logs and randomly signals halt; override it.
	Runner runnerspec.Runner
	// OnStateChange observes lifecycle phase changes. Defaults to a log line.
	OnStateChange func(p roster.Phase)
	// TerminateGrace and Backoff are passed through to the pool.
	TerminateGrace time.Duration
	Backoff        time.Duration
	// Supervision tunes the restart policy for the internal tree.
	Supervision supervisor.Options
}

// Manager is one supervised flock instance.
type Manager struct {
	id   string
	name string

	roster *roster.Store
	pool   *pool.Pool
	coord  *coordinator.Coordinator
	sup    *supervisor.Supervisor

	ready     chan struct{}
	readyOnce sync.Once
}

// New wires a Manager from the given options. The manager identity is an
// explicit uuid handle passed to all three components, never derived from
// the caller.
func New(opts Options) (*Manager, error) {
	if opts.ChildrenSpecs == nil {
		return nil, errors.New("manager: ChildrenSpecs is required")
	}
	if opts.Name == "" {
		opts.Name = "flock"
	}
	if opts.Runner == nil {
		opts.Runner = placeholderRunner
	}
	if opts.OnStateChange == nil {
		opts.OnStateChange = func(p roster.Phase) {
			slog.Debug("Manager state change.", "phase", p.String())
		}
	}

	m := &Manager{
		id:    opts.Name + "-" + uuid.NewString()[:8],
		name:  opts.Name,
		ready: make(chan struct{}),
	}

	var cat runnerspec.Catalog
	if opts.Catalog != nil {
		cat = opts.Catalog
	}

	m.roster = roster.New(m.id)
	m.pool = pool.New(pool.Options{
		Manager:        m.id,
		Catalog:        cat,
		Fallback:       opts.Runner,
		TerminateGrace: opts.TerminateGrace,
		Backoff:        opts.Backoff,
	})
	m.coord = coordinator.New(coordinator.Options{
		Manager:       m.id,
		Roster:        m.roster,
		Pool:          m.pool,
		ChildrenSpecs: opts.ChildrenSpecs,
		OnStateChange: m.observePhase(opts.OnStateChange),
	})

	m.sup = supervisor.New(m.id, []supervisor.ChildSpec{
		{Name: "roster", Start: m.roster.Serve},
		{Name: "pool", Start: m.pool.Serve},
		{Name: "coordinator", Start: m.coord.Serve},
	}, opts.Supervision)

	return m, nil
}

// Run starts the supervision tree and blocks until ctx is cancelled or the
// tree gives up. Put/Delete/Get may be called from other goroutines as
// soon as Run has been entered; they queue until the boot replay finishes.
func (m *Manager) Run(ctx context.Context) error {
	ctx = ctxlog.With(ctx, "manager", m.id)
	ctxlog.FromContext(ctx).Info("🐑 Manager starting.", "name", m.name)
	return m.sup.Serve(ctx)
}

// Ready is closed the first time the manager reaches the up phase.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// ID returns the manager's identity handle.
func (m *Manager) ID() string {
	return m.id
}

// Put ensures exactly one live worker for id, running spec, and returns
// its handle.
func (m *Manager) Put(id string, spec runnerspec.Spec) (pool.Handle, error) {
	return m.coord.Put(id, spec)
}

// Delete tears down the worker for id and returns its prior entry, or
// ErrNotFound.
func (m *Manager) Delete(id string) (roster.Entry, error) {
	return m.coord.Delete(id)
}

// Get returns the entry for id, if present.
func (m *Manager) Get(id string) (roster.Entry, bool) {
	return m.coord.Get(id)
}

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() roster.Phase {
	return m.roster.Phase()
}

// SetPhase forces the lifecycle phase; intended for the embedding
// application (e.g. marking the manager unknown during maintenance).
func (m *Manager) SetPhase(p roster.Phase) {
	m.roster.SetPhase(p)
}

// Snapshot returns a copy of the current roster for inspection.
func (m *Manager) Snapshot() map[string]roster.Entry {
	return m.roster.Snapshot()
}

// ReplayReport returns the failures from the most recent boot replay.
func (m *Manager) ReplayReport() []coordinator.ReplayError {
	return m.coord.ReplayReport()
}

// observePhase wraps the user hook so the ready channel closes on the
// first up transition. The hook runs before the channel closes, so a
// caller unblocked by Ready sees every phase the hook has seen.
func (m *Manager) observePhase(hook func(p roster.Phase)) func(p roster.Phase) {
	return func(p roster.Phase) {
		hook(p)
		if p == roster.PhaseUp {
			m.readyOnce.Do(func() { close(m.ready) })
		}
	}
}

// placeholderRunner is the built-in default unit of work: it logs, idles
// briefly and signals halt about a quarter of the time. It exists to make
// a freshly scaffolded manager visibly do something; real deployments
// override Options.Runner or use Module specs.
func placeholderRunner(ctx context.Context, id string) (bool, error) {
	halt := rand.IntN(4) == 0
	ctxlog.FromContext(ctx).Info("Placeholder runner invoked; override Options.Runner.", "id", id, "halt", halt)
	select {
	case <-ctx.Done():
		return true, nil
	case <-time.After(250 * time.Millisecond):
	}
	return halt, nil
}
