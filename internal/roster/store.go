package roster

import (
	"context"
	"time"

	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/pool"
	"github.com/vk/flockgo/internal/runnerspec"
)

// Entry is the metadata the roster keeps per live worker key.
type Entry struct {
	ID        string
	Handle    pool.Handle
	Spec      runnerspec.Spec
	StartedAt time.Time
}

type opKind int

const (
	opPut opKind = iota
	opRemove
	opLookup
	opGetPhase
	opSetPhase
	opSnapshot
)

type request struct {
	kind  opKind
	id    string
	entry Entry
	phase Phase
	reply chan response
}

type response struct {
	entry    Entry
	ok       bool
	phase    Phase
	children map[string]Entry
}

// Store is the single-writer key→entry store. All methods are safe for
// concurrent use; they block until the Serve loop has processed the
// request.
type Store struct {
	manager string
	reqs    chan request
}

// New creates a Store for the given manager identity. The store does
// nothing until Serve runs.
func New(manager string) *Store {
	return &Store{
		manager: manager,
		reqs:    make(chan request),
	}
}

// Serve owns the roster state and processes requests one at a time until
// the context is cancelled. Each Serve call starts from empty state with
// phase down.
func (s *Store) Serve(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("component", "roster", "manager", s.manager)
	logger.Debug("Roster serving.")

	phase := PhaseDown
	children := make(map[string]Entry)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Roster stopping.", "children", len(children))
			return nil
		case req := <-s.reqs:
			switch req.kind {
			case opPut:
				children[req.entry.ID] = req.entry
				req.reply <- response{}
			case opRemove:
				delete(children, req.id)
				req.reply <- response{}
			case opLookup:
				e, ok := children[req.id]
				req.reply <- response{entry: e, ok: ok}
			case opGetPhase:
				req.reply <- response{phase: phase}
			case opSetPhase:
				phase = req.phase
				req.reply <- response{}
			case opSnapshot:
				snap := make(map[string]Entry, len(children))
				for k, v := range children {
					snap[k] = v
				}
				req.reply <- response{children: snap}
			}
		}
	}
}

func (s *Store) roundTrip(req request) response {
	req.reply = make(chan response, 1)
	s.reqs <- req
	return <-req.reply
}

// Put inserts or overwrites the entry for entry.ID. It is idempotent and
// never fails.
func (s *Store) Put(entry Entry) {
	s.roundTrip(request{kind: opPut, entry: entry})
}

// Remove deletes the entry for id. Removing an absent id is not an error.
func (s *Store) Remove(id string) {
	s.roundTrip(request{kind: opRemove, id: id})
}

// Lookup returns the entry for id, if present.
func (s *Store) Lookup(id string) (Entry, bool) {
	resp := s.roundTrip(request{kind: opLookup, id: id})
	return resp.entry, resp.ok
}

// Phase returns the current lifecycle phase.
func (s *Store) Phase() Phase {
	return s.roundTrip(request{kind: opGetPhase}).phase
}

// SetPhase overwrites the lifecycle phase unconditionally. Transition
// legality is not validated; the embedding application may force any
// phase, including PhaseUnknown.
func (s *Store) SetPhase(p Phase) {
	s.roundTrip(request{kind: opSetPhase, phase: p})
}

// Snapshot returns a copy of the current children map for inspection.
func (s *Store) Snapshot() map[string]Entry {
	return s.roundTrip(request{kind: opSnapshot}).children
}
