// Package roster is the single source of truth for which keys currently
// have a live worker, and for the manager's coarse lifecycle phase.
//
// # Concurrency Model
//
// The store is single-writer by construction: one goroutine (Serve) owns
// the children map and the phase, and every operation is a request/reply
// round-trip over a channel. No caller ever touches the state directly, so
// the state needs no locks and a Lookup can never observe a half-applied
// Put. Callers block until the owning goroutine has processed their
// request; that serialization point is the whole point of the design, not
// an implementation detail.
//
// # Lifetime
//
// State lives exactly as long as one Serve call. The roster is supervised;
// if its loop dies and is restarted, it comes back empty and the units
// after it in the supervision order (pool, coordinator) are restarted
// behind it, repopulating it through the normal replay path. Nothing is
// persisted.
package roster
