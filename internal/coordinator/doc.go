// Package coordinator serializes all structural changes to the flock.
//
// The coordinator is the only component allowed to call the worker pool's
// Start and Terminate, and every Put, Delete and Get funnels through its
// single request loop — one operation runs to completion before the next
// begins, which is what guarantees at-most-one live worker per key under
// concurrent callers. On startup the loop first replays the declarative
// initial flock through the same put path used at runtime, then flips the
// roster phase to up; requests arriving during replay simply queue behind
// it.
//
// The loop has no internal timeouts: a stuck pool call stalls every
// subsequent caller. That is an accepted limitation, not a guarantee.
package coordinator
