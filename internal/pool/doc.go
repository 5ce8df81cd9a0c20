// Package pool is the dynamic worker pool: it starts and forcibly
// terminates an arbitrary number of worker processes by opaque handle.
//
// The pool knows nothing about the roster or the coordinator. It resolves
// a runner spec exactly once per start, runs the worker loop in its own
// goroutine, and forgets the worker when the loop ends — whether because
// the runner signalled halt, the worker was terminated, or the pool shut
// down. A worker ending on its own does not notify anyone; the roster may
// briefly hold a handle for a dead worker, which is resolved by the next
// put or delete for that key.
package pool
