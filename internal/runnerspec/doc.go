// Package runnerspec describes the unit of work a worker executes for one
// key.
//
// A Spec is pure configuration data: a tagged variant that says how to
// obtain the work, not the work itself. The roster and the coordinator
// carry Specs around without ever inspecting them; a Spec is resolved into
// a concrete Runner exactly once, at the worker-pool boundary, just before
// the worker loop starts.
//
// Four variants exist:
//
//   - Func: a callable already bound to its id.
//   - Module: a named runner from the catalog, built from declarative args.
//   - Call: a qualified (receiver, method, fixed-arguments) triple, bound
//     by reflection.
//   - Default: the manager's overridable fallback runner.
package runnerspec
