// Package manager assembles a roster, a worker pool and a coordinator into
// one supervised unit and exposes the public put/delete/get surface.
//
// The three parts are declared to the supervisor in dependency order
// (roster, pool, coordinator) under the rest-for-one policy: a roster
// death restarts all three, a pool death restarts pool and coordinator,
// a coordinator death restarts only itself — and every coordinator start
// replays the declarative initial flock, so a restarted tree converges
// back to the declared state.
package manager
