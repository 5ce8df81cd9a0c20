// Package supervisor implements ordered, rest-for-one supervision of a
// fixed list of long-running children.
//
// Children are declared in dependency order. When a child dies, the
// supervisor restarts it and every child declared after it, in order —
// later children are assumed to depend on earlier ones, so a dead
// dependency invalidates everything built on top of it. A later child
// dying leaves earlier children untouched.
//
// Death is observed over a dedicated control channel, never through shared
// state: each child goroutine reports its own exit, and the restart loop
// is the only writer of child lifecycle state. Restart intensity is
// limited; too many restarts within the window fail the supervisor as a
// whole.
package supervisor
