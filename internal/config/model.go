package config

import "github.com/vk/flockgo/internal/runnerspec"

// Model is the unified representation of the whole flock declaration.
type Model struct {
	// Flock lists the declared workers in source order. Order matters:
	// the coordinator replays it deterministically at boot, and a later
	// duplicate id supersedes an earlier one through normal put semantics.
	Flock []*WorkerDef
}

// WorkerDef is the format-agnostic representation of one `worker` block.
type WorkerDef struct {
	// ID is the worker's unique key.
	ID string
	// Runner names a catalog runner. Empty selects the manager's default
	// runner.
	Runner string
	// Args are the declarative arguments for the runner's factory.
	Args runnerspec.Args
}
