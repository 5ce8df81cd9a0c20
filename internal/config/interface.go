package config

import "context"

// Loader is the interface for a format-specific flock declaration loader.
type Loader interface {
	// Load reads every declaration under the given paths and merges them
	// into one model, preserving source order.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
