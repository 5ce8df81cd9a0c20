package testutil

import (
	"context"
	"sync"

	"github.com/vk/flockgo/internal/runnerspec"
)

// BlockingRunner returns a runner that parks until its context is
// cancelled and then halts cleanly. It is the standard stand-in for a
// well-behaved long-running worker.
func BlockingRunner() runnerspec.Runner {
	return func(ctx context.Context, id string) (bool, error) {
		<-ctx.Done()
		return true, nil
	}
}

// RunnerRecorder counts invocations per worker id. Its runners park after
// recording, so each started worker records exactly one invocation.
type RunnerRecorder struct {
	mu          sync.Mutex
	invocations map[string]int
}

// NewRunnerRecorder creates an empty recorder.
func NewRunnerRecorder() *RunnerRecorder {
	return &RunnerRecorder{invocations: make(map[string]int)}
}

// Runner returns a recording runner.
func (r *RunnerRecorder) Runner() runnerspec.Runner {
	return func(ctx context.Context, id string) (bool, error) {
		r.mu.Lock()
		r.invocations[id]++
		r.mu.Unlock()
		<-ctx.Done()
		return true, nil
	}
}

// Count returns the number of recorded invocations for id.
func (r *RunnerRecorder) Count(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invocations[id]
}
