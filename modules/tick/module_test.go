package tick

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flockgo/internal/catalog"
	"github.com/vk/flockgo/internal/runnerspec"
)

func TestRunnerHaltsAfterCount(t *testing.T) {
	run, err := NewRunner(runnerspec.Args{
		"interval": "1ms",
		"count":    float64(2),
	})
	require.NoError(t, err)

	halt, err := run(context.Background(), "a")
	require.NoError(t, err)
	assert.False(t, halt, "first tick of two must not halt")

	halt, err = run(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, halt, "second tick reaches the count")
}

func TestRunnerWithoutCountNeverHalts(t *testing.T) {
	run, err := NewRunner(runnerspec.Args{"interval": "1ms"})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		halt, err := run(context.Background(), "a")
		require.NoError(t, err)
		assert.False(t, halt)
	}
}

func TestRunnerHaltsOnCancelledContext(t *testing.T) {
	run, err := NewRunner(runnerspec.Args{"interval": "1h"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	halt, err := run(ctx, "a")
	require.NoError(t, err)
	assert.True(t, halt)
	assert.Less(t, time.Since(start), time.Second, "cancellation must beat the interval")
}

func TestRunnerRejectsBadArgs(t *testing.T) {
	_, err := NewRunner(runnerspec.Args{"interval": "not a duration"})
	require.Error(t, err)

	_, err = NewRunner(runnerspec.Args{"count": "three"})
	require.Error(t, err)

	_, err = NewRunner(runnerspec.Args{"message": float64(1)})
	require.Error(t, err)
}

func TestRegister(t *testing.T) {
	c := catalog.New()
	(&Module{}).Register(c)

	_, ok := c.Runner("tick")
	assert.True(t, ok)
}
