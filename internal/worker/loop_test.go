package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopStopsOnHalt(t *testing.T) {
	var calls atomic.Int32
	run := func(ctx context.Context, id string) (bool, error) {
		return calls.Add(1) == 3, nil
	}

	Loop(context.Background(), "a", run, Config{})

	assert.Equal(t, int32(3), calls.Load())
}

func TestLoopStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	run := func(ctx context.Context, id string) (bool, error) {
		cancel()
		return false, nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		Loop(ctx, "a", run, Config{})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop after cancellation")
	}
}

func TestLoopContinuesAfterError(t *testing.T) {
	var calls atomic.Int32
	run := func(ctx context.Context, id string) (bool, error) {
		if calls.Add(1) == 1 {
			return false, errors.New("transient")
		}
		return true, nil
	}

	Loop(context.Background(), "a", run, Config{Backoff: time.Millisecond})

	assert.Equal(t, int32(2), calls.Load())
}

func TestLoopContinuesAfterPanic(t *testing.T) {
	var calls atomic.Int32
	run := func(ctx context.Context, id string) (bool, error) {
		if calls.Add(1) == 1 {
			panic("kaboom")
		}
		return true, nil
	}

	require.NotPanics(t, func() {
		Loop(context.Background(), "a", run, Config{Backoff: time.Millisecond})
	})
	assert.Equal(t, int32(2), calls.Load())
}

func TestLoopBacksOffBetweenFailures(t *testing.T) {
	var calls atomic.Int32
	run := func(ctx context.Context, id string) (bool, error) {
		if calls.Add(1) < 3 {
			return false, errors.New("transient")
		}
		return true, nil
	}

	start := time.Now()
	Loop(context.Background(), "a", run, Config{Backoff: 20 * time.Millisecond})

	// Two failures means two backoff pauses before the final invocation.
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestLoopHonoursCancelDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	run := func(ctx context.Context, id string) (bool, error) {
		cancel()
		return false, errors.New("transient")
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		Loop(ctx, "a", run, Config{Backoff: time.Hour})
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop slept through cancellation")
	}
}

func TestLoopNeverInvokesWithDeadContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	run := func(ctx context.Context, id string) (bool, error) {
		calls.Add(1)
		return false, nil
	}

	Loop(ctx, "a", run, Config{})

	assert.Equal(t, int32(0), calls.Load())
}
