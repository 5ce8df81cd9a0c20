// Package integrationtests exercises the assembled application: CLI
// config, HCL loading, catalog registration and the supervised manager,
// wired together exactly as the binary wires them.
package integrationtests

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flockgo/internal/app"
	"github.com/vk/flockgo/internal/catalog"
	"github.com/vk/flockgo/internal/config"
	"github.com/vk/flockgo/internal/hcladapter"
	"github.com/vk/flockgo/internal/roster"
	"github.com/vk/flockgo/internal/runnerspec"
	"github.com/vk/flockgo/internal/testutil"
)

// recorderModule registers a RunnerRecorder-backed runner so tests can
// observe that declared workers actually execute.
type recorderModule struct {
	name string
	rec  *testutil.RunnerRecorder
}

func (m *recorderModule) Register(c *catalog.Catalog) {
	c.RegisterRunner(m.name, func(args runnerspec.Args) (runnerspec.Runner, error) {
		return m.rec.Runner(), nil
	})
}

// startApp boots a full application from the given HCL files and blocks
// until its manager is ready.
func startApp(t *testing.T, files map[string]string, modules ...catalog.Module) *app.App {
	t.Helper()

	dir := testutil.WriteFlockFiles(t, files)
	cfg, err := app.NewConfig(app.Config{
		FlockPath: dir,
		LogFormat: "text",
		LogLevel:  "error",
	})
	require.NoError(t, err)

	var out testutil.SafeBuffer
	a := app.NewApp(&out, cfg, hcladapter.NewLoader(), modules...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, cfg) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("app did not stop within 10s")
		}
	})

	select {
	case <-a.Manager().Ready():
	case <-time.After(10 * time.Second):
		t.Fatal("app did not become ready within 10s")
	}
	return a
}

func TestAppBootsDeclaredFlock(t *testing.T) {
	rec := testutil.NewRunnerRecorder()
	a := startApp(t, map[string]string{
		"flock.hcl": `
worker "first" {
  runner = "recorder"
}

worker "second" {
  runner = "recorder"
}
`,
	}, &recorderModule{name: "recorder", rec: rec})

	mgr := a.Manager()
	assert.Equal(t, roster.PhaseUp, mgr.Phase())
	assert.Len(t, mgr.Snapshot(), 2)
	assert.Empty(t, mgr.ReplayReport())

	require.Eventually(t, func() bool {
		return rec.Count("first") == 1 && rec.Count("second") == 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestAppRuntimeMutationsOnLiveFlock(t *testing.T) {
	rec := testutil.NewRunnerRecorder()
	a := startApp(t, map[string]string{
		"flock.hcl": `worker "boot" { runner = "recorder" }`,
	}, &recorderModule{name: "recorder", rec: rec})
	mgr := a.Manager()

	h, err := mgr.Put("late", runnerspec.Func{Fn: rec.Runner()})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.Count("late") == 1 }, 2*time.Second, 5*time.Millisecond)

	gone, err := mgr.Delete("late")
	require.NoError(t, err)
	assert.Equal(t, h, gone.Handle)

	_, ok := mgr.Get("late")
	assert.False(t, ok)

	// The boot-declared worker is untouched by the runtime churn.
	_, ok = mgr.Get("boot")
	assert.True(t, ok)
}

func TestAppRegistersCoreModulesByDefault(t *testing.T) {
	a := startApp(t, map[string]string{
		"flock.hcl": `worker "t" {
  runner = "tick"
  args = {
    interval = "1h"
  }
}`,
	})

	assert.Equal(t, []string{"httpprobe", "socketio", "tick"}, a.Catalog().Names())
	_, ok := a.Manager().Get("t")
	assert.True(t, ok)
}

func TestAppPanicsOnUnregisteredRunner(t *testing.T) {
	dir := testutil.WriteFlockFiles(t, map[string]string{
		"flock.hcl": `worker "a" { runner = "no_such_runner" }`,
	})
	cfg, err := app.NewConfig(app.Config{FlockPath: dir, LogFormat: "text", LogLevel: "error"})
	require.NoError(t, err)

	var out testutil.SafeBuffer
	assert.Panics(t, func() {
		app.NewApp(&out, cfg, hcladapter.NewLoader())
	})
}

func TestAppPanicsOnMalformedDeclaration(t *testing.T) {
	dir := testutil.WriteFlockFiles(t, map[string]string{
		"flock.hcl": `worker "a" {`,
	})
	cfg, err := app.NewConfig(app.Config{FlockPath: dir, LogFormat: "text", LogLevel: "error"})
	require.NoError(t, err)

	var out testutil.SafeBuffer
	assert.Panics(t, func() {
		app.NewApp(&out, cfg, hcladapter.NewLoader())
	})
}

// TestLoaderModelRoundTrip pins the exact model the HCL adapter produces
// for a representative declaration.
func TestLoaderModelRoundTrip(t *testing.T) {
	dir := testutil.WriteFlockFiles(t, map[string]string{
		"flock.hcl": `
worker "probe" {
  runner = "httpprobe"
  args = {
    url      = "http://localhost:9999/health"
    interval = "5s"
  }
}

worker "default" {}
`,
	})

	model, err := hcladapter.NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)

	want := &config.Model{
		Flock: []*config.WorkerDef{
			{
				ID:     "probe",
				Runner: "httpprobe",
				Args: runnerspec.Args{
					"url":      "http://localhost:9999/health",
					"interval": "5s",
				},
			},
			{ID: "default"},
		},
	}
	if diff := cmp.Diff(want, model); diff != "" {
		t.Errorf("loaded model mismatch (-want +got):\n%s", diff)
	}
}
