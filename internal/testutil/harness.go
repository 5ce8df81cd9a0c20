package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vk/flockgo/internal/manager"
)

// StartManager runs a manager for the duration of the test. It blocks
// until the boot replay has finished and registers a cleanup that tears
// the whole tree down and verifies it stops within a bound.
func StartManager(t *testing.T, opts manager.Options) *manager.Manager {
	t.Helper()

	m, err := manager.New(opts)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(10 * time.Second):
			t.Error("manager did not stop within 10s")
		}
	})

	select {
	case <-m.Ready():
	case <-time.After(10 * time.Second):
		t.Fatal("manager did not become ready within 10s")
	}
	return m
}

// WriteFlockFiles materializes a map of relative paths to HCL contents
// under a temp directory and returns its root.
func WriteFlockFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return tmpDir
}
