package app

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flockgo/internal/coordinator"
	"github.com/vk/flockgo/internal/manager"
	"github.com/vk/flockgo/internal/roster"
	"github.com/vk/flockgo/internal/testutil"
)

func TestHealthHandlerReportsPhase(t *testing.T) {
	m := testutil.StartManager(t, manager.Options{
		ChildrenSpecs: func(ctx context.Context) []coordinator.InitialSpec { return nil },
	})
	a := &App{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		manager: m,
	}

	rec := httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest("GET", "/health", nil))

	require.Equal(t, 200, rec.Code)
	assert.Equal(t, "OK phase=up\n", rec.Body.String())

	// A forced phase shows up on the next probe.
	m.SetPhase(roster.PhaseUnknown)
	rec = httptest.NewRecorder()
	a.healthHandler(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, "OK phase=unknown\n", rec.Body.String())
}
