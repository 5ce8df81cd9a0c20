package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flockgo/internal/runnerspec"
)

func nopFactory(args runnerspec.Args) (runnerspec.Runner, error) {
	return func(ctx context.Context, id string) (bool, error) { return true, nil }, nil
}

func TestRegisterAndLookup(t *testing.T) {
	c := New()
	c.RegisterRunner("tick", nopFactory)

	f, ok := c.Runner("tick")
	require.True(t, ok)
	require.NotNil(t, f)

	_, ok = c.Runner("missing")
	assert.False(t, ok)
}

func TestRegisterDuplicatePanics(t *testing.T) {
	c := New()
	c.RegisterRunner("tick", nopFactory)

	assert.Panics(t, func() {
		c.RegisterRunner("tick", nopFactory)
	})
}

func TestRegisterNilFactoryPanics(t *testing.T) {
	c := New()
	assert.Panics(t, func() {
		c.RegisterRunner("tick", nil)
	})
}

func TestNamesAreSorted(t *testing.T) {
	c := New()
	c.RegisterRunner("zeta", nopFactory)
	c.RegisterRunner("alpha", nopFactory)
	c.RegisterRunner("mid", nopFactory)

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, c.Names())
}
