package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigRequiresFlockPath(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	cfg, err := NewConfig(Config{FlockPath: "flock.hcl"})
	require.NoError(t, err)
	assert.Equal(t, "flock.hcl", cfg.FlockPath)
}
