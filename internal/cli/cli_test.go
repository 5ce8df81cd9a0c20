package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flockgo/internal/testutil"
)

func TestParsePositionalPath(t *testing.T) {
	var out testutil.SafeBuffer
	cfg, exit, err := Parse([]string{"flock.hcl"}, &out)
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "flock.hcl", cfg.FlockPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.HealthcheckPort)
}

func TestParseFlagForms(t *testing.T) {
	var out testutil.SafeBuffer

	cfg, _, err := Parse([]string{"--flock", "a.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "a.hcl", cfg.FlockPath)

	cfg, _, err = Parse([]string{"-f", "b.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "b.hcl", cfg.FlockPath)
}

func TestParseLongFlagWinsOverShorthand(t *testing.T) {
	var out testutil.SafeBuffer
	cfg, _, err := Parse([]string{"--flock", "long.hcl", "-f", "short.hcl"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "long.hcl", cfg.FlockPath)
}

func TestParseOptions(t *testing.T) {
	var out testutil.SafeBuffer
	cfg, _, err := Parse([]string{
		"--log-format", "text",
		"--log-level", "DEBUG",
		"--healthcheck-port", "8080",
		"flock.hcl",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel, "level is normalized to lower case")
	assert.Equal(t, 8080, cfg.HealthcheckPort)
}

func TestParseNoPathPrintsUsage(t *testing.T) {
	var out testutil.SafeBuffer
	cfg, exit, err := Parse([]string{}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.True(t, strings.Contains(out.String(), "Usage:"))
}

func TestParseHelpFlag(t *testing.T) {
	var out testutil.SafeBuffer
	cfg, exit, err := Parse([]string{"--help"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
}

func TestParseInvalidValues(t *testing.T) {
	var out testutil.SafeBuffer

	_, _, err := Parse([]string{"--log-format", "xml", "flock.hcl"}, &out)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, _, err = Parse([]string{"--log-level", "loud", "flock.hcl"}, &out)
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)

	_, _, err = Parse([]string{"--no-such-flag", "flock.hcl"}, &out)
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
