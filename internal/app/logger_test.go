package app

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/flockgo/internal/testutil"
)

func TestNewLoggerJSONFormat(t *testing.T) {
	var buf testutil.SafeBuffer
	logger := newLogger("info", "json", &buf)

	logger.Info("hello", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "value", record["key"])
	assert.Equal(t, "flockgo", record["app"], "every line carries the app attribute")
}

func TestNewLoggerTextFormat(t *testing.T) {
	var buf testutil.SafeBuffer
	logger := newLogger("info", "text", &buf)

	logger.Info("hello")

	assert.True(t, strings.Contains(buf.String(), "msg=hello"))
}

func TestNewLoggerRespectsLevel(t *testing.T) {
	var buf testutil.SafeBuffer
	logger := newLogger("warn", "text", &buf)

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	assert.False(t, strings.Contains(out, "quiet"))
	assert.True(t, strings.Contains(out, "loud"))
}

func TestNewLoggerDebugLevel(t *testing.T) {
	var buf testutil.SafeBuffer
	logger := newLogger("debug", "text", &buf)

	logger.Debug("verbose")

	assert.True(t, strings.Contains(buf.String(), "verbose"))
}

func TestNewLoggerUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf testutil.SafeBuffer
	logger := newLogger("shouting", "text", &buf)

	logger.Debug("hidden")
	logger.Info("shown")

	out := buf.String()
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown"))
}

func TestNewLoggerDefaultsToJSON(t *testing.T) {
	var buf testutil.SafeBuffer
	logger := newLogger("info", "", &buf)

	logger.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(buf.String()), &record))
	assert.Equal(t, "hello", record["msg"])
}
