package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelWarn, &buf)

	Debug("Dispatcher", "should not appear")
	Info("Dispatcher", "should not appear either")
	require.Empty(t, buf.String())

	Warn("Dispatcher", "provider %s re-bound", "kbus-provider")
	out := buf.String()
	assert.Contains(t, out, "provider kbus-provider re-bound")
	assert.Contains(t, out, "subsystem=Dispatcher")
}

func TestErrorIncludesErrAttribute(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelError, &buf)

	Error("Registry", errors.New("boom"), "call failed")
	out := buf.String()
	assert.True(t, strings.Contains(out, "error=boom"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "INFO", LevelInfo.String())
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}
