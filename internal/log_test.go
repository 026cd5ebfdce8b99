package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoggerLevelsAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LogLevelWarn).With("Merger")

	l.Info("hidden %d", 1)
	l.Warn("dropped %d rows", 3)

	assert.Equal(t, "[WARN] [Merger] dropped 3 rows\n", buf.String())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LogLevelError, ParseLogLevel("ERROR"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
}

func TestLoggerSetLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerTo(&buf, LogLevelError)
	assert.Equal(t, LogLevelError, l.GetLevel())

	l.Debug("hidden")
	l.SetLevel(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, l.GetLevel())
	l.Debug("shown %s", "now")

	assert.Equal(t, "[DEBUG] shown now\n", buf.String())
}
