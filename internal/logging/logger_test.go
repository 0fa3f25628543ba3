// ABOUTME: Tests for logger construction
// ABOUTME: Validates file output, console output, and level parsing
package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWritesJSONFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "zenoter.log")

	logger, err := New(Options{File: logFile, Level: "info"})
	require.NoError(t, err)

	logger.Info("database initialized", zap.String("path", "/tmp/x.db"))
	logger.Debug("hidden at info level")
	_ = logger.Sync()

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)

	out := string(content)
	assert.Contains(t, out, `"message":"database initialized"`)
	assert.Contains(t, out, `"level":"INFO"`)
	assert.Contains(t, out, `"path":"/tmp/x.db"`)
	assert.NotContains(t, out, "hidden at info level")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Options{Console: true, Level: "debug", Stderr: &buf})
	require.NoError(t, err)

	logger.Warn("bridge not available")
	_ = logger.Sync()

	assert.True(t, strings.Contains(buf.String(), "bridge not available"), "got %q", buf.String())
}

func TestNewWithoutOutputsIsNop(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	logger.Info("dropped")
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"debug", "info", "warn", "error"} {
		_, err := ParseLevel(name)
		assert.NoError(t, err, name)
	}

	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}
