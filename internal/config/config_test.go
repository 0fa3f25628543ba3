// ABOUTME: Tests for config.toml loading and writing
// ABOUTME: Validates defaults, file overrides, env overrides, and round trips
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvSocket, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join("/data", "zenoter", "data", "zenoter.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/data", "zenoter", "zenoter.sock"), cfg.SocketPath)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvSocket, "")

	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
db_path = "/tmp/notes.db"
log_level = "debug"
quit_when_idle = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/notes.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.QuitWhenIdle)
	assert.NotEmpty(t, cfg.SocketPath, "unset keys keep defaults")
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvDBPath, "/env/notes.db")
	t.Setenv(EnvSocket, "/env/notes.sock")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/env/notes.db", cfg.DBPath)
	assert.Equal(t, "/env/notes.sock", cfg.SocketPath)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvSocket, "")

	t.Run("bad toml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("db_path = "), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("bad log level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte(`log_level = "loud"`), 0o600))
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestWriteRoundTrip(t *testing.T) {
	t.Setenv(EnvDBPath, "")
	t.Setenv(EnvSocket, "")

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := &Config{
		DBPath:       "/x/zenoter.db",
		SocketPath:   "/x/zenoter.sock",
		LogFile:      "/x/zenoter.log",
		LogLevel:     "warn",
		QuitWhenIdle: true,
	}
	require.NoError(t, Write(path, want))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
