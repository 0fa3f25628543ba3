// ABOUTME: Tests for the host lifecycle
// ABOUTME: Covers start/serve/shutdown ordering, failed init, and idle quit
package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/zenoter/internal/bridge"
	"github.com/harper/zenoter/internal/config"
	"github.com/harper/zenoter/internal/db"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir, err := os.MkdirTemp("", "zh")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })

	return &config.Config{
		DBPath:     filepath.Join(dir, "data", "zenoter.db"),
		SocketPath: filepath.Join(dir, "h.sock"),
		LogLevel:   "info",
	}
}

func TestHostServesClients(t *testing.T) {
	ctx := context.Background()
	h := NewHost(testConfig(t), nil)
	require.NoError(t, h.Start(ctx))
	defer func() { _ = h.Shutdown() }()

	assert.True(t, h.Store().Initialized())

	c := bridge.NewClient(h.SocketPath(), nil)
	defer func() { _ = c.Close() }()

	n, err := c.CreateNote(ctx, db.CreateNoteInput{Title: "t", Content: "c"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ID)
}

func TestHostShutdownIsIdempotent(t *testing.T) {
	h := NewHost(testConfig(t), nil)
	require.NoError(t, h.Start(context.Background()))

	require.NoError(t, h.Shutdown())
	require.NoError(t, h.Shutdown())
	assert.False(t, h.Store().Initialized())

	_, err := os.Stat(h.SocketPath())
	assert.True(t, os.IsNotExist(err))
}

func TestHostShutdownWithoutStart(t *testing.T) {
	h := NewHost(testConfig(t), nil)
	assert.NoError(t, h.Shutdown())
}

func TestHostInitFailure(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(filepath.Dir(cfg.SocketPath), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))
	cfg.DBPath = filepath.Join(blocker, "zenoter.db")

	h := NewHost(cfg, nil)
	err := h.Start(context.Background())

	var initErr *db.InitializationError
	require.ErrorAs(t, err, &initErr)

	// The bridge is up but refuses note operations.
	c := bridge.NewClient(h.SocketPath(), nil)
	_, callErr := c.GetAllNotes(context.Background())
	assert.ErrorIs(t, callErr, db.ErrNotInitialized)
	_ = c.Close()

	assert.NoError(t, h.Shutdown())
}

func TestHostRunStopsOnCancel(t *testing.T) {
	h := NewHost(testConfig(t), nil)
	require.NoError(t, h.Start(context.Background()))
	defer func() { _ = h.Shutdown() }()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestHostQuitsWhenIdle(t *testing.T) {
	cfg := testConfig(t)
	cfg.QuitWhenIdle = true

	h := NewHost(cfg, nil)
	require.NoError(t, h.Start(context.Background()))
	defer func() { _ = h.Shutdown() }()

	done := make(chan error, 1)
	go func() { done <- h.Run(context.Background()) }()

	c := bridge.NewClient(h.SocketPath(), nil)
	_, err := c.GetAllNotes(context.Background())
	require.NoError(t, err)
	require.NoError(t, c.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after the last client left")
	}
}
