// ABOUTME: Host process lifecycle wiring the note store to the bridge server
// ABOUTME: Starts listening, initializes storage, and closes both exactly once
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/harper/zenoter/internal/bridge"
	"github.com/harper/zenoter/internal/config"
	"github.com/harper/zenoter/internal/db"
)

// Host is the privileged process. It owns the only Store handle and serves
// it to UI clients through the bridge.
type Host struct {
	cfg    *config.Config
	logger *zap.Logger

	store  *db.Store
	server *bridge.Server

	serveErr chan error
	once     sync.Once
	closeErr error
}

// NewHost builds a host from cfg. Nothing is opened until Start.
func NewHost(cfg *config.Config, logger *zap.Logger) *Host {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := db.New(cfg.DBPath, db.WithLogger(logger.Named("db")))
	handlers := bridge.NewHandlers(store, logger.Named("bridge"))
	return &Host{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		server:   bridge.NewServer(cfg.SocketPath, handlers, logger.Named("bridge")),
		serveErr: make(chan error, 1),
	}
}

// Store returns the host's store.
func (h *Host) Store() *db.Store {
	return h.store
}

// SocketPath returns where UI clients connect.
func (h *Host) SocketPath() string {
	return h.server.SocketPath()
}

// Start begins accepting clients and then initializes storage. Clients that
// call in before initialization finishes get a not-initialized error. If
// initialization fails the error is returned and the caller should Shutdown.
func (h *Host) Start(ctx context.Context) error {
	if err := h.server.Listen(); err != nil {
		return fmt.Errorf("start bridge: %w", err)
	}
	go func() {
		h.serveErr <- h.server.Serve(ctx)
	}()
	h.logger.Info("bridge listening", zap.String("socket", h.server.SocketPath()))

	if err := h.store.Initialize(ctx); err != nil {
		h.logger.Error("storage initialization failed", zap.Error(err))
		return err
	}

	version, err := h.store.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	h.logger.Info("storage ready",
		zap.String("path", h.store.Path()),
		zap.Int("schema_version", version),
	)
	return nil
}

// Run blocks until ctx is cancelled, the bridge stops, or (with
// quit_when_idle) the last client disconnects. It does not call Shutdown.
func (h *Host) Run(ctx context.Context) error {
	var idle <-chan struct{}
	if h.cfg.QuitWhenIdle {
		idle = h.server.Idle()
	}

	select {
	case <-ctx.Done():
		h.logger.Info("shutdown requested")
		return nil
	case <-idle:
		h.logger.Info("last client disconnected; quitting")
		return nil
	case err := <-h.serveErr:
		if err != nil {
			return fmt.Errorf("bridge stopped: %w", err)
		}
		return nil
	}
}

// Shutdown stops the bridge and closes the store. Only the first call does
// any work; it is safe when Start failed or never ran.
func (h *Host) Shutdown() error {
	h.once.Do(func() {
		serverErr := h.server.Close()
		storeErr := h.store.Close()
		h.closeErr = errors.Join(serverErr, storeErr)
		h.logger.Info("host stopped")
		_ = h.logger.Sync()
	})
	return h.closeErr
}
