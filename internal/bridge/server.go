// ABOUTME: Unix socket server that answers bridge requests in the host
// ABOUTME: Tracks connected clients and signals when the last one leaves
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Server accepts bridge clients on a Unix socket and dispatches their
// requests through Handlers.
type Server struct {
	socketPath string
	handlers   *Handlers
	logger     *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool

	wg   sync.WaitGroup
	idle chan struct{}
}

// NewServer returns a server for socketPath. Call Listen, then Serve.
func NewServer(socketPath string, handlers *Handlers, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		socketPath: socketPath,
		handlers:   handlers,
		logger:     logger,
		conns:      make(map[net.Conn]struct{}),
		idle:       make(chan struct{}, 1),
	}
}

// SocketPath returns the path the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Listen binds the socket. A stale socket file is removed; a live one means
// another host already owns the store and Listen fails.
func (s *Server) Listen() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o700); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}

	if _, err := os.Stat(s.socketPath); err == nil {
		conn, dialErr := net.DialTimeout("unix", s.socketPath, time.Second)
		if dialErr == nil {
			_ = conn.Close()
			return fmt.Errorf("another zenoter host is already listening on %s", s.socketPath)
		}
		if err := os.Remove(s.socketPath); err != nil {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.socketPath, err)
	}
	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		_ = ln.Close()
		return fmt.Errorf("restrict socket permissions: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Serve accepts connections until Close is called or ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return errors.New("serve: Listen was not called")
	}

	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			_ = conn.Close()
			return nil
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		s.logger.Debug("client connected")
		go s.handleConn(ctx, conn)
	}
}

// Idle receives a value each time the last connected client disconnects.
func (s *Server) Idle() <-chan struct{} {
	return s.idle
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close stops accepting, disconnects clients, waits for their handlers, and
// removes the socket file. Safe to call more than once.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	ln := s.listener
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
		_ = os.Remove(s.socketPath)
	}
	s.wg.Wait()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("close listener: %w", err)
	}
	return nil
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer s.wg.Done()

	var writeMu sync.Mutex
	var inflight sync.WaitGroup

	write := func(resp Response) {
		data, err := json.Marshal(resp)
		if err != nil {
			s.logger.Error("marshal response", zap.Error(err))
			return
		}
		data = append(data, '\n')

		writeMu.Lock()
		defer writeMu.Unlock()
		if _, err := conn.Write(data); err != nil {
			s.logger.Debug("write response", zap.Error(err))
		}
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		var req Request
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			write(Response{Code: CodeBadRequest, Error: fmt.Sprintf("malformed request: %v", err)})
			continue
		}

		inflight.Add(1)
		go func(req Request) {
			defer inflight.Done()
			start := time.Now()
			resp := s.handlers.Dispatch(ctx, req)
			s.logger.Debug("request handled",
				zap.String("op", req.Op),
				zap.Bool("ok", resp.OK),
				zap.Duration("took", time.Since(start)),
			)
			write(resp)
		}(req)
	}
	if err := scanner.Err(); err != nil {
		s.logger.Debug("read request", zap.Error(err))
	}

	inflight.Wait()
	_ = conn.Close()

	s.mu.Lock()
	delete(s.conns, conn)
	remaining := len(s.conns)
	closed := s.closed
	s.mu.Unlock()

	s.logger.Debug("client disconnected", zap.Int("remaining", remaining))
	if remaining == 0 && !closed {
		select {
		case s.idle <- struct{}{}:
		default:
		}
	}
}
