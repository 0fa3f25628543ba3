// ABOUTME: UI-side proxy that calls the host over the bridge socket
// ABOUTME: Fails fast when the host is absent and matches responses by request ID
package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harper/zenoter/internal/db"
)

// dialTimeout bounds how long a call waits to reach the host before failing.
const dialTimeout = 2 * time.Second

type callResult struct {
	resp Response
	err  error
}

// Client is the UI-side proxy for the six note operations. It connects
// lazily and re-checks the bridge before every call so an absent host fails
// fast with a *BridgeUnavailableError.
type Client struct {
	socketPath string
	logger     *zap.Logger

	mu      sync.Mutex
	conn    net.Conn
	pending map[string]chan callResult

	writeMu sync.Mutex
}

// NewClient returns a proxy for the host listening on socketPath. It logs a
// warning if no host appears to be running; calls will fail until one is.
func NewClient(socketPath string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		socketPath: socketPath,
		logger:     logger,
		pending:    make(map[string]chan callResult),
	}
	if !c.Available() {
		logger.Warn("storage bridge not available; note operations will fail until the host is running",
			zap.String("socket", socketPath),
			zap.String("hint", "start the host with: zenoter serve"),
		)
	}
	return c
}

// Available reports whether the host socket is present.
func (c *Client) Available() bool {
	info, err := os.Stat(c.socketPath)
	return err == nil && info.Mode()&os.ModeSocket != 0
}

// Close drops the connection to the host.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) unavailable(err error) error {
	return &BridgeUnavailableError{SocketPath: c.socketPath, Err: err}
}

// ensureConn verifies the bridge and returns a live connection.
func (c *Client) ensureConn() (net.Conn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return c.conn, nil
	}
	if !c.Available() {
		return nil, c.unavailable(nil)
	}

	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return nil, c.unavailable(err)
	}
	c.conn = conn
	go c.readLoop(conn)
	return conn, nil
}

// readLoop delivers responses to waiting calls until the connection ends,
// then fails every call still waiting on it.
func (c *Client) readLoop(conn net.Conn) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			c.logger.Warn("discarding malformed response", zap.Error(err))
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()

		if ok {
			ch <- callResult{resp: resp}
		}
	}

	cause := scanner.Err()
	if cause == nil {
		cause = errors.New("connection closed by host")
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	waiting := c.pending
	c.pending = make(map[string]chan callResult)
	c.mu.Unlock()

	_ = conn.Close()
	for _, ch := range waiting {
		ch <- callResult{err: c.unavailable(cause)}
	}
}

// call sends op with args and decodes the result into out (if non-nil).
func (c *Client) call(ctx context.Context, op string, out any, args ...any) error {
	req := Request{ID: uuid.NewString(), Op: op}
	for _, a := range args {
		raw, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("%s: encode argument: %w", op, err)
		}
		req.Args = append(req.Args, raw)
	}

	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}
	// The host drops connections whose request line exceeds its limit.
	if len(data) >= maxLineSize {
		return fmt.Errorf("%s: request exceeds %d bytes", op, maxLineSize)
	}
	data = append(data, '\n')

	conn, err := c.ensureConn()
	if err != nil {
		return err
	}

	ch := make(chan callResult, 1)
	c.mu.Lock()
	if c.conn != conn {
		// readLoop already gave up on this connection.
		c.mu.Unlock()
		return c.unavailable(errors.New("connection closed by host"))
	}
	c.pending[req.ID] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	_, err = conn.Write(data)
	c.writeMu.Unlock()
	if err != nil {
		c.mu.Lock()
		delete(c.pending, req.ID)
		if c.conn == conn {
			c.conn = nil
		}
		c.mu.Unlock()
		_ = conn.Close()
		return c.unavailable(err)
	}

	var res callResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
		return ctx.Err()
	}

	if res.err != nil {
		return res.err
	}
	if !res.resp.OK {
		return &RemoteError{Op: op, Code: res.resp.Code, Message: res.resp.Error}
	}
	if out != nil {
		if err := json.Unmarshal(res.resp.Result, out); err != nil {
			return fmt.Errorf("%s: decode result: %w", op, err)
		}
	}
	return nil
}

// CreateNote creates a note. Title may be empty.
func (c *Client) CreateNote(ctx context.Context, in db.CreateNoteInput) (*db.Note, error) {
	var n *db.Note
	if err := c.call(ctx, OpCreateNote, &n, in); err != nil {
		return nil, err
	}
	return n, nil
}

// GetNoteByID returns the note or nil when it does not exist.
func (c *Client) GetNoteByID(ctx context.Context, id int64) (*db.Note, error) {
	var n *db.Note
	if err := c.call(ctx, OpGetNoteByID, &n, id); err != nil {
		return nil, err
	}
	return n, nil
}

// GetAllNotes returns every note, most recently updated first.
func (c *Client) GetAllNotes(ctx context.Context) ([]db.Note, error) {
	notes := []db.Note{}
	if err := c.call(ctx, OpGetAllNotes, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// UpdateNote applies patch and returns the updated note, or nil when missing.
func (c *Client) UpdateNote(ctx context.Context, id int64, patch db.NotePatch) (*db.Note, error) {
	var n *db.Note
	if err := c.call(ctx, OpUpdateNote, &n, id, patch); err != nil {
		return nil, err
	}
	return n, nil
}

// DeleteNote reports whether a note was removed.
func (c *Client) DeleteNote(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	if err := c.call(ctx, OpDeleteNote, &deleted, id); err != nil {
		return false, err
	}
	return deleted, nil
}

// SearchNotes returns notes whose title or content contains query.
func (c *Client) SearchNotes(ctx context.Context, query string) ([]db.Note, error) {
	notes := []db.Note{}
	if err := c.call(ctx, OpSearchNotes, &notes, query); err != nil {
		return nil, err
	}
	return notes, nil
}
