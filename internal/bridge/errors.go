// ABOUTME: Error types returned by the bridge client
// ABOUTME: Distinguishes an absent host from failures reported by the host
package bridge

import (
	"errors"
	"fmt"

	"github.com/harper/zenoter/internal/db"
)

// ErrBridgeUnavailable matches every *BridgeUnavailableError via errors.Is.
var ErrBridgeUnavailable = errors.New("storage bridge unavailable")

// BridgeUnavailableError means the host process could not be reached. It is
// distinct from a RemoteError, which means the host ran the operation and the
// store rejected it.
type BridgeUnavailableError struct {
	SocketPath string
	Err        error
}

func (e *BridgeUnavailableError) Error() string {
	msg := fmt.Sprintf("storage bridge is not available at %s", e.SocketPath)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg + `. Notes are only reachable through the zenoter host: start it with "zenoter serve" and run this command again`
}

func (e *BridgeUnavailableError) Unwrap() error {
	return e.Err
}

func (e *BridgeUnavailableError) Is(target error) bool {
	return target == ErrBridgeUnavailable
}

// RemoteError is an operation failure reported by the host. Message is the
// host-side error text, unchanged.
type RemoteError struct {
	Op      string
	Code    string
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is lets callers test remote failures against the store's sentinels.
func (e *RemoteError) Is(target error) bool {
	return e.Code == CodeNotInitialized && target == db.ErrNotInitialized
}

// argError marks malformed request arguments.
type argError struct {
	op  string
	msg string
}

func (e *argError) Error() string {
	return fmt.Sprintf("%s: %s", e.op, e.msg)
}
