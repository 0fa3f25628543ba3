// ABOUTME: Wire format for the process boundary between UI processes and the host
// ABOUTME: NDJSON requests and responses over a Unix socket, six operations only
package bridge

import "encoding/json"

// Operation names. This list is the whole remote surface.
const (
	OpCreateNote  = "db:createNote"
	OpGetNoteByID = "db:getNoteById"
	OpGetAllNotes = "db:getAllNotes"
	OpUpdateNote  = "db:updateNote"
	OpDeleteNote  = "db:deleteNote"
	OpSearchNotes = "db:searchNotes"
)

// Error codes carried in Response.Code.
const (
	CodeNotInitialized  = "not_initialized"
	CodeOperationFailed = "operation_failed"
	CodeBadRequest      = "bad_request"
	CodeUnknownOp       = "unknown_op"
)

// Request is sent from a client to the host. Args are positional, in the
// same order as the store method parameters.
type Request struct {
	ID   string            `json:"id"`
	Op   string            `json:"op"`
	Args []json.RawMessage `json:"args,omitempty"`
}

// Response answers exactly one Request with the same ID.
type Response struct {
	ID     string          `json:"id"`
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
	Code   string          `json:"code,omitempty"`
}

// maxLineSize bounds a single request or response line.
const maxLineSize = 16 * 1024 * 1024
