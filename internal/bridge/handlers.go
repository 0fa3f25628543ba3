// ABOUTME: Whitelisted routing of bridge requests to the note store
// ABOUTME: Decodes arguments, checks initialization, and reports errors verbatim
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/harper/zenoter/internal/db"
)

// Engine is the store surface the host exposes. *db.Store implements it.
type Engine interface {
	Initialized() bool
	CreateNote(ctx context.Context, in db.CreateNoteInput) (*db.Note, error)
	GetNoteByID(ctx context.Context, id int64) (*db.Note, error)
	GetAllNotes(ctx context.Context) ([]db.Note, error)
	UpdateNote(ctx context.Context, id int64, patch db.NotePatch) (*db.Note, error)
	DeleteNote(ctx context.Context, id int64) (bool, error)
	SearchNotes(ctx context.Context, query string) ([]db.Note, error)
}

type handlerFunc func(ctx context.Context, args []json.RawMessage) (any, error)

// Handlers routes requests to the engine. The route table is fixed at
// construction and holds one entry per operation.
type Handlers struct {
	engine Engine
	logger *zap.Logger
	routes map[string]handlerFunc
}

// NewHandlers registers the six note operations against engine.
func NewHandlers(engine Engine, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handlers{engine: engine, logger: logger}
	h.routes = map[string]handlerFunc{
		OpCreateNote:  h.createNote,
		OpGetNoteByID: h.getNoteByID,
		OpGetAllNotes: h.getAllNotes,
		OpUpdateNote:  h.updateNote,
		OpDeleteNote:  h.deleteNote,
		OpSearchNotes: h.searchNotes,
	}
	return h
}

// Ops lists the registered operation names.
func (h *Handlers) Ops() []string {
	ops := make([]string, 0, len(h.routes))
	for op := range h.routes {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// Dispatch runs req and always returns a Response; handler failures become
// error responses instead of propagating.
func (h *Handlers) Dispatch(ctx context.Context, req Request) Response {
	resp := Response{ID: req.ID}

	handler, ok := h.routes[req.Op]
	if !ok {
		resp.Code = CodeUnknownOp
		resp.Error = fmt.Sprintf("unknown operation %q", req.Op)
		h.logger.Warn("rejected unknown operation", zap.String("op", req.Op))
		return resp
	}

	if !h.engine.Initialized() {
		resp.Code = CodeNotInitialized
		resp.Error = fmt.Sprintf("%s: storage engine is not initialized: %v", req.Op, db.ErrNotInitialized)
		return resp
	}

	result, err := handler(ctx, req.Args)
	if err != nil {
		var ae *argError
		switch {
		case errors.As(err, &ae):
			resp.Code = CodeBadRequest
		case errors.Is(err, db.ErrNotInitialized):
			resp.Code = CodeNotInitialized
		default:
			resp.Code = CodeOperationFailed
			h.logger.Error("operation failed", zap.String("op", req.Op), zap.Error(err))
		}
		resp.Error = err.Error()
		return resp
	}

	data, err := json.Marshal(result)
	if err != nil {
		resp.Code = CodeOperationFailed
		resp.Error = fmt.Sprintf("%s: encode result: %v", req.Op, err)
		return resp
	}

	resp.OK = true
	resp.Result = data
	return resp
}

func decodeArgs(op string, args []json.RawMessage, dst ...any) error {
	if len(args) != len(dst) {
		return &argError{op: op, msg: fmt.Sprintf("expected %d arguments, got %d", len(dst), len(args))}
	}
	for i, raw := range args {
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return &argError{op: op, msg: fmt.Sprintf("argument %d: null is not allowed", i)}
		}
		if err := json.Unmarshal(raw, dst[i]); err != nil {
			return &argError{op: op, msg: fmt.Sprintf("argument %d: %v", i, err)}
		}
	}
	return nil
}

// createNoteArgs distinguishes a missing content field from an empty one.
type createNoteArgs struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (h *Handlers) createNote(ctx context.Context, args []json.RawMessage) (any, error) {
	var in createNoteArgs
	if err := decodeArgs(OpCreateNote, args, &in); err != nil {
		return nil, err
	}
	if in.Content == nil {
		return nil, &argError{op: OpCreateNote, msg: "content is required"}
	}

	input := db.CreateNoteInput{Content: *in.Content}
	if in.Title != nil {
		input.Title = *in.Title
	}
	return h.engine.CreateNote(ctx, input)
}

func (h *Handlers) getNoteByID(ctx context.Context, args []json.RawMessage) (any, error) {
	var id int64
	if err := decodeArgs(OpGetNoteByID, args, &id); err != nil {
		return nil, err
	}
	return h.engine.GetNoteByID(ctx, id)
}

func (h *Handlers) getAllNotes(ctx context.Context, args []json.RawMessage) (any, error) {
	if err := decodeArgs(OpGetAllNotes, args); err != nil {
		return nil, err
	}
	return h.engine.GetAllNotes(ctx)
}

func (h *Handlers) updateNote(ctx context.Context, args []json.RawMessage) (any, error) {
	var id int64
	// Keys other than title and content are dropped by the decoder.
	var patch db.NotePatch
	if err := decodeArgs(OpUpdateNote, args, &id, &patch); err != nil {
		return nil, err
	}
	return h.engine.UpdateNote(ctx, id, patch)
}

func (h *Handlers) deleteNote(ctx context.Context, args []json.RawMessage) (any, error) {
	var id int64
	if err := decodeArgs(OpDeleteNote, args, &id); err != nil {
		return nil, err
	}
	return h.engine.DeleteNote(ctx, id)
}

func (h *Handlers) searchNotes(ctx context.Context, args []json.RawMessage) (any, error) {
	var query string
	if err := decodeArgs(OpSearchNotes, args, &query); err != nil {
		return nil, err
	}
	return h.engine.SearchNotes(ctx, query)
}
