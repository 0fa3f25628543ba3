// ABOUTME: MCP tool implementations for zenoter
// ABOUTME: One tool per note operation, passing arguments through unchanged
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/zenoter/internal/db"
)

// NoteData is the JSON form of a note returned by tools.
type NoteData struct {
	ID        int64  `json:"id" jsonschema:"Note ID"`
	Title     string `json:"title" jsonschema:"Note title, may be empty"`
	Content   string `json:"content" jsonschema:"Markdown content"`
	CreatedAt string `json:"created_at" jsonschema:"Creation time (RFC3339)"`
	UpdatedAt string `json:"updated_at" jsonschema:"Last modification time (RFC3339)"`
}

func toNoteData(n db.Note) NoteData {
	return NoteData{
		ID:        n.ID,
		Title:     n.Title,
		Content:   n.Content,
		CreatedAt: n.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: n.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func toNoteList(notes []db.Note) []NoteData {
	out := make([]NoteData, 0, len(notes))
	for _, n := range notes {
		out = append(out, toNoteData(n))
	}
	return out
}

// CreateNoteInput defines the input for create_note tool.
type CreateNoteInput struct {
	Title   string `json:"title,omitempty" jsonschema:"Optional note title"`
	Content string `json:"content" jsonschema:"Markdown content of the note"`
}

// NoteOutput is returned by tools that yield a single note.
type NoteOutput struct {
	Found bool      `json:"found" jsonschema:"Whether the note exists"`
	Note  *NoteData `json:"note,omitempty" jsonschema:"The note, when found"`
}

// NoteIDInput selects a note by ID.
type NoteIDInput struct {
	ID int64 `json:"id" jsonschema:"Note ID"`
}

// ListNotesInput defines the input for list_notes tool.
type ListNotesInput struct{}

// NotesOutput is returned by tools that yield many notes.
type NotesOutput struct {
	Notes []NoteData `json:"notes" jsonschema:"Notes, most recently updated first"`
	Count int        `json:"count" jsonschema:"Number of notes returned"`
}

// UpdateNoteInput defines the input for update_note tool.
type UpdateNoteInput struct {
	ID      int64   `json:"id" jsonschema:"Note ID"`
	Title   *string `json:"title,omitempty" jsonschema:"New title; omit to keep"`
	Content *string `json:"content,omitempty" jsonschema:"New content; omit to keep"`
}

// DeleteNoteOutput defines the output for delete_note tool.
type DeleteNoteOutput struct {
	Deleted bool `json:"deleted" jsonschema:"Whether a note was removed"`
}

// SearchNotesInput defines the input for search_notes tool.
type SearchNotesInput struct {
	Query string `json:"query" jsonschema:"Substring to find in titles or content; empty matches all"`
}

func textResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
	}
}

// registerTools adds all MCP tools to the server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_note",
		Description: "Create a markdown note. Content is required; title is optional.",
	}, s.handleCreateNote)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_note",
		Description: "Fetch one note by ID.",
	}, s.handleGetNote)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_notes",
		Description: "List every note, most recently updated first.",
	}, s.handleListNotes)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_note",
		Description: "Change a note's title and/or content. Fields left out are not modified.",
	}, s.handleUpdateNote)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_note",
		Description: "Permanently delete a note by ID.",
	}, s.handleDeleteNote)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "search_notes",
		Description: "Find notes whose title or content contains the query text.",
	}, s.handleSearchNotes)
}

func (s *Server) handleCreateNote(ctx context.Context, req *mcp.CallToolRequest, input CreateNoteInput) (*mcp.CallToolResult, NoteOutput, error) {
	n, err := s.notes.CreateNote(ctx, db.CreateNoteInput{Title: input.Title, Content: input.Content})
	if err != nil {
		return nil, NoteOutput{}, err
	}
	data := toNoteData(*n)
	return textResult("Note created (ID: %d)", n.ID), NoteOutput{Found: true, Note: &data}, nil
}

func (s *Server) handleGetNote(ctx context.Context, req *mcp.CallToolRequest, input NoteIDInput) (*mcp.CallToolResult, NoteOutput, error) {
	n, err := s.notes.GetNoteByID(ctx, input.ID)
	if err != nil {
		return nil, NoteOutput{}, err
	}
	if n == nil {
		return textResult("Note %d not found", input.ID), NoteOutput{}, nil
	}
	data := toNoteData(*n)
	return textResult("Note %d: %s", n.ID, n.Title), NoteOutput{Found: true, Note: &data}, nil
}

func (s *Server) handleListNotes(ctx context.Context, req *mcp.CallToolRequest, input ListNotesInput) (*mcp.CallToolResult, NotesOutput, error) {
	notes, err := s.notes.GetAllNotes(ctx)
	if err != nil {
		return nil, NotesOutput{}, err
	}
	out := NotesOutput{Notes: toNoteList(notes), Count: len(notes)}
	return textResult("Found %d notes", out.Count), out, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, req *mcp.CallToolRequest, input UpdateNoteInput) (*mcp.CallToolResult, NoteOutput, error) {
	n, err := s.notes.UpdateNote(ctx, input.ID, db.NotePatch{Title: input.Title, Content: input.Content})
	if err != nil {
		return nil, NoteOutput{}, err
	}
	if n == nil {
		return textResult("Note %d not found", input.ID), NoteOutput{}, nil
	}
	data := toNoteData(*n)
	return textResult("Note %d updated", n.ID), NoteOutput{Found: true, Note: &data}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, req *mcp.CallToolRequest, input NoteIDInput) (*mcp.CallToolResult, DeleteNoteOutput, error) {
	deleted, err := s.notes.DeleteNote(ctx, input.ID)
	if err != nil {
		return nil, DeleteNoteOutput{}, err
	}
	if !deleted {
		return textResult("Note %d not found", input.ID), DeleteNoteOutput{}, nil
	}
	return textResult("Note %d deleted", input.ID), DeleteNoteOutput{Deleted: true}, nil
}

func (s *Server) handleSearchNotes(ctx context.Context, req *mcp.CallToolRequest, input SearchNotesInput) (*mcp.CallToolResult, NotesOutput, error) {
	notes, err := s.notes.SearchNotes(ctx, input.Query)
	if err != nil {
		return nil, NotesOutput{}, err
	}
	out := NotesOutput{Notes: toNoteList(notes), Count: len(notes)}
	return textResult("Found %d notes matching %q", out.Count, input.Query), out, nil
}
