// ABOUTME: MCP server implementation for zenoter
// ABOUTME: Exposes the six note operations to AI assistants over stdio
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harper/zenoter/internal/db"
)

// Notes is the note surface the MCP server forwards to. In the CLI it is a
// bridge client, so this process never opens the database itself.
type Notes interface {
	CreateNote(ctx context.Context, in db.CreateNoteInput) (*db.Note, error)
	GetNoteByID(ctx context.Context, id int64) (*db.Note, error)
	GetAllNotes(ctx context.Context) ([]db.Note, error)
	UpdateNote(ctx context.Context, id int64, patch db.NotePatch) (*db.Note, error)
	DeleteNote(ctx context.Context, id int64) (bool, error)
	SearchNotes(ctx context.Context, query string) ([]db.Note, error)
}

// Server wraps the MCP server with zenoter-specific functionality.
type Server struct {
	mcpServer *mcp.Server
	notes     Notes
}

// NewServer creates a new zenoter MCP server.
func NewServer(notes Notes, version string) *Server {
	impl := &mcp.Implementation{
		Name:    "zenoter",
		Version: version,
	}

	server := &Server{
		mcpServer: mcp.NewServer(impl, nil),
		notes:     notes,
	}

	server.registerPrompts()
	server.registerTools()
	server.registerResources()

	return server
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context) error {
	transport := &mcp.StdioTransport{}
	return s.mcpServer.Run(ctx, transport)
}
