// ABOUTME: MCP resource implementations for zenoter
// ABOUTME: Publishes the most recently updated notes as JSON context
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	recentNotesURI   = "zenoter://recent-notes"
	recentNotesLimit = 10
)

// registerResources adds all MCP resources to the server.
func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentNotesURI,
		Name:        "Recent Notes",
		Description: "The 10 most recently updated notes",
		MIMEType:    "application/json",
	}, s.handleRecentNotes)
}

func (s *Server) handleRecentNotes(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	notes, err := s.notes.GetAllNotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	if len(notes) > recentNotesLimit {
		notes = notes[:recentNotesLimit]
	}

	data, err := json.MarshalIndent(toNoteList(notes), "", "  ")
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      recentNotesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		},
	}, nil
}
