// ABOUTME: MCP prompt definitions for zenoter
// ABOUTME: Provides static context to AI assistants about the notes tools
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const gettingStarted = `Zenoter is a local markdown note store.

Tools:
- create_note: save a new note (content required, title optional)
- get_note / list_notes: read notes; list is most recently updated first
- update_note: change title and/or content; omitted fields stay as they are
- delete_note: permanent, there is no trash
- search_notes: substring match on title or content; an empty query returns everything

Tips:
- Search before creating to avoid duplicates
- Prefer update_note over delete + create so the note keeps its ID
- Notes are markdown; keep headings and lists intact when editing`

// registerPrompts adds static prompts to the MCP server.
func (s *Server) registerPrompts() {
	prompt := &mcp.Prompt{
		Name:        "zenoter-getting-started",
		Description: "Introduction to zenoter and how AI assistants should use it",
	}

	handler := func(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		return &mcp.GetPromptResult{
			Description: "Getting started with zenoter",
			Messages: []*mcp.PromptMessage{
				{
					Role:    "user",
					Content: &mcp.TextContent{Text: gettingStarted},
				},
			},
		}, nil
	}

	s.mcpServer.AddPrompt(prompt, handler)
}
