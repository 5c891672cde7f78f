package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/flomo-mcp/internal/flomo"
)

const (
	WriteNoteName        = "write_note"
	writeNoteSuccessText = "Write note to flomo success: "
)

type NoteWriter interface {
	Configured() bool
	WriteNote(ctx context.Context, content string) (json.RawMessage, error)
}

type WriteNoteHandler struct {
	Service NoteWriter
}

// WriteNoteTool describes write_note to the agent host.
func WriteNoteTool() mcp.Tool {
	return mcp.NewTool(WriteNoteName,
		mcp.WithDescription("Write note to flomo"),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Text content of the note with Markdown format"),
		),
	)
}

func (h *WriteNoteHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.Service == nil || !h.Service.Configured() {
		return nil, flomo.ErrConfigurationMissing
	}

	content, err := stringArgument(req.GetArguments(), "content")
	if err != nil {
		return nil, err
	}

	result, err := h.Service.WriteNote(ctx, content)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(writeNoteSuccessText + string(result)), nil
}
