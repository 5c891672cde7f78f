package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/flomo-mcp/internal/flomo"
	"github.com/roivaz/flomo-mcp/internal/logging"
	"github.com/roivaz/flomo-mcp/internal/mcp/tools"
)

const EndpointPath = "/mcp"

type Config struct {
	ToolAdapters map[string]ToolAdapter
	Options      []server.StreamableHTTPOption
	Logger       logging.Logger
}

// DefaultConfig wires the flomo webhook client from the process configuration.
// A missing URL is not an error here: write_note reports it per call.
func DefaultConfig(logger logging.Logger) (Config, error) {
	flomoCfg, err := flomo.LoadConfig()
	if err != nil {
		return Config{}, fmt.Errorf("load flomo config: %w", err)
	}
	if !flomoCfg.Configured() {
		logger.Info("flomo API URL not set; write_note will fail until it is configured")
	}

	client := flomo.NewClient(flomoCfg, flomo.WithLogger(logger.WithName("flomo")))

	return Config{
		ToolAdapters: NewToolAdapters(client),
		Options: []server.StreamableHTTPOption{
			server.WithEndpointPath(EndpointPath),
			server.WithStateLess(true),
		},
		Logger: logger,
	}, nil
}

func NewToolAdapters(notes tools.NoteWriter) map[string]ToolAdapter {
	return map[string]ToolAdapter{
		tools.WriteNoteName: &tools.WriteNoteHandler{Service: notes},
	}
}
