package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/flomo-mcp/internal/logging"
	"github.com/roivaz/flomo-mcp/internal/mcp/tools"
)

const (
	ServerName    = "flomo-mcp"
	ServerVersion = "0.0.1"
)

var ErrUnknownTool = errors.New("unknown tool")

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP     *server.MCPServer
	HTTP    *server.StreamableHTTPServer
	Handler http.Handler

	tools    []mcp.Tool
	adapters map[string]ToolAdapter
	log      logging.Logger
}

func toolDefinitions() map[string]mcp.Tool {
	return map[string]mcp.Tool{
		tools.WriteNoteName: tools.WriteNoteTool(),
	}
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s := &Server{
		MCP:      mcpServer,
		adapters: make(map[string]ToolAdapter, len(cfg.ToolAdapters)),
		log:      cfg.Logger,
	}

	definitions := toolDefinitions()
	for name, adapter := range cfg.ToolAdapters {
		tool, ok := definitions[name]
		if !ok {
			s.log.Info("skipping adapter without tool definition", "tool", name)
			continue
		}
		s.adapters[name] = adapter
		s.tools = append(s.tools, tool)
		mcpServer.AddTool(tool, s.instrument(name, adapter))
	}
	sort.Slice(s.tools, func(i, j int) bool { return s.tools[i].Name < s.tools[j].Name })

	s.HTTP = server.NewStreamableHTTPServer(mcpServer, cfg.Options...)
	s.Handler = s.HTTP
	return s
}

func (s *Server) instrument(name string, adapter ToolAdapter) server.ToolHandlerFunc {
	toolLog := s.log.WithValues("tool", name)
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := adapter.ToolAdapter(ctx, req)
		if err != nil {
			toolLog.Error(err, "tool call failed")
			return nil, err
		}
		toolLog.Debug("tool call succeeded")
		return res, nil
	}
}

// ListTools returns the registered tool descriptors ordered by name.
func (s *Server) ListTools() []mcp.Tool {
	return append([]mcp.Tool(nil), s.tools...)
}

// CallTool dispatches a call the same way the MCP tools/call method does.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	adapter, ok := s.adapters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return s.instrument(name, adapter)(ctx, req)
}

// ResultTexts collects the text blocks of a tool result.
func ResultTexts(res *mcp.CallToolResult) []string {
	if res == nil {
		return nil
	}
	var texts []string
	for _, c := range res.Content {
		if text, ok := c.(mcp.TextContent); ok {
			texts = append(texts, text.Text)
		}
	}
	return texts
}

// ServeStdio serves MCP over the given streams until in is exhausted or ctx
// is cancelled.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.MCP)
	stdio.SetErrorLogger(log.New(s.log.WithName("stdio").Writer(), "", 0))
	s.log.Info("serving MCP over stdio", "server", ServerName, "version", ServerVersion)
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
