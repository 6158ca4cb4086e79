package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"sitebuilder/internal/canvas"
	"sitebuilder/internal/document"
	"sitebuilder/internal/export"
	"sitebuilder/internal/preview"
	"sitebuilder/internal/publish"
	"sitebuilder/internal/service"
)

// Server is the MCP server of the site builder. It exposes tools,
// resources and prompts so AI agents can build pages in the open document.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue
	layout   *LayoutEngine

	session   *document.Session
	projects  *service.ProjectService
	images    *service.ImageService
	publisher publish.Publisher

	canvas *canvas.Renderer
	flow   *preview.Renderer
	export *export.Renderer
}

// Deps holds the dependencies passed from the app layer. Images and
// Publisher are optional.
type Deps struct {
	Emitter     EventEmitter
	Session     *document.Session
	Projects    *service.ProjectService
	Images      *service.ImageService
	Publisher   publish.Publisher
	AutoApprove bool // standalone mode: no editor to ask
}

// New creates and configures a new MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	approval := NewApprovalQueue(ctx, deps.Emitter)
	approval.SetAutoApprove(deps.AutoApprove)

	reg := deps.Session.Registry()
	s := &Server{
		emitter:   deps.Emitter,
		approval:  approval,
		layout:    NewLayoutEngine(),
		session:   deps.Session,
		projects:  deps.Projects,
		images:    deps.Images,
		publisher: deps.Publisher,
		canvas:    canvas.NewRenderer(reg),
		flow:      preview.NewRenderer(reg),
		export:    export.NewRenderer(reg),
	}

	s.mcp = server.NewMCPServer(
		"sitebuilder-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerComponentTools()
	s.registerRenderTools()
	s.registerProjectTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// Handler serves the streamable HTTP transport. It is mounted next to the
// HTTP API so a running editor can be driven by agents.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// Approve forwards a user approval to the approval queue.
func (s *Server) Approve(actionID string) {
	s.approval.Approve(actionID)
}

// Reject forwards a user rejection to the approval queue.
func (s *Server) Reject(actionID string) {
	s.approval.Reject(actionID)
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }

func getString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func getFloat(args map[string]any, key string, fallback float64) float64 {
	if v, ok := args[key].(float64); ok {
		return v
	}
	return fallback
}

// requireString returns args[key] or an error naming the missing argument.
func requireString(args map[string]any, key string) (string, error) {
	v := getString(args, key)
	if v == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return v, nil
}
