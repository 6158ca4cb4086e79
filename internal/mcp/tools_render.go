package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/export"
	"sitebuilder/internal/preview"
)

func (s *Server) registerRenderTools() {
	s.mcp.AddTool(mcp.NewTool("render_canvas",
		mcp.WithDescription("Render the editing canvas HTML (absolute positions, selection outline)"),
	), s.handleRenderCanvas)

	s.mcp.AddTool(mcp.NewTool("render_preview",
		mcp.WithDescription("Render the flow preview HTML, components stacked in page order"),
		mcp.WithString("breakpoint", mcp.Description("mobile (default) or desktop")),
	), s.handleRenderPreview)

	s.mcp.AddTool(mcp.NewTool("export_html",
		mcp.WithDescription("Export the page as a standalone HTML document"),
	), s.handleExportHTML)

	s.mcp.AddTool(mcp.NewTool("publish_site",
		mcp.WithDescription("Export the page and publish it to the configured target"),
		mcp.WithString("name", mcp.Description("File name (optional, defaults to <project name>.html)")),
	), s.handlePublishSite)
}

func (s *Server) handleRenderCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, sel := s.session.View()
	out, err := s.canvas.Render(p, sel)
	if err != nil {
		return nil, fmt.Errorf("render canvas: %w", err)
	}
	return textResult(out), nil
}

func (s *Server) handleRenderPreview(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	bp, err := preview.ParseBreakpoint(getString(req.GetArguments(), "breakpoint"))
	if err != nil {
		return nil, err
	}
	p, sel := s.session.View()
	out, err := s.flow.Page(p, sel, bp)
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return textResult(out), nil
}

func (s *Server) handleExportHTML(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.export.Render(s.session.Project())
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return textResult(out), nil
}

func (s *Server) handlePublishSite(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.publisher == nil {
		return nil, fmt.Errorf("publishing is not configured")
	}
	p := s.session.Project()
	name := strings.TrimSpace(getString(req.GetArguments(), "name"))
	if name == "" {
		name = export.Filename(p)
	}
	page, err := s.export.Render(p)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	location, err := s.publisher.Publish(ctx, name, []byte(page))
	if err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}
	return textResult("Published to " + location), nil
}
