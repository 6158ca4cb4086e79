package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/registry"
)

func (s *Server) registerProjectTools() {
	s.mcp.AddTool(mcp.NewTool("save_project",
		mcp.WithDescription("Save the open document to the project store"),
	), s.handleSaveProject)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List saved projects, most recently updated first"),
	), s.handleListProjects)

	s.mcp.AddTool(mcp.NewTool("load_project",
		mcp.WithDescription("🛑 DESTRUCTIVE: Replace the open document with a saved project. Unsaved changes are lost. Requires user approval when the document has unsaved changes."),
		mcp.WithString("id", mcp.Description("Project ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleLoadProject)

	s.mcp.AddTool(mcp.NewTool("rename_project",
		mcp.WithDescription("Rename the open document"),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
	), s.handleRenameProject)

	s.mcp.AddTool(mcp.NewTool("generate_image",
		mcp.WithDescription("Generate an image from a prompt and place it on the page, or into an existing image component"),
		mcp.WithString("prompt", mcp.Description("What the image should show"), mcp.Required()),
		mcp.WithString("id", mcp.Description("Existing image component to fill (optional)")),
		mcp.WithNumber("x", mcp.Description("X position for a new image (optional)")),
		mcp.WithNumber("y", mcp.Description("Y position for a new image (optional)")),
	), s.handleGenerateImage)
}

func (s *Server) handleSaveProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := s.projects.Save(ctx, s.session)
	if err != nil {
		return nil, fmt.Errorf("save project: %w", err)
	}
	return textResult(fmt.Sprintf("Project %q saved (%s)", p.Name, p.ID)), nil
}

func (s *Server) handleListProjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := s.projects.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	return jsonResult(list)
}

func (s *Server) handleLoadProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "id")
	if err != nil {
		return nil, err
	}
	if s.session.Dirty() {
		approved, err := s.approval.Request("load_project", fmt.Sprintf("Discard unsaved changes and open project %s", id), "")
		if err != nil || !approved {
			return textResult("Action rejected by user"), nil
		}
	}
	p, err := s.projects.Load(ctx, s.session, id)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return textResult(fmt.Sprintf("Loaded %q with %d components", p.Name, len(p.Components))), nil
}

func (s *Server) handleRenameProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := requireString(req.GetArguments(), "name")
	if err != nil {
		return nil, err
	}
	if err := s.session.Rename(name); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Project renamed to %q", name)), nil
}

func (s *Server) handleGenerateImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.images == nil {
		return nil, fmt.Errorf("image generation is not configured")
	}
	args := req.GetArguments()
	prompt, err := requireString(args, "prompt")
	if err != nil {
		return nil, err
	}

	if id := getString(args, "id"); id != "" {
		if _, err := s.session.Component(id); err != nil {
			return nil, err
		}
		images, err := s.images.Generate(ctx, imagegen.Request{Prompt: prompt, Count: 1})
		if err != nil {
			return nil, err
		}
		if err := s.images.ApplyImage(s.session, id, images[0]); err != nil {
			return nil, fmt.Errorf("apply image: %w", err)
		}
		return textResult(fmt.Sprintf("Image component %s updated", id)), nil
	}

	var pos *domain.Position
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if hasX && hasY {
		pos = &domain.Position{X: x, Y: y}
	} else {
		p := s.layout.NextPosition(s.session.Components(), registry.KindImage)
		pos = &p
	}
	c, err := s.images.GenerateInto(ctx, s.session, prompt, pos)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Image component %s added at (%.0f, %.0f)", c.ID, c.Position.X, c.Position.Y)), nil
}
