package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/editor"
)

func (s *Server) registerComponentTools() {
	// ── list_kinds ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_kinds",
		mcp.WithDescription("List the component kinds that can be added, with their editable properties"),
	), s.handleListKinds)

	// ── list_components ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List the components of the open document in page order"),
		mcp.WithString("type", mcp.Description("Filter by component kind (optional)")),
	), s.handleListComponents)

	// ── add_component ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Add a component to the page. Position is auto-calculated if not provided."),
		mcp.WithString("type",
			mcp.Description("Component kind: text, heading, button, image, section, form"),
			mcp.Required(),
		),
		mcp.WithNumber("x", mcp.Description("X position (optional, auto-layout if omitted)")),
		mcp.WithNumber("y", mcp.Description("Y position (optional, auto-layout if omitted)")),
		mcp.WithObject("props", mcp.Description("Initial properties, e.g. {\"content\": \"Hello\"} (optional)")),
		mcp.WithObject("styles", mcp.Description("Initial styles, e.g. {\"color\": \"#111\"} (optional)")),
	), s.handleAddComponent)

	// ── update_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_component",
		mcp.WithDescription("Merge properties and/or styles into a component. Keys not given are left alone."),
		mcp.WithString("id", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithObject("props", mcp.Description("Properties to merge (optional)")),
		mcp.WithObject("styles", mcp.Description("Styles to merge (optional)")),
	), s.handleUpdateComponent)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component to a new canvas position"),
		mcp.WithString("id", mcp.Description("Component ID"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("New X position"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("New Y position"), mcp.Required()),
	), s.handleMoveComponent)

	// ── delete_component (destructive) ─────────────────
	s.mcp.AddTool(mcp.NewTool("delete_component",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a component. Requires user approval."),
		mcp.WithString("id", mcp.Description("Component ID to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteComponent)

	// ── select_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_component",
		mcp.WithDescription("Select a component in the editor and return its editable fields. An empty id clears the selection."),
		mcp.WithString("id", mcp.Description("Component ID (optional)")),
	), s.handleSelectComponent)

	// ── arrange_components ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_components",
		mcp.WithDescription("Lay all components out on a grid in page order"),
		mcp.WithNumber("startX", mcp.Description("Starting X position (default 20)")),
		mcp.WithNumber("startY", mcp.Description("Starting Y position (default 20)")),
	), s.handleArrangeComponents)
}

// ── Handlers ───────────────────────────────────────────────

type componentSummary struct {
	ID       string          `json:"id"`
	Type     domain.Kind     `json:"type"`
	Position domain.Position `json:"position"`
	Props    domain.Props    `json:"props"`
	Selected bool            `json:"selected,omitempty"`
}

func (s *Server) handleListKinds(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.session.Registry().Infos())
}

func (s *Server) handleListComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filter := domain.Kind(getString(req.GetArguments(), "type"))
	p, sel := s.session.View()

	out := []componentSummary{}
	for _, c := range p.Components {
		if filter != "" && c.Kind != filter {
			continue
		}
		out = append(out, componentSummary{ID: c.ID, Type: c.Kind, Position: c.Position, Props: c.Props, Selected: c.ID == sel})
	}
	return jsonResult(out)
}

func (s *Server) handleAddComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	kind, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}

	var u document.Update
	if _, err := parseObject(args, "props", &u.Props); err != nil {
		return nil, err
	}
	if _, err := parseObject(args, "styles", &u.Styles); err != nil {
		return nil, err
	}

	var pos domain.Position
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if hasX && hasY {
		pos = domain.Position{X: x, Y: y}
	} else {
		pos = s.layout.NextPosition(s.session.Components(), domain.Kind(kind))
	}

	c, err := s.session.AddComponentWith(domain.Kind(kind), &pos, u)
	if err != nil {
		return nil, fmt.Errorf("add component: %w", err)
	}
	return jsonResult(c)
}

func (s *Server) handleUpdateComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}

	var u document.Update
	if _, err := parseObject(args, "props", &u.Props); err != nil {
		return nil, err
	}
	if _, err := parseObject(args, "styles", &u.Styles); err != nil {
		return nil, err
	}
	if u.IsZero() {
		return nil, fmt.Errorf("props or styles is required")
	}

	if err := s.session.UpdateComponent(id, u); err != nil {
		return nil, fmt.Errorf("update component: %w", err)
	}
	c, err := s.session.Component(id)
	if err != nil {
		return nil, err
	}
	return jsonResult(c)
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	id, err := requireString(args, "id")
	if err != nil {
		return nil, err
	}
	x, okX := args["x"].(float64)
	y, okY := args["y"].(float64)
	if !okX || !okY {
		return nil, fmt.Errorf("x and y are required")
	}

	pos := domain.Position{X: x, Y: y}
	if err := s.session.UpdateComponent(id, document.Update{Position: &pos}); err != nil {
		return nil, fmt.Errorf("move component: %w", err)
	}
	return textResult(fmt.Sprintf("Component %s moved to (%.0f, %.0f)", id, x, y)), nil
}

func (s *Server) handleDeleteComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req.GetArguments(), "id")
	if err != nil {
		return nil, err
	}
	c, err := s.session.Component(id)
	if err != nil {
		return nil, err
	}

	approved, err := s.approval.Request("delete_component", fmt.Sprintf("Delete %s component %s", c.Kind, c.ID), c.ID)
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}

	if err := s.session.DeleteComponent(id); err != nil {
		return nil, fmt.Errorf("delete component: %w", err)
	}
	return textResult(fmt.Sprintf("Component %s deleted", id)), nil
}

func (s *Server) handleSelectComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := getString(req.GetArguments(), "id")
	if id == "" {
		s.session.ClearSelection()
		return textResult("Selection cleared"), nil
	}
	if _, err := s.session.Component(id); err != nil {
		return nil, err
	}
	s.session.Select(id)

	fields := editor.New(s.session).Fields()
	return jsonResult(map[string]any{"selected": id, "fields": fields})
}

func (s *Server) handleArrangeComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	comps := s.session.Components()
	positions := s.layout.Arrange(comps, getFloat(args, "startX", Padding), getFloat(args, "startY", Padding))

	for i, c := range comps {
		pos := positions[i]
		if err := s.session.UpdateComponent(c.ID, document.Update{Position: &pos}); err != nil {
			return nil, fmt.Errorf("arrange %s: %w", c.ID, err)
		}
	}
	return textResult(fmt.Sprintf("Arranged %d components", len(comps))), nil
}
