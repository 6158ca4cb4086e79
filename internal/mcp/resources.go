package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"sitebuilder/internal/export"
)

const (
	projectURI    = "sitebuilder://project"
	exportURI     = "sitebuilder://project/export"
	componentURI  = "sitebuilder://component/"
	componentTmpl = "sitebuilder://component/{id}"
)

func (s *Server) registerResources() {
	// ── sitebuilder://project ──────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		projectURI,
		"Open Document",
		mcp.WithMIMEType("application/json"),
	), s.handleProjectResource)

	// ── sitebuilder://project/export ───────────────────
	s.mcp.AddResource(mcp.NewResource(
		exportURI,
		"Exported Page",
		mcp.WithMIMEType("text/html"),
	), s.handleExportResource)

	// ── sitebuilder://component/{id} ───────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(componentTmpl, "Component"),
		s.handleComponentResource,
	)
}

func (s *Server) handleProjectResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	data, err := s.session.Export()
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      projectURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleExportResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	page, err := s.export.Render(s.session.Project())
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      exportURI,
			MIMEType: export.ContentType,
			Text:     page,
		},
	}, nil
}

func (s *Server) handleComponentResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	id := componentIDFromURI(uri)
	if id == "" {
		return nil, fmt.Errorf("could not extract component id from URI: %s", uri)
	}
	c, err := s.session.Component(id)
	if err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(c, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// componentIDFromURI extracts the id from "sitebuilder://component/{id}".
func componentIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, componentURI)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
