package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("landing_page",
		mcp.WithPromptDescription("Guide through building a landing page for a business"),
		mcp.WithArgument("business",
			mcp.ArgumentDescription("Name of the business or product"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("audience",
			mcp.ArgumentDescription("Who the page is for (optional)"),
		),
	), s.handleLandingPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("restyle_page",
		mcp.WithPromptDescription("Apply a consistent color scheme to every component"),
		mcp.WithArgument("palette",
			mcp.ArgumentDescription("Colors to use, e.g. \"navy, white, coral\""),
			mcp.RequiredArgument(),
		),
	), s.handleRestylePrompt)
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	business := req.Params.Arguments["business"]
	audience := req.Params.Arguments["audience"]
	if audience == "" {
		audience = "potential customers"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a landing page for: %s", business),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a landing page for "%s" aimed at %s. Follow these steps:

1. Use list_kinds to see which components exist and what properties they take
2. Add a heading (add_component type "heading", props {"content": "%s", "level": 1})
3. Add a text component with a one-paragraph pitch
4. Use generate_image with a prompt describing the product to add a hero image
5. Add two or three sections describing key features
6. Add a button linking to a signup or contact URL, and a form with fields name, email, message
7. Use arrange_components so nothing overlaps, then render_preview to check the mobile layout
8. Finish with save_project

Keep copy short and concrete. Use update_component for any text or style adjustments.`, business, audience, business),
				},
			},
		},
	}, nil
}

func (s *Server) handleRestylePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	palette := req.Params.Arguments["palette"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Restyle the page with: %s", palette),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Restyle the open page using the palette %s.

1. Use list_components to get every component
2. For each one, call update_component with styles only (backgroundColor, color, and border where it exists)
3. Headings and buttons should use the strongest color, sections the lightest
4. Call export_html and check the result reads well before saving with save_project`, palette),
				},
			},
		},
	}, nil
}
