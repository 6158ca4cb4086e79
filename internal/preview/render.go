// Package preview renders a document as a linear stack in document order,
// the layout used by the mobile preview. Component positions are ignored.
package preview

import (
	"fmt"

	"golang.org/x/net/html"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/markup"
	"sitebuilder/internal/registry"
)

const (
	EmptyTitle = "Mobile Preview"
	EmptyHint  = "Add components to see mobile view"
)

// Breakpoint is a preview viewport.
type Breakpoint struct {
	Name  string `json:"name"`
	Width int    `json:"width"` // CSS pixels; 0 means fluid
}

var (
	Desktop = Breakpoint{Name: "desktop"}
	Mobile  = Breakpoint{Name: "mobile", Width: 375}
)

// ParseBreakpoint maps a breakpoint name to its definition.
func ParseBreakpoint(name string) (Breakpoint, error) {
	switch name {
	case "", Mobile.Name:
		return Mobile, nil
	case Desktop.Name:
		return Desktop, nil
	}
	return Breakpoint{}, &domain.ValidationError{
		Field:   "breakpoint",
		Message: fmt.Sprintf("unknown breakpoint %q", name),
	}
}

// flowLayout overrides whatever positioning the styles carry.
var flowLayout = []markup.Decl{
	{Key: "position", Value: "relative"},
	{Key: "left", Value: "auto"},
	{Key: "top", Value: "auto"},
	{Key: "marginBottom", Value: "16px"},
}

// Renderer renders documents in flow layout.
type Renderer struct {
	reg *registry.Registry
}

func NewRenderer(reg *registry.Registry) *Renderer {
	return &Renderer{reg: reg}
}

// Render renders p with the builtin registry.
func Render(p domain.Project, selected string) (string, error) {
	return NewRenderer(registry.Default()).Render(p, selected)
}

func (r *Renderer) Render(p domain.Project, selected string) (string, error) {
	return markup.Render(r.Node(p, selected))
}

// Node builds the flow tree: one block per component in document order.
func (r *Renderer) Node(p domain.Project, selected string) *html.Node {
	root := markup.El("div", []markup.Attr{markup.A("class", "flow-preview")})
	if len(p.Components) == 0 {
		root.AppendChild(markup.El("div", []markup.Attr{markup.A("class", "flow-empty")},
			markup.El("h3", nil, markup.Text(EmptyTitle)),
			markup.El("p", nil, markup.Text(EmptyHint)),
		))
		return root
	}
	for _, c := range p.Components {
		class := "flow-component"
		if c.ID == selected {
			class += " component-selected"
		}
		root.AppendChild(markup.El("div", []markup.Attr{
			markup.A("class", class),
			markup.A("data-component-id", c.ID),
			markup.A("data-kind", string(c.Kind)),
			markup.A("style", markup.StyleString(c.Styles, flowLayout...)),
		}, r.body(c)))
	}
	return root
}

func (r *Renderer) body(c domain.Component) *html.Node {
	d, err := r.reg.Lookup(c.Kind)
	if err != nil {
		return registry.UnknownBody(c.Kind)
	}
	return d.Flow(c)
}

const pageCSS = `body { margin: 0; font-family: system-ui, sans-serif; background: #e2e8f0; }
.frame { margin: 16px auto; background: white; padding: 16px; }
.flow-empty { text-align: center; color: #94a3b8; }
.flow-component { cursor: pointer; }
.component-selected { outline: 2px solid #0ea5e9; outline-offset: 2px; }
.image-placeholder { width: 100%; height: 12rem; display: flex; flex-direction: column; align-items: center; justify-content: center; border: 2px dashed #cbd5e1; color: #64748b; }
.site-button { width: 100%; }
.unknown-component { padding: 16px; background: #f1f5f9; border: 1px solid #cbd5e1; }`

// Page renders the preview inside a frame sized for bp.
func (r *Renderer) Page(p domain.Project, selected string, bp Breakpoint) (string, error) {
	frameStyle := "max-width: 100%;"
	if bp.Width > 0 {
		frameStyle = fmt.Sprintf("width: %dpx;", bp.Width)
	}
	frame := markup.El("div", []markup.Attr{
		markup.A("class", "frame"),
		markup.A("data-breakpoint", bp.Name),
		markup.A("style", frameStyle),
	}, r.Node(p, selected))
	return markup.Render(markup.Page(p.Name+" (preview)", pageCSS, frame))
}
