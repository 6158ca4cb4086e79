// Package canvas renders the interactive editing surface, where every
// component sits at its absolute position, and turns pointer gestures on
// that surface into session operations.
package canvas

import (
	"golang.org/x/net/html"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/markup"
	"sitebuilder/internal/registry"
)

// RootID is the id of the canvas container. Pointer coordinates are
// translated relative to this element's top-left corner.
const RootID = "canvas"

const (
	EmptyTitle = "Start Building Your Website"
	EmptyHint  = "Drag components from the toolbox or click to add them here"
)

// Renderer renders documents as a canvas.
type Renderer struct {
	reg *registry.Registry
}

// NewRenderer returns a canvas renderer bound to reg.
func NewRenderer(reg *registry.Registry) *Renderer {
	return &Renderer{reg: reg}
}

// Render renders p with the builtin registry.
func Render(p domain.Project, selected string) (string, error) {
	return NewRenderer(registry.Default()).Render(p, selected)
}

// Render serializes the canvas fragment.
func (r *Renderer) Render(p domain.Project, selected string) (string, error) {
	return markup.Render(r.Node(p, selected))
}

// Node builds the canvas tree: one absolutely positioned wrapper per
// component in document order, or the empty-state hint.
func (r *Renderer) Node(p domain.Project, selected string) *html.Node {
	root := markup.El("div", []markup.Attr{
		markup.A("id", RootID),
		markup.A("class", "canvas-area"),
	})
	if len(p.Components) == 0 {
		root.AppendChild(markup.El("div", []markup.Attr{markup.A("class", "canvas-empty")},
			markup.El("h3", nil, markup.Text(EmptyTitle)),
			markup.El("p", nil, markup.Text(EmptyHint)),
		))
		return root
	}
	for _, c := range p.Components {
		root.AppendChild(r.component(c, c.ID == selected))
	}
	return root
}

func (r *Renderer) component(c domain.Component, selected bool) *html.Node {
	class := "canvas-component"
	if selected {
		class += " component-selected"
	}
	style := markup.StyleString(c.Styles,
		markup.Decl{Key: "position", Value: "absolute"},
		markup.Decl{Key: "left", Value: markup.Px(c.Position.X)},
		markup.Decl{Key: "top", Value: markup.Px(c.Position.Y)},
		markup.Decl{Key: "cursor", Value: "move"},
	)
	wrapper := markup.El("div", []markup.Attr{
		markup.A("class", class),
		markup.A("data-component-id", c.ID),
		markup.A("data-kind", string(c.Kind)),
		markup.A("draggable", "true"),
		markup.A("style", style),
	}, r.body(c))

	if selected {
		wrapper.AppendChild(markup.El("button", []markup.Attr{
			markup.A("type", "button"),
			markup.A("class", "delete-control"),
			markup.A("data-action", "delete"),
			markup.A("data-component-id", c.ID),
			markup.A("title", "Delete component"),
		}, markup.Text("×")))
	}
	return wrapper
}

func (r *Renderer) body(c domain.Component) *html.Node {
	d, err := r.reg.Lookup(c.Kind)
	if err != nil {
		return registry.UnknownBody(c.Kind)
	}
	return d.Canvas(c)
}
