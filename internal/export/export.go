// Package export serializes a document into a self-contained static HTML
// page. The output depends only on the document: exporting the same
// document twice yields identical bytes.
package export

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/markup"
	"sitebuilder/internal/registry"
)

// ContentType is the media type of an exported page.
const ContentType = "text/html; charset=utf-8"

const stylesheet = `
body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 0; }
.container { max-width: 1200px; margin: 0 auto; padding: 20px; }
.component { position: relative; }
.site-button { text-decoration: none; }
.site-form .form-field { margin-bottom: 16px; }
.site-form label { display: block; margin-bottom: 4px; text-transform: capitalize; }
.site-form input, .site-form textarea { width: 100%; padding: 8px 12px; border: 1px solid #cbd5e1; border-radius: 6px; box-sizing: border-box; }
.unknown-component { padding: 16px; background: #f1f5f9; border: 1px solid #cbd5e1; }
@media (max-width: 768px) {
  .container { padding: 10px; }
}
`

// Renderer exports documents.
type Renderer struct {
	reg *registry.Registry
}

func NewRenderer(reg *registry.Registry) *Renderer {
	return &Renderer{reg: reg}
}

// Render exports p with the builtin registry.
func Render(p domain.Project) (string, error) {
	return NewRenderer(registry.Default()).Render(p)
}

// Render returns the complete HTML document for p.
func (r *Renderer) Render(p domain.Project) (string, error) {
	return markup.Render(r.Node(p))
}

// Node builds the document tree: a container holding one styled block per
// component in document order.
func (r *Renderer) Node(p domain.Project) *html.Node {
	container := markup.El("div", []markup.Attr{markup.A("class", "container")}, markup.Newline())
	for _, c := range p.Components {
		container.AppendChild(markup.El("div", []markup.Attr{
			markup.A("class", "component"),
			markup.A("style", markup.StyleString(c.Styles)),
		}, r.body(c)))
		container.AppendChild(markup.Newline())
	}
	return markup.Page(p.Name, stylesheet, container)
}

func (r *Renderer) body(c domain.Component) *html.Node {
	d, err := r.reg.Lookup(c.Kind)
	if err != nil {
		return registry.UnknownBody(c.Kind)
	}
	return d.Export(c)
}

// Filename returns the download name for p: the project name with path
// separators and control characters replaced, plus ".html".
func Filename(p domain.Project) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '"':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(p.Name))
	name = strings.Trim(name, ".")
	if name == "" {
		name = "website"
	}
	return name + ".html"
}
