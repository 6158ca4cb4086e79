package canvas

import (
	"sitebuilder/internal/domain"
	"sitebuilder/internal/markup"
)

const pageCSS = `body { margin: 0; font-family: system-ui, sans-serif; background: #f1f5f9; }
#canvas { position: relative; min-height: 600px; margin: 16px; background: white; border-radius: 8px; }
.canvas-empty { position: absolute; inset: 0; display: flex; flex-direction: column; align-items: center; justify-content: center; color: #94a3b8; }
.canvas-component { user-select: none; }
.component-selected { outline: 2px solid #0ea5e9; outline-offset: 2px; }
.delete-control { position: absolute; top: -32px; right: -8px; color: #dc2626; background: white; border: 1px solid #e2e8f0; border-radius: 6px; }
.image-placeholder { width: 12rem; height: 8rem; display: flex; flex-direction: column; align-items: center; justify-content: center; border: 2px dashed #cbd5e1; color: #64748b; }
.unknown-component { padding: 16px; background: #f1f5f9; border: 1px solid #cbd5e1; }`

// Page renders the canvas as a standalone HTML document.
func (r *Renderer) Page(p domain.Project, selected string) (string, error) {
	return markup.Render(markup.Page(p.Name+" (editing)", pageCSS, r.Node(p, selected)))
}
