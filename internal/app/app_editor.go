package app

import (
	"context"

	"sitebuilder/internal/canvas"
	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/editor"
	"sitebuilder/internal/preview"
	"sitebuilder/internal/registry"
)

// DocumentState is what the editor needs to redraw: the document, the
// selection and whether there are unsaved changes.
type DocumentState struct {
	Document domain.Project `json:"document"`
	Selected string         `json:"selected"`
	Dirty    bool           `json:"dirty"`
}

func (a *App) context() context.Context {
	if a.ctx == nil {
		return context.Background()
	}
	return a.ctx
}

// ============================================================
// Document
// ============================================================

func (a *App) GetDocument() DocumentState {
	p, sel := a.svc.Session.View()
	return DocumentState{Document: p, Selected: sel, Dirty: a.svc.Session.Dirty()}
}

// ListKinds returns the toolbox entries.
func (a *App) ListKinds() []registry.Info {
	return a.svc.Session.Registry().Infos()
}

func (a *App) RenameDocument(name string) error {
	return a.svc.Session.Rename(name)
}

// ============================================================
// Components
// ============================================================

// AddComponent adds a component of kind at the default position.
func (a *App) AddComponent(kind string) (domain.Component, error) {
	return a.svc.Session.AddComponent(domain.Kind(kind), nil)
}

// UpdateComponent merges a partial update into a component.
func (a *App) UpdateComponent(id string, update document.Update) error {
	return a.svc.Session.UpdateComponent(id, update)
}

func (a *App) DeleteComponent(id string) error {
	return a.svc.Controller.Delete(id)
}

// SelectComponent selects id; an empty id clears the selection.
func (a *App) SelectComponent(id string) {
	if id == "" {
		a.svc.Controller.ClickEmpty()
		return
	}
	a.svc.Controller.ClickComponent(id)
}

// ============================================================
// Canvas pointer input
// ============================================================

// SetCanvasOrigin records the canvas position in client coordinates.
func (a *App) SetCanvasOrigin(x, y float64) {
	a.svc.Controller.SetOrigin(canvas.Point{X: x, Y: y})
}

func (a *App) DragStart(id string) error {
	return a.svc.Controller.DragStart(id)
}

func (a *App) DragMove(x, y float64) error {
	return a.svc.Controller.DragMove(canvas.Point{X: x, Y: y})
}

// DragEnd finishes a drag at the final pointer location.
func (a *App) DragEnd(x, y float64) error {
	return a.svc.Controller.DragEnd(&canvas.Point{X: x, Y: y})
}

// DragCancel finishes a drag without a final location.
func (a *App) DragCancel() error {
	return a.svc.Controller.DragEnd(nil)
}

// DropComponent adds a toolbox item where it was dropped.
func (a *App) DropComponent(kind string, x, y float64) (domain.Component, error) {
	return a.svc.Controller.Drop(domain.Kind(kind), canvas.Point{X: x, Y: y})
}

// ============================================================
// Property editor
// ============================================================

// SelectedFields returns the panel fields of the selection.
func (a *App) SelectedFields() []editor.FieldView {
	return a.editor.Fields()
}

func (a *App) SetProp(id, key, value string) error {
	return a.editor.SetProp(id, key, value)
}

func (a *App) SetStyle(id, key, value string) error {
	return a.editor.SetStyle(id, key, value)
}

// ApplyFields saves a batch of panel edits.
func (a *App) ApplyFields(id string, props, styles map[string]string) error {
	return a.editor.Apply(id, props, styles)
}

// ============================================================
// Views
// ============================================================

// RenderCanvas returns the editing canvas as a standalone page.
func (a *App) RenderCanvas() (string, error) {
	p, sel := a.svc.Session.View()
	return a.canvas.Page(p, sel)
}

// RenderPreview returns the flow preview for "desktop" or "mobile".
func (a *App) RenderPreview(breakpoint string) (string, error) {
	bp, err := preview.ParseBreakpoint(breakpoint)
	if err != nil {
		return "", err
	}
	p, sel := a.svc.Session.View()
	return a.flow.Page(p, sel, bp)
}
