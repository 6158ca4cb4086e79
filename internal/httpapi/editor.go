package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"sitebuilder/internal/canvas"
	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/editor"
	"sitebuilder/internal/export"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/registry"
)

// editorState is returned by every editor mutation.
type editorState struct {
	Document domain.Project `json:"document"`
	Selected string         `json:"selected"`
	Dirty    bool           `json:"dirty"`
}

func (s *Server) state() editorState {
	p, sel := s.session.View()
	s.metrics.components.Set(float64(len(p.Components)))
	return editorState{Document: p, Selected: sel, Dirty: s.session.Dirty()}
}

func (s *Server) writeState(w http.ResponseWriter, status int) {
	writeJSON(w, status, s.state())
}

// ── Document ───────────────────────────────────────────────

func (s *Server) listKinds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"kinds": s.session.Registry().Infos()})
}

func (s *Server) getDocument(w http.ResponseWriter, r *http.Request) {
	s.writeState(w, http.StatusOK)
}

func (s *Server) replaceDocument(w http.ResponseWriter, r *http.Request) {
	var p domain.Project
	if err := decode(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	s.session.Replace(p)
	s.writeState(w, http.StatusOK)
}

func (s *Server) renameDocument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.session.Rename(body.Name); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) newDocument(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if _, err := decodeOptional(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	s.projects.NewDocument(s.session, body.Name)
	s.writeState(w, http.StatusCreated)
}

func (s *Server) saveDocument(w http.ResponseWriter, r *http.Request) {
	if _, err := s.projects.Save(r.Context(), s.session); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) loadDocument(w http.ResponseWriter, r *http.Request) {
	if _, err := s.projects.Load(r.Context(), s.session, chi.URLParam(r, "id")); err != nil {
		writeProjectError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

// ── Components ─────────────────────────────────────────────

type addRequest struct {
	Kind     domain.Kind      `json:"type"`
	Position *domain.Position `json:"position,omitempty"`
	Props    domain.Props     `json:"props,omitempty"`
	Styles   domain.Styles    `json:"styles,omitempty"`
}

func (s *Server) addComponent(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.session.AddComponentWith(req.Kind, req.Position, document.Update{Props: req.Props, Styles: req.Styles})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"component": c, "state": s.state()})
}

func (s *Server) updateComponent(w http.ResponseWriter, r *http.Request) {
	var u document.Update
	if err := decode(w, r, &u); err != nil {
		writeError(w, err)
		return
	}
	if err := s.session.UpdateComponent(chi.URLParam(r, "id"), u); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) deleteComponent(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Delete(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

// applyFields takes raw property-panel input; values are coerced by the
// component's schema.
func (s *Server) applyFields(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Props  map[string]string `json:"props"`
		Styles map[string]string `json:"styles"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.editor.Apply(chi.URLParam(r, "id"), body.Props, body.Styles); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

// ── Selection and property panel ───────────────────────────

func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"selected": s.session.Selected()})
}

func (s *Server) setSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.ID == "" {
		s.controller.ClickEmpty()
	} else {
		s.controller.ClickComponent(body.ID)
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) clearSelection(w http.ResponseWriter, r *http.Request) {
	s.controller.ClickEmpty()
	s.writeState(w, http.StatusOK)
}

func (s *Server) selectedFields(w http.ResponseWriter, r *http.Request) {
	fields := s.editor.Fields()
	if fields == nil {
		fields = []editor.FieldView{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"component_id": s.session.Selected(),
		"fields":       fields,
	})
}

// ── Drag and drop ──────────────────────────────────────────

func (s *Server) setOrigin(w http.ResponseWriter, r *http.Request) {
	var p canvas.Point
	if err := decode(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	s.controller.SetOrigin(p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) dragStart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID string `json:"id"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	if err := s.controller.DragStart(body.ID); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) dragMove(w http.ResponseWriter, r *http.Request) {
	var p canvas.Point
	if err := decode(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	if err := s.controller.DragMove(p); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

// dragEnd accepts an optional final pointer location.
func (s *Server) dragEnd(w http.ResponseWriter, r *http.Request) {
	var p canvas.Point
	present, err := decodeOptional(w, r, &p)
	if err != nil {
		writeError(w, err)
		return
	}
	var last *canvas.Point
	if present {
		last = &p
	}
	if err := s.controller.DragEnd(last); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) drop(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind domain.Kind `json:"type"`
		X    float64     `json:"x"`
		Y    float64     `json:"y"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.controller.Drop(body.Kind, canvas.Point{X: body.X, Y: body.Y})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"component": c, "state": s.state()})
}

// ── Images and publishing ──────────────────────────────────

func (s *Server) generateIntoDocument(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeError(w, errNotConfigured)
		return
	}
	var body struct {
		Prompt   string           `json:"prompt"`
		Position *domain.Position `json:"position,omitempty"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	c, err := s.images.GenerateInto(r.Context(), s.session, body.Prompt, body.Position)
	s.metrics.generation("image", err)
	if err != nil {
		writeGenerationError(w, "Image", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"component": c, "state": s.state()})
}

// generateComponentImage fills an existing image component with a newly
// generated image.
func (s *Server) generateComponentImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeError(w, errNotConfigured)
		return
	}
	id := chi.URLParam(r, "id")
	c, err := s.session.Component(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if c.Kind != registry.KindImage {
		writeError(w, &domain.ValidationError{Field: "id", Message: "component is not an image"})
		return
	}
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := decode(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	images, err := s.images.Generate(r.Context(), imagegen.Request{Prompt: body.Prompt, Count: 1})
	s.metrics.generation("image", err)
	if err != nil {
		writeGenerationError(w, "Image", err)
		return
	}
	if err := s.images.ApplyImage(s.session, id, images[0]); err != nil {
		writeError(w, err)
		return
	}
	s.writeState(w, http.StatusOK)
}

func (s *Server) publishDocument(w http.ResponseWriter, r *http.Request) {
	if s.publisher == nil {
		writeError(w, errNotConfigured)
		return
	}
	var body struct {
		Name string `json:"name"`
	}
	if _, err := decodeOptional(w, r, &body); err != nil {
		writeError(w, err)
		return
	}
	p := s.session.Project()
	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = export.Filename(p)
	}
	page, err := s.export.Render(p)
	if err != nil {
		writeError(w, err)
		return
	}
	location, err := s.publisher.Publish(r.Context(), name, []byte(page))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"location": location})
}
