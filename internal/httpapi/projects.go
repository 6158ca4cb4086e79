package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/service"
)

// ── Projects ───────────────────────────────────────────────

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.projects.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": list})
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var p domain.Project
	if err := decode(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	p = document.Normalize(p, s.session.Registry(), uuid.NewString)
	if err := s.projects.Create(r.Context(), &p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":    "Project created successfully",
		"project_id": p.ID,
	})
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var p domain.Project
	if err := decode(w, r, &p); err != nil {
		writeError(w, err)
		return
	}
	p = document.Normalize(p, s.session.Registry(), uuid.NewString)
	if err := s.projects.Update(r.Context(), chi.URLParam(r, "id"), &p); err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project updated successfully"})
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeProjectError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Project deleted successfully"})
}

func writeProjectError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeDetail(w, http.StatusNotFound, "Project not found")
		return
	}
	writeError(w, err)
}

// ── Generation ─────────────────────────────────────────────

func (s *Server) generateImage(w http.ResponseWriter, r *http.Request) {
	if s.images == nil {
		writeError(w, errNotConfigured)
		return
	}
	req := imagegen.Request{Count: 1}
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	images, err := s.images.Generate(r.Context(), req)
	s.metrics.generation("image", err)
	if err != nil {
		writeGenerationError(w, "Image", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"images": images})
}

func (s *Server) generateLogo(w http.ResponseWriter, r *http.Request) {
	if s.logos == nil {
		writeError(w, errNotConfigured)
		return
	}
	var req imagegen.LogoRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	res, err := s.logos.Generate(r.Context(), req)
	s.metrics.generation("logo", err)
	if err != nil {
		writeGenerationError(w, "Logo", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// writeGenerationError reports generator failures as "<What> generation
// failed: <cause>" with a 502; input errors keep their 400.
func writeGenerationError(w http.ResponseWriter, what string, err error) {
	var ge *service.GenerationError
	if errors.As(err, &ge) {
		status := http.StatusBadGateway
		if errors.Is(err, imagegen.ErrNoAPIKey) {
			status = http.StatusServiceUnavailable
		}
		writeDetail(w, status, what+" generation failed: "+ge.Err.Error())
		return
	}
	writeError(w, err)
}

// ── Logos ──────────────────────────────────────────────────

func (s *Server) saveLogo(w http.ResponseWriter, r *http.Request) {
	if s.logos == nil {
		writeError(w, errNotConfigured)
		return
	}
	var l domain.Logo
	if err := decode(w, r, &l); err != nil {
		writeError(w, err)
		return
	}
	if err := s.logos.Save(r.Context(), &l); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Logo saved successfully",
		"logo_id": l.ID,
	})
}

func (s *Server) listLogos(w http.ResponseWriter, r *http.Request) {
	if s.logos == nil {
		writeError(w, errNotConfigured)
		return
	}
	logos, err := s.logos.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"logos": logos})
}
