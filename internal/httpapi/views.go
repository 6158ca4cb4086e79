package httpapi

import (
	"io"
	"mime"
	"net/http"

	"sitebuilder/internal/export"
	"sitebuilder/internal/preview"
)

// ── HTML views ─────────────────────────────────────────────

func (s *Server) canvasView(w http.ResponseWriter, r *http.Request) {
	p, sel := s.session.View()
	page, err := s.canvas.Page(p, sel)
	if err != nil {
		writeError(w, err)
		return
	}
	writeHTML(w, page)
}

// previewView renders the flow preview; ?breakpoint=mobile|desktop.
func (s *Server) previewView(w http.ResponseWriter, r *http.Request) {
	bp, err := preview.ParseBreakpoint(r.URL.Query().Get("breakpoint"))
	if err != nil {
		writeError(w, err)
		return
	}
	p, sel := s.session.View()
	page, err := s.flow.Page(p, sel, bp)
	if err != nil {
		writeError(w, err)
		return
	}
	writeHTML(w, page)
}

// exportView downloads the standalone page as <name>.html.
func (s *Server) exportView(w http.ResponseWriter, r *http.Request) {
	p := s.session.Project()
	page, err := s.export.Render(p)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename(p),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, page)
}
