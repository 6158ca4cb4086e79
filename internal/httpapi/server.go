// Package httpapi serves the project API, the editor API and rendered
// HTML views over HTTP.
package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sitebuilder/internal/canvas"
	"sitebuilder/internal/document"
	"sitebuilder/internal/editor"
	"sitebuilder/internal/export"
	"sitebuilder/internal/preview"
	"sitebuilder/internal/publish"
	"sitebuilder/internal/service"
)

// Deps are the collaborators of the server. Session and Projects are
// required; a nil Images, Logos or Publisher disables its endpoints.
type Deps struct {
	Session    *document.Session
	Controller *canvas.Controller
	Projects   *service.ProjectService
	Images     *service.ImageService
	Logos      *service.LogoService
	Publisher  publish.Publisher
	Registry   *prometheus.Registry

	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

type Server struct {
	session    *document.Session
	controller *canvas.Controller
	editor     *editor.Editor
	projects   *service.ProjectService
	images     *service.ImageService
	logos      *service.LogoService
	publisher  publish.Publisher

	canvas *canvas.Renderer
	flow   *preview.Renderer
	export *export.Renderer

	metrics *metrics
	router  chi.Router
}

func New(d Deps) *Server {
	reg := d.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	ctrl := d.Controller
	if ctrl == nil {
		ctrl = canvas.NewController(d.Session)
	}
	kinds := d.Session.Registry()

	s := &Server{
		session:    d.Session,
		controller: ctrl,
		editor:     editor.New(d.Session),
		projects:   d.Projects,
		images:     d.Images,
		logos:      d.Logos,
		publisher:  d.Publisher,
		canvas:     canvas.NewRenderer(kinds),
		flow:       preview.NewRenderer(kinds),
		export:     export.NewRenderer(kinds),
		metrics:    newMetrics(reg),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.instrument)

	r.Get("/api/health", s.health)

	r.Route("/api/projects", func(r chi.Router) {
		r.Get("/", s.listProjects)
		r.Post("/", s.createProject)
		r.Get("/{id}", s.getProject)
		r.Put("/{id}", s.updateProject)
		r.Delete("/{id}", s.deleteProject)
	})

	r.Post("/api/generate-image", s.generateImage)
	r.Post("/api/generate-logo", s.generateLogo)
	r.Get("/api/logos", s.listLogos)
	r.Post("/api/logos", s.saveLogo)

	r.Route("/api/editor", func(r chi.Router) {
		r.Get("/kinds", s.listKinds)

		r.Get("/document", s.getDocument)
		r.Put("/document", s.replaceDocument)
		r.Put("/document/name", s.renameDocument)
		r.Post("/document/new", s.newDocument)
		r.Post("/document/save", s.saveDocument)
		r.Post("/document/load/{id}", s.loadDocument)

		r.Post("/components", s.addComponent)
		r.Patch("/components/{id}", s.updateComponent)
		r.Delete("/components/{id}", s.deleteComponent)
		r.Put("/components/{id}/fields", s.applyFields)
		r.Post("/components/{id}/image", s.generateComponentImage)

		r.Get("/selection", s.getSelection)
		r.Put("/selection", s.setSelection)
		r.Delete("/selection", s.clearSelection)
		r.Get("/fields", s.selectedFields)

		r.Put("/origin", s.setOrigin)
		r.Post("/drag/start", s.dragStart)
		r.Post("/drag/move", s.dragMove)
		r.Post("/drag/end", s.dragEnd)
		r.Post("/drop", s.drop)

		r.Post("/images", s.generateIntoDocument)
		r.Post("/publish", s.publishDocument)
	})

	r.Get("/editor/canvas", s.canvasView)
	r.Get("/editor/preview", s.previewView)
	r.Get("/export", s.exportView)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if d.MCP != nil {
		r.Handle("/mcp", d.MCP)
	}

	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Printf("[HTTP] Listening on %s", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("[HTTP] Shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Website Builder API is running",
	})
}
