package app

import (
	"context"
	"log"
	"os/exec"
	"runtime"
	"sync"
	"time"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"sitebuilder/internal/canvas"
	"sitebuilder/internal/editor"
	"sitebuilder/internal/export"
	"sitebuilder/internal/httpapi"
	mcpserver "sitebuilder/internal/mcp"
	"sitebuilder/internal/preview"
	"sitebuilder/internal/service"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx context.Context

	svc     *Services
	emitter *Emitter
	editor  *editor.Editor

	canvas *canvas.Renderer
	flow   *preview.Renderer
	export *export.Renderer

	mcp        *mcpserver.Server // nil unless the HTTP endpoints are enabled
	stopServer context.CancelFunc
}

// New creates the App around opened services. emitter must be the one
// the services were opened with; it starts delivering once Startup runs.
func New(svc *Services, emitter *Emitter) *App {
	reg := svc.Session.Registry()
	return &App{
		svc:     svc,
		emitter: emitter,
		editor:  editor.New(svc.Session),
		canvas:  canvas.NewRenderer(reg),
		flow:    preview.NewRenderer(reg),
		export:  export.NewRenderer(reg),
	}
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx
	a.emitter.attach(ctx)

	if runtime.GOOS == "darwin" {
		// macOS: disable "Press and Hold" so key repeat works in the WebView's text fields.
		exec.Command("defaults", "write", "com.wails.sitebuilder", "ApplePressAndHoldEnabled", "-bool", "false").Run()
	}

	if err := a.svc.Autosave.Start(ctx); err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to start autosave: %v", err)
	}

	if a.svc.Config.HTTP.Desktop {
		a.startServer(ctx)
	}
}

// startServer serves the HTTP API and the MCP endpoint next to the
// window. Destructive MCP tools wait for approval in the editor.
func (a *App) startServer(ctx context.Context) {
	srvCtx, cancel := context.WithCancel(ctx)
	a.stopServer = cancel

	a.mcp = mcpserver.New(srvCtx, mcpserver.Deps{
		Emitter:   a.emitter,
		Session:   a.svc.Session,
		Projects:  a.svc.Projects,
		Images:    a.svc.Images,
		Publisher: a.svc.Publisher,
	})
	api := httpapi.New(httpapi.Deps{
		Session:    a.svc.Session,
		Controller: a.svc.Controller,
		Projects:   a.svc.Projects,
		Images:     a.svc.Images,
		Logos:      a.svc.Logos,
		Publisher:  a.svc.Publisher,
		MCP:        a.mcp.Handler(),
	})
	go func() {
		if err := api.ListenAndServe(srvCtx, a.svc.Config.HTTP.Addr); err != nil {
			wailsRuntime.LogErrorf(ctx, "HTTP server stopped: %v", err)
		}
	}()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.stopServer != nil {
		a.stopServer()
	}
	if w, h := wailsRuntime.WindowGetSize(ctx); w > 0 && h > 0 {
		if err := a.svc.Window.SaveWindowSize(ctx, w, h); err != nil {
			log.Printf("[APP] Save window size: %v", err)
		}
	}

	closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.svc.Close(closeCtx); err != nil {
		log.Printf("[APP] Shutdown: %v", err)
	}
}

// ============================================================
// MCP approvals
// ============================================================

// ApproveAction lets a pending destructive MCP tool call proceed.
func (a *App) ApproveAction(actionID string) {
	if a.mcp != nil {
		a.mcp.Approve(actionID)
	}
}

// RejectAction cancels a pending destructive MCP tool call.
func (a *App) RejectAction(actionID string) {
	if a.mcp != nil {
		a.mcp.Reject(actionID)
	}
}

// ============================================================
// Events
// ============================================================

// Emitter delivers service events to the frontend. Events emitted
// before the window exists are dropped.
type Emitter struct {
	mu  sync.RWMutex
	ctx context.Context
}

// NewEmitter returns the emitter to open the services with.
func NewEmitter() *Emitter {
	return &Emitter{}
}

func (e *Emitter) attach(ctx context.Context) {
	e.mu.Lock()
	e.ctx = ctx
	e.mu.Unlock()
}

func (e *Emitter) Emit(_ context.Context, event string, data any) {
	e.mu.RLock()
	ctx := e.ctx
	e.mu.RUnlock()
	if ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(ctx, event, data)
}

var _ service.EventEmitter = (*Emitter)(nil)
