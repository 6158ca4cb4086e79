package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"sitebuilder/internal/config"
	"sitebuilder/internal/document"
	"sitebuilder/internal/export"
	"sitebuilder/internal/httpapi"
	mcpserver "sitebuilder/internal/mcp"
	"sitebuilder/internal/registry"
	"sitebuilder/internal/service"
)

// Headless holds the options shared by the commands without a window.
type Headless struct {
	Config *config.Config
	File   string // optional linked document file
}

// open wires the services and, when a file is given, links the session
// to it.
func (h Headless) open(ctx context.Context, emitter service.EventEmitter) (*Services, error) {
	svc, err := Open(ctx, h.Config, emitter, DefaultSecrets())
	if err != nil {
		return nil, err
	}
	if h.File != "" {
		if err := svc.Link(ctx, h.File, emitter); err != nil {
			svc.Close(ctx)
			return nil, err
		}
	}
	return svc, nil
}

func closeServices(svc *Services) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Close(ctx); err != nil {
		log.Printf("[APP] Shutdown: %v", err)
	}
}

// ServeMCP runs a standalone MCP server on stdin/stdout until ctx ends.
// There is no editor to ask, so destructive tools are approved.
func (h Headless) ServeMCP(ctx context.Context) error {
	emitter := service.NoopEmitter{}
	svc, err := h.open(ctx, emitter)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	if err := svc.Autosave.Start(ctx); err != nil {
		return err
	}

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:     emitter,
		Session:     svc.Session,
		Projects:    svc.Projects,
		Images:      svc.Images,
		Publisher:   svc.Publisher,
		AutoApprove: true,
	})

	log.Println("[MCP] Starting standalone stdio server...")
	if err := mcpSrv.ServeStdio(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// Serve serves the HTTP API, with the MCP endpoint at /mcp, until ctx
// ends.
func (h Headless) Serve(ctx context.Context) error {
	emitter := service.NoopEmitter{}
	svc, err := h.open(ctx, emitter)
	if err != nil {
		return err
	}
	defer closeServices(svc)

	if err := svc.Autosave.Start(ctx); err != nil {
		return err
	}

	mcpSrv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:     emitter,
		Session:     svc.Session,
		Projects:    svc.Projects,
		Images:      svc.Images,
		Publisher:   svc.Publisher,
		AutoApprove: true,
	})
	api := httpapi.New(httpapi.Deps{
		Session:    svc.Session,
		Controller: svc.Controller,
		Projects:   svc.Projects,
		Images:     svc.Images,
		Logos:      svc.Logos,
		Publisher:  svc.Publisher,
		MCP:        mcpSrv.Handler(),
	})
	return api.ListenAndServe(ctx, h.Config.HTTP.Addr)
}

// ExportFile renders the document file in as a standalone page. The page
// is written to out, or next to in with the export file name when out is
// empty. It returns the written path.
func ExportFile(in, out string) (string, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", in, err)
	}
	reg := registry.Default()
	p, err := document.Decode(data, reg)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", in, err)
	}
	page, err := export.NewRenderer(reg).Render(p)
	if err != nil {
		return "", fmt.Errorf("render export: %w", err)
	}
	if out == "" {
		out = filepath.Join(filepath.Dir(in), export.Filename(p))
	}
	if err := os.WriteFile(out, []byte(page), 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return out, nil
}
