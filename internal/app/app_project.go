package app

import (
	"errors"
	"fmt"
	"os"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/export"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/service"
)

// ============================================================
// Projects
// ============================================================

// SaveProject stores the open document.
func (a *App) SaveProject() (domain.Project, error) {
	p, err := a.svc.Projects.Save(a.context(), a.svc.Session)
	if err != nil {
		service.ErrorToast(a.context(), a.emitter, err)
		return domain.Project{}, err
	}
	return p, nil
}

// NewProject replaces the open document with an empty one. Unsaved
// changes are lost; the frontend confirms first.
func (a *App) NewProject(name string) domain.Project {
	return a.svc.Projects.NewDocument(a.svc.Session, name)
}

func (a *App) ListProjects() ([]service.ProjectSummary, error) {
	return a.svc.Projects.Summaries(a.context())
}

// LoadProject opens a stored project in place of the current document.
func (a *App) LoadProject(id string) (domain.Project, error) {
	return a.svc.Projects.Load(a.context(), a.svc.Session, id)
}

func (a *App) DeleteProject(id string) error {
	return a.svc.Projects.Delete(a.context(), id)
}

// HasUnsavedChanges reports whether the open document differs from the
// last save.
func (a *App) HasUnsavedChanges() bool {
	return a.svc.Session.Dirty()
}

// ============================================================
// Export & publish
// ============================================================

// ExportResult is a rendered page and its suggested file name.
type ExportResult struct {
	Filename string `json:"filename"`
	HTML     string `json:"html"`
}

// ExportHTML renders the open document as a standalone page.
func (a *App) ExportHTML() (ExportResult, error) {
	p := a.svc.Session.Project()
	page, err := a.export.Render(p)
	if err != nil {
		return ExportResult{}, fmt.Errorf("render export: %w", err)
	}
	return ExportResult{Filename: export.Filename(p), HTML: page}, nil
}

// ExportToFile asks for a destination and writes the exported page there.
// It returns the chosen path, or "" when the dialog was cancelled.
func (a *App) ExportToFile() (string, error) {
	res, err := a.ExportHTML()
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Website",
		DefaultFilename: res.Filename,
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "HTML", Pattern: "*.html"},
		},
	})
	if err != nil || path == "" {
		return "", err
	}
	if err := os.WriteFile(path, []byte(res.HTML), 0644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// Publish uploads the exported page under name (the export file name when
// empty) and returns where it can be found.
func (a *App) Publish(name string) (string, error) {
	if a.svc.Publisher == nil {
		return "", errors.New("publishing is not configured")
	}
	res, err := a.ExportHTML()
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		name = res.Filename
	}
	location, err := a.svc.Publisher.Publish(a.context(), name, []byte(res.HTML))
	if err != nil {
		service.ErrorToast(a.context(), a.emitter, err)
		return "", err
	}
	return location, nil
}

// ============================================================
// Images & logos
// ============================================================

// GenerateImages returns count generated images for prompt without
// touching the document.
func (a *App) GenerateImages(prompt string, count int) ([]string, error) {
	return a.svc.Images.Generate(a.context(), imagegen.Request{Prompt: prompt, Count: count})
}

// GenerateImageComponent generates one image and adds it as a new image
// component.
func (a *App) GenerateImageComponent(prompt string) (domain.Component, error) {
	return a.svc.Images.GenerateInto(a.context(), a.svc.Session, prompt, nil)
}

// AddImageComponent adds an image component showing src, typically a
// previously generated image.
func (a *App) AddImageComponent(src string) (domain.Component, error) {
	return a.svc.Images.AddImage(a.svc.Session, src, nil)
}

// GenerateComponentImage replaces the picture of an image component.
func (a *App) GenerateComponentImage(id, prompt string) error {
	if _, err := a.svc.Session.Component(id); err != nil {
		return err
	}
	images, err := a.svc.Images.Generate(a.context(), imagegen.Request{Prompt: prompt, Count: 1})
	if err != nil {
		service.ErrorToast(a.context(), a.emitter, err)
		return err
	}
	return a.svc.Images.ApplyImage(a.svc.Session, id, images[0])
}

func (a *App) GenerateLogos(req imagegen.LogoRequest) (*service.LogoResult, error) {
	return a.svc.Logos.Generate(a.context(), req)
}

func (a *App) SaveLogo(logo domain.Logo) (domain.Logo, error) {
	if err := a.svc.Logos.Save(a.context(), &logo); err != nil {
		return domain.Logo{}, err
	}
	return logo, nil
}

func (a *App) ListLogos() ([]domain.Logo, error) {
	return a.svc.Logos.List(a.context())
}
