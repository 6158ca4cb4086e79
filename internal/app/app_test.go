package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/config"
	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/httpapi"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/registry"
	"sitebuilder/internal/secret"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = dir
	cfg.Storage.DSN = filepath.Join(dir, "sitebuilder.db")
	cfg.Publish.Dir = filepath.Join(dir, "published")
	cfg.Autosave = ""
	return cfg
}

func newTestApp(t *testing.T) (*App, *Services) {
	t.Helper()
	svc, err := Open(context.Background(), testConfig(t), service.NoopEmitter{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close(context.Background()) })
	return New(svc, NewEmitter()), svc
}

func TestOpen_WiresSQLiteAndDiskPublisher(t *testing.T) {
	_, svc := newTestApp(t)

	assert.NotNil(t, svc.Publisher)
	assert.Equal(t, document.DefaultName, svc.Session.Project().Name)

	size := svc.Window.LoadWindowSize(context.Background())
	assert.Equal(t, 1440, size.Width)
	assert.Equal(t, 900, size.Height)
}

func TestOpen_NoPublishTarget(t *testing.T) {
	cfg := testConfig(t)
	cfg.Publish.Target = config.PublishNone
	svc, err := Open(context.Background(), cfg, service.NoopEmitter{}, nil)
	require.NoError(t, err)
	defer svc.Close(context.Background())

	assert.Nil(t, svc.Publisher)

	a := New(svc, NewEmitter())
	_, err = a.Publish("")
	assert.Error(t, err)
}

type fixedSecrets map[string]string

func (f fixedSecrets) Get(key string) ([]byte, error) { return []byte(f[key]), nil }
func (f fixedSecrets) Set(string, []byte) error       { return nil }
func (f fixedSecrets) Delete(string) error            { return nil }

var _ secret.SecretStore = fixedSecrets{}

func TestResolveSecret(t *testing.T) {
	store := fixedSecrets{secret.KeyImageGenAPIKey: "from-store"}

	assert.Equal(t, "explicit", resolveSecret("explicit", store, secret.KeyImageGenAPIKey))
	assert.Equal(t, "from-store", resolveSecret("", store, secret.KeyImageGenAPIKey))
	assert.Equal(t, "", resolveSecret("", nil, secret.KeyImageGenAPIKey))
	assert.Equal(t, "", resolveSecret("", store, secret.KeyS3SecretKey))
}

func TestApp_ComponentEditing(t *testing.T) {
	a, _ := newTestApp(t)

	c, err := a.AddComponent(string(registry.KindHeading))
	require.NoError(t, err)
	assert.Equal(t, document.DefaultPosition, c.Position)

	a.SelectComponent(c.ID)
	state := a.GetDocument()
	assert.Equal(t, c.ID, state.Selected)
	assert.True(t, state.Dirty)

	require.NoError(t, a.ApplyFields(c.ID, map[string]string{"content": "Welcome", "level": "2"}, map[string]string{"color": "red"}))

	var content, level, color string
	for _, f := range a.SelectedFields() {
		switch f.Key {
		case "content":
			content = f.Value
		case "level":
			level = f.Value
		case "color":
			color = f.Value
		}
	}
	assert.Equal(t, "Welcome", content)
	assert.Equal(t, "2", level)
	assert.Equal(t, "red", color)

	page, err := a.RenderCanvas()
	require.NoError(t, err)
	assert.Contains(t, page, "<h2>Welcome</h2>")

	a.SelectComponent("")
	assert.Empty(t, a.GetDocument().Selected)
	assert.Nil(t, a.SelectedFields())

	require.NoError(t, a.DeleteComponent(c.ID))
	assert.Empty(t, a.GetDocument().Document.Components)
}

func TestApp_UnknownKind(t *testing.T) {
	a, _ := newTestApp(t)

	_, err := a.AddComponent("carousel")
	var unknown *domain.UnknownKindError
	assert.True(t, errors.As(err, &unknown))
	assert.Empty(t, a.GetDocument().Document.Components)
}

func TestApp_DragAndDrop(t *testing.T) {
	a, _ := newTestApp(t)
	a.SetCanvasOrigin(100, 50)

	c, err := a.DropComponent(string(registry.KindButton), 130, 90)
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 30, Y: 40}, c.Position)

	require.NoError(t, a.DragStart(c.ID))
	require.NoError(t, a.DragMove(300, 250))
	// the browser's final (0,0) event is ignored
	require.NoError(t, a.DragMove(0, 0))
	require.NoError(t, a.DragCancel())

	moved := a.GetDocument().Document.Components[0]
	assert.Equal(t, domain.Position{X: 200, Y: 200}, moved.Position)

	assert.Error(t, a.DragStart("missing"))
}

func TestApp_RenderPreview(t *testing.T) {
	a, _ := newTestApp(t)
	_, err := a.AddComponent(string(registry.KindText))
	require.NoError(t, err)

	page, err := a.RenderPreview("mobile")
	require.NoError(t, err)
	assert.Contains(t, page, "375px")
	assert.Contains(t, page, "Your text here")

	_, err = a.RenderPreview("tablet")
	assert.True(t, domain.IsValidation(err))
}

func TestApp_SaveListLoad(t *testing.T) {
	a, _ := newTestApp(t)
	require.NoError(t, a.RenameDocument("Bakery"))
	_, err := a.AddComponent(string(registry.KindSection))
	require.NoError(t, err)

	saved, err := a.SaveProject()
	require.NoError(t, err)
	assert.False(t, a.HasUnsavedChanges())

	list, err := a.ListProjects()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Bakery", list[0].Name)
	assert.Equal(t, 1, list[0].Components)

	fresh := a.NewProject("")
	assert.Equal(t, document.DefaultName, fresh.Name)
	assert.Empty(t, a.GetDocument().Document.Components)

	loaded, err := a.LoadProject(saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bakery", loaded.Name)
	assert.Len(t, a.GetDocument().Document.Components, 1)

	require.NoError(t, a.DeleteProject(saved.ID))
	_, err = a.LoadProject(saved.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestApp_ExportAndPublish(t *testing.T) {
	a, svc := newTestApp(t)
	require.NoError(t, a.RenameDocument("My Site"))
	_, err := a.AddComponent(string(registry.KindHeading))
	require.NoError(t, err)

	res, err := a.ExportHTML()
	require.NoError(t, err)
	assert.Equal(t, "My Site.html", res.Filename)
	assert.Contains(t, res.HTML, "<h1>Your Heading</h1>")

	location, err := a.Publish("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(svc.Config.Publish.Dir, "My Site.html"), location)
	data, err := os.ReadFile(location)
	require.NoError(t, err)
	assert.Equal(t, res.HTML, string(data))

	_, err = a.Publish("../escape.html")
	assert.True(t, domain.IsValidation(err))
}

func TestApp_GenerationWithoutKey(t *testing.T) {
	a, _ := newTestApp(t)

	_, err := a.GenerateImages("a red bicycle", 1)
	assert.ErrorIs(t, err, imagegen.ErrNoAPIKey)

	_, err = a.GenerateImages("  ", 1)
	assert.True(t, domain.IsValidation(err))

	_, err = a.GenerateImageComponent("a red bicycle")
	assert.ErrorIs(t, err, imagegen.ErrNoAPIKey)
	assert.Empty(t, a.GetDocument().Document.Components)

	c, err := a.AddImageComponent("data:image/png;base64,AAAA")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,AAAA", c.Props.String("src"))
}

func TestApp_Logos(t *testing.T) {
	a, _ := newTestApp(t)

	saved, err := a.SaveLogo(domain.Logo{Name: "Acme", Prompt: "p", ImageData: "data:image/png;base64,AAAA"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	logos, err := a.ListLogos()
	require.NoError(t, err)
	require.Len(t, logos, 1)
	assert.Equal(t, "Acme", logos[0].Name)

	_, err = a.GenerateLogos(imagegen.LogoRequest{})
	assert.True(t, domain.IsValidation(err))
}

func TestServices_LinkedFileFollowsEverySave(t *testing.T) {
	ctx := context.Background()
	_, svc := newTestApp(t)
	path := filepath.Join(t.TempDir(), "site.json")
	require.NoError(t, svc.Link(ctx, path, service.NoopEmitter{}))

	components := func() int {
		t.Helper()
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		p, err := document.Decode(data, registry.Default())
		require.NoError(t, err)
		return len(p.Components)
	}
	assert.Equal(t, 0, components())

	api := httpapi.New(httpapi.Deps{
		Session:    svc.Session,
		Controller: svc.Controller,
		Projects:   svc.Projects,
		Images:     svc.Images,
		Logos:      svc.Logos,
		Publisher:  svc.Publisher,
	})
	_, err := svc.Session.AddComponent(registry.KindText, nil)
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	api.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/editor/document/save", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, components())

	_, err = svc.Session.AddComponent(registry.KindHeading, nil)
	require.NoError(t, err)
	assert.True(t, svc.Autosave.RunOnce(ctx))
	assert.Equal(t, 2, components())

	// Close saves what is still unsaved.
	_, err = svc.Session.AddComponent(registry.KindButton, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Close(ctx))
	assert.False(t, svc.Session.Dirty())
	assert.Equal(t, 3, components())
}

// blockingStore holds the first update until release is closed.
type blockingStore struct {
	domain.ProjectStore
	started  chan struct{}
	release  chan struct{}
	once     sync.Once
	finished atomic.Bool
}

func (s *blockingStore) UpdateProject(ctx context.Context, p *domain.Project) error {
	first := false
	s.once.Do(func() {
		first = true
		close(s.started)
		<-s.release
	})
	err := s.ProjectStore.UpdateProject(ctx, p)
	if first {
		s.finished.Store(true)
	}
	return err
}

func TestServices_CloseWaitsForRunningSave(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	store := &blockingStore{
		ProjectStore: storage.NewProjectStore(db),
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}

	sess := document.New("Slow")
	projects := service.NewProjectService(store, service.NoopEmitter{})
	var (
		closedEarly bool
		persisted   int
	)
	svc := &Services{
		Session:  sess,
		Projects: projects,
		Autosave: service.NewAutosaver(projects, sess, ""),
		closer: func(ctx context.Context) error {
			closedEarly = !store.finished.Load()
			if p, err := store.GetProject(ctx, sess.Project().ID); err == nil {
				persisted = len(p.Components)
			}
			return db.Close()
		},
	}

	_, err = sess.AddComponent(registry.KindText, nil)
	require.NoError(t, err)
	go projects.Save(ctx, sess)
	<-store.started

	// edited after the running save took its snapshot
	_, err = sess.AddComponent(registry.KindHeading, nil)
	require.NoError(t, err)
	time.AfterFunc(50*time.Millisecond, func() { close(store.release) })

	require.NoError(t, svc.Close(ctx))
	assert.False(t, closedEarly, "store closed under a running save")
	assert.Equal(t, 2, persisted)
	assert.False(t, sess.Dirty())
}

func TestExportFile(t *testing.T) {
	dir := t.TempDir()
	sess := document.New("Portfolio")
	_, err := sess.AddComponent(registry.KindHeading, nil)
	require.NoError(t, err)
	data, err := document.Encode(sess.Project())
	require.NoError(t, err)
	in := filepath.Join(dir, "site.json")
	require.NoError(t, os.WriteFile(in, data, 0644))

	out, err := ExportFile(in, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "Portfolio.html"), out)

	page, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(page), "<!DOCTYPE html>"))
	assert.Contains(t, string(page), "<h1>Your Heading</h1>")

	_, err = ExportFile(filepath.Join(dir, "missing.json"), "")
	assert.Error(t, err)
}
