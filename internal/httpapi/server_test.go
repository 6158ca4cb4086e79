package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/document"
	"sitebuilder/internal/httpapi"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/publish"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

type fakeGenerator struct {
	err error
}

func (g *fakeGenerator) Generate(_ context.Context, req imagegen.Request) ([]string, error) {
	if g.err != nil {
		return nil, g.err
	}
	out := make([]string, req.Count)
	for i := range out {
		out[i] = "data:image/png;base64,AAA"
	}
	return out, nil
}

type testEnv struct {
	server  *httpapi.Server
	session *document.Session
	gen     *fakeGenerator
	pubDir  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	emitter := &service.MockEmitter{}
	gen := &fakeGenerator{}
	sess := document.New("My Site")
	pubDir := t.TempDir()

	srv := httpapi.New(httpapi.Deps{
		Session:   sess,
		Projects:  service.NewProjectService(storage.NewProjectStore(db), emitter),
		Images:    service.NewImageService(gen, emitter),
		Logos:     service.NewLogoService(gen, storage.NewLogoStore(db)),
		Publisher: publish.NewDiskPublisher(pubDir),
		Registry:  prometheus.NewRegistry(),
	})
	return &testEnv{server: srv, session: sess, gen: gen, pubDir: pubDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","message":"Website Builder API is running"}`, rec.Body.String())
}

func TestProjects_CRUD(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/projects", map[string]any{
		"name": "Landing",
		"components": []any{
			map[string]any{"type": "heading", "position": map[string]any{"x": 1, "y": 2}, "props": map[string]any{"content": "Hi", "level": 2}, "styles": map[string]any{}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	assert.Equal(t, "Project created successfully", created["message"])
	id, _ := created["project_id"].(string)
	require.NotEmpty(t, id)

	rec = env.do(t, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody(t, rec)["projects"].([]any)
	require.Len(t, list, 1)

	rec = env.do(t, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "Landing", got["name"])
	comps := got["components"].([]any)
	require.Len(t, comps, 1)
	assert.NotEmpty(t, comps[0].(map[string]any)["id"])

	rec = env.do(t, http.MethodPut, "/api/projects/"+id, map[string]any{"name": "Renamed", "components": []any{}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Project updated successfully", decodeBody(t, rec)["message"])

	rec = env.do(t, http.MethodDelete, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Project deleted successfully", decodeBody(t, rec)["message"])

	rec = env.do(t, http.MethodGet, "/api/projects/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", decodeBody(t, rec)["detail"])
}

func TestProjects_MissingIDs(t *testing.T) {
	env := newTestEnv(t)
	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		rec := env.do(t, method, "/api/projects/nope", map[string]any{"name": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code, method)
	}
}

func TestProjects_BadBody(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["detail"], "invalid JSON")
}

func TestGenerateImage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate-image", map[string]any{"prompt": "sunset", "count": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["images"], 2)

	rec = env.do(t, http.MethodPost, "/api/generate-image", map[string]any{"prompt": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.gen.err = errors.New("quota exceeded")
	rec = env.do(t, http.MethodPost, "/api/generate-image", map[string]any{"prompt": "sunset"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Image generation failed: quota exceeded", decodeBody(t, rec)["detail"])
}

func TestGenerateLogo(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/generate-logo", map[string]any{"company_name": "Acme", "style": "minimal"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Len(t, body["logos"], imagegen.LogoVariations)
	assert.Contains(t, body["prompt"], "Acme")

	rec = env.do(t, http.MethodPost, "/api/generate-logo", map[string]any{"style": "minimal"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.gen.err = errors.New("boom")
	rec = env.do(t, http.MethodPost, "/api/generate-logo", map[string]any{"company_name": "Acme"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Logo generation failed: boom", decodeBody(t, rec)["detail"])
}

func TestLogos(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/logos", map[string]any{"name": "Acme", "prompt": "p", "image_data": "data:image/png;base64,AAA"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	saved := decodeBody(t, rec)
	assert.Equal(t, "Logo saved successfully", saved["message"])
	assert.NotEmpty(t, saved["logo_id"])

	rec = env.do(t, http.MethodPost, "/api/logos", map[string]any{"name": "Empty"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/logos", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	logos := decodeBody(t, rec)["logos"].([]any)
	require.Len(t, logos, 1)
	assert.Equal(t, saved["logo_id"], logos[0].(map[string]any)["logo_id"])
}

func TestEditor_ComponentLifecycle(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/editor/components", map[string]any{"type": "heading"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	comp := decodeBody(t, rec)["component"].(map[string]any)
	id := comp["id"].(string)
	assert.Equal(t, id, env.session.Selected())

	rec = env.do(t, http.MethodPatch, "/api/editor/components/"+id, map[string]any{
		"props":  map[string]any{"content": "Welcome", "level": "3"},
		"styles": map[string]any{"color": "red"},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c, err := env.session.Component(id)
	require.NoError(t, err)
	assert.Equal(t, "Welcome", c.Props["content"])
	assert.Equal(t, 3, c.Props["level"])
	assert.Equal(t, "red", c.Styles["color"])

	rec = env.do(t, http.MethodPatch, "/api/editor/components/"+id, map[string]any{"props": map[string]any{"src": "x"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/editor/components/"+id+"/fields", map[string]any{
		"props": map[string]string{"level": "2"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	c, _ = env.session.Component(id)
	assert.Equal(t, 2, c.Props["level"])

	rec = env.do(t, http.MethodGet, "/api/editor/fields", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	fields := decodeBody(t, rec)
	assert.Equal(t, id, fields["component_id"])
	assert.NotEmpty(t, fields["fields"])

	rec = env.do(t, http.MethodDelete, "/api/editor/components/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decodeBody(t, rec)
	assert.Equal(t, "", state["selected"])
	assert.Empty(t, env.session.Components())

	rec = env.do(t, http.MethodDelete, "/api/editor/components/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditor_UnknownKind(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/editor/components", map[string]any{"type": "carousel"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["detail"], "carousel")
}

func TestEditor_Kinds(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/editor/kinds", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["kinds"], 6)
}

func TestEditor_DragIgnoresSpuriousEnd(t *testing.T) {
	env := newTestEnv(t)
	c, err := env.session.AddComponent("text", nil)
	require.NoError(t, err)

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/editor/drag/start", map[string]any{"id": c.ID}).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/editor/drag/move", map[string]any{"x": 120, "y": 80}).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/editor/drag/move", map[string]any{"x": 0, "y": 0}).Code)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/editor/drag/end", nil).Code)

	got, _ := env.session.Component(c.ID)
	assert.Equal(t, 120.0, got.Position.X)
	assert.Equal(t, 80.0, got.Position.Y)

	rec := env.do(t, http.MethodPost, "/api/editor/drag/start", map[string]any{"id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditor_DropAndSelection(t *testing.T) {
	env := newTestEnv(t)
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPut, "/api/editor/origin", map[string]any{"x": 100, "y": 50}).Code)

	rec := env.do(t, http.MethodPost, "/api/editor/drop", map[string]any{"type": "button", "x": 130, "y": 90})
	require.Equal(t, http.StatusCreated, rec.Code)
	comp := decodeBody(t, rec)["component"].(map[string]any)
	assert.Equal(t, map[string]any{"x": 30.0, "y": 40.0}, comp["position"])

	rec = env.do(t, http.MethodDelete, "/api/editor/selection", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", env.session.Selected())

	rec = env.do(t, http.MethodPut, "/api/editor/selection", map[string]any{"id": comp["id"]})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, comp["id"], env.session.Selected())
}

func TestEditor_SaveAndLoad(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.session.AddComponent("text", nil)
	require.NoError(t, err)

	rec := env.do(t, http.MethodPost, "/api/editor/document/save", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, false, decodeBody(t, rec)["dirty"])
	id := env.session.Project().ID

	rec = env.do(t, http.MethodPost, "/api/editor/document/new", map[string]any{"name": "Other"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Other", env.session.Project().Name)
	assert.Empty(t, env.session.Components())

	rec = env.do(t, http.MethodPost, "/api/editor/document/load/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "My Site", env.session.Project().Name)
	assert.Len(t, env.session.Components(), 1)

	rec = env.do(t, http.MethodPost, "/api/editor/document/load/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditor_GenerateIntoDocument(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/editor/images", map[string]any{"prompt": "mountains"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, env.session.Components(), 1)
	assert.Equal(t, "data:image/png;base64,AAA", env.session.Components()[0].Props["src"])

	env.gen.err = errors.New("offline")
	before := env.session.Project()
	rec = env.do(t, http.MethodPost, "/api/editor/images", map[string]any{"prompt": "mountains"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, before, env.session.Project())
}

func TestEditor_GenerateComponentImage(t *testing.T) {
	env := newTestEnv(t)
	img, _ := env.session.AddComponent("image", nil)
	txt, _ := env.session.AddComponent("text", nil)

	rec := env.do(t, http.MethodPost, "/api/editor/components/"+img.ID+"/image", map[string]any{"prompt": "cat"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got, _ := env.session.Component(img.ID)
	assert.Equal(t, "data:image/png;base64,AAA", got.Props["src"])

	rec = env.do(t, http.MethodPost, "/api/editor/components/"+txt.ID+"/image", map[string]any{"prompt": "cat"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViews(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.session.AddComponent("heading", nil)
	require.NoError(t, err)

	rec := env.do(t, http.MethodGet, "/editor/canvas", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `class="canvas-area"`)

	rec = env.do(t, http.MethodGet, "/editor/preview?breakpoint=mobile", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flow-preview")

	rec = env.do(t, http.MethodGet, "/editor/preview?breakpoint=watch", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="My Site.html"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "<title>My Site</title>")
	assert.Contains(t, rec.Body.String(), "<h1>Your Heading</h1>")
}

func TestPublish(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/api/editor/publish", map[string]any{"name": "index.html"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data, err := os.ReadFile(filepath.Join(env.pubDir, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<title>My Site</title>")

	rec = env.do(t, http.MethodPost, "/api/editor/publish", map[string]any{"name": "../escape.html"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.do(t, http.MethodGet, "/api/health", nil)
	env.do(t, http.MethodGet, "/api/projects/abc", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `sitebuilder_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
	assert.Contains(t, body, `route="/api/projects/{id}",status="404"`)
}
