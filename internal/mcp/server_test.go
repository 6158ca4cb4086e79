package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/publish"
	"sitebuilder/internal/registry"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, req imagegen.Request) ([]string, error) {
	out := make([]string, req.Count)
	for i := range out {
		out[i] = "data:image/png;base64,QUJD"
	}
	return out, nil
}

type handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T, autoApprove bool) (*Server, string) {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	emitter := &service.MockEmitter{}
	pubDir := t.TempDir()
	s := New(ctx, Deps{
		Emitter:     emitter,
		Session:     document.New("Agent Site"),
		Projects:    service.NewProjectService(storage.NewProjectStore(db), emitter),
		Images:      service.NewImageService(stubGenerator{}, emitter),
		Publisher:   publish.NewDiskPublisher(pubDir),
		AutoApprove: autoApprove,
	})
	return s, pubDir
}

func call(t *testing.T, h handler, args map[string]any) (*mcp.CallToolResult, error) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return h(context.Background(), req)
}

func text(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, r)
	require.NotEmpty(t, r.Content)
	tc, ok := r.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestAddComponent_AutoLayout(t *testing.T) {
	s, _ := newTestServer(t, true)

	r, err := call(t, s.handleAddComponent, map[string]any{
		"type":  "heading",
		"props": map[string]any{"content": "Hello", "level": 2},
	})
	require.NoError(t, err)
	var first domain.Component
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &first))
	assert.Equal(t, domain.Position{X: Padding, Y: Padding}, first.Position)
	assert.Equal(t, "Hello", first.Props["content"])

	r, err = call(t, s.handleAddComponent, map[string]any{
		"type":  "text",
		"props": `{"content": "Body"}`,
	})
	require.NoError(t, err)
	var second domain.Component
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &second))
	assert.NotEqual(t, first.Position, second.Position)
	assert.Equal(t, "Body", second.Props["content"])

	r, err = call(t, s.handleAddComponent, map[string]any{"type": "button", "x": 5.0, "y": 7.0})
	require.NoError(t, err)
	assert.Contains(t, text(t, r), `"x": 5`)
}

func TestAddComponent_Errors(t *testing.T) {
	s, _ := newTestServer(t, true)

	_, err := call(t, s.handleAddComponent, map[string]any{})
	assert.ErrorContains(t, err, "type is required")

	_, err = call(t, s.handleAddComponent, map[string]any{"type": "carousel"})
	var ke *domain.UnknownKindError
	assert.ErrorAs(t, err, &ke)
	assert.Empty(t, s.session.Components())

	_, err = call(t, s.handleAddComponent, map[string]any{"type": "text", "props": "[1,2]"})
	assert.Error(t, err)
}

func TestUpdateAndMoveComponent(t *testing.T) {
	s, _ := newTestServer(t, true)
	c, err := s.session.AddComponent(registry.KindButton, nil)
	require.NoError(t, err)

	_, err = call(t, s.handleUpdateComponent, map[string]any{
		"id":     c.ID,
		"props":  map[string]any{"text": "Buy"},
		"styles": map[string]any{"color": "black"},
	})
	require.NoError(t, err)
	got, _ := s.session.Component(c.ID)
	assert.Equal(t, "Buy", got.Props["text"])
	assert.Equal(t, "#", got.Props["link"])
	assert.Equal(t, "black", got.Styles["color"])

	_, err = call(t, s.handleUpdateComponent, map[string]any{"id": c.ID})
	assert.Error(t, err)

	_, err = call(t, s.handleMoveComponent, map[string]any{"id": c.ID, "x": 300.0, "y": 400.0})
	require.NoError(t, err)
	got, _ = s.session.Component(c.ID)
	assert.Equal(t, domain.Position{X: 300, Y: 400}, got.Position)

	_, err = call(t, s.handleMoveComponent, map[string]any{"id": "missing", "x": 1.0, "y": 1.0})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteComponent_AutoApprove(t *testing.T) {
	s, _ := newTestServer(t, true)
	c, _ := s.session.AddComponent(registry.KindText, nil)

	r, err := call(t, s.handleDeleteComponent, map[string]any{"id": c.ID})
	require.NoError(t, err)
	assert.Contains(t, text(t, r), "deleted")
	assert.Empty(t, s.session.Components())
}

func TestDeleteComponent_WaitsForApproval(t *testing.T) {
	for _, approve := range []bool{true, false} {
		s, _ := newTestServer(t, false)
		c, _ := s.session.AddComponent(registry.KindText, nil)

		done := make(chan string, 1)
		go func() {
			r, err := call(t, s.handleDeleteComponent, map[string]any{"id": c.ID})
			if err != nil {
				done <- err.Error()
				return
			}
			done <- r.Content[0].(mcp.TextContent).Text
		}()

		var pending []string
		require.Eventually(t, func() bool {
			pending = s.approval.Pending()
			return len(pending) == 1
		}, 2*time.Second, 10*time.Millisecond)

		if approve {
			s.Approve(pending[0])
		} else {
			s.Reject(pending[0])
		}

		select {
		case msg := <-done:
			if approve {
				assert.Contains(t, msg, "deleted")
				assert.Empty(t, s.session.Components())
			} else {
				assert.Equal(t, "Action rejected by user", msg)
				assert.Len(t, s.session.Components(), 1)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("delete_component did not return")
		}
	}
}

func TestSelectComponent(t *testing.T) {
	s, _ := newTestServer(t, true)
	c, _ := s.session.AddComponent(registry.KindForm, nil)
	s.session.ClearSelection()

	r, err := call(t, s.handleSelectComponent, map[string]any{"id": c.ID})
	require.NoError(t, err)
	assert.Equal(t, c.ID, s.session.Selected())
	assert.Contains(t, text(t, r), `"key": "fields"`)
	assert.Contains(t, text(t, r), `"value": "name, email, message"`)

	_, err = call(t, s.handleSelectComponent, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "", s.session.Selected())

	_, err = call(t, s.handleSelectComponent, map[string]any{"id": "missing"})
	assert.Error(t, err)
}

func TestListComponents_Filter(t *testing.T) {
	s, _ := newTestServer(t, true)
	_, _ = s.session.AddComponent(registry.KindText, nil)
	img, _ := s.session.AddComponent(registry.KindImage, nil)

	r, err := call(t, s.handleListComponents, map[string]any{"type": "image"})
	require.NoError(t, err)
	var out []componentSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, r)), &out))
	require.Len(t, out, 1)
	assert.Equal(t, img.ID, out[0].ID)
	assert.True(t, out[0].Selected)
}

func TestArrangeComponents(t *testing.T) {
	s, _ := newTestServer(t, true)
	for i := 0; i < 3; i++ {
		_, _ = s.session.AddComponent(registry.KindSection, nil)
	}
	_, err := call(t, s.handleArrangeComponents, map[string]any{"startX": 0.0, "startY": 0.0})
	require.NoError(t, err)

	comps := s.session.Components()
	assert.Equal(t, domain.Position{X: 0, Y: 0}, comps[0].Position)
	for i := 1; i < len(comps); i++ {
		assert.Greater(t, comps[i].Position.Y, comps[i-1].Position.Y)
	}
}

func TestRenderTools(t *testing.T) {
	s, pubDir := newTestServer(t, true)
	_, _ = s.session.AddComponent(registry.KindHeading, nil)

	r, err := call(t, s.handleRenderCanvas, nil)
	require.NoError(t, err)
	assert.Contains(t, text(t, r), `id="canvas"`)

	r, err = call(t, s.handleRenderPreview, map[string]any{"breakpoint": "desktop"})
	require.NoError(t, err)
	assert.Contains(t, text(t, r), `data-breakpoint="desktop"`)

	_, err = call(t, s.handleRenderPreview, map[string]any{"breakpoint": "watch"})
	assert.True(t, domain.IsValidation(err))

	r, err = call(t, s.handleExportHTML, nil)
	require.NoError(t, err)
	assert.Contains(t, text(t, r), "<title>Agent Site</title>")

	r, err = call(t, s.handlePublishSite, nil)
	require.NoError(t, err)
	assert.Contains(t, text(t, r), "Agent Site.html")
	_, err = os.Stat(filepath.Join(pubDir, "Agent Site.html"))
	assert.NoError(t, err)
}

func TestProjectTools(t *testing.T) {
	s, _ := newTestServer(t, true)
	_, _ = s.session.AddComponent(registry.KindText, nil)

	_, err := call(t, s.handleSaveProject, nil)
	require.NoError(t, err)
	id := s.session.Project().ID

	r, err := call(t, s.handleListProjects, nil)
	require.NoError(t, err)
	assert.Contains(t, text(t, r), id)

	_, err = call(t, s.handleRenameProject, map[string]any{"name": "Changed"})
	require.NoError(t, err)
	require.True(t, s.session.Dirty())

	_, err = call(t, s.handleLoadProject, map[string]any{"id": id})
	require.NoError(t, err)
	assert.Equal(t, "Agent Site", s.session.Project().Name)

	_, err = call(t, s.handleLoadProject, map[string]any{"id": "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGenerateImageTool(t *testing.T) {
	s, _ := newTestServer(t, true)

	_, err := call(t, s.handleGenerateImage, map[string]any{"prompt": "a lighthouse"})
	require.NoError(t, err)
	comps := s.session.Components()
	require.Len(t, comps, 1)
	assert.Equal(t, "data:image/png;base64,QUJD", comps[0].Props["src"])

	img, _ := s.session.AddComponent(registry.KindImage, nil)
	_, err = call(t, s.handleGenerateImage, map[string]any{"prompt": "a boat", "id": img.ID})
	require.NoError(t, err)
	got, _ := s.session.Component(img.ID)
	assert.Equal(t, "data:image/png;base64,QUJD", got.Props["src"])

	_, err = call(t, s.handleGenerateImage, map[string]any{})
	assert.Error(t, err)
}

func TestResources(t *testing.T) {
	s, _ := newTestServer(t, true)
	c, _ := s.session.AddComponent(registry.KindText, nil)

	contents, err := s.handleProjectResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, `"name": "Agent Site"`)

	contents, err = s.handleExportResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, "<!DOCTYPE html>")

	req := mcp.ReadResourceRequest{}
	req.Params.URI = componentURI + c.ID
	contents, err = s.handleComponentResource(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, c.ID)

	assert.Equal(t, "", componentIDFromURI("sitebuilder://component/a/b"))
	assert.Equal(t, "", componentIDFromURI("other://component/a"))
}

func TestLandingPagePrompt(t *testing.T) {
	s, _ := newTestServer(t, true)
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"business": "Bean Bar"}

	res, err := s.handleLandingPagePrompt(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	body := res.Messages[0].Content.(mcp.TextContent).Text
	assert.Contains(t, body, `"Bean Bar"`)
	assert.Contains(t, body, "potential customers")
}
