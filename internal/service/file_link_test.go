package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/document"
	"sitebuilder/internal/registry"
	"sitebuilder/internal/service"
)

func TestFileLink_LoadCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	sess := document.New("Linked")
	_, _ = sess.AddComponent(registry.KindText, nil)

	link, err := service.NewFileLink(path, sess, &service.MockEmitter{})
	require.NoError(t, err)
	require.NoError(t, link.Load())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Linked"`)
}

func TestFileLink_LoadReplacesSession(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.json")

	src := document.New("On disk")
	_, _ = src.AddComponent(registry.KindHeading, nil)
	data, err := src.Export()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	sess := document.New("In memory")
	link, err := service.NewFileLink(path, sess, &service.MockEmitter{})
	require.NoError(t, err)
	require.NoError(t, link.Load())

	assert.Equal(t, "On disk", sess.Project().Name)
	assert.Len(t, sess.Components(), 1)
}

func TestFileLink_LoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	sess := document.New("x")
	link, err := service.NewFileLink(path, sess, &service.MockEmitter{})
	require.NoError(t, err)
	assert.Error(t, link.Load())
	assert.Equal(t, "x", sess.Project().Name)
}

func TestFileLink_WatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.json")
	sess := document.New("Before")
	link, err := service.NewFileLink(path, sess, &service.MockEmitter{})
	require.NoError(t, err)
	require.NoError(t, link.Write())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, link.Watch(ctx))
	defer link.Stop()

	edited := document.New("After")
	_, _ = edited.AddComponent(registry.KindButton, nil)
	data, err := edited.Export()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	assert.Eventually(t, func() bool {
		return sess.Project().Name == "After"
	}, 5*time.Second, 50*time.Millisecond)
	assert.Len(t, sess.Components(), 1)
}
