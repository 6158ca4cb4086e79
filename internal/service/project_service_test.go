package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/registry"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
)

func newProjectService(t *testing.T) (*service.ProjectService, *storage.ProjectStore, *service.MockEmitter) {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := storage.NewProjectStore(db)
	emitter := &service.MockEmitter{}
	return service.NewProjectService(store, emitter), store, emitter
}

func TestProjectService_SaveCreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	svc, store, emitter := newProjectService(t)
	sess := document.New("Landing")
	_, err := sess.AddComponent(registry.KindHeading, nil)
	require.NoError(t, err)
	require.True(t, sess.Dirty())

	saved, err := svc.Save(ctx, sess)
	require.NoError(t, err)
	assert.False(t, sess.Dirty())

	stored, err := store.GetProject(ctx, saved.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Components, 1)

	_, err = sess.AddComponent(registry.KindText, nil)
	require.NoError(t, err)
	_, err = svc.Save(ctx, sess)
	require.NoError(t, err)

	stored, err = store.GetProject(ctx, saved.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Components, 2)
	assert.Len(t, emitter.Named(service.EventProjectSaved), 2)
}

func TestProjectService_SaveTouchesUpdated(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProjectService(t)
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sess := document.New("x", document.WithClock(func() time.Time { return clock }))

	clock = clock.Add(time.Minute)
	saved, err := svc.Save(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, clock, saved.UpdatedAt)
	assert.Equal(t, clock, sess.Project().UpdatedAt)
}

func TestProjectService_SaveIfDirty(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProjectService(t)
	sess := document.New("x")

	saved, err := svc.SaveIfDirty(ctx, sess)
	require.NoError(t, err)
	assert.False(t, saved)

	_, _ = sess.AddComponent(registry.KindButton, nil)
	saved, err = svc.SaveIfDirty(ctx, sess)
	require.NoError(t, err)
	assert.True(t, saved)
}

func TestProjectService_LoadReplacesSession(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProjectService(t)

	src := document.New("Stored")
	c, _ := src.AddComponent(registry.KindForm, &domain.Position{X: 5, Y: 6})
	saved, err := svc.Save(ctx, src)
	require.NoError(t, err)

	dst := document.New("Other")
	_, _ = dst.AddComponent(registry.KindText, nil)
	loaded, err := svc.Load(ctx, dst, saved.ID)
	require.NoError(t, err)

	assert.Equal(t, "Stored", loaded.Name)
	require.Len(t, loaded.Components, 1)
	assert.Equal(t, c.ID, loaded.Components[0].ID)
	assert.Equal(t, []string{"name", "email", "message"}, loaded.Components[0].Props["fields"])
	assert.Equal(t, "", dst.Selected())
	assert.False(t, dst.Dirty())
}

func TestProjectService_LoadMissing(t *testing.T) {
	svc, _, _ := newProjectService(t)
	sess := document.New("x")
	before := sess.Project()

	_, err := svc.Load(context.Background(), sess, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, before, sess.Project())
}

func TestProjectService_NewDocument(t *testing.T) {
	svc, _, _ := newProjectService(t)
	sess := document.New("Old")
	old := sess.Project().ID
	_, _ = sess.AddComponent(registry.KindText, nil)

	p := svc.NewDocument(sess, "")
	assert.Equal(t, document.DefaultName, p.Name)
	assert.NotEqual(t, old, p.ID)
	assert.Empty(t, sess.Components())
}

func TestProjectService_CRUD(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newProjectService(t)

	p := &domain.Project{Name: ""}
	require.NoError(t, svc.Create(ctx, p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, document.DefaultName, p.Name)

	p.Name = "Renamed"
	require.NoError(t, svc.Update(ctx, p.ID, p))
	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	err = svc.Update(ctx, "other", &domain.Project{ID: p.ID})
	assert.True(t, domain.IsValidation(err))

	summaries, err := svc.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Renamed", summaries[0].Name)

	require.NoError(t, svc.Delete(ctx, p.ID))
	assert.ErrorIs(t, svc.Delete(ctx, p.ID), domain.ErrNotFound)
}

func TestAutosaver_RunOnce(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newProjectService(t)
	sess := document.New("x")
	a := service.NewAutosaver(svc, sess, service.DefaultAutosaveSpec)

	assert.False(t, a.RunOnce(ctx))
	_, _ = sess.AddComponent(registry.KindText, nil)
	assert.True(t, a.RunOnce(ctx))
	assert.False(t, a.RunOnce(ctx))

	_, err := store.GetProject(ctx, sess.Project().ID)
	assert.NoError(t, err)
}

func TestAutosaver_StartStop(t *testing.T) {
	svc, _, _ := newProjectService(t)
	sess := document.New("x")

	require.NoError(t, service.NewAutosaver(svc, sess, "").Start(context.Background()))

	bad := service.NewAutosaver(svc, sess, "every now and then")
	assert.Error(t, bad.Start(context.Background()))

	a := service.NewAutosaver(svc, sess, "@every 1h")
	require.NoError(t, a.Start(context.Background()))
	a.Stop()
	a.Stop()
}

func TestWindowSettings(t *testing.T) {
	ctx := context.Background()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "site.db"))
	require.NoError(t, err)
	defer db.Close()

	svc := service.NewWindowSettingsService(storage.NewSettingsStore(db))
	assert.Equal(t, service.WindowSize{Width: 1440, Height: 900}, svc.LoadWindowSize(ctx))

	require.NoError(t, svc.SaveWindowSize(ctx, 1600, 1000))
	assert.Equal(t, service.WindowSize{Width: 1600, Height: 1000}, svc.LoadWindowSize(ctx))

	require.NoError(t, svc.SaveWindowSize(ctx, 200, 100))
	assert.Equal(t, service.WindowSize{Width: 1440, Height: 900}, svc.LoadWindowSize(ctx))

	none := service.NewWindowSettingsService(nil)
	assert.Equal(t, service.WindowSize{Width: 1440, Height: 900}, none.LoadWindowSize(ctx))
	assert.Error(t, none.SaveWindowSize(ctx, 1, 1))
}

func TestProjectService_OnSavedRunsAfterEverySave(t *testing.T) {
	ctx := context.Background()
	svc, _, emitter := newProjectService(t)
	sess := document.New("Hooks")

	var got []int
	svc.OnSaved(func(_ context.Context, p domain.Project) error {
		got = append(got, len(p.Components))
		return nil
	})
	svc.OnSaved(func(context.Context, domain.Project) error {
		return errors.New("disk full")
	})

	_, _ = sess.AddComponent(registry.KindText, nil)
	_, err := svc.Save(ctx, sess)
	require.NoError(t, err, "a failing hook does not undo the save")
	_, _ = sess.AddComponent(registry.KindText, nil)
	saved, err := svc.SaveIfDirty(ctx, sess)
	require.NoError(t, err)
	assert.True(t, saved)

	assert.Equal(t, []int{1, 2}, got)
	assert.Len(t, emitter.Named(service.EventToast), 2)
	assert.False(t, sess.Dirty())
}

func TestProjectService_WaitReturnsWhenIdle(t *testing.T) {
	svc, _, _ := newProjectService(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	svc.Wait(ctx)
	assert.NoError(t, ctx.Err())
}
