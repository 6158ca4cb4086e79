package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
)

// ErrSaveInProgress is returned when a save of the same project is running.
var ErrSaveInProgress = errors.New("a save of this project is already in progress")

// ─────────────────────────────────────────────────────────────
// ProjectService — persistence of editing sessions
// ─────────────────────────────────────────────────────────────

// ProjectService moves documents between editing sessions and a
// domain.ProjectStore.
type ProjectService struct {
	store   domain.ProjectStore
	emitter EventEmitter
	saving  runningGuard
	now     func() time.Time

	hooksMu sync.RWMutex
	hooks   []SaveHook
}

// SaveHook runs after a save was stored, with the persisted snapshot.
type SaveHook func(ctx context.Context, p domain.Project) error

func NewProjectService(store domain.ProjectStore, emitter EventEmitter) *ProjectService {
	return &ProjectService{store: store, emitter: emitter, now: time.Now}
}

// Save persists the session's document (update, or create when the store
// does not know it yet), marking it as explicitly saved.
func (s *ProjectService) Save(ctx context.Context, sess *document.Session) (domain.Project, error) {
	id := sess.Project().ID
	if !s.saving.TryLock(id) {
		return domain.Project{}, ErrSaveInProgress
	}
	defer s.saving.Unlock(id)

	p, rev := sess.Touch()
	err := s.store.UpdateProject(ctx, &p)
	if errors.Is(err, domain.ErrNotFound) {
		err = s.store.CreateProject(ctx, &p)
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("save project: %w", err)
	}
	sess.MarkSaved(rev)
	log.Printf("[STORE] Saved project %s (%d components)", p.ID, len(p.Components))
	s.runHooks(ctx, p)
	s.emitter.Emit(ctx, EventProjectSaved, ProjectSummary{ID: p.ID, Name: p.Name, UpdatedAt: p.UpdatedAt})
	return p, nil
}

// OnSaved registers fn to run after every successful Save. Hook failures
// are reported as toasts; the save itself stands.
func (s *ProjectService) OnSaved(fn SaveHook) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

func (s *ProjectService) runHooks(ctx context.Context, p domain.Project) {
	s.hooksMu.RLock()
	hooks := s.hooks
	s.hooksMu.RUnlock()
	for _, fn := range hooks {
		if err := fn(ctx, p); err != nil {
			log.Printf("[STORE] After-save hook for %s failed: %v", p.ID, err)
			ErrorToast(ctx, s.emitter, err)
		}
	}
}

// Wait blocks until running saves have finished or ctx is done.
func (s *ProjectService) Wait(ctx context.Context) {
	s.saving.WaitAll(ctx)
}

// SaveIfDirty saves only when the session has unsaved changes.
func (s *ProjectService) SaveIfDirty(ctx context.Context, sess *document.Session) (bool, error) {
	if !sess.Dirty() {
		return false, nil
	}
	if _, err := s.Save(ctx, sess); err != nil {
		return false, err
	}
	return true, nil
}

// Load replaces the session's document with the stored project id.
func (s *ProjectService) Load(ctx context.Context, sess *document.Session, id string) (domain.Project, error) {
	p, err := s.store.GetProject(ctx, id)
	if err != nil {
		return domain.Project{}, fmt.Errorf("load project: %w", err)
	}
	sess.Replace(*p)
	return sess.Project(), nil
}

// NewDocument replaces the session's document with a fresh, unsaved one.
func (s *ProjectService) NewDocument(sess *document.Session, name string) domain.Project {
	fresh := document.New(name, document.WithClock(s.now)).Project()
	sess.Replace(fresh)
	return sess.Project()
}

// ProjectSummary is a project without its components, for listings.
type ProjectSummary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Components int       `json:"components"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Summaries lists stored projects, most recently updated first.
func (s *ProjectService) Summaries(ctx context.Context) ([]ProjectSummary, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectSummary, len(list))
	for i, p := range list {
		out[i] = ProjectSummary{ID: p.ID, Name: p.Name, Components: len(p.Components), UpdatedAt: p.UpdatedAt}
	}
	return out, nil
}

// ── Store passthrough (used by the HTTP project API) ───────

func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	list, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return list, nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.store.GetProject(ctx, id)
}

// Create stores p as a new project, filling in a missing id, name or
// timestamps.
func (s *ProjectService) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if strings.TrimSpace(p.Name) == "" {
		p.Name = document.DefaultName
	}
	now := s.now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	if p.Components == nil {
		p.Components = []domain.Component{}
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// Update overwrites the stored project id with p.
func (s *ProjectService) Update(ctx context.Context, id string, p *domain.Project) error {
	if p.ID != "" && p.ID != id {
		return &domain.ValidationError{Field: "id", Message: "does not match the project in the path"}
	}
	p.ID = id
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = s.now().UTC()
	}
	return s.store.UpdateProject(ctx, p)
}

func (s *ProjectService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteProject(ctx, id)
}
