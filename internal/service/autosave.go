package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/robfig/cron/v3"

	"sitebuilder/internal/document"
)

// DefaultAutosaveSpec saves every 30 seconds.
const DefaultAutosaveSpec = "@every 30s"

// ─────────────────────────────────────────────────────────────
// Autosaver — periodic save of dirty sessions
// ─────────────────────────────────────────────────────────────

// Autosaver saves a session on a cron schedule whenever it has unsaved
// changes. An empty spec disables it.
type Autosaver struct {
	projects *ProjectService
	session  *document.Session
	spec     string

	mu    sync.Mutex
	sched *cron.Cron
}

func NewAutosaver(projects *ProjectService, sess *document.Session, spec string) *Autosaver {
	return &Autosaver{projects: projects, session: sess, spec: spec}
}

// Start schedules the autosave job. Calling Start twice restarts it.
func (a *Autosaver) Start(ctx context.Context) error {
	a.Stop()
	if a.spec == "" {
		log.Printf("[AUTOSAVE] Disabled")
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(a.spec, func() { a.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("autosave schedule %q: %w", a.spec, err)
	}
	c.Start()

	a.mu.Lock()
	a.sched = c
	a.mu.Unlock()
	log.Printf("[AUTOSAVE] Scheduled %s", a.spec)
	return nil
}

// RunOnce performs one autosave pass and reports whether it saved.
func (a *Autosaver) RunOnce(ctx context.Context) bool {
	saved, err := a.projects.SaveIfDirty(ctx, a.session)
	switch {
	case errors.Is(err, ErrSaveInProgress):
		return false
	case err != nil:
		log.Printf("[AUTOSAVE] Save failed: %v", err)
		return false
	}
	return saved
}

// Stop cancels the schedule and waits for a running save to finish.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	c := a.sched
	a.sched = nil
	a.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
