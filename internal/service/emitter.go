package service

import (
	"context"
	"sync"

	"sitebuilder/internal/document"
)

// ─────────────────────────────────────────────────────────────
// EventEmitter — decouples services from wailsRuntime
// ─────────────────────────────────────────────────────────────

// EventEmitter is an interface for emitting events to the frontend.
// The desktop App implements this by delegating to wailsRuntime.EventsEmit;
// headless modes use NoopEmitter or LogEmitter.
type EventEmitter interface {
	Emit(ctx context.Context, event string, data any)
}

// Frontend event names.
const (
	EventDocumentChanged  = "document:changed"
	EventSelectionChanged = "selection:changed"
	EventProjectSaved     = "project:saved"
	EventToast            = "toast"
)

// Toast is the payload of EventToast: a transient user-visible message.
type Toast struct {
	Level   string `json:"level"` // "info" | "error"
	Message string `json:"message"`
}

// ErrorToast emits err as a transient error message.
func ErrorToast(ctx context.Context, e EventEmitter, err error) {
	e.Emit(ctx, EventToast, Toast{Level: "error", Message: err.Error()})
}

// SessionListener forwards session changes to e: selection changes as
// EventSelectionChanged, everything else as EventDocumentChanged.
func SessionListener(ctx context.Context, e EventEmitter) func(document.Change) {
	return func(c document.Change) {
		switch {
		case c.Op == document.OpSave:
			// reported by ProjectService once the store accepted the save
		case c.Structural():
			e.Emit(ctx, EventDocumentChanged, c)
		default:
			e.Emit(ctx, EventSelectionChanged, c)
		}
	}
}

// NoopEmitter discards events.
type NoopEmitter struct{}

func (NoopEmitter) Emit(context.Context, string, any) {}

// MockEmitter is a test-friendly EventEmitter that records all calls.
type MockEmitter struct {
	mu     sync.Mutex
	Events []EmittedEvent
}

// EmittedEvent holds a single recorded emission for test assertions.
type EmittedEvent struct {
	Event string
	Data  any
}

func (m *MockEmitter) Emit(_ context.Context, event string, data any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, EmittedEvent{Event: event, Data: data})
}

// Named returns the recorded events with the given name.
func (m *MockEmitter) Named(event string) []EmittedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []EmittedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
