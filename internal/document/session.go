// Package document implements the editing session: the in-memory page
// document, the current selection and the operations that mutate them.
package document

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/registry"
)

// DefaultPosition is where components land when no drop point is given.
var DefaultPosition = domain.Position{X: 50, Y: 50}

// DefaultName is the name of a freshly created project.
const DefaultName = "New Website"

// Update is a partial change to a component. Provided maps are merged into
// the existing ones key by key; a nil Position leaves the position alone.
type Update struct {
	Props    domain.Props     `json:"props,omitempty"`
	Styles   domain.Styles    `json:"styles,omitempty"`
	Position *domain.Position `json:"position,omitempty"`
}

// IsZero reports whether the update carries no change.
func (u Update) IsZero() bool {
	return len(u.Props) == 0 && len(u.Styles) == 0 && u.Position == nil
}

// Op names a session change.
type Op string

const (
	OpAdd     Op = "add"
	OpUpdate  Op = "update"
	OpDelete  Op = "delete"
	OpSelect  Op = "select"
	OpReplace Op = "replace"
	OpRename  Op = "rename"
	OpSave    Op = "save"
)

// Change is delivered to the session listener after every operation.
type Change struct {
	Op          Op     `json:"op"`
	ComponentID string `json:"componentId,omitempty"`
	Selected    string `json:"selected"`
}

// Structural reports whether the change altered the document itself.
func (c Change) Structural() bool {
	return c.Op != OpSelect
}

// Option configures a Session.
type Option func(*Session)

// WithRegistry sets the component registry (registry.Default() otherwise).
func WithRegistry(r *registry.Registry) Option {
	return func(s *Session) { s.reg = r }
}

// WithClock sets the time source used for project timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithIDs sets the component id generator.
func WithIDs(next func() string) Option {
	return func(s *Session) { s.newID = next }
}

// WithListener registers a callback invoked after each operation,
// outside the session lock.
func WithListener(fn func(Change)) Option {
	return func(s *Session) { s.listener = fn }
}

// Session owns one document and its selection.
//
// All operations are synchronous and applied in call order. A mutex guards
// the state because several transports (desktop bindings, HTTP, MCP,
// autosave, file watcher) may call in from different goroutines.
type Session struct {
	mu       sync.RWMutex
	reg      *registry.Registry
	now      func() time.Time
	newID    func() string
	listener func(Change)

	project  domain.Project
	selected string

	revision uint64
	savedRev uint64
}

func newSession(opts []Option) *Session {
	s := &Session{
		reg:   registry.Default(),
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// New starts a session on an empty project.
func New(name string, opts ...Option) *Session {
	s := newSession(opts)
	if strings.TrimSpace(name) == "" {
		name = DefaultName
	}
	now := s.now().UTC()
	s.project = domain.Project{
		ID:         uuid.New().String(),
		Name:       name,
		Components: []domain.Component{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return s
}

// Open starts a session on an existing project (e.g. loaded from a store).
func Open(p domain.Project, opts ...Option) *Session {
	s := newSession(opts)
	s.project = Normalize(p, s.reg, s.newID)
	return s
}

// Registry returns the registry the session validates against.
func (s *Session) Registry() *registry.Registry {
	return s.reg
}

// Project returns a deep copy of the current document.
func (s *Session) Project() domain.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project.Clone()
}

// Components returns a copy of the ordered component list.
func (s *Session) Components() []domain.Component {
	return s.Project().Components
}

// Component returns a copy of one component.
func (s *Session) Component(id string) (domain.Component, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.project.IndexOf(id)
	if i < 0 {
		return domain.Component{}, notFound(id)
	}
	return s.project.Components[i].Clone(), nil
}

// Selected returns the selected component id, or "" when nothing is selected.
func (s *Session) Selected() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// View returns a consistent snapshot of the document and the selection.
func (s *Session) View() (domain.Project, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.project.Clone(), s.selected
}

// AddComponent appends a component of kind with registry defaults and
// selects it. A nil position places it at DefaultPosition.
func (s *Session) AddComponent(kind domain.Kind, pos *domain.Position) (domain.Component, error) {
	return s.AddComponentWith(kind, pos, Update{})
}

// AddComponentWith is AddComponent with initial overrides applied in the
// same step, so observers never see the intermediate default state.
func (s *Session) AddComponentWith(kind domain.Kind, pos *domain.Position, u Update) (domain.Component, error) {
	d, err := s.reg.Lookup(kind)
	if err != nil {
		return domain.Component{}, err
	}
	props, err := coerceProps(d, nil, u.Props)
	if err != nil {
		return domain.Component{}, err
	}

	c := domain.Component{
		Kind:     kind,
		Position: DefaultPosition,
		Props:    d.DefaultProps(),
		Styles:   d.DefaultStyles(),
	}
	if pos != nil {
		c.Position = *pos
	}
	if u.Position != nil {
		c.Position = *u.Position
	}
	mergeProps(c.Props, props)
	mergeStyles(c.Styles, u.Styles)

	s.mu.Lock()
	c.ID = s.newID()
	s.project.Components = append(s.project.Components, c)
	s.selected = c.ID
	s.mutatedLocked()
	change := Change{Op: OpAdd, ComponentID: c.ID, Selected: s.selected}
	s.mu.Unlock()

	s.notify(change)
	return c.Clone(), nil
}

// UpdateComponent merges u into the component with the given id.
// Property keys must belong to the kind's schema; on any validation error
// nothing is applied.
func (s *Session) UpdateComponent(id string, u Update) error {
	s.mu.Lock()
	i := s.project.IndexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound(id)
	}
	if u.IsZero() {
		s.mu.Unlock()
		return nil
	}
	c := &s.project.Components[i]

	var props domain.Props
	if len(u.Props) > 0 {
		d, err := s.reg.Lookup(c.Kind)
		if err != nil {
			d = nil // unknown kinds have no schema; only existing keys may change
		}
		props, err = coerceProps(d, c.Props, u.Props)
		if err != nil {
			s.mu.Unlock()
			return err
		}
	}

	if c.Props == nil && len(props) > 0 {
		c.Props = domain.Props{}
	}
	mergeProps(c.Props, props)
	if c.Styles == nil && len(u.Styles) > 0 {
		c.Styles = domain.Styles{}
	}
	mergeStyles(c.Styles, u.Styles)
	if u.Position != nil {
		c.Position = *u.Position
	}
	s.mutatedLocked()
	change := Change{Op: OpUpdate, ComponentID: id, Selected: s.selected}
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// DeleteComponent removes exactly one component and clears the selection
// if it pointed at it.
func (s *Session) DeleteComponent(id string) error {
	s.mu.Lock()
	i := s.project.IndexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound(id)
	}
	comps := s.project.Components
	s.project.Components = append(comps[:i:i], comps[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	s.mutatedLocked()
	change := Change{Op: OpDelete, ComponentID: id, Selected: s.selected}
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// Select sets the selection. An empty or unknown id clears it.
// Selection is view state: the document and its timestamps are untouched.
func (s *Session) Select(id string) {
	s.mu.Lock()
	if s.project.IndexOf(id) < 0 {
		id = ""
	}
	s.selected = id
	change := Change{Op: OpSelect, ComponentID: id, Selected: id}
	s.mu.Unlock()

	s.notify(change)
}

// ClearSelection is Select("").
func (s *Session) ClearSelection() {
	s.Select("")
}

// Rename changes the project name.
func (s *Session) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return &domain.ValidationError{Field: "name", Message: "project name is required"}
	}
	s.mu.Lock()
	s.project.Name = name
	s.mutatedLocked()
	change := Change{Op: OpRename, Selected: s.selected}
	s.mu.Unlock()

	s.notify(change)
	return nil
}

// Replace swaps in an externally loaded document wholesale. The selection
// survives only if the selected id still exists.
func (s *Session) Replace(p domain.Project) {
	p = Normalize(p, s.reg, s.newID)

	s.mu.Lock()
	s.project = p
	if s.project.IndexOf(s.selected) < 0 {
		s.selected = ""
	}
	s.revision++
	s.savedRev = s.revision
	change := Change{Op: OpReplace, Selected: s.selected}
	s.mu.Unlock()

	s.notify(change)
}

// Touch records an explicit save: it bumps the updated timestamp and
// returns the snapshot to persist together with its revision, to be passed
// to MarkSaved once the store accepted it.
func (s *Session) Touch() (domain.Project, uint64) {
	s.mu.Lock()
	s.project.UpdatedAt = s.stamp()
	snapshot := s.project.Clone()
	rev := s.revision
	change := Change{Op: OpSave, Selected: s.selected}
	s.mu.Unlock()

	s.notify(change)
	return snapshot, rev
}

// MarkSaved records that revision rev has been persisted.
func (s *Session) MarkSaved(rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rev > s.savedRev {
		s.savedRev = rev
	}
}

// Dirty reports whether the document changed since the last save.
func (s *Session) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision != s.savedRev
}

// Export returns the deterministic serialization of the document.
func (s *Session) Export() ([]byte, error) {
	return Encode(s.Project())
}

// ── internals ──────────────────────────────────────────────

// mutatedLocked marks a structural change. Caller holds s.mu.
func (s *Session) mutatedLocked() {
	s.project.UpdatedAt = s.stamp()
	s.revision++
}

// stamp returns the current time, always later than the last update.
func (s *Session) stamp() time.Time {
	now := s.now().UTC()
	if !now.After(s.project.UpdatedAt) {
		// stored timestamps keep microseconds
		return s.project.UpdatedAt.Add(time.Microsecond)
	}
	return now
}

func (s *Session) notify(c Change) {
	if s.listener != nil {
		s.listener(c)
	}
}

func notFound(id string) error {
	return &domain.NotFoundError{Resource: "component", ID: id}
}

// coerceProps validates a partial props map. With a descriptor, keys and
// values are checked against the schema; without one (unknown kind), only
// keys already present in existing may be changed.
func coerceProps(d *registry.Descriptor, existing, partial domain.Props) (domain.Props, error) {
	if len(partial) == 0 {
		return nil, nil
	}
	out := make(domain.Props, len(partial))
	for k, v := range partial {
		if d == nil {
			if _, ok := existing[k]; !ok {
				return nil, &domain.ValidationError{Field: k, Message: "not a property of this component"}
			}
			out[k] = v
			continue
		}
		cv, err := d.Coerce(k, v)
		if err != nil {
			return nil, err
		}
		out[k] = cv
	}
	return out, nil
}

func mergeProps(dst, src domain.Props) {
	for k, v := range src {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		dst[k] = v
	}
}

func mergeStyles(dst, src domain.Styles) {
	for k, v := range src {
		dst[k] = v
	}
}
