// Package registry defines the component kinds a page can contain.
//
// Each kind is described once by a Descriptor carrying its property schema,
// default props and styles, and the functions that render its body for the
// canvas, the flow preview and the static export. Every other package looks
// kinds up here instead of switching on the kind name.
package registry

import (
	"fmt"
	"sync"

	"golang.org/x/net/html"

	"sitebuilder/internal/domain"
)

// RenderFunc renders the inner markup of a component. It reads only the
// component's kind and props; layout and styles belong to the caller.
type RenderFunc func(c domain.Component) *html.Node

// Descriptor describes one component kind.
type Descriptor struct {
	Kind        domain.Kind
	Name        string // toolbox label
	Description string // toolbox hint
	Fields      []Field

	DefaultProps  func() domain.Props
	DefaultStyles func() domain.Styles

	Canvas RenderFunc
	Flow   RenderFunc
	Export RenderFunc
}

// Field returns the schema entry for key.
func (d *Descriptor) Field(key string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Keys returns the schema keys in declaration order.
func (d *Descriptor) Keys() []string {
	keys := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		keys[i] = f.Key
	}
	return keys
}

// Coerce validates value against the schema entry for key and converts it
// to the schema's Go type.
func (d *Descriptor) Coerce(key string, value any) (any, error) {
	f, ok := d.Field(key)
	if !ok {
		return nil, &domain.ValidationError{
			Field:   key,
			Message: fmt.Sprintf("not a property of %s components", d.Kind),
		}
	}
	return f.Coerce(value)
}

// Normalize returns props reshaped to the schema: missing keys are filled
// from the defaults, foreign keys are dropped and values that fail coercion
// fall back to the default. Used when loading persisted documents.
func (d *Descriptor) Normalize(props domain.Props) domain.Props {
	defaults := d.DefaultProps()
	out := make(domain.Props, len(d.Fields))
	for _, f := range d.Fields {
		v, ok := props[f.Key]
		if !ok {
			out[f.Key] = defaults[f.Key]
			continue
		}
		cv, err := f.Coerce(v)
		if err != nil {
			out[f.Key] = defaults[f.Key]
			continue
		}
		out[f.Key] = cv
	}
	return out
}

// Registry is an ordered set of descriptors.
type Registry struct {
	mu    sync.RWMutex
	order []domain.Kind
	kinds map[domain.Kind]*Descriptor
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{kinds: make(map[domain.Kind]*Descriptor)}
}

// Register adds a descriptor. Kinds must be unique and fully described.
func (r *Registry) Register(d Descriptor) error {
	if d.Kind == "" {
		return fmt.Errorf("registry: descriptor without kind")
	}
	if d.DefaultProps == nil || d.DefaultStyles == nil {
		return fmt.Errorf("registry: %s: defaults are required", d.Kind)
	}
	if d.Canvas == nil || d.Flow == nil || d.Export == nil {
		return fmt.Errorf("registry: %s: render functions are required", d.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.kinds[d.Kind]; exists {
		return fmt.Errorf("registry: duplicate registration for kind %q", d.Kind)
	}
	r.kinds[d.Kind] = &d
	r.order = append(r.order, d.Kind)
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Lookup returns the descriptor for kind or an *domain.UnknownKindError.
func (r *Registry) Lookup(kind domain.Kind) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.kinds[kind]
	if !ok {
		return nil, &domain.UnknownKindError{Kind: kind}
	}
	return d, nil
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, len(r.order))
	for i, k := range r.order {
		out[i] = r.kinds[k]
	}
	return out
}

// Info is the toolbox entry of a kind as exposed to clients.
type Info struct {
	Kind        domain.Kind `json:"kind"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Fields      []Field     `json:"fields"`
}

// Infos lists the toolbox entries in registration order.
func (r *Registry) Infos() []Info {
	ds := r.Descriptors()
	out := make([]Info, len(ds))
	for i, d := range ds {
		out[i] = Info{Kind: d.Kind, Name: d.Name, Description: d.Description, Fields: d.Fields}
	}
	return out
}

// Defaults returns fresh default props and styles for kind.
func (r *Registry) Defaults(kind domain.Kind) (domain.Props, domain.Styles, error) {
	d, err := r.Lookup(kind)
	if err != nil {
		return nil, nil, err
	}
	return d.DefaultProps(), d.DefaultStyles(), nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry of builtin kinds.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New()
		registerBuiltins(defaultReg)
	})
	return defaultReg
}
