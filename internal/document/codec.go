package document

import (
	"encoding/json"
	"fmt"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/registry"
)

// Encode serializes a project. encoding/json sorts map keys, so equal
// documents always produce identical bytes.
func Encode(p domain.Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode project: %w", err)
	}
	return data, nil
}

// Decode parses a serialized project and normalizes it against reg.
func Decode(data []byte, reg *registry.Registry) (domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return Normalize(p, reg, nil), nil
}

// Normalize reshapes a loaded project: props of known kinds are fitted to
// their schema, nil maps become empty and components without an id get
// one from newID (when given). Components of unknown kinds are kept as-is
// so renderers can show them as unknown.
func Normalize(p domain.Project, reg *registry.Registry, newID func() string) domain.Project {
	p = p.Clone()
	if p.Components == nil {
		p.Components = []domain.Component{}
	}
	for i := range p.Components {
		c := &p.Components[i]
		if c.ID == "" && newID != nil {
			c.ID = newID()
		}
		if d, err := reg.Lookup(c.Kind); err == nil {
			c.Props = d.Normalize(c.Props)
		}
		if c.Props == nil {
			c.Props = domain.Props{}
		}
		if c.Styles == nil {
			c.Styles = domain.Styles{}
		}
	}
	return p
}
