package domain

// Kind identifies a component type ("text", "heading", ...).
// The set of valid kinds is owned by the component registry.
type Kind string

// Position is an absolute pixel offset inside the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Props holds the kind-specific properties of a component.
// Values are strings, ints or []string depending on the kind's schema.
type Props map[string]any

// Styles holds CSS-like style declarations keyed by camel-case property name
// (e.g. "backgroundColor").
type Styles map[string]string

// Component is one placed page element.
type Component struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"type"`
	Position Position `json:"position"`
	Props    Props    `json:"props"`
	Styles   Styles   `json:"styles"`
}

// Clone returns a deep copy of the props map.
func (p Props) Clone() Props {
	if p == nil {
		return nil
	}
	out := make(Props, len(p))
	for k, v := range p {
		if list, ok := v.([]string); ok {
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}

// Clone returns a copy of the styles map.
func (s Styles) Clone() Styles {
	if s == nil {
		return nil
	}
	out := make(Styles, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Clone returns a deep copy of the component.
func (c Component) Clone() Component {
	c.Props = c.Props.Clone()
	c.Styles = c.Styles.Clone()
	return c
}

// String returns the string value of a property, or "" when absent or not a string.
func (p Props) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Int returns the integer value of a property, or def when absent.
func (p Props) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Strings returns the list value of a property.
func (p Props) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
