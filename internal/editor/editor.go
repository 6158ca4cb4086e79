// Package editor maps a selected component to the fields of the property
// panel and maps edited field values back to partial document updates.
package editor

import (
	"strconv"
	"strings"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/registry"
)

// Group separates kind properties from shared styling in the panel.
type Group string

const (
	GroupProps  Group = "props"
	GroupStyles Group = "styles"
)

// FieldView is one editable field with its current value.
type FieldView struct {
	Group   Group              `json:"group"`
	Key     string             `json:"key"`
	Label   string             `json:"label"`
	Type    registry.FieldType `json:"type"`
	Options []registry.Option  `json:"options,omitempty"`
	Min     int                `json:"min,omitempty"`
	Max     int                `json:"max,omitempty"`
	Value   string             `json:"value"`
}

// StyleFields are the style entries every component exposes.
var StyleFields = []registry.Field{
	{Key: "padding", Label: "Padding", Type: registry.FieldText},
	{Key: "margin", Label: "Margin", Type: registry.FieldText},
	{Key: "backgroundColor", Label: "Background", Type: registry.FieldText},
	{Key: "color", Label: "Text Color", Type: registry.FieldText},
}

// Fields lists the editable fields for c: the kind's schema (empty for
// unknown kinds) followed by the shared style fields.
func Fields(reg *registry.Registry, c domain.Component) []FieldView {
	var out []FieldView
	if d, err := reg.Lookup(c.Kind); err == nil {
		for _, f := range d.Fields {
			out = append(out, FieldView{
				Group:   GroupProps,
				Key:     f.Key,
				Label:   f.Label,
				Type:    f.Type,
				Options: f.Options,
				Min:     f.Min,
				Max:     f.Max,
				Value:   FormatValue(c.Props[f.Key]),
			})
		}
	}
	for _, f := range StyleFields {
		out = append(out, FieldView{
			Group: GroupStyles,
			Key:   f.Key,
			Label: f.Label,
			Type:  f.Type,
			Value: c.Styles[f.Key],
		})
	}
	return out
}

// FormatValue renders a property value as form input text. Lists are
// comma separated, which is also what SetProp accepts back.
func FormatValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ", ")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// Editor applies panel edits to a session. It keeps no document state of
// its own.
type Editor struct {
	session *document.Session
}

func New(s *document.Session) *Editor {
	return &Editor{session: s}
}

// Fields returns the fields of the selected component, or nil when
// nothing is selected.
func (e *Editor) Fields() []FieldView {
	id := e.session.Selected()
	if id == "" {
		return nil
	}
	c, err := e.session.Component(id)
	if err != nil {
		return nil
	}
	return Fields(e.session.Registry(), c)
}

// SetProp merges one raw property edit. The session coerces raw to the
// schema type ("3" for a heading level, "a, b" for form fields).
func (e *Editor) SetProp(id, key, raw string) error {
	return e.session.UpdateComponent(id, document.Update{Props: domain.Props{key: raw}})
}

// SetStyle merges one style edit.
func (e *Editor) SetStyle(id, key, value string) error {
	if key == "" {
		return &domain.ValidationError{Field: "style", Message: "style key is required"}
	}
	return e.session.UpdateComponent(id, document.Update{Styles: domain.Styles{key: value}})
}

// Apply merges a batch of edits in a single update.
func (e *Editor) Apply(id string, props map[string]string, styles map[string]string) error {
	u := document.Update{}
	if len(props) > 0 {
		u.Props = make(domain.Props, len(props))
		for k, v := range props {
			u.Props[k] = v
		}
	}
	if len(styles) > 0 {
		u.Styles = domain.Styles(styles)
	}
	return e.session.UpdateComponent(id, u)
}
