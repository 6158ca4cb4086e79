package registry

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"sitebuilder/internal/domain"
)

// FieldType tells the property editor which input to show and how values
// are coerced.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextArea FieldType = "textarea"
	FieldURL      FieldType = "url"
	FieldSelect   FieldType = "select" // string restricted to Options
	FieldNumber   FieldType = "number" // int in [Min, Max]
	FieldList     FieldType = "list"   // ordered []string
)

// Option is one choice of a select-like field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Field is one entry of a kind's property schema.
type Field struct {
	Key     string    `json:"key"`
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
	Options []Option  `json:"options,omitempty"`
	Min     int       `json:"min,omitempty"`
	Max     int       `json:"max,omitempty"`
}

// Coerce converts v to the field's Go type: string for text-like and select
// fields, int for number fields and []string for list fields.
func (f Field) Coerce(v any) (any, error) {
	switch f.Type {
	case FieldText, FieldTextArea, FieldURL:
		s, ok := v.(string)
		if !ok {
			return nil, f.invalid("expected a string, got %T", v)
		}
		return s, nil

	case FieldSelect:
		s, ok := v.(string)
		if !ok {
			return nil, f.invalid("expected a string, got %T", v)
		}
		if !f.allows(s) {
			return nil, f.invalid("%q is not one of %s", s, f.optionList())
		}
		return s, nil

	case FieldNumber:
		n, err := toInt(v)
		if err != nil {
			return nil, f.invalid("%v", err)
		}
		if n < f.Min || n > f.Max {
			return nil, f.invalid("%d is outside %d-%d", n, f.Min, f.Max)
		}
		return n, nil

	case FieldList:
		switch list := v.(type) {
		case []string:
			return append([]string{}, list...), nil
		case []any:
			out := make([]string, 0, len(list))
			for _, item := range list {
				s, ok := item.(string)
				if !ok {
					return nil, f.invalid("list items must be strings, got %T", item)
				}
				out = append(out, s)
			}
			return out, nil
		case string:
			return SplitList(list), nil
		}
		return nil, f.invalid("expected a list of strings, got %T", v)
	}
	return nil, f.invalid("unsupported field type %q", f.Type)
}

func (f Field) invalid(format string, args ...any) error {
	return &domain.ValidationError{Field: f.Key, Message: fmt.Sprintf(format, args...)}
}

func (f Field) allows(s string) bool {
	for _, o := range f.Options {
		if o.Value == s {
			return true
		}
	}
	return false
}

func (f Field) optionList() string {
	vals := make([]string, len(f.Options))
	for i, o := range f.Options {
		vals[i] = o.Value
	}
	return strings.Join(vals, "|")
}

// SplitList parses comma- or newline-separated input into trimmed, non-empty items.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%v is not a whole number", n)
		}
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(n), "H")))
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}
