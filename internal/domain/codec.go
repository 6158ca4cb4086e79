package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// projectWire is the persisted/exchanged form of a Project.
// ProjectID is the legacy key used by older clients; it is read but never written.
type projectWire struct {
	ID         string      `json:"id"`
	ProjectID  string      `json:"project_id,omitempty"`
	Name       string      `json:"name"`
	Components []Component `json:"components"`
	CreatedAt  string      `json:"created_at"`
	UpdatedAt  string      `json:"updated_at"`
}

// FormatTime renders t in TimeLayout (UTC).
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts TimeLayout and any RFC 3339 timestamp.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		// Naive ISO timestamps (no zone) as produced by some clients.
		t, err = time.Parse("2006-01-02T15:04:05.999999999", s)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

func (p Project) MarshalJSON() ([]byte, error) {
	comps := p.Components
	if comps == nil {
		comps = []Component{}
	}
	return json.Marshal(projectWire{
		ID:         p.ID,
		Name:       p.Name,
		Components: comps,
		CreatedAt:  FormatTime(p.CreatedAt),
		UpdatedAt:  FormatTime(p.UpdatedAt),
	})
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var w projectWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	created, err := ParseTime(w.CreatedAt)
	if err != nil {
		return err
	}
	updated, err := ParseTime(w.UpdatedAt)
	if err != nil {
		return err
	}
	id := w.ID
	if id == "" {
		id = w.ProjectID
	}
	*p = Project{
		ID:         id,
		Name:       w.Name,
		Components: w.Components,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
	return nil
}
