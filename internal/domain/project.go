package domain

import (
	"context"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for persisted timestamps.
// Fixed width keeps the strings lexicographically sortable.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// Project is a page document: an ordered list of components plus metadata.
// Component order is insertion order and drives flow and export rendering.
type Project struct {
	ID         string
	Name       string
	Components []Component
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Clone returns a deep copy of the project.
func (p Project) Clone() Project {
	if p.Components != nil {
		comps := make([]Component, len(p.Components))
		for i, c := range p.Components {
			comps[i] = c.Clone()
		}
		p.Components = comps
	}
	return p
}

// IndexOf returns the position of the component with the given id, or -1.
func (p *Project) IndexOf(id string) int {
	for i := range p.Components {
		if p.Components[i].ID == id {
			return i
		}
	}
	return -1
}

// Logo is a saved logo variation produced by the generation service.
type Logo struct {
	ID        string    `json:"logo_id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	ImageData string    `json:"image_data"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectStore interface {
	CreateProject(ctx context.Context, p *Project) error
	GetProject(ctx context.Context, id string) (*Project, error)
	ListProjects(ctx context.Context) ([]Project, error)
	UpdateProject(ctx context.Context, p *Project) error
	DeleteProject(ctx context.Context, id string) error
}

type LogoStore interface {
	SaveLogo(ctx context.Context, l *Logo) error
	ListLogos(ctx context.Context) ([]Logo, error)
}
