package mongostore

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"sitebuilder/internal/domain"
)

type positionDoc struct {
	X float64 `bson:"x"`
	Y float64 `bson:"y"`
}

type componentDoc struct {
	ID       string            `bson:"id"`
	Type     string            `bson:"type"`
	Position positionDoc       `bson:"position"`
	Props    bson.M            `bson:"props"`
	Styles   map[string]string `bson:"styles"`
}

type projectDoc struct {
	ProjectID  string         `bson:"project_id"`
	Name       string         `bson:"name"`
	Components []componentDoc `bson:"components"`
	CreatedAt  time.Time      `bson:"created_at"`
	UpdatedAt  time.Time      `bson:"updated_at"`
}

type logoDoc struct {
	LogoID    string    `bson:"logo_id"`
	Name      string    `bson:"name"`
	Prompt    string    `bson:"prompt"`
	ImageData string    `bson:"image_data"`
	CreatedAt time.Time `bson:"created_at"`
}

func toProjectDoc(p *domain.Project) projectDoc {
	comps := make([]componentDoc, 0, len(p.Components))
	for _, c := range p.Components {
		props := bson.M{}
		for k, v := range c.Props {
			props[k] = v
		}
		styles := map[string]string(c.Styles.Clone())
		if styles == nil {
			styles = map[string]string{}
		}
		comps = append(comps, componentDoc{
			ID:       c.ID,
			Type:     string(c.Kind),
			Position: positionDoc{X: c.Position.X, Y: c.Position.Y},
			Props:    props,
			Styles:   styles,
		})
	}
	return projectDoc{
		ProjectID:  p.ID,
		Name:       p.Name,
		Components: comps,
		CreatedAt:  p.CreatedAt.UTC(),
		UpdatedAt:  p.UpdatedAt.UTC(),
	}
}

func (d projectDoc) project() domain.Project {
	comps := make([]domain.Component, 0, len(d.Components))
	for _, c := range d.Components {
		props := domain.Props{}
		for k, v := range c.Props {
			props[k] = plain(v)
		}
		comps = append(comps, domain.Component{
			ID:       c.ID,
			Kind:     domain.Kind(c.Type),
			Position: domain.Position{X: c.Position.X, Y: c.Position.Y},
			Props:    props,
			Styles:   domain.Styles(c.Styles),
		})
	}
	return domain.Project{
		ID:         d.ProjectID,
		Name:       d.Name,
		Components: comps,
		CreatedAt:  d.CreatedAt.UTC(),
		UpdatedAt:  d.UpdatedAt.UTC(),
	}
}

func toLogoDoc(l *domain.Logo) logoDoc {
	return logoDoc{
		LogoID:    l.ID,
		Name:      l.Name,
		Prompt:    l.Prompt,
		ImageData: l.ImageData,
		CreatedAt: l.CreatedAt.UTC(),
	}
}

func (d logoDoc) logo() domain.Logo {
	return domain.Logo{
		ID:        d.LogoID,
		Name:      d.Name,
		Prompt:    d.Prompt,
		ImageData: d.ImageData,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

// plain converts decoded BSON containers to the plain Go types the
// registry coerces (bson.A to []any, int32 to int).
func plain(v any) any {
	switch v := v.(type) {
	case bson.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plain(item)
		}
		return out
	case int32:
		return int(v)
	case int64:
		return int(v)
	}
	return v
}
