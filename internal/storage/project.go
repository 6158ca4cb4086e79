package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sitebuilder/internal/domain"
)

// ProjectStore implements domain.ProjectStore on a SQL database.
// Components are stored as one JSON document per project.
type ProjectStore struct {
	db *DB
}

func NewProjectStore(db *DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) CreateProject(ctx context.Context, p *domain.Project) error {
	comps, err := encodeComponents(p.Components)
	if err != nil {
		return err
	}
	_, err = s.db.exec(ctx,
		`INSERT INTO projects (id, name, components_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Name, comps, domain.FormatTime(p.CreatedAt), domain.FormatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *ProjectStore) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	row := s.db.queryRow(ctx,
		`SELECT id, name, components_json, created_at, updated_at FROM projects WHERE id = ?`, id,
	)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &domain.NotFoundError{Resource: "project", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListProjects returns all projects, most recently updated first.
func (s *ProjectStore) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.query(ctx,
		`SELECT id, name, components_json, created_at, updated_at FROM projects ORDER BY updated_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// UpdateProject replaces name, components and updated_at. The creation
// timestamp is never rewritten.
func (s *ProjectStore) UpdateProject(ctx context.Context, p *domain.Project) error {
	comps, err := encodeComponents(p.Components)
	if err != nil {
		return err
	}
	res, err := s.db.exec(ctx,
		`UPDATE projects SET name = ?, components_json = ?, updated_at = ? WHERE id = ?`,
		p.Name, comps, domain.FormatTime(p.UpdatedAt), p.ID,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireAffected(res, "project", p.ID)
}

func (s *ProjectStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.exec(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireAffected(res, "project", id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(sc scanner) (*domain.Project, error) {
	var (
		p                domain.Project
		comps            string
		created, updated string
	)
	if err := sc.Scan(&p.ID, &p.Name, &comps, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(comps), &p.Components); err != nil {
		return nil, fmt.Errorf("decode components of %s: %w", p.ID, err)
	}
	var err error
	if p.CreatedAt, err = domain.ParseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = domain.ParseTime(updated); err != nil {
		return nil, err
	}
	if p.Components == nil {
		p.Components = []domain.Component{}
	}
	return &p, nil
}

func encodeComponents(comps []domain.Component) (string, error) {
	if comps == nil {
		comps = []domain.Component{}
	}
	data, err := json.Marshal(comps)
	if err != nil {
		return "", fmt.Errorf("encode components: %w", err)
	}
	return string(data), nil
}

// requireAffected turns a zero-row update or delete into a NotFoundError.
// MySQL connections are opened with clientFoundRows so an update that
// changes nothing still counts its matched row.
func requireAffected(res sql.Result, resource, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &domain.NotFoundError{Resource: resource, ID: id}
	}
	return nil
}
