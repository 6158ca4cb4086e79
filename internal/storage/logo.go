package storage

import (
	"context"
	"fmt"

	"sitebuilder/internal/domain"
)

// LogoStore implements domain.LogoStore on a SQL database.
type LogoStore struct {
	db *DB
}

func NewLogoStore(db *DB) *LogoStore {
	return &LogoStore{db: db}
}

func (s *LogoStore) SaveLogo(ctx context.Context, l *domain.Logo) error {
	_, err := s.db.exec(ctx,
		`INSERT INTO logos (id, name, prompt, image_data, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Name, l.Prompt, l.ImageData, domain.FormatTime(l.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save logo: %w", err)
	}
	return nil
}

// ListLogos returns saved logos, newest first.
func (s *LogoStore) ListLogos(ctx context.Context) ([]domain.Logo, error) {
	rows, err := s.db.query(ctx,
		`SELECT id, name, prompt, image_data, created_at FROM logos ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list logos: %w", err)
	}
	defer rows.Close()

	logos := []domain.Logo{}
	for rows.Next() {
		var (
			l       domain.Logo
			created string
		)
		if err := rows.Scan(&l.ID, &l.Name, &l.Prompt, &l.ImageData, &created); err != nil {
			return nil, fmt.Errorf("list logos: %w", err)
		}
		if l.CreatedAt, err = domain.ParseTime(created); err != nil {
			return nil, err
		}
		logos = append(logos, l)
	}
	return logos, rows.Err()
}
