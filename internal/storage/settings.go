package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SettingsStore keeps small application settings as name/value rows.
type SettingsStore struct {
	db *DB
}

func NewSettingsStore(db *DB) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns the value of name and whether it was set.
func (s *SettingsStore) Get(ctx context.Context, name string) (string, bool, error) {
	var value string
	err := s.db.queryRow(ctx, `SELECT value FROM settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get setting %s: %w", name, err)
	}
	return value, true, nil
}

// Set stores value under name, replacing any previous value.
func (s *SettingsStore) Set(ctx context.Context, name, value string) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	// Delete and insert: upsert syntax differs across the three drivers.
	if _, err := tx.ExecContext(ctx, s.db.rebind(`DELETE FROM settings WHERE name = ?`), name); err != nil {
		return fmt.Errorf("set setting %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, s.db.rebind(`INSERT INTO settings (name, value) VALUES (?, ?)`), name, value); err != nil {
		return fmt.Errorf("set setting %s: %w", name, err)
	}
	return tx.Commit()
}
