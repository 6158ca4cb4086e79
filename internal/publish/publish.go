// Package publish uploads exported pages to where they are served from:
// a local directory or an S3 bucket.
package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sitebuilder/internal/domain"
)

// Publisher stores an exported page under name and returns its location.
type Publisher interface {
	Publish(ctx context.Context, name string, html []byte) (string, error)
}

// DiskPublisher writes pages into a directory.
type DiskPublisher struct {
	Dir string
}

func NewDiskPublisher(dir string) *DiskPublisher {
	return &DiskPublisher{Dir: dir}
}

// Publish writes <Dir>/<name> and returns the absolute file path.
func (p *DiskPublisher) Publish(_ context.Context, name string, html []byte) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return "", fmt.Errorf("create publish directory: %w", err)
	}
	path := filepath.Join(p.Dir, name)
	if err := os.WriteFile(path, html, 0644); err != nil {
		return "", fmt.Errorf("write page: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

// cleanName rejects names that would escape the target directory.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", &domain.ValidationError{Field: "name", Message: fmt.Sprintf("invalid page name %q", name)}
	}
	return name, nil
}
