package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"sitebuilder/internal/domain"
	"sitebuilder/internal/imagegen"
)

// ─────────────────────────────────────────────────────────────
// LogoService — logo variations and the saved-logo gallery
// ─────────────────────────────────────────────────────────────

type LogoService struct {
	gen   imagegen.Generator
	store domain.LogoStore
	now   func() time.Time
}

func NewLogoService(gen imagegen.Generator, store domain.LogoStore) *LogoService {
	return &LogoService{gen: gen, store: store, now: time.Now}
}

// LogoResult holds generated variations and the prompt that produced them.
type LogoResult struct {
	Logos  []string `json:"logos"`
	Prompt string   `json:"prompt"`
}

// Generate builds the logo prompt and requests imagegen.LogoVariations images.
func (s *LogoService) Generate(ctx context.Context, req imagegen.LogoRequest) (*LogoResult, error) {
	prompt, err := imagegen.LogoPrompt(req)
	if err != nil {
		return nil, err
	}
	logos, err := s.gen.Generate(ctx, imagegen.Request{Prompt: prompt, Count: imagegen.LogoVariations})
	if err != nil {
		log.Printf("[IMAGEGEN] Logo generation failed: %v", err)
		return nil, &GenerationError{Err: err}
	}
	return &LogoResult{Logos: logos, Prompt: prompt}, nil
}

// Save stores a chosen variation, assigning an id and creation time when
// missing.
func (s *LogoService) Save(ctx context.Context, l *domain.Logo) error {
	if strings.TrimSpace(l.ImageData) == "" {
		return &domain.ValidationError{Field: "image_data", Message: "image data is required"}
	}
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = s.now().UTC()
	}
	if err := s.store.SaveLogo(ctx, l); err != nil {
		return fmt.Errorf("save logo: %w", err)
	}
	return nil
}

func (s *LogoService) List(ctx context.Context) ([]domain.Logo, error) {
	logos, err := s.store.ListLogos(ctx)
	if err != nil {
		return nil, fmt.Errorf("list logos: %w", err)
	}
	return logos, nil
}
