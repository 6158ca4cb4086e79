package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/registry"
)

// ErrGenerationInProgress is returned when a generation for the same
// session is still running.
var ErrGenerationInProgress = errors.New("an image generation is already in progress")

// ─────────────────────────────────────────────────────────────
// ImageService — AI images placed into documents
// ─────────────────────────────────────────────────────────────

// ImageService generates images and applies them to a session. Documents
// are only touched after the generator returned, in a single operation.
type ImageService struct {
	gen     imagegen.Generator
	emitter EventEmitter
	running runningGuard
}

func NewImageService(gen imagegen.Generator, emitter EventEmitter) *ImageService {
	return &ImageService{gen: gen, emitter: emitter}
}

// ErrNoImages is wrapped in a GenerationError when the generator succeeds
// without returning any image.
var ErrNoImages = errors.New("generator returned no images")

// GenerationError marks a failure of the external generator, as opposed
// to rejected input.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "image generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// Generate returns the generated images as data URIs. Input problems come
// back as *domain.ValidationError, generator failures as *GenerationError.
func (s *ImageService) Generate(ctx context.Context, req imagegen.Request) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	images, err := s.gen.Generate(ctx, req)
	if err != nil {
		if domain.IsValidation(err) {
			return nil, err
		}
		log.Printf("[IMAGEGEN] Generation failed: %v", err)
		return nil, &GenerationError{Err: err}
	}
	if len(images) == 0 {
		return nil, &GenerationError{Err: ErrNoImages}
	}
	return images, nil
}

// AddImage places a new image component showing src.
func (s *ImageService) AddImage(sess *document.Session, src string, pos *domain.Position) (domain.Component, error) {
	return sess.AddComponentWith(registry.KindImage, pos, document.Update{
		Props: domain.Props{"src": src},
	})
}

// ApplyImage points an existing image component at src.
func (s *ImageService) ApplyImage(sess *document.Session, id, src string) error {
	return sess.UpdateComponent(id, document.Update{Props: domain.Props{"src": src}})
}

// GenerateInto generates one image for prompt and places it in the
// session. On failure the document is unchanged and a toast is emitted.
func (s *ImageService) GenerateInto(ctx context.Context, sess *document.Session, prompt string, pos *domain.Position) (domain.Component, error) {
	key := sess.Project().ID
	if !s.running.TryLock(key) {
		return domain.Component{}, ErrGenerationInProgress
	}
	defer s.running.Unlock(key)

	images, err := s.Generate(ctx, imagegen.Request{Prompt: prompt, Count: 1})
	if err != nil {
		ErrorToast(ctx, s.emitter, err)
		return domain.Component{}, fmt.Errorf("generate images: %w", err)
	}
	c, err := s.AddImage(sess, images[0], pos)
	if err != nil {
		return domain.Component{}, err
	}
	return c, nil
}
