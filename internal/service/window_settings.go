package service

import (
	"context"
	"fmt"
	"strconv"
)

// ─────────────────────────────────────────────────────────────
// Window Size Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves and restores the desktop window size between sessions.

// SettingsStore is the name/value store window settings are kept in.
type SettingsStore interface {
	Get(ctx context.Context, name string) (string, bool, error)
	Set(ctx context.Context, name, value string) error
}

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSettingsService persists window size between sessions. A nil
// store always yields the defaults.
type WindowSettingsService struct {
	store SettingsStore
}

func NewWindowSettingsService(store SettingsStore) *WindowSettingsService {
	return &WindowSettingsService{store: store}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	defaultWindowWidth  = 1440
	defaultWindowHeight = 900
)

// Smallest window the editor layout supports.
const (
	MinWindowWidth  = 1024
	MinWindowHeight = 640
)

// LoadWindowSize returns the saved window dimensions, or defaults when
// nothing usable is stored.
func (s *WindowSettingsService) LoadWindowSize(ctx context.Context) WindowSize {
	size := WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	if s.store == nil {
		return size
	}
	if w := s.loadInt(ctx, settingWindowWidth); w >= MinWindowWidth {
		size.Width = w
	}
	if h := s.loadInt(ctx, settingWindowHeight); h >= MinWindowHeight {
		size.Height = h
	}
	return size
}

func (s *WindowSettingsService) loadInt(ctx context.Context, name string) int {
	v, ok, err := s.store.Get(ctx, name)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

// SaveWindowSize persists the current window dimensions.
func (s *WindowSettingsService) SaveWindowSize(ctx context.Context, width, height int) error {
	if s.store == nil {
		return fmt.Errorf("window settings: no store")
	}
	if err := s.store.Set(ctx, settingWindowWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return s.store.Set(ctx, settingWindowHeight, strconv.Itoa(height))
}
