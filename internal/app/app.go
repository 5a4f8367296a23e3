package app

import (
	"context"
	"fmt"
	"strconv"

	"github.com/glabrego/photowall-cli/internal/render/wall"
	"github.com/glabrego/photowall-cli/internal/storage"
)

const (
	prefShowMinimap = "show_minimap"
	prefShowHelp    = "show_help"
	prefPixelScale  = "pixel_scale"
)

type PreferencesStore interface {
	LoadViewState(ctx context.Context) (storage.ViewState, bool, error)
	SaveViewState(ctx context.Context, state storage.ViewState) error
	LoadPreferences(ctx context.Context) (map[string]string, error)
	SavePreferences(ctx context.Context, prefs map[string]string) error
}

// UIPreferences are the terminal toggles that survive a restart.
type UIPreferences struct {
	ShowMinimap bool
	ShowHelp    bool
	PixelScale  int
}

func DefaultUIPreferences() UIPreferences {
	return UIPreferences{ShowMinimap: true}
}

type Service struct {
	store PreferencesStore
}

func NewService(store PreferencesStore) *Service {
	return &Service{store: store}
}

// LoadViewState returns the last saved view. ok is false on first run.
func (s *Service) LoadViewState(ctx context.Context) (wall.View, bool, error) {
	state, ok, err := s.store.LoadViewState(ctx)
	if err != nil {
		return wall.View{}, false, fmt.Errorf("load view state: %w", err)
	}
	if !ok {
		return wall.View{}, false, nil
	}
	return wall.View{OffsetX: state.OffsetX, OffsetY: state.OffsetY, Zoom: state.Zoom}, true, nil
}

func (s *Service) SaveViewState(ctx context.Context, v wall.View) error {
	err := s.store.SaveViewState(ctx, storage.ViewState{OffsetX: v.OffsetX, OffsetY: v.OffsetY, Zoom: v.Zoom})
	if err != nil {
		return fmt.Errorf("save view state: %w", err)
	}
	return nil
}

// LoadUIPreferences fills missing or unreadable keys with defaults.
func (s *Service) LoadUIPreferences(ctx context.Context) (UIPreferences, error) {
	raw, err := s.store.LoadPreferences(ctx)
	if err != nil {
		return DefaultUIPreferences(), fmt.Errorf("load ui preferences: %w", err)
	}

	prefs := DefaultUIPreferences()
	if v, err := strconv.ParseBool(raw[prefShowMinimap]); err == nil {
		prefs.ShowMinimap = v
	}
	if v, err := strconv.ParseBool(raw[prefShowHelp]); err == nil {
		prefs.ShowHelp = v
	}
	if v, err := strconv.Atoi(raw[prefPixelScale]); err == nil && v > 0 {
		prefs.PixelScale = v
	}
	return prefs, nil
}

func (s *Service) SaveUIPreferences(ctx context.Context, prefs UIPreferences) error {
	raw := map[string]string{
		prefShowMinimap: strconv.FormatBool(prefs.ShowMinimap),
		prefShowHelp:    strconv.FormatBool(prefs.ShowHelp),
	}
	if prefs.PixelScale > 0 {
		raw[prefPixelScale] = strconv.Itoa(prefs.PixelScale)
	}
	if err := s.store.SavePreferences(ctx, raw); err != nil {
		return fmt.Errorf("save ui preferences: %w", err)
	}
	return nil
}
