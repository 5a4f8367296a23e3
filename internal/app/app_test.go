package app

import (
	"context"
	"errors"
	"testing"

	"github.com/glabrego/photowall-cli/internal/render/wall"
	"github.com/glabrego/photowall-cli/internal/storage"
)

type fakeStore struct {
	view     storage.ViewState
	hasView  bool
	prefs    map[string]string
	loadErr  error
	saveErr  error
	savedRaw map[string]string
}

func (f *fakeStore) LoadViewState(context.Context) (storage.ViewState, bool, error) {
	if f.loadErr != nil {
		return storage.ViewState{}, false, f.loadErr
	}
	return f.view, f.hasView, nil
}

func (f *fakeStore) SaveViewState(_ context.Context, state storage.ViewState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.view, f.hasView = state, true
	return nil
}

func (f *fakeStore) LoadPreferences(context.Context) (map[string]string, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.prefs, nil
}

func (f *fakeStore) SavePreferences(_ context.Context, prefs map[string]string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.savedRaw = prefs
	return nil
}

func TestService_ViewStateRoundTrip(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	if _, ok, err := svc.LoadViewState(context.Background()); err != nil || ok {
		t.Fatalf("expected no saved view on first run, got ok=%v err=%v", ok, err)
	}

	want := wall.View{OffsetX: -120.5, OffsetY: 44, Zoom: 3.25}
	if err := svc.SaveViewState(context.Background(), want); err != nil {
		t.Fatalf("SaveViewState returned error: %v", err)
	}
	got, ok, err := svc.LoadViewState(context.Background())
	if err != nil || !ok || got != want {
		t.Fatalf("unexpected view: %+v ok=%v err=%v", got, ok, err)
	}
}

func TestService_LoadUIPreferences_DefaultsAndParsing(t *testing.T) {
	svc := NewService(&fakeStore{prefs: map[string]string{
		prefShowMinimap: "false",
		prefShowHelp:    "not-a-bool",
		prefPixelScale:  "6",
	}})

	prefs, err := svc.LoadUIPreferences(context.Background())
	if err != nil {
		t.Fatalf("LoadUIPreferences returned error: %v", err)
	}
	if prefs.ShowMinimap || prefs.ShowHelp || prefs.PixelScale != 6 {
		t.Fatalf("unexpected prefs: %+v", prefs)
	}

	prefs, err = NewService(&fakeStore{}).LoadUIPreferences(context.Background())
	if err != nil || prefs != DefaultUIPreferences() {
		t.Fatalf("expected defaults, got %+v err=%v", prefs, err)
	}
}

func TestService_SaveUIPreferences(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)
	if err := svc.SaveUIPreferences(context.Background(), UIPreferences{ShowMinimap: true, PixelScale: 4}); err != nil {
		t.Fatalf("SaveUIPreferences returned error: %v", err)
	}
	if store.savedRaw[prefShowMinimap] != "true" || store.savedRaw[prefShowHelp] != "false" || store.savedRaw[prefPixelScale] != "4" {
		t.Fatalf("unexpected saved prefs: %+v", store.savedRaw)
	}
}

func TestService_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	svc := NewService(&fakeStore{loadErr: boom, saveErr: boom})

	if _, _, err := svc.LoadViewState(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if err := svc.SaveViewState(context.Background(), wall.View{Zoom: 3}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	prefs, err := svc.LoadUIPreferences(context.Background())
	if !errors.Is(err, boom) || prefs != DefaultUIPreferences() {
		t.Fatalf("expected defaults with error, got %+v %v", prefs, err)
	}
}
