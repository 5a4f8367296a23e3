package actions

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type FrameMsg struct {
	At time.Time
}

type SnapshotSuccessMsg struct {
	Path  string
	Bytes int
}

type SnapshotErrorMsg struct {
	Err error
}

type OpenURLSuccessMsg struct {
	Status string
	Opened bool
}

type OpenURLErrorMsg struct {
	Err error
}

// FrameCmd schedules the next frame tick.
func FrameCmd(fps int) tea.Cmd {
	if fps < 1 {
		fps = 1
	}
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return FrameMsg{At: t}
	})
}

// SnapshotCmd writes an already encoded PNG to path. Encoding happens on the
// caller's goroutine so the canvas is never read while it is being drawn.
func SnapshotCmd(png []byte, path string) tea.Cmd {
	return func() tea.Msg {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return SnapshotErrorMsg{Err: fmt.Errorf("create snapshot dir: %w", err)}
			}
		}
		if err := os.WriteFile(path, png, 0o644); err != nil {
			return SnapshotErrorMsg{Err: fmt.Errorf("write snapshot: %w", err)}
		}
		return SnapshotSuccessMsg{Path: path, Bytes: len(png)}
	}
}

func OpenURLCmd(url string, openFn, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if openFn != nil {
			if err := openFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Opened image in browser", Opened: true}
			}
		}
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "Could not open browser, URL copied to clipboard", Opened: false}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not open URL or copy to clipboard")}
	}
}

func CopyURLCmd(url string, copyFn func(string) error) tea.Cmd {
	return func() tea.Msg {
		if copyFn != nil {
			if err := copyFn(url); err == nil {
				return OpenURLSuccessMsg{Status: "URL copied to clipboard"}
			}
		}
		return OpenURLErrorMsg{Err: fmt.Errorf("could not copy URL to clipboard")}
	}
}
