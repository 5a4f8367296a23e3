package view

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	tuitheme "github.com/glabrego/photowall-cli/internal/tui/theme"
)

// HUDInfo is what the header line shows.
type HUDInfo struct {
	ZoomPercent int
	Posts       int
	CachedTiles int
	CachedBytes int
	Fetching    bool
	Done        bool
}

func Toolbar(jumping bool) string {
	if jumping {
		return "enter: jump | esc: cancel"
	}
	return "drag/arrows/hjkl: pan | wheel/+/-: zoom | /: jump | o: open | y: copy URL | s: snapshot | m: minimap | r: resume | ?: help | q: quit"
}

func HUD(info HUDInfo, th tuitheme.Theme) string {
	listing := "complete"
	switch {
	case info.Fetching:
		listing = "loading"
	case !info.Done:
		listing = "paused"
	}
	parts := []string{
		th.Title.Render("Photo Wall"),
		th.Pill(fmt.Sprintf("%d%%", info.ZoomPercent)),
		th.PostCount.Render(humanize.Comma(int64(info.Posts))) + " " + th.MetaLabel.Render("posts"),
		th.MetaLabel.Render("listing") + " " + th.MetaValue.Render(listing),
		th.MetaLabel.Render("tiles") + " " + th.MetaValue.Render(fmt.Sprintf("%s (%s)", humanize.Comma(int64(info.CachedTiles)), humanize.Bytes(uint64(info.CachedBytes)))),
	}
	return strings.Join(parts, " • ")
}

// ProgressBar shows how many visible tiles are loaded. It is empty once the
// viewport is complete.
func ProgressBar(loaded, visible, width int, th tuitheme.Theme) string {
	if visible <= 0 || loaded >= visible {
		return ""
	}
	if width < 1 {
		width = 1
	}
	filled := loaded * width / visible
	bar := th.ProgressFill.Render(strings.Repeat("█", filled)) + th.ProgressEmpty.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %s %s", th.MetaLabel.Render("tiles"), bar, th.MetaValue.Render(fmt.Sprintf("%d/%d", loaded, visible)))
}

func JumpPrompt(input string, th tuitheme.Theme) string {
	return th.Prompt.Render("jump to x,y") + " " + input
}

func Message(loading bool, status string, err error, th tuitheme.Theme) string {
	state := "idle"
	if loading {
		state = "loading"
	}
	main := "Ready"
	if err != nil {
		state = "warning"
		main = err.Error()
	}
	if status != "" {
		main = status
	}
	return fmt.Sprintf("%s: %s | %s", th.StateStyle(state).Render("state"), state, th.MetaValue.Render(main))
}

var helpEntries = [][2]string{
	{"drag, arrows, hjkl", "pan the wall"},
	{"wheel, + and -", "zoom about the pointer or the centre"},
	{"0", "reset to the top-left corner"},
	{"/", "jump to a cell, typed as x,y"},
	{"o", "open the centre post's image in the browser"},
	{"y", "copy the centre post's image URL"},
	{"s", "save a PNG snapshot of the wall"},
	{"m", "show or hide the minimap"},
	{"[ and ]", "fewer or more wall pixels per glyph"},
	{"r", "resume the post listing after an error"},
	{"?", "close this help"},
	{"q", "quit and remember the view"},
}

func HelpLines(th tuitheme.Theme) []string {
	lines := make([]string, 0, len(helpEntries))
	for _, e := range helpEntries {
		lines = append(lines, fmt.Sprintf("  %-20s %s", th.HelpKey.Render(e[0]), th.HelpText.Render(e[1])))
	}
	return lines
}
