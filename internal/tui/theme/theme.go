package theme

import (
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Title         lipgloss.Style
	ZoomPill      lipgloss.Style
	PostCount     lipgloss.Style
	MetaLabel     lipgloss.Style
	MetaValue     lipgloss.Style
	StateIdle     lipgloss.Style
	StateWarn     lipgloss.Style
	StateLoad     lipgloss.Style
	ProgressFill  lipgloss.Style
	ProgressEmpty lipgloss.Style
	HelpKey       lipgloss.Style
	HelpText      lipgloss.Style
	Prompt        lipgloss.Style
}

// Default uses a warm palette that sits next to the wall's brown background.
func Default() Theme {
	amber := lipgloss.Color("#c97b2f")
	sand := lipgloss.Color("#e8c9a0")
	cream := lipgloss.Color("#f5e6d3")
	rust := lipgloss.Color("#d9534f")
	olive := lipgloss.Color("#9bb068")
	peach := lipgloss.Color("#f0a868")
	mutedBrown := lipgloss.Color("#8a6a4a")
	darkBrown := lipgloss.Color("#3a2414")

	return Theme{
		Title:         lipgloss.NewStyle().Bold(true).Foreground(amber),
		ZoomPill:      lipgloss.NewStyle().Foreground(cream).Background(darkBrown).Padding(0, 1),
		PostCount:     lipgloss.NewStyle().Foreground(sand).Bold(true),
		MetaLabel:     lipgloss.NewStyle().Foreground(mutedBrown),
		MetaValue:     lipgloss.NewStyle().Foreground(sand),
		StateIdle:     lipgloss.NewStyle().Foreground(olive),
		StateWarn:     lipgloss.NewStyle().Foreground(rust),
		StateLoad:     lipgloss.NewStyle().Foreground(peach),
		ProgressFill:  lipgloss.NewStyle().Foreground(amber),
		ProgressEmpty: lipgloss.NewStyle().Foreground(darkBrown),
		HelpKey:       lipgloss.NewStyle().Bold(true).Foreground(peach),
		HelpText:      lipgloss.NewStyle().Foreground(cream),
		Prompt:        lipgloss.NewStyle().Bold(true).Foreground(amber),
	}
}

// Pill renders the zoom indicator.
func (t Theme) Pill(text string) string {
	if text == "" {
		return text
	}
	return t.ZoomPill.Render(text)
}

// StateStyle picks the colour for a HUD state word.
func (t Theme) StateStyle(state string) lipgloss.Style {
	switch state {
	case "warning":
		return t.StateWarn
	case "loading":
		return t.StateLoad
	default:
		return t.StateIdle
	}
}
