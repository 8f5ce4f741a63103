// ABOUTME: Lipgloss palette for the chat TUI with adaptive light/dark colors
// ABOUTME: Styles() builds once; views call it freely

package interactive

import (
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// ThemeStyles holds the styles every chat view draws with.
type ThemeStyles struct {
	Title     lipgloss.Style
	Prompt    lipgloss.Style
	UserLabel lipgloss.Style
	UserText  lipgloss.Style
	BotLabel  lipgloss.Style
	Typing    lipgloss.Style
	Chip      lipgloss.Style
	ChipKey   lipgloss.Style
	Selection lipgloss.Style
	Border    lipgloss.Style
	Dim       lipgloss.Style
	Warning   lipgloss.Style
}

var (
	accent = lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#A78BFA"}
	user   = lipgloss.AdaptiveColor{Light: "#0B7285", Dark: "#66D9E8"}
	muted  = lipgloss.AdaptiveColor{Light: "#868E96", Dark: "#6C757D"}
	warn   = lipgloss.AdaptiveColor{Light: "#C92A2A", Dark: "#FF8787"}
)

var styles = sync.OnceValue(func() ThemeStyles {
	return ThemeStyles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(accent),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		UserLabel: lipgloss.NewStyle().Bold(true).Foreground(user),
		UserText:  lipgloss.NewStyle().Foreground(user),
		BotLabel:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Typing:    lipgloss.NewStyle().Italic(true).Foreground(muted),
		Chip:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted).Padding(0, 1),
		ChipKey:   lipgloss.NewStyle().Faint(true),
		Selection: lipgloss.NewStyle().Reverse(true),
		Border:    lipgloss.NewStyle().Foreground(muted),
		Dim:       lipgloss.NewStyle().Faint(true),
		Warning:   lipgloss.NewStyle().Foreground(warn),
	}
})

// Styles returns the chat palette.
func Styles() ThemeStyles {
	return styles()
}
