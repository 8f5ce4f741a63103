// ABOUTME: Fixes lipgloss to a dark background before bubbletea initializes
// ABOUTME: Blank-import from main ahead of any package that pulls in bubbletea

package termfix

import "github.com/charmbracelet/lipgloss"

func init() {
	// With the background already known, lipgloss skips the OSC 10/11
	// query whose late reply would otherwise land in the chat input.
	// Importing bubbletea here would break the init ordering.
	lipgloss.SetHasDarkBackground(true)
}
