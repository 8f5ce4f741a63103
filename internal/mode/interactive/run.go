// ABOUTME: Entry point for the chat TUI
// ABOUTME: Creates the tea.Program on the alternate screen and blocks until exit

package interactive

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the chat. Blocks until the visitor quits or ctx ends.
func Run(ctx context.Context, deps AppDeps) error {
	p := tea.NewProgram(
		NewAppModel(deps),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
