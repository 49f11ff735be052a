package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/metcalfc/moonriver/internal/app"
)

// Run starts the terminal reader and blocks until it quits.
func Run(ctx context.Context, a *app.App, storyID string) error {
	m := New(a, storyID)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run reader: %w", err)
	}
	return nil
}
