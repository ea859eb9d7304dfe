package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Run starts the full-screen program and blocks until the player quits.
// Colour follows the terminal's profile, honouring NO_COLOR and CLICOLOR_FORCE.
func Run(ctx context.Context, opts Options) error {
	profile := termenv.EnvColorProfile()
	lipgloss.SetColorProfile(profile)
	opts.Color = profile != termenv.Ascii

	model := NewModel(ctx, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
