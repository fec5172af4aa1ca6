package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width status line showing the engine
// state, goal and error counts, and the outcome of the last line.
func (m Model) renderStatusBar() string {
	state := "stopped"
	if m.session.Engine.IsInitialized() {
		state = "ready"
	}

	left := fmt.Sprintf(" prologot | %s | goals: %d | errors: %d", state, m.goals, m.errors)
	right := ""
	if m.last != "" {
		right = "last: " + m.last + " "
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	style := styleStatusBar
	if m.lastFailed {
		style = styleStatusError
	}
	return style.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}
