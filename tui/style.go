package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleStatusError = lipgloss.NewStyle().
				Background(lipgloss.Color("52")).
				Foreground(lipgloss.Color("252")).
				Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleOutput = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleBinding = lipgloss.NewStyle().
			Foreground(lipgloss.Color("81"))

	styleTrue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleFalse = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleUserInput = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindOutput lineKind = iota
	kindBinding
	kindTrue
	kindFalse
	kindError
)

// classifyLine tells answers apart from goal output.
func classifyLine(line string) lineKind {
	switch {
	case line == "true.":
		return kindTrue
	case line == "false.":
		return kindFalse
	case strings.HasPrefix(line, "Error: "):
		return kindError
	case isBindingLine(line):
		return kindBinding
	default:
		return kindOutput
	}
}

// isBindingLine matches "X = value ;" and "X = value, Y = value." answers.
func isBindingLine(line string) bool {
	if !strings.HasSuffix(line, ".") && !strings.HasSuffix(line, " ;") {
		return false
	}
	name, _, ok := strings.Cut(line, " = ")
	if !ok || name == "" {
		return false
	}
	if c := name[0]; c != '_' && (c < 'A' || c > 'Z') {
		return false
	}
	return !strings.ContainsAny(name, " (")
}

func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindBinding:
		return styleBinding.Render(line)
	case kindTrue:
		return styleTrue.Render(line)
	case kindFalse:
		return styleFalse.Render(line)
	case kindError:
		return styleError.Render(line)
	default:
		return styleOutput.Render(line)
	}
}

// styledSystemMsg renders a meta-command message in gray with brackets.
func styledSystemMsg(text string, failed bool) string {
	if failed {
		return styleError.Render("[" + text + "]")
	}
	return styleSystem.Render("[" + text + "]")
}
