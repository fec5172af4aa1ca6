package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/prologot/cli"
)

// rawLine is one transcript line kept unstyled; the viewport is rebuilt
// from these on every resize.
type rawLine struct {
	text     string
	kind     lineKind
	isInput  bool
	isSystem bool
	failed   bool
}

// Model is the Bubble Tea model for the REPL.
type Model struct {
	session *cli.Session

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine

	width      int
	height     int
	ready      bool
	quitting   bool
	goals      int
	errors     int
	last       string
	lastFailed bool
}

// outputMsg carries one reply into the Update loop.
type outputMsg struct {
	input string // echoed input (empty for the banner)
	reply cli.Reply
}

// New creates a TUI model over a session. The session's engine should write
// goal output into session.Captured so it shows up in the viewport.
func New(s *cli.Session) Model {
	ti := textinput.New()
	ti.Prompt = "?- "
	ti.Focus()
	ti.CharLimit = 1024
	ti.PromptStyle = styleInputPrompt

	return Model{
		session: s,
		input:   ti,
		history: NewHistory(100),
	}
}

// Run opens the REPL on the alternate screen and blocks until it exits.
func Run(s *cli.Session) error {
	p := tea.NewProgram(New(s), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init shows the banner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, func() tea.Msg {
		return outputMsg{reply: cli.Reply{
			Lines:  []string{"prologot: enter a goal, or /help for commands."},
			System: true,
		}}
	})
}

// Update handles key presses, resizes and replies.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // status bar + input line
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case outputMsg:
		m = m.appendOutput(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEnter runs the submitted line through the session.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")
	if input == "" {
		return m, nil
	}
	m.history.Push(input)

	reply := m.session.Exec(input)
	if !reply.System {
		m.goals++
	}
	if reply.Failed {
		m.errors++
	}
	m.lastFailed = reply.Failed
	m.last = summarize(reply)

	m = m.appendOutput(outputMsg{input: input, reply: reply})
	if reply.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// summarize picks the status bar text for a reply.
func summarize(r cli.Reply) string {
	switch {
	case r.Failed:
		return "error"
	case r.System || len(r.Lines) == 0:
		return "ok"
	}
	last := r.Lines[len(r.Lines)-1]
	if last == "false." {
		return "false"
	}
	return "true"
}

// appendOutput adds a reply to the transcript and refreshes the viewport.
func (m Model) appendOutput(msg outputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "?- " + msg.input, isInput: true})
	}
	for _, line := range msg.reply.Lines {
		rl := rawLine{text: line, isSystem: msg.reply.System, failed: msg.reply.Failed}
		if !rl.isSystem {
			rl.kind = classifyLine(line)
		}
		m.rawLines = append(m.rawLines, rl)
	}
	m.rawLines = append(m.rawLines, rawLine{})
	m.refreshViewport()
	return m
}

// refreshViewport re-wraps and re-styles all raw lines at the current width.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	width := m.width
	if width < 10 {
		width = 10
	}

	styled := make([]string, 0, len(m.rawLines))
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}
		wrapped := wordWrap(rl.text, width)
		switch {
		case rl.isInput:
			styled = append(styled, styleUserInput.Render(wrapped))
		case rl.isSystem:
			styled = append(styled, styledSystemMsg(wrapped, rl.failed))
		default:
			styled = append(styled, renderLineKind(wrapped, rl.kind))
		}
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text at word boundaries. Lines that already fit, and
// single words longer than width, are left alone.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}
	var b strings.Builder
	n := 0
	for i, word := range strings.Fields(text) {
		switch {
		case i == 0:
		case n+1+len(word) > width:
			b.WriteByte('\n')
			n = 0
		default:
			b.WriteByte(' ')
			n++
		}
		b.WriteString(word)
		n += len(word)
	}
	return b.String()
}

// View renders the viewport, status bar and input line.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return m.viewport.View() + "\n" + m.renderStatusBar() + "\n" + m.input.View()
}

// viewportKeyMap disables Up/Down in the viewport; they drive history.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+f")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+b")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
