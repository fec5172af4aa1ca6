// Package tui provides a Bubble Tea terminal REPL for the Prolog engine.
package tui

// History keeps submitted lines for Up/Down recall. The oldest line is
// dropped once max is reached.
type History struct {
	lines []string
	max   int
	pos   int // len(lines) when not navigating
}

// NewHistory creates a history holding at most max lines.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Push records a line and ends navigation. A repeat of the newest line is
// not stored twice.
func (h *History) Push(line string) {
	if n := len(h.lines); n == 0 || h.lines[n-1] != line {
		h.lines = append(h.lines, line)
		if len(h.lines) > h.max {
			h.lines = h.lines[len(h.lines)-h.max:]
		}
	}
	h.pos = len(h.lines)
}

// Prev steps back to an older line, stopping at the oldest.
func (h *History) Prev() (string, bool) {
	if len(h.lines) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.lines[h.pos], true
}

// Next steps forward. It returns false once past the newest line, which
// means the input should be cleared.
func (h *History) Next() (string, bool) {
	if h.pos >= len(h.lines) {
		return "", false
	}
	h.pos++
	if h.pos == len(h.lines) {
		return "", false
	}
	return h.lines[h.pos], true
}

// ResetCursor ends navigation.
func (h *History) ResetCursor() {
	h.pos = len(h.lines)
}

// Len returns the number of stored lines.
func (h *History) Len() int { return len(h.lines) }
