// Package cli provides the line-oriented REPL and the meta-command session
// shared with the terminal UI.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// CLI reads goals and meta-commands line by line.
type CLI struct {
	Session   *Session
	In        io.Reader
	Out       io.Writer
	Prompt    string
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI on stdin and stdout.
func New(s *Session) *CLI {
	return &CLI{
		Session: s,
		In:      os.Stdin,
		Out:     os.Stdout,
		Prompt:  "?- ",
	}
}

// Run loops until /quit or end of input. It reports whether every goal and
// command succeeded, for script exit status.
func (c *CLI) Run() bool {
	ok := true
	scanner := bufio.NewScanner(c.In)
	for {
		c.print(c.Prompt)
		if !scanner.Scan() {
			break
		}
		lineOK, quit := c.handle(scanner.Text())
		ok = ok && lineOK
		if quit {
			return ok
		}
	}
	c.printLine("")
	return ok
}

// handle runs one input line and prints the reply.
func (c *CLI) handle(line string) (ok, quit bool) {
	input := strings.TrimSpace(line)
	if input == "" {
		return true, false
	}
	// Comment lines in script files.
	if strings.HasPrefix(input, "#") || strings.HasPrefix(input, "%") {
		return true, false
	}
	if c.EchoInput {
		c.printLine(input)
	}

	r := c.Session.Exec(input)
	for _, line := range r.Lines {
		if r.System {
			c.printSystem(line)
		} else {
			c.printLine(line)
		}
	}
	return !r.Failed, r.Quit
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	if text == "" {
		c.printLine("")
		return
	}
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
