package cli

import (
	"errors"
	"os"

	"github.com/peterh/liner"
)

// Interactive runs the REPL on the terminal with line editing. History is
// read from and written back to historyPath when it is not empty.
func (c *CLI) Interactive(historyPath string) bool {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	ok := true
	for {
		line, err := ln.Prompt(c.Prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil { // io.EOF on Ctrl+D
			break
		}
		if line != "" {
			ln.AppendHistory(line)
		}
		lineOK, quit := c.handle(line)
		ok = ok && lineOK
		if quit {
			return ok
		}
	}
	c.printLine("")
	return ok
}
