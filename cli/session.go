package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/nathoo/prologot/engine"
	"github.com/nathoo/prologot/save"
	"github.com/nathoo/prologot/value"
)

// Reply is the result of one input line.
type Reply struct {
	Lines  []string // goal output and answers
	System bool     // lines are meta-command messages
	Failed bool     // the goal raised an error or a command failed
	Quit   bool
}

// Session interprets REPL lines against an engine. Lines starting with '/'
// are meta-commands; anything else is a goal.
type Session struct {
	Engine  *engine.Engine
	SaveDir string

	// Captured, when set, is the engine's goal output writer. Its contents
	// are moved into each reply.
	Captured *bytes.Buffer

	lastGoal string
}

// NewSession creates a session saving snapshots under ~/.prologot/saves.
func NewSession(eng *engine.Engine) *Session {
	home, _ := os.UserHomeDir()
	return &Session{
		Engine:  eng,
		SaveDir: filepath.Join(home, ".prologot", "saves"),
	}
}

// Exec runs one input line.
func (s *Session) Exec(line string) Reply {
	line = strings.TrimSpace(line)
	if line == "" {
		return Reply{}
	}
	if strings.HasPrefix(line, "/") {
		r := s.meta(line)
		r.System = true
		return r
	}
	if line == "again" || line == "g" {
		if s.lastGoal == "" {
			return Reply{Lines: []string{"Nothing to repeat."}, System: true}
		}
		line = s.lastGoal
	} else {
		s.lastGoal = line
	}
	return s.solve(line)
}

func (s *Session) solve(goal string) Reply {
	answers, err := s.Engine.Solve(goal)
	r := Reply{Lines: s.drain()}
	if err != nil {
		r.Lines = append(r.Lines, "Error: "+err.Error())
		r.Failed = true
		return r
	}
	r.Lines = append(r.Lines, FormatAnswers(answers)...)
	return r
}

func (s *Session) drain() []string {
	if s.Captured == nil || s.Captured.Len() == 0 {
		return nil
	}
	text := strings.TrimRight(s.Captured.String(), "\n")
	s.Captured.Reset()
	return strings.Split(text, "\n")
}

// FormatAnswers renders toplevel answers: one line per solution with its
// bindings, or true./false. when there is nothing to show.
func FormatAnswers(answers []value.Value) []string {
	if len(answers) == 0 {
		return []string{"false."}
	}
	var lines []string
	for i, a := range answers {
		m, _ := a.AsMap()
		if len(m) == 0 {
			continue
		}
		end := " ;"
		if i == len(answers)-1 {
			end = "."
		}
		lines = append(lines, formatBindings(m)+end)
	}
	if len(lines) == 0 {
		return []string{"true."}
	}
	return lines
}

func formatBindings(m map[string]value.Value) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		v := m[k]
		text := v.Text()
		if v.IsNull() {
			text = "_"
		}
		parts[i] = k + " = " + text
	}
	return strings.Join(parts, ", ")
}

// meta dispatches a meta-command.
func (s *Session) meta(input string) Reply {
	cmd, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return Reply{Lines: []string{"Goodbye."}, Quit: true}
	case "/help":
		return Reply{Lines: helpLines}
	case "/consult":
		if arg == "" {
			return failed("Usage: /consult <file>")
		}
		return s.check(s.Engine.ConsultFile(arg), "Consulted "+arg+".")
	case "/assert":
		return s.check(s.Engine.AddFact(arg), "Asserted.")
	case "/retract":
		return s.check(s.Engine.RetractFact(arg), "Retracted.")
	case "/retractall":
		return s.check(s.Engine.RetractAll(arg), "Retracted all matching clauses.")
	case "/exists":
		return s.cmdExists(arg)
	case "/preds":
		return s.cmdPreds()
	case "/clauses":
		return s.cmdClauses()
	case "/error":
		if msg := s.Engine.LastError(); msg != "" {
			return Reply{Lines: []string{msg}}
		}
		return Reply{Lines: []string{"No error recorded."}}
	case "/stats":
		return s.cmdStats()
	case "/save":
		return s.cmdSave(arg)
	case "/load":
		return s.cmdLoad(arg)
	default:
		return failed(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
}

var helpLines = []string{
	"Meta commands:",
	"  /consult <file>      Load a Prolog file (res:// and user:// allowed)",
	"  /assert <clause>     Add a fact or rule",
	"  /retract <clause>    Remove the first matching clause",
	"  /retractall <head>   Remove every matching clause",
	"  /exists <name/N>     Check whether a predicate exists",
	"  /preds               List visible predicates",
	"  /clauses             Show clauses added in this session",
	"  /error               Show the last error",
	"  /stats               Show query counters",
	"  /save [name]         Save added clauses (default: quicksave)",
	"  /load [name]         Restore a snapshot (default: quicksave)",
	"  /quit                Exit",
	"",
	"Anything else is run as a goal, e.g. parent(X, bob).",
	"again (g) repeats the last goal.",
}

func failed(msg string) Reply {
	return Reply{Lines: []string{msg}, Failed: true}
}

// check turns a boolean engine result into a reply.
func (s *Session) check(ok bool, success string) Reply {
	if ok {
		return Reply{Lines: []string{success}}
	}
	msg := s.Engine.LastError()
	if msg == "" {
		msg = "false."
	}
	return failed(msg)
}

func (s *Session) cmdExists(arg string) Reply {
	i := strings.LastIndex(arg, "/")
	if i <= 0 {
		return failed("Usage: /exists <name>/<arity>")
	}
	arity, err := strconv.Atoi(arg[i+1:])
	if err != nil || arity < 0 {
		return failed("Usage: /exists <name>/<arity>")
	}
	if s.Engine.PredicateExists(arg[:i], arity) {
		return Reply{Lines: []string{"yes"}}
	}
	return Reply{Lines: []string{"no"}}
}

func (s *Session) cmdPreds() Reply {
	preds := s.Engine.ListPredicates()
	if len(preds) == 0 {
		if msg := s.Engine.LastError(); msg != "" && !s.Engine.IsInitialized() {
			return failed(msg)
		}
		return Reply{Lines: []string{"No predicates."}}
	}
	lines := make([]string, 0, len(preds))
	for _, p := range preds {
		_, args, ok := p.CompoundParts()
		if !ok || len(args) != 2 {
			continue
		}
		lines = append(lines, args[0].Text()+"/"+args[1].Text())
	}
	sort.Strings(lines)
	return Reply{Lines: lines}
}

func (s *Session) cmdClauses() Reply {
	clauses, err := s.Engine.Clauses()
	if err != nil {
		return failed(err.Error())
	}
	if len(clauses) == 0 {
		return Reply{Lines: []string{"No clauses added."}}
	}
	lines := make([]string, len(clauses))
	for i, c := range clauses {
		lines[i] = c + "."
	}
	return Reply{Lines: lines}
}

func (s *Session) cmdStats() Reply {
	samples := s.Engine.Stats()
	if len(samples) == 0 {
		return Reply{Lines: []string{"No operations yet."}}
	}
	lines := make([]string, len(samples))
	for i, smp := range samples {
		lines[i] = fmt.Sprintf("%-16s %-11s %d", smp.Op, smp.Outcome, smp.Count)
	}
	return Reply{Lines: lines}
}

func (s *Session) cmdSave(name string) Reply {
	if name == "" {
		name = "quicksave"
	}

	path, err := s.savePath(name)
	if err != nil {
		return failed(fmt.Sprintf("Save failed: %v", err))
	}
	data, err := save.Save(s.Engine)
	if err != nil {
		return failed(fmt.Sprintf("Save failed: %v", err))
	}
	if err := os.MkdirAll(s.SaveDir, 0o755); err != nil {
		return failed(fmt.Sprintf("Save failed: %v", err))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return failed(fmt.Sprintf("Save failed: %v", err))
	}
	return Reply{Lines: []string{fmt.Sprintf("Saved to %s.", name)}}
}

func (s *Session) cmdLoad(name string) Reply {
	if name == "" {
		name = "quicksave"
	}

	path, err := s.savePath(name)
	if err != nil {
		return failed(fmt.Sprintf("Load failed: %v", err))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return failed(fmt.Sprintf("Load failed: %v", err))
	}
	sd, err := save.Load(data)
	if err != nil {
		return failed(fmt.Sprintf("Load failed: %v", err))
	}
	if err := save.Apply(s.Engine, sd); err != nil {
		return failed(fmt.Sprintf("Load failed: %v", err))
	}
	return Reply{Lines: []string{fmt.Sprintf("Loaded %s (%d clauses).", name, len(sd.Clauses))}}
}

// savePath maps a snapshot name to its file in SaveDir. Names are plain file
// names; anything that could resolve outside SaveDir is rejected.
func (s *Session) savePath(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid save name %q", name)
	}
	return filepath.Join(s.SaveDir, name+".json"), nil
}
