// Package vm adapts the pure-Go ichiban/prolog interpreter to the
// exec.Machine port.
//
// Goals are handed to the interpreter as engine terms built from term.Term,
// and each solution is read back by resolving the goal under the solution's
// bindings. Source text is read with the interpreter's own parser, so
// operators defined with op/3 and the current flags apply.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/ichiban/prolog"
	"github.com/ichiban/prolog/engine"

	"github.com/nathoo/prologot/engine/exec"
	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/types"
)

// Machine owns one interpreter. At most one query is open at a time.
type Machine struct {
	mu     sync.Mutex
	interp *prolog.Interpreter
	open   bool
}

// New creates a machine. Output written by goals (write/1 and friends) goes
// to out, which may be nil to discard it.
//
// Double-quoted text reads as an atom, so "hi" comes back to the host as
// the string hi rather than a list of characters. set_prolog_flag/2 can
// change that later.
func New(out io.Writer) *Machine {
	if out == nil {
		out = io.Discard
	}
	m := &Machine{interp: prolog.New(nil, out)}
	_ = m.interp.Exec(`:- set_prolog_flag(double_quotes, atom).`)
	return m
}

// Open starts a query that calls goal. The returned query reports the goal
// instance of each solution.
func (m *Machine) Open(goal term.Term) (exec.Query, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return nil, types.ErrBusy
	}
	vars := map[string]engine.Variable{}
	q := &query{
		m:     m,
		goal:  toEngine(goal, vars),
		names: make(map[engine.Variable]string, len(vars)),
		more:  make(chan bool, 1),
		next:  make(chan *engine.Env),
		done:  make(chan struct{}),
	}
	for name, v := range vars {
		q.names[v] = name
	}
	go q.run(&m.interp.VM)
	m.open = true
	return q, nil
}

// Exec loads clause text the way the interpreter's consult does, directives
// included.
func (m *Machine) Exec(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open {
		return types.ErrBusy
	}
	if err := m.interp.Exec(text); err != nil {
		return fmt.Errorf("%w: %v", types.ErrEngine, err)
	}
	return nil
}

// ReadTerm reads one term from text, which must not carry its end dot.
func (m *Machine) ReadTerm(text string) (term.Term, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	// The end dot goes on its own line so a trailing comment or symbol
	// character cannot swallow it.
	p := engine.NewParser(&m.interp.VM, strings.NewReader(text+"\n."))
	t, err := p.Term()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrParse, err)
	}
	if p.More() {
		return nil, fmt.Errorf("%w: unexpected text after term", types.ErrParse)
	}
	return fromEngine(t, nil, parsedNames(p.Vars))
}

// ReadClauses reads dot-terminated clauses one at a time and hands each to
// fn before reading the next, so an op/3 directive run by fn applies to the
// clauses after it. Reading stops at the first error from the parser or
// from fn.
func (m *Machine) ReadClauses(text string, fn func(term.Term) error) error {
	m.mu.Lock()
	p := engine.NewParser(&m.interp.VM, strings.NewReader(text))
	m.mu.Unlock()
	for {
		m.mu.Lock()
		if !p.More() {
			m.mu.Unlock()
			return nil
		}
		p.Vars = nil
		t, err := p.Term()
		var c term.Term
		if err == nil {
			c, err = fromEngine(t, nil, parsedNames(p.Vars))
		}
		m.mu.Unlock()
		if err != nil {
			return fmt.Errorf("%w: %v", types.ErrParse, err)
		}
		if err := fn(c); err != nil {
			return err
		}
	}
}

func parsedNames(vars []engine.ParsedVariable) map[engine.Variable]string {
	names := make(map[engine.Variable]string, len(vars))
	for _, v := range vars {
		names[v.Variable] = v.Name.String()
	}
	return names
}

type query struct {
	m     *Machine
	goal  engine.Term
	names map[engine.Variable]string

	more chan bool
	next chan *engine.Env
	done chan struct{}
	err  error

	finished bool
	closed   bool
}

// run drives the interpreter on its own goroutine. Each solution is sent on
// next and the search resumes only when more receives true; a closed more
// stops it.
func (q *query) run(vm *engine.VM) {
	defer close(q.done)
	defer close(q.next)
	defer func() {
		if r := recover(); r != nil {
			q.err = fmt.Errorf("panic: %v", r)
		}
	}()
	if !<-q.more {
		return
	}
	_, err := engine.Call(vm, q.goal, func(env *engine.Env) *engine.Promise {
		q.next <- env
		return engine.Bool(!<-q.more)
	}, nil).Force(context.Background())
	q.err = err
}

func (q *query) Next() (term.Term, bool, error) {
	q.m.mu.Lock()
	defer q.m.mu.Unlock()
	if q.closed {
		return nil, false, fmt.Errorf("%w: query already closed", types.ErrEngine)
	}
	if q.finished {
		return nil, false, nil
	}
	q.more <- true
	env, ok := <-q.next
	if !ok {
		q.finished = true
		if q.err != nil {
			return nil, false, fmt.Errorf("%w: %v", types.ErrEngine, q.err)
		}
		return nil, false, nil
	}
	t, err := fromEngine(q.goal, env, q.names)
	if err != nil {
		return nil, false, fmt.Errorf("%w: reading solution: %v", types.ErrEngine, err)
	}
	return t, true, nil
}

func (q *query) Close() error {
	q.m.mu.Lock()
	defer q.m.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	q.m.open = false
	close(q.more)
	<-q.done
	return nil
}

var errTooDeep = errors.New("term is nested too deeply or cyclic")
