package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/prologot/engine/collect"
	"github.com/nathoo/prologot/engine/exec"
	"github.com/nathoo/prologot/engine/goal"
	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/types"
)

// AddFact adds a clause to the knowledge base, e.g. "parent(tom, bob)" or
// "grandparent(X, Z) :- parent(X, Y), parent(Y, Z)". One trailing period is
// allowed.
func (e *Engine) AddFact(text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "assert fact"
	clause, ok := e.parseFact(op, text)
	if !ok {
		return false
	}
	if e.run(op, term.New("assertz", clause)).Outcome != exec.Solved {
		return false
	}
	e.remember(clause)
	return true
}

// RetractFact removes the first clause unifying with text.
func (e *Engine) RetractFact(text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "retract fact"
	clause, ok := e.parseFact(op, text)
	if !ok {
		return false
	}
	return e.run(op, term.New("retract", clause)).Outcome == exec.Solved
}

// RetractAll removes every clause whose head unifies with pattern. It
// succeeds whenever retractall/1 does, including when nothing matched.
func (e *Engine) RetractAll(pattern string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "retract all"
	if !e.ready(op) {
		return false
	}
	p := goal.StripPeriod(pattern)
	if p == "" {
		e.fail(op, fmt.Errorf("%w: empty pattern", types.ErrEmptyInput))
		return false
	}
	g, err := e.parseGoal("retractall(" + p + ")")
	if err != nil {
		e.fail(op, err)
		return false
	}
	return e.run(op, g).Outcome == exec.Solved
}

func (e *Engine) parseFact(op, text string) (term.Term, bool) {
	if !e.ready(op) {
		return nil, false
	}
	if strings.TrimSpace(text) == "" {
		e.fail(op, fmt.Errorf("%w: empty fact", types.ErrEmptyInput))
		return nil, false
	}
	clause, err := e.parseGoal(text)
	if err != nil {
		e.fail(op, err)
		return nil, false
	}
	return clause, true
}

// CreatedPredicates returns the predicates created through AddFact or
// ConsultString, in creation order.
func (e *Engine) CreatedPredicates() []types.Indicator {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]types.Indicator(nil), e.created...)
}

// Clauses returns the clauses of every predicate created through AddFact
// or ConsultString, as source text without the end dot. Facts are written
// as their head; rules as "Head :- Body".
func (e *Engine) Clauses() ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	const op = "list clauses"
	if !e.ready(op) {
		return nil, e.lastErr
	}
	var out []string
	for _, pi := range e.created {
		args := make([]term.Term, pi.Arity)
		for i := range args {
			args[i] = term.Var{Name: fmt.Sprintf("A%d", i+1)}
		}
		head := term.New(pi.Name, args...)
		body := term.Var{Name: "Body"}
		instances, res := collect.Terms(e.machine, term.New(":-", head, body), term.New("clause", head, body))
		if res.Outcome == exec.Exception {
			e.fail(op, res.Err)
			return nil, e.lastErr
		}
		for _, inst := range instances {
			h, _ := term.Arg(inst, 1)
			b, _ := term.Arg(inst, 2)
			if b == term.True {
				out = append(out, term.Canonical(h))
			} else {
				out = append(out, term.Canonical(h)+" :- "+term.Canonical(b))
			}
		}
	}
	return out, nil
}
