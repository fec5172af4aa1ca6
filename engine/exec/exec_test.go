package exec

import (
	"errors"
	"strings"
	"testing"

	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/types"
)

// fakeMachine answers every goal from a fixed script and counts opens and
// closes.
type fakeMachine struct {
	solutions []term.Term
	nextErr   error
	openErr   error
	closeErr  error
	opened    int
	closed    int
	lastGoal  term.Term
}

type fakeQuery struct {
	m    *fakeMachine
	i    int
	done bool
}

func (m *fakeMachine) Open(goal term.Term) (Query, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	if m.opened != m.closed {
		return nil, types.ErrBusy
	}
	m.opened++
	m.lastGoal = goal
	return &fakeQuery{m: m}, nil
}

func (q *fakeQuery) Next() (term.Term, bool, error) {
	if q.m.nextErr != nil {
		return nil, false, q.m.nextErr
	}
	if q.i >= len(q.m.solutions) {
		return nil, false, nil
	}
	q.i++
	return q.m.solutions[q.i-1], true, nil
}

func (q *fakeQuery) Close() error {
	if q.done {
		panic("query closed twice")
	}
	q.done = true
	q.m.closed++
	return q.m.closeErr
}

func TestExecuteSolved(t *testing.T) {
	sol := term.Compound{Functor: "parent", Args: []term.Term{term.Atom("tom"), term.Atom("bob")}}
	m := &fakeMachine{solutions: []term.Term{sol}}
	res := Execute(m, term.Compound{Functor: "parent", Args: []term.Term{term.Atom("tom"), term.Var{Name: "X"}}})
	if res.Outcome != Solved {
		t.Fatalf("Outcome = %v, want solved", res.Outcome)
	}
	if term.Canonical(res.Goal) != "parent(tom,bob)" {
		t.Errorf("Goal = %s, want parent(tom,bob)", term.Canonical(res.Goal))
	}
	if res.Message() != "" {
		t.Errorf("Message = %q, want empty", res.Message())
	}
	if m.opened != 1 || m.closed != 1 {
		t.Errorf("opened/closed = %d/%d, want 1/1", m.opened, m.closed)
	}
}

func TestExecuteNotSolved(t *testing.T) {
	m := &fakeMachine{}
	res := Execute(m, term.Atom("fail"))
	if res.Outcome != NotSolved {
		t.Errorf("Outcome = %v, want not_solved", res.Outcome)
	}
	if m.closed != 1 {
		t.Errorf("closed = %d, want 1", m.closed)
	}
}

func TestExecuteException(t *testing.T) {
	m := &fakeMachine{nextErr: errors.New("existence_error(procedure, foo/0)")}
	res := Execute(m, term.Atom("foo"))
	if res.Outcome != Exception {
		t.Fatalf("Outcome = %v, want exception", res.Outcome)
	}
	if !errors.Is(res.Err, types.ErrEngine) {
		t.Errorf("Err = %v, want wrapping ErrEngine", res.Err)
	}
	if !strings.Contains(res.Message(), "existence_error") {
		t.Errorf("Message = %q, want the engine text", res.Message())
	}
	if m.opened != 1 || m.closed != 1 {
		t.Errorf("opened/closed = %d/%d, want 1/1", m.opened, m.closed)
	}
}

func TestExecuteOpenFailure(t *testing.T) {
	m := &fakeMachine{openErr: types.ErrBusy}
	res := Execute(m, term.Atom("true"))
	if res.Outcome != Exception || !errors.Is(res.Err, types.ErrBusy) {
		t.Errorf("Execute = %v %v, want exception wrapping ErrBusy", res.Outcome, res.Err)
	}
	if m.closed != 0 {
		t.Errorf("closed = %d, want 0 for a query that never opened", m.closed)
	}
}

func TestExecuteCloseFailure(t *testing.T) {
	m := &fakeMachine{solutions: []term.Term{term.Atom("true")}, closeErr: errors.New("close failed")}
	res := Execute(m, term.Atom("true"))
	if res.Outcome != Exception {
		t.Errorf("Outcome = %v, want exception when close fails", res.Outcome)
	}
}

func TestExecuteClosesBeforeNextOpen(t *testing.T) {
	m := &fakeMachine{solutions: []term.Term{term.Atom("true")}}
	for i := 0; i < 3; i++ {
		if res := Execute(m, term.Atom("true")); res.Outcome != Solved {
			t.Fatalf("run %d: Outcome = %v, want solved", i, res.Outcome)
		}
	}
	if m.opened != 3 || m.closed != 3 {
		t.Errorf("opened/closed = %d/%d, want 3/3", m.opened, m.closed)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{Solved: "solved", NotSolved: "not_solved", Exception: "exception"} {
		if got := o.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(o), got, want)
		}
	}
}
