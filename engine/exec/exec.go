// Package exec runs a single goal against a logic machine under exception
// containment.
package exec

import (
	"errors"
	"fmt"

	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/types"
)

// Machine opens queries. Implementations allow at most one open query at a
// time and return an error wrapping types.ErrBusy otherwise.
type Machine interface {
	Open(goal term.Term) (Query, error)
}

// Query is an open query. Next returns the goal instance of the next
// solution; ok is false when there are no more. An error from Next is an
// uncaught exception raised by the goal. Close must be called exactly once.
type Query interface {
	Next() (solution term.Term, ok bool, err error)
	Close() error
}

// Outcome is the three-way result of executing a goal.
type Outcome int

const (
	NotSolved Outcome = iota
	Solved
	Exception
)

func (o Outcome) String() string {
	switch o {
	case Solved:
		return "solved"
	case NotSolved:
		return "not_solved"
	case Exception:
		return "exception"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Result of Execute. Goal holds the solved instance when Outcome is Solved.
// Err is set when Outcome is Exception.
type Result struct {
	Outcome Outcome
	Goal    term.Term
	Err     error
}

// Message is the exception text, or "" when no exception was raised.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Execute opens a query for goal, steps it once and closes it before
// returning. The solved instance is captured before the close.
func Execute(m Machine, goal term.Term) (res Result) {
	q, err := m.Open(goal)
	if err != nil {
		return Result{Outcome: Exception, Err: wrapEngine(err)}
	}
	defer func() {
		if cerr := q.Close(); cerr != nil && res.Outcome != Exception {
			res = Result{Outcome: Exception, Err: wrapEngine(cerr)}
		}
	}()

	sol, ok, err := q.Next()
	switch {
	case err != nil:
		return Result{Outcome: Exception, Err: wrapEngine(err)}
	case !ok:
		return Result{Outcome: NotSolved}
	}
	return Result{Outcome: Solved, Goal: sol}
}

func wrapEngine(err error) error {
	if errors.Is(err, types.ErrEngine) || errors.Is(err, types.ErrBusy) {
		return err
	}
	return fmt.Errorf("%w: %v", types.ErrEngine, err)
}
