package collect

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nathoo/prologot/engine/exec"
	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/value"
)

// scripted answers the first Next with reply(goal), or with err.
type scripted struct {
	reply  func(goal term.Term) (term.Term, bool)
	err    error
	opened int
	closed int
	goals  []term.Term
}

type scriptedQuery struct {
	s    *scripted
	goal term.Term
}

func (s *scripted) Open(g term.Term) (exec.Query, error) {
	s.opened++
	s.goals = append(s.goals, g)
	return &scriptedQuery{s: s, goal: g}, nil
}

func (q *scriptedQuery) Next() (term.Term, bool, error) {
	if q.s.err != nil {
		return nil, false, q.s.err
	}
	sol, ok := q.s.reply(q.goal)
	return sol, ok, nil
}

func (q *scriptedQuery) Close() error {
	q.s.closed++
	return nil
}

func parent(a, b term.Term) term.Term {
	return term.Compound{Functor: "parent", Args: []term.Term{a, b}}
}

// family answers parent/2 goals and findall over them from two facts.
func family() *scripted {
	facts := []term.Term{
		parent(term.Atom("tom"), term.Atom("bob")),
		parent(term.Atom("bob"), term.Atom("ann")),
	}
	return &scripted{reply: func(g term.Term) (term.Term, bool) {
		c := g.(term.Compound)
		if c.Functor == "findall" {
			return term.Compound{Functor: "findall", Args: []term.Term{c.Args[0], c.Args[1], term.List(facts...)}}, true
		}
		for _, f := range facts {
			if matches(c, f.(term.Compound)) {
				return f, true
			}
		}
		return nil, false
	}}
}

func matches(pattern, fact term.Compound) bool {
	for i, a := range pattern.Args {
		if _, isVar := a.(term.Var); !isVar && a != fact.Args[i] {
			return false
		}
	}
	return true
}

func TestExtractable(t *testing.T) {
	tests := []struct {
		names []value.Value
		want  bool
	}{
		{nil, false},
		{[]value.Value{value.Str("X"), value.Str("_Y")}, true},
		{[]value.Value{value.Str("X"), value.Str("bob")}, false},
		{[]value.Value{value.Str("X"), value.Int(1)}, false},
		{[]value.Value{value.Str("")}, false},
		{[]value.Value{value.Str("Tom")}, true},
	}
	for _, tt := range tests {
		if got := Extractable(tt.names); got != tt.want {
			t.Errorf("Extractable(%v) = %v, want %v", tt.names, got, tt.want)
		}
	}
}

func TestOneWithNames(t *testing.T) {
	m := family()
	got, res := One(m, parent(term.Atom("tom"), term.Var{Name: "X"}),
		[]value.Value{value.Str("tom"), value.Str("X")})
	if res.Outcome != exec.Solved {
		t.Fatalf("Outcome = %v, want solved", res.Outcome)
	}
	// "tom" is not a variable name, so the whole instance comes back.
	want := value.Compound("parent", value.Str("tom"), value.Str("bob"))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("One mismatch (-want +got):\n%s", diff)
	}

	got, _ = One(m, parent(term.Var{Name: "X"}, term.Var{Name: "Y"}),
		[]value.Value{value.Str("X"), value.Str("Y")})
	want = value.Map(map[string]value.Value{"X": value.Str("tom"), "Y": value.Str("bob")})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("One bindings mismatch (-want +got):\n%s", diff)
	}
	if m.opened != m.closed {
		t.Errorf("opened %d queries but closed %d", m.opened, m.closed)
	}
}

func TestOneNamesBeyondArity(t *testing.T) {
	m := family()
	got, _ := One(m, parent(term.Var{Name: "X"}, term.Var{Name: "Y"}),
		[]value.Value{value.Str("X"), value.Str("Y"), value.Str("Z")})
	if got.Len() != 2 {
		t.Errorf("got %v, want only X and Y bound", got)
	}
}

func TestOneFailureAndException(t *testing.T) {
	got, res := One(family(), parent(term.Atom("nonexistent"), term.Var{Name: "X"}), nil)
	if !got.IsNull() || res.Outcome != exec.NotSolved {
		t.Errorf("One = %v %v, want null not_solved", got, res.Outcome)
	}

	m := &scripted{err: errors.New("boom")}
	got, res = One(m, term.Atom("explode"), nil)
	if !got.IsNull() || res.Outcome != exec.Exception {
		t.Errorf("One = %v %v, want null exception", got, res.Outcome)
	}
	if m.closed != 1 {
		t.Errorf("closed = %d, want 1", m.closed)
	}
}

func TestAll(t *testing.T) {
	m := family()
	got, res := All(m, parent(term.Var{Name: "X"}, term.Var{Name: "Y"}),
		[]value.Value{value.Str("X"), value.Str("Y")})
	if res.Outcome != exec.Solved {
		t.Fatalf("Outcome = %v, want solved", res.Outcome)
	}
	want := []value.Value{
		value.Map(map[string]value.Value{"X": value.Str("tom"), "Y": value.Str("bob")}),
		value.Map(map[string]value.Value{"X": value.Str("bob"), "Y": value.Str("ann")}),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("All mismatch (-want +got):\n%s", diff)
	}
	if m.opened != 1 {
		t.Errorf("opened = %d, want one findall query", m.opened)
	}
	if f, _, _ := term.NameArity(m.goals[0]); f != "findall" {
		t.Errorf("goal = %s, want findall/3", term.Canonical(m.goals[0]))
	}
}

func TestAllRawAndException(t *testing.T) {
	got, _ := All(family(), parent(term.Var{Name: "X"}, term.Var{Name: "Y"}), nil)
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	if f, args, ok := got[1].CompoundParts(); !ok || f != "parent" || len(args) != 2 {
		t.Errorf("raw result = %v, want parent compound", got[1])
	}

	got, res := All(&scripted{err: errors.New("boom")}, term.Atom("explode"), nil)
	if len(got) != 0 || res.Outcome != exec.Exception {
		t.Errorf("All = %v %v, want empty exception", got, res.Outcome)
	}
}

func TestTerms(t *testing.T) {
	m := family()
	tmpl := term.Var{Name: "X"}
	got, _ := Terms(m, tmpl, parent(tmpl, term.Var{Name: "_"}))
	if len(got) != 2 {
		t.Errorf("Terms returned %d instances, want 2", len(got))
	}
}
