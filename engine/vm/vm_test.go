package vm

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"go.uber.org/goleak"

	"github.com/nathoo/prologot/engine/exec"
	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func mustRead(t *testing.T, m *Machine, text string) term.Term {
	t.Helper()
	tm, err := m.ReadTerm(text)
	if err != nil {
		t.Fatalf("ReadTerm(%q): %v", text, err)
	}
	return tm
}

func family(t *testing.T) *Machine {
	t.Helper()
	m := New(nil)
	if err := m.Exec(`parent(tom, bob). parent(bob, ann).`); err != nil {
		t.Fatalf("Exec failed: %v", err)
	}
	return m
}

func TestOpenReportsGoalInstance(t *testing.T) {
	m := family(t)
	res := exec.Execute(m, mustRead(t, m, "parent(tom, X)"))
	if res.Outcome != exec.Solved {
		t.Fatalf("Outcome = %v (%s), want solved", res.Outcome, res.Message())
	}
	if got := term.Canonical(res.Goal); got != "parent(tom,bob)" {
		t.Errorf("Goal = %s, want parent(tom,bob)", got)
	}
}

func TestOpenFailure(t *testing.T) {
	m := family(t)
	res := exec.Execute(m, mustRead(t, m, "parent(ann, _)"))
	if res.Outcome != exec.NotSolved {
		t.Errorf("Outcome = %v, want not_solved", res.Outcome)
	}
}

func TestOpenException(t *testing.T) {
	m := family(t)
	res := exec.Execute(m, mustRead(t, m, "no_such_predicate(1)"))
	if res.Outcome != exec.Exception {
		t.Fatalf("Outcome = %v, want exception", res.Outcome)
	}
	if !errors.Is(res.Err, types.ErrEngine) {
		t.Errorf("Err = %v, want ErrEngine", res.Err)
	}
	if !strings.Contains(res.Message(), "no_such_predicate") {
		t.Errorf("Message = %q, want it to name the predicate", res.Message())
	}

	// The machine is usable again after an exception.
	if res := exec.Execute(m, mustRead(t, m, "parent(bob, ann)")); res.Outcome != exec.Solved {
		t.Errorf("Outcome after exception = %v, want solved", res.Outcome)
	}
}

func TestSecondOpenIsBusy(t *testing.T) {
	m := family(t)
	q, err := m.Open(mustRead(t, m, "parent(X, Y)"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Open(mustRead(t, m, "true")); !errors.Is(err, types.ErrBusy) {
		t.Errorf("second Open error = %v, want ErrBusy", err)
	}
	if err := m.Exec("foo."); !errors.Is(err, types.ErrBusy) {
		t.Errorf("Exec during open query = %v, want ErrBusy", err)
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
	q2, err := m.Open(mustRead(t, m, "true"))
	if err != nil {
		t.Fatalf("Open after Close: %v", err)
	}
	q2.Close()
}

func TestStepThroughSolutions(t *testing.T) {
	m := family(t)
	q, err := m.Open(mustRead(t, m, "parent(X, Y)"))
	if err != nil {
		t.Fatal(err)
	}
	defer q.Close()
	var got []string
	for {
		sol, ok, err := q.Next()
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		got = append(got, term.Canonical(sol))
	}
	want := "parent(tom,bob) parent(bob,ann)"
	if strings.Join(got, " ") != want {
		t.Errorf("solutions = %v, want %s", got, want)
	}
}

func TestGoalOutputIsForwarded(t *testing.T) {
	var out bytes.Buffer
	m := New(&out)
	res := exec.Execute(m, mustRead(t, m, "write(hello), nl"))
	if res.Outcome != exec.Solved {
		t.Fatalf("Outcome = %v (%s), want solved", res.Outcome, res.Message())
	}
	if out.String() != "hello\n" {
		t.Errorf("output = %q, want %q", out.String(), "hello\n")
	}
}

func TestFindAllRoundTrip(t *testing.T) {
	m := family(t)
	res := exec.Execute(m, mustRead(t, m, "findall(X-Y, parent(X, Y), L)"))
	if res.Outcome != exec.Solved {
		t.Fatalf("Outcome = %v (%s), want solved", res.Outcome, res.Message())
	}
	list, _ := term.Arg(res.Goal, 3)
	heads, _ := term.Elems(list)
	if len(heads) != 2 {
		t.Fatalf("findall returned %s, want two pairs", term.Canonical(list))
	}
	if got := term.Canonical(heads[0]); got != "-(tom,bob)" {
		t.Errorf("first pair = %s, want -(tom,bob)", got)
	}
}

func TestReadTermUsesOperatorTable(t *testing.T) {
	m := New(nil)
	if _, err := m.ReadTerm("john likes pizza"); !errors.Is(err, types.ErrParse) {
		t.Fatalf("ReadTerm before op/3 = %v, want ErrParse", err)
	}
	if err := m.Exec(":- op(700, xfx, likes)."); err != nil {
		t.Fatal(err)
	}
	got := mustRead(t, m, "john likes pizza")
	if term.Canonical(got) != "likes(john,pizza)" {
		t.Errorf("ReadTerm = %s, want likes(john,pizza)", term.Canonical(got))
	}
}

func TestReadTermErrors(t *testing.T) {
	m := New(nil)
	for _, text := range []string{"foo(", "a. b", ""} {
		if _, err := m.ReadTerm(text); !errors.Is(err, types.ErrParse) {
			t.Errorf("ReadTerm(%q) = %v, want ErrParse", text, err)
		}
	}
	// A trailing comment does not hide the end of the term.
	if got := mustRead(t, m, "foo(X) % note"); term.Canonical(got) != "foo(X)" {
		t.Errorf("ReadTerm with comment = %s", term.Canonical(got))
	}
}

func TestReadClausesOneAtATime(t *testing.T) {
	m := New(nil)
	src := ":- op(700, xfx, likes).\njohn likes pizza.\nmary likes X :- john likes X.\n"
	var got []string
	err := m.ReadClauses(src, func(c term.Term) error {
		got = append(got, term.Canonical(c))
		if d, ok := c.(term.Compound); ok && d.Functor == ":-" && len(d.Args) == 1 {
			return m.Exec(":- " + term.Canonical(d.Args[0]) + ".")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("ReadClauses failed: %v", err)
	}
	want := []string{
		":-(op(700,xfx,likes))",
		"likes(john,pizza)",
		":-(likes(mary,X),likes(john,X))",
	}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("clauses = %v, want %v", got, want)
	}

	stop := errors.New("stop")
	n := 0
	err = m.ReadClauses("a. b. c.", func(term.Term) error {
		n++
		return stop
	})
	if !errors.Is(err, stop) || n != 1 {
		t.Errorf("ReadClauses after fn error: err = %v, calls = %d", err, n)
	}
	if err := m.ReadClauses("a. b(", func(term.Term) error { return nil }); !errors.Is(err, types.ErrParse) {
		t.Errorf("ReadClauses on bad text = %v, want ErrParse", err)
	}
}

func TestDoubleQuotedTextIsAtom(t *testing.T) {
	m := New(nil)
	res := exec.Execute(m, mustRead(t, m, `X = "hi"`))
	if res.Outcome != exec.Solved {
		t.Fatalf("Outcome = %v (%s), want solved", res.Outcome, res.Message())
	}
	if got := term.Canonical(res.Goal); got != "=(hi,hi)" {
		t.Errorf("Goal = %s, want =(hi,hi)", got)
	}
}

func TestGoalVariableNamesAreFree(t *testing.T) {
	m := New(nil)
	for _, text := range []string{"PrologotGoal__ = 1", "findall(R, member(R, [a]), _Results)"} {
		res := exec.Execute(m, mustRead(t, m, text))
		if res.Outcome != exec.Solved {
			t.Errorf("%s: Outcome = %v (%s), want solved", text, res.Outcome, res.Message())
		}
	}
}

func TestUnboundVariablesKeepNames(t *testing.T) {
	m := New(nil)
	res := exec.Execute(m, mustRead(t, m, "X = f(Y)"))
	if res.Outcome != exec.Solved {
		t.Fatalf("Outcome = %v (%s), want solved", res.Outcome, res.Message())
	}
	if got := term.Canonical(res.Goal); got != "=(f(Y),f(Y))" {
		t.Errorf("Goal = %s, want =(f(Y),f(Y))", got)
	}
}

func TestCyclicSolutionIsAnError(t *testing.T) {
	m := New(nil)
	res := exec.Execute(m, mustRead(t, m, "X = f(X)"))
	if res.Outcome != exec.Exception || !errors.Is(res.Err, types.ErrEngine) {
		t.Errorf("Outcome = %v (%v), want an engine exception", res.Outcome, res.Err)
	}
	// The machine stays usable.
	if res := exec.Execute(m, mustRead(t, m, "true")); res.Outcome != exec.Solved {
		t.Errorf("Outcome after cyclic term = %v, want solved", res.Outcome)
	}
}

func TestLongListReadsBack(t *testing.T) {
	m := New(nil)
	res := exec.Execute(m, mustRead(t, m, "findall(I, between(1, 20000, I), L)"))
	if res.Outcome != exec.Solved {
		t.Fatalf("Outcome = %v (%s), want solved", res.Outcome, res.Message())
	}
	list, _ := term.Arg(res.Goal, 3)
	if heads, _ := term.Elems(list); len(heads) != 20000 {
		t.Errorf("list length = %d, want 20000", len(heads))
	}
}
