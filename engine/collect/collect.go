// Package collect turns executed goals into host values, one solution or
// all of them, optionally as named-variable bindings.
package collect

import (
	"github.com/nathoo/prologot/engine/convert"
	"github.com/nathoo/prologot/engine/exec"
	"github.com/nathoo/prologot/engine/goal"
	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/value"
)

// Extractable reports whether names should be read as variable names:
// non-empty, and every element a string starting with an ASCII uppercase
// letter or '_'. A concrete argument such as "Tom" also passes; callers
// that need the atom should quote it.
func Extractable(names []value.Value) bool {
	if len(names) == 0 {
		return false
	}
	for _, n := range names {
		s, ok := n.AsString()
		if !ok || s == "" {
			return false
		}
		if c := s[0]; c != '_' && (c < 'A' || c > 'Z') {
			return false
		}
	}
	return true
}

// Solution converts one solved goal instance. With extractable names the
// result maps names[i] to argument i+1, up to the goal's arity; otherwise
// the whole instance is converted.
func Solution(solved term.Term, names []value.Value) value.Value {
	if !Extractable(names) {
		return convert.ToValue(solved)
	}
	_, arity, _ := term.NameArity(solved)
	out := make(map[string]value.Value, len(names))
	for i, n := range names {
		if i >= arity {
			break
		}
		key, _ := n.AsString()
		arg, _ := term.Arg(solved, i+1)
		out[key] = convert.ToValue(arg)
	}
	return value.Map(out)
}

// One runs g once. Null is returned when g fails or raises; the exception
// is available in the returned result.
func One(m exec.Machine, g term.Term, names []value.Value) (value.Value, exec.Result) {
	res := exec.Execute(m, g)
	if res.Outcome != exec.Solved {
		return value.Null, res
	}
	return Solution(res.Goal, names), res
}

// All collects every solution of g with a single findall query and converts
// each instance of g by the same rule as One.
func All(m exec.Machine, g term.Term, names []value.Value) ([]value.Value, exec.Result) {
	return AllTemplate(m, g, g, names)
}

// AllTemplate is All with an explicit template.
func AllTemplate(m exec.Machine, template, g term.Term, names []value.Value) ([]value.Value, exec.Result) {
	instances, res := Terms(m, template, g)
	out := make([]value.Value, 0, len(instances))
	for _, inst := range instances {
		out = append(out, Solution(inst, names))
	}
	return out, res
}

// Terms returns the raw template instances of every solution of g.
func Terms(m exec.Machine, template, g term.Term) ([]term.Term, exec.Result) {
	res := exec.Execute(m, goal.FindAll(template, g))
	if res.Outcome != exec.Solved {
		return nil, res
	}
	list, ok := term.Arg(res.Goal, 3)
	if !ok {
		return nil, res
	}
	heads, _ := term.Elems(list)
	return heads, res
}
