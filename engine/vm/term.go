package vm

import (
	"fmt"
	"strings"

	"github.com/ichiban/prolog/engine"

	"github.com/nathoo/prologot/term"
)

var (
	atomDot       = engine.NewAtom(".")
	atomEmptyList = engine.NewAtom("[]")
)

// Limits on reading a solution back. The interpreter has no occurs check,
// so X = f(X) produces a cyclic term.
const (
	maxNodes = 1 << 21
	maxDepth = 1 << 12
)

// toEngine builds the engine form of t. Named variables map to one engine
// variable per name through vars; every "_" is a fresh variable.
func toEngine(t term.Term, vars map[string]engine.Variable) engine.Term {
	switch x := t.(type) {
	case term.Var:
		if x.Name == "" || x.Name == "_" {
			return engine.NewVariable()
		}
		v, ok := vars[x.Name]
		if !ok {
			v = engine.NewVariable()
			vars[x.Name] = v
		}
		return v
	case term.Atom:
		return engine.NewAtom(string(x))
	case term.Int:
		return engine.Integer(x)
	case term.Float:
		return engine.Float(x)
	case term.Nil:
		return atomEmptyList
	case term.Cell:
		heads, rest := term.Elems(x)
		es := make([]engine.Term, len(heads))
		for i, h := range heads {
			es[i] = toEngine(h, vars)
		}
		if _, ok := rest.(term.Nil); ok {
			return engine.List(es...)
		}
		return engine.PartialList(toEngine(rest, vars), es...)
	case term.Compound:
		args := make([]engine.Term, len(x.Args))
		for i, a := range x.Args {
			args[i] = toEngine(a, vars)
		}
		return engine.NewAtom(x.Functor).Apply(args...)
	}
	return engine.NewVariable()
}

// fromEngine reads t under env. Variables named in names keep their name;
// other unbound variables are written _G<n>.
func fromEngine(t engine.Term, env *engine.Env, names map[engine.Variable]string) (term.Term, error) {
	r := reader{env: env, names: names, budget: maxNodes}
	return r.read(t)
}

type reader struct {
	env    *engine.Env
	names  map[engine.Variable]string
	budget int
	depth  int
}

func (r *reader) read(t engine.Term) (term.Term, error) {
	if r.budget--; r.budget < 0 || r.depth >= maxDepth {
		return nil, errTooDeep
	}
	r.depth++
	defer func() { r.depth-- }()
	switch x := r.env.Resolve(t).(type) {
	case engine.Variable:
		if name, ok := r.names[x]; ok {
			return term.Var{Name: name}, nil
		}
		return term.Var{Name: fmt.Sprintf("_G%d", int64(x))}, nil
	case engine.Atom:
		if x == atomEmptyList {
			return term.Nil{}, nil
		}
		return term.Atom(x.String()), nil
	case engine.Integer:
		return term.Int(int64(x)), nil
	case engine.Float:
		return term.Float(float64(x)), nil
	case engine.Compound:
		if x.Functor() == atomDot && x.Arity() == 2 {
			return r.list(x)
		}
		args := make([]term.Term, x.Arity())
		for i := range args {
			a, err := r.read(x.Arg(i))
			if err != nil {
				return nil, err
			}
			args[i] = a
		}
		return term.New(x.Functor().String(), args...), nil
	case nil:
		return nil, fmt.Errorf("missing term")
	default:
		// Streams and other opaque terms come back as their printed form.
		var sb strings.Builder
		if err := x.WriteTerm(&sb, &engine.WriteOptions{}, r.env); err != nil {
			return nil, err
		}
		return term.Atom(sb.String()), nil
	}
}

// list walks cells iteratively so long lists do not deepen the stack.
func (r *reader) list(c engine.Compound) (term.Term, error) {
	var heads []term.Term
	var t engine.Term = c
	for {
		cell, ok := r.env.Resolve(t).(engine.Compound)
		if !ok || cell.Functor() != atomDot || cell.Arity() != 2 {
			break
		}
		if r.budget--; r.budget < 0 {
			return nil, errTooDeep
		}
		h, err := r.read(cell.Arg(0))
		if err != nil {
			return nil, err
		}
		heads = append(heads, h)
		t = cell.Arg(1)
	}
	rest, err := r.read(t)
	if err != nil {
		return nil, err
	}
	out := rest
	for i := len(heads) - 1; i >= 0; i-- {
		out = term.Cell{Head: heads[i], Tail: out}
	}
	return out, nil
}
