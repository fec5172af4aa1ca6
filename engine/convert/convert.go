// Package convert translates between host values and Prolog terms.
//
// Strings become atoms on the way in. Terms come back as plain values, with
// compound terms encoded as {"functor": name, "args": [...]} mappings.
package convert

import (
	"fmt"
	"math"

	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/types"
	"github.com/nathoo/prologot/value"
)

// FromValue converts v into a term. The first failing element aborts the
// whole conversion.
func FromValue(v value.Value) (term.Term, error) {
	switch v.Kind() {
	case value.KindNull:
		return term.EmptyListAtom, nil
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			return term.True, nil
		}
		return term.False, nil
	case value.KindInt:
		n, _ := v.AsInt()
		return term.Int(n), nil
	case value.KindFloat:
		f, _ := v.AsFloat()
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: float %v has no term form", types.ErrConversion, f)
		}
		return term.Float(f), nil
	case value.KindString:
		s, _ := v.AsString()
		return term.Atom(s), nil
	case value.KindSeq:
		elems, _ := v.AsSeq()
		return fromSeq(elems)
	case value.KindMap:
		functor, args, ok := v.CompoundParts()
		if !ok {
			return term.EmptyListAtom, nil
		}
		return fromCompound(functor, args)
	}
	return nil, fmt.Errorf("%w: unknown value kind %v", types.ErrConversion, v.Kind())
}

func fromSeq(elems []value.Value) (term.Term, error) {
	ts := make([]term.Term, len(elems))
	for i, e := range elems {
		t, err := FromValue(e)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		ts[i] = t
	}
	return term.List(ts...), nil
}

func fromCompound(functor string, args []value.Value) (term.Term, error) {
	if functor == "" {
		return nil, fmt.Errorf("%w: compound with empty functor", types.ErrConversion)
	}
	ts := make([]term.Term, len(args))
	for i, a := range args {
		t, err := FromValue(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s: %w", i+1, functor, err)
		}
		ts[i] = t
	}
	return term.New(functor, ts...), nil
}

// ToValue converts t into a host value. Unbound variables become Null and
// both spellings of the empty list become an empty sequence.
func ToValue(t term.Term) value.Value {
	switch x := t.(type) {
	case term.Var:
		return value.Null
	case term.Atom:
		if x == term.EmptyListAtom {
			return value.Seq()
		}
		return value.Str(string(x))
	case term.Int:
		return value.Int(int64(x))
	case term.Float:
		return value.Float(float64(x))
	case term.Nil:
		return value.Seq()
	case term.Cell:
		return listValue(x)
	case term.Compound:
		if c, ok := term.AsCell(x); ok {
			return listValue(c)
		}
		args := make([]value.Value, len(x.Args))
		for i, a := range x.Args {
			args[i] = ToValue(a)
		}
		return value.Compound(x.Functor, args...)
	}
	return value.Null
}

// listValue walks cells until the tail is not a cell. A non-empty tail of
// a partial list is dropped.
func listValue(c term.Cell) value.Value {
	heads, _ := term.Elems(c)
	out := make([]value.Value, len(heads))
	for i, h := range heads {
		out[i] = ToValue(h)
	}
	return value.List(out)
}
