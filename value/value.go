// Package value implements the host-side dynamic value model: the universal
// carrier passed into and returned from every operation of the binding.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind enumerates the cases of Value. The zero Kind is KindNull.
type Kind int

const (
	KindNull   Kind = iota // no payload
	KindBool               // bool
	KindInt                // int64
	KindFloat              // float64
	KindString             // string
	KindSeq                // []Value
	KindMap                // map[string]Value
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSeq:
		return "sequence"
	case KindMap:
		return "mapping"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Value is a dynamically typed host value. Only the payload field matching
// Kind is meaningful; use the constructors rather than composite literals.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	m    map[string]Value
}

// Null is the null Value.
var Null = Value{}

func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Int(n int64) Value      { return Value{kind: KindInt, i: n} }
func Float(f float64) Value  { return Value{kind: KindFloat, f: f} }
func Str(s string) Value     { return Value{kind: KindString, s: s} }
func Seq(xs ...Value) Value  { return Value{kind: KindSeq, seq: nonNilSeq(xs)} }
func List(xs []Value) Value  { return Value{kind: KindSeq, seq: nonNilSeq(xs)} }
func Map(m map[string]Value) Value {
	if m == nil {
		m = map[string]Value{}
	}
	return Value{kind: KindMap, m: m}
}

// Keys of the compound representation.
const (
	FunctorKey = "functor"
	ArgsKey    = "args"
)

// Compound builds the canonical encoding of a Prolog compound term:
// {"functor": name, "args": [args...]}.
func Compound(functor string, args ...Value) Value {
	return Map(map[string]Value{
		FunctorKey: Str(functor),
		ArgsKey:    List(args),
	})
}

func nonNilSeq(xs []Value) []Value {
	if xs == nil {
		return []Value{}
	}
	return xs
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the payload and whether v is a Bool.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt returns the payload and whether v is an Int.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the payload and whether v is a Float.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the payload and whether v is a String.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsSeq returns the elements and whether v is a Sequence. The slice is
// shared with v; callers must not modify it.
func (v Value) AsSeq() ([]Value, bool) { return v.seq, v.kind == KindSeq }

// AsMap returns the entries and whether v is a Mapping. The map is shared
// with v; callers must not modify it.
func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

// Get returns the entry for key when v is a Mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Null, false
	}
	e, ok := v.m[key]
	return e, ok
}

// Len returns the number of elements of a Sequence or entries of a Mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindSeq:
		return len(v.seq)
	case KindMap:
		return len(v.m)
	}
	return 0
}

// CompoundParts reports whether v has the compound shape: a Mapping holding
// a String "functor" and a Sequence "args".
func (v Value) CompoundParts() (functor string, args []Value, ok bool) {
	if v.kind != KindMap {
		return "", nil, false
	}
	f, fok := v.m[FunctorKey].AsString()
	a, aok := v.m[ArgsKey].AsSeq()
	if !fok || !aok {
		return "", nil, false
	}
	return f, a, true
}

// Equal reports deep equality. Floats compare by value, so NaN != NaN.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindString:
		return v.s == o.s
	case KindSeq:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, e := range v.m {
			oe, ok := o.m[k]
			if !ok || !e.Equal(oe) {
				return false
			}
		}
		return true
	}
	return false
}

// String renders a debug representation: strings are quoted, compounds are
// shown in Prolog notation, other mappings with sorted keys.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb, true)
	return sb.String()
}

// Text renders v the way it is spliced into goal text: strings verbatim,
// numbers in Prolog syntax, sequences as lists, compounds as name(args).
// Null and non-compound mappings render as [].
func (v Value) Text() string {
	var sb strings.Builder
	v.write(&sb, false)
	return sb.String()
}

func (v Value) write(sb *strings.Builder, debug bool) {
	switch v.kind {
	case KindNull:
		if debug {
			sb.WriteString("null")
		} else {
			sb.WriteString("[]")
		}
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(FormatFloat(v.f))
	case KindString:
		if debug {
			sb.WriteString(strconv.Quote(v.s))
		} else {
			sb.WriteString(v.s)
		}
	case KindSeq:
		sb.WriteByte('[')
		for i, e := range v.seq {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.write(sb, debug)
		}
		sb.WriteByte(']')
	case KindMap:
		if functor, args, ok := v.CompoundParts(); ok {
			sb.WriteString(functor)
			if len(args) > 0 {
				sb.WriteByte('(')
				for i, a := range args {
					if i > 0 {
						sb.WriteString(", ")
					}
					a.write(sb, debug)
				}
				sb.WriteByte(')')
			}
			return
		}
		if !debug {
			sb.WriteString("[]")
			return
		}
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(sb, "%s: ", k)
			v.m[k].write(sb, debug)
		}
		sb.WriteByte('}')
	}
}

// FormatFloat renders f in a form a Prolog reader accepts as a float: the
// mantissa always carries a fraction ("2.0", "1.0e+21").
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	mant, exp, hasExp := strings.Cut(s, "e")
	if !strings.ContainsAny(mant, ".") {
		mant += ".0"
	}
	if hasExp {
		return mant + "e" + exp
	}
	return mant
}
