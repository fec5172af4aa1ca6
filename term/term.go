// Package term models Prolog terms on the Go side of the binding and
// writes them as canonical Prolog text. Reading source text is left to the
// engine, whose operator table and flags decide what the text means.
//
// Terms are immutable values. A term read back from the engine is a
// snapshot of the bindings at the moment it was produced.
package term

// Kind enumerates the term cases.
type Kind int

const (
	KindVar Kind = iota
	KindAtom
	KindInt
	KindFloat
	KindNil
	KindCell
	KindCompound
)

// Term is implemented by exactly the types in this package.
type Term interface {
	Kind() Kind
	isTerm()
}

// Var is an unbound variable. Name is its source name; "_" is anonymous
// and every occurrence is distinct.
type Var struct{ Name string }

// Atom is a symbolic constant.
type Atom string

// Int is an integer.
type Int int64

// Float is a floating-point number.
type Float float64

// Nil is the empty list.
type Nil struct{}

// Cell is a non-empty list cell.
type Cell struct {
	Head Term
	Tail Term
}

// Compound is a functor applied to one or more arguments.
type Compound struct {
	Functor string
	Args    []Term
}

func (Var) Kind() Kind      { return KindVar }
func (Atom) Kind() Kind     { return KindAtom }
func (Int) Kind() Kind      { return KindInt }
func (Float) Kind() Kind    { return KindFloat }
func (Nil) Kind() Kind      { return KindNil }
func (Cell) Kind() Kind     { return KindCell }
func (Compound) Kind() Kind { return KindCompound }

func (Var) isTerm()      {}
func (Atom) isTerm()     {}
func (Int) isTerm()      {}
func (Float) isTerm()    {}
func (Nil) isTerm()      {}
func (Cell) isTerm()     {}
func (Compound) isTerm() {}

// Atoms with fixed meaning.
const (
	EmptyListAtom Atom = "[]"
	True          Atom = "true"
	False         Atom = "false"
)

// New returns name(args...), or the atom name when args is empty.
func New(name string, args ...Term) Term {
	if len(args) == 0 {
		return Atom(name)
	}
	return Compound{Functor: name, Args: args}
}

// List builds a proper list by folding from the tail: starting with the
// empty list, each element from last to first is consed onto it.
func List(elems ...Term) Term {
	var list Term = Nil{}
	for i := len(elems) - 1; i >= 0; i-- {
		list = Cell{Head: elems[i], Tail: list}
	}
	return list
}

// AsCell deconstructs t as a list cell. Compounds named '.' or '[|]' with
// two arguments are list cells too.
func AsCell(t Term) (Cell, bool) {
	switch c := t.(type) {
	case Cell:
		return c, true
	case Compound:
		if len(c.Args) == 2 && (c.Functor == "." || c.Functor == "[|]") {
			return Cell{Head: c.Args[0], Tail: c.Args[1]}, true
		}
	}
	return Cell{}, false
}

// Elems walks list cells from t and returns the heads. It stops at the
// first tail that is not a cell, which it returns as rest.
func Elems(t Term) (heads []Term, rest Term) {
	for {
		c, ok := AsCell(t)
		if !ok {
			return heads, t
		}
		heads = append(heads, c.Head)
		t = c.Tail
	}
}

// NameArity returns the principal functor of a callable term.
func NameArity(t Term) (string, int, bool) {
	switch x := t.(type) {
	case Atom:
		return string(x), 0, true
	case Compound:
		return x.Functor, len(x.Args), true
	case Cell:
		return ".", 2, true
	case Nil:
		return string(EmptyListAtom), 0, true
	}
	return "", 0, false
}

// Arg returns the n-th argument (1-based) of a compound or list cell.
func Arg(t Term, n int) (Term, bool) {
	switch x := t.(type) {
	case Compound:
		if n >= 1 && n <= len(x.Args) {
			return x.Args[n-1], true
		}
	case Cell:
		switch n {
		case 1:
			return x.Head, true
		case 2:
			return x.Tail, true
		}
	}
	return nil, false
}

// Vars returns the distinct named variables of t in first-occurrence order.
// Anonymous "_" is skipped.
func Vars(t Term) []string {
	var names []string
	seen := map[string]bool{}
	var walk func(Term)
	walk = func(t Term) {
		switch x := t.(type) {
		case Var:
			if x.Name != "_" && !seen[x.Name] {
				seen[x.Name] = true
				names = append(names, x.Name)
			}
		case Cell:
			walk(x.Head)
			walk(x.Tail)
		case Compound:
			for _, a := range x.Args {
				walk(a)
			}
		}
	}
	walk(t)
	return names
}
