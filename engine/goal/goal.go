// Package goal builds goals from a predicate name and host arguments.
package goal

import (
	"fmt"
	"strings"

	"github.com/nathoo/prologot/engine/convert"
	"github.com/nathoo/prologot/term"
	"github.com/nathoo/prologot/value"
)

// StripPeriod trims s and removes at most one trailing period.
func StripPeriod(s string) string {
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "."))
}

// Text renders name(a1, ..., an) as goal source. With no arguments the
// trimmed predicate is returned as is, so it may be a full goal such as
// "member(X, [1,2])". String arguments are spliced verbatim, which lets a
// caller pass "X" to mean a variable.
func Text(predicate string, args []value.Value) string {
	if len(args) == 0 {
		return strings.TrimSpace(predicate)
	}
	var sb strings.Builder
	sb.WriteString(StripPeriod(predicate))
	sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			sb.WriteString(", ")
		}
		if s, ok := a.AsString(); ok {
			sb.WriteString(s)
		} else {
			sb.WriteString(a.Text())
		}
	}
	sb.WriteByte(')')
	return sb.String()
}

// Compound converts args and builds name(args..., _, ..., _) with extra
// anonymous slots to receive results. Results are read back by position, so
// the slots never share a name with anything in the caller's terms.
func Compound(name string, args []value.Value, extra int) (term.Term, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("blank predicate name")
	}
	slots := make([]term.Term, 0, len(args)+extra)
	for i, a := range args {
		t, err := convert.FromValue(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		slots = append(slots, t)
	}
	for i := 0; i < extra; i++ {
		slots = append(slots, term.Var{Name: "_"})
	}
	return term.New(name, slots...), nil
}

// FindAll wraps goal as findall(template, goal, _). The result list is
// argument 3 of the solved instance.
func FindAll(template, g term.Term) term.Term {
	return term.Compound{
		Functor: "findall",
		Args:    []term.Term{template, g, term.Var{Name: "_"}},
	}
}
