package term

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nathoo/prologot/value"
)

// Canonical renders t in functional notation with atoms quoted where
// needed, so any standard reader yields t again whatever operators are
// defined. Lists keep bracket notation.
func Canonical(t Term) string {
	var sb strings.Builder
	writeTerm(&sb, t)
	return sb.String()
}

func writeTerm(sb *strings.Builder, t Term) {
	switch x := t.(type) {
	case Var:
		if x.Name == "" {
			sb.WriteByte('_')
		} else {
			sb.WriteString(x.Name)
		}
	case Atom:
		sb.WriteString(QuoteAtom(string(x)))
	case Int:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Float:
		sb.WriteString(value.FormatFloat(float64(x)))
	case Nil:
		sb.WriteString("[]")
	case Cell:
		writeList(sb, x)
	case Compound:
		if c, ok := AsCell(x); ok {
			writeList(sb, c)
			return
		}
		sb.WriteString(QuoteAtom(x.Functor))
		sb.WriteByte('(')
		for i, a := range x.Args {
			if i > 0 {
				sb.WriteByte(',')
			}
			writeTerm(sb, a)
		}
		sb.WriteByte(')')
	}
}

func writeList(sb *strings.Builder, c Cell) {
	sb.WriteByte('[')
	heads, rest := Elems(c)
	for i, h := range heads {
		if i > 0 {
			sb.WriteByte(',')
		}
		writeTerm(sb, h)
	}
	if _, empty := rest.(Nil); !empty {
		sb.WriteByte('|')
		writeTerm(sb, rest)
	}
	sb.WriteByte(']')
}

// QuoteAtom returns name as it must appear in source text: bare when it
// reads back as the same atom, single-quoted otherwise.
func QuoteAtom(name string) string {
	if bareAtom(name) {
		return name
	}
	return quote(name, '\'')
}

func bareAtom(name string) bool {
	switch name {
	case "":
		return false
	case "[]", "{}", "!", ";":
		return true
	case ".":
		return false
	}
	first, _ := utf8.DecodeRuneInString(name)
	if unicode.IsLower(first) {
		for _, r := range name {
			if !isAlnum(r) {
				return false
			}
		}
		return true
	}
	if isSymbolChar(first) {
		if strings.HasPrefix(name, "/*") {
			return false
		}
		for _, r := range name {
			if !isSymbolChar(r) {
				return false
			}
		}
		return true
	}
	return false
}

const symbolChars = "+-*/\\^<>=~:.?@#&$"

func isSymbolChar(r rune) bool { return strings.ContainsRune(symbolChars, r) }

func isAlnum(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func quote(s string, q rune) string {
	var sb strings.Builder
	sb.WriteRune(q)
	for _, r := range s {
		switch r {
		case q, '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			if unicode.IsControl(r) {
				sb.WriteString(`\x` + strconv.FormatInt(int64(r), 16) + `\`)
			} else {
				sb.WriteRune(r)
			}
		}
	}
	sb.WriteRune(q)
	return sb.String()
}
