package value

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestKindOfConstructors(t *testing.T) {
	tests := []struct {
		v    Value
		want Kind
	}{
		{Null, KindNull},
		{Bool(true), KindBool},
		{Int(3), KindInt},
		{Float(1.5), KindFloat},
		{Str("x"), KindString},
		{Seq(), KindSeq},
		{Map(nil), KindMap},
		{Compound("f", Int(1)), KindMap},
	}
	for _, tt := range tests {
		if got := tt.v.Kind(); got != tt.want {
			t.Errorf("%v.Kind() = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	a := Compound("foo", Int(1), Str("bar"), Seq(Int(1), Int(2)))
	b := Map(map[string]Value{
		"functor": Str("foo"),
		"args":    Seq(Int(1), Str("bar"), Seq(Int(1), Int(2))),
	})
	if !a.Equal(b) {
		t.Errorf("expected %v to equal %v", a, b)
	}
	if Int(1).Equal(Float(1)) {
		t.Error("Int(1) must not equal Float(1)")
	}
	if Seq(Int(1)).Equal(Seq(Int(1), Int(2))) {
		t.Error("sequences of different length must differ")
	}
	if Float(math.NaN()).Equal(Float(math.NaN())) {
		t.Error("NaN must not equal NaN")
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("cmp.Diff should use Equal (-a +b):\n%s", diff)
	}
}

func TestCompoundParts(t *testing.T) {
	f, args, ok := Compound("parent", Str("tom"), Str("bob")).CompoundParts()
	if !ok || f != "parent" || len(args) != 2 {
		t.Fatalf("CompoundParts = %q, %v, %v", f, args, ok)
	}

	notCompound := []Value{
		Map(map[string]Value{"functor": Str("f")}),
		Map(map[string]Value{"functor": Int(1), "args": Seq()}),
		Map(map[string]Value{"functor": Str("f"), "args": Str("a")}),
		Seq(Str("functor"), Str("args")),
		Null,
	}
	for _, v := range notCompound {
		if _, _, ok := v.CompoundParts(); ok {
			t.Errorf("%v should not have compound shape", v)
		}
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null, "[]"},
		{Bool(false), "false"},
		{Int(-42), "-42"},
		{Float(2), "2.0"},
		{Float(0.25), "0.25"},
		{Float(1e21), "1.0e+21"},
		{Str("X"), "X"},
		{Str("'quoted atom'"), "'quoted atom'"},
		{Seq(Int(1), Str("a")), "[1, a]"},
		{Compound("point", Int(1), Int(2)), "point(1, 2)"},
		{Compound("nil"), "nil"},
		{Map(map[string]Value{"k": Int(1)}), "[]"},
	}
	for _, tt := range tests {
		if got := tt.v.Text(); got != tt.want {
			t.Errorf("Text(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestString(t *testing.T) {
	v := Map(map[string]Value{"b": Int(2), "a": Str("x"), "c": Null})
	if got, want := v.String(), `{a: "x", b: 2, c: null}`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFromGo(t *testing.T) {
	got, err := FromGo(map[string]any{
		"quiet": true,
		"goal":  []any{"a", "b"},
		"n":     7,
		"ratio": float32(0.5),
		"flags": map[string]string{"double_quotes": "atom"},
		"none":  nil,
	})
	if err != nil {
		t.Fatalf("FromGo failed: %v", err)
	}
	want := Map(map[string]Value{
		"quiet": Bool(true),
		"goal":  Seq(Str("a"), Str("b")),
		"n":     Int(7),
		"ratio": Float(0.5),
		"flags": Map(map[string]Value{"double_quotes": Str("atom")}),
		"none":  Null,
	})
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FromGo mismatch (-want +got):\n%s", diff)
	}

	if _, err := FromGo(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
	if _, err := FromGo([]any{1, make(chan int)}); err == nil {
		t.Error("expected error for unsupported element")
	}
}

func TestGoRoundTrip(t *testing.T) {
	v := Compound("f", Seq(Int(1), Float(2.5)), Bool(true), Null)
	back, err := FromGo(v.Go())
	if err != nil {
		t.Fatalf("FromGo failed: %v", err)
	}
	if !back.Equal(v) {
		t.Errorf("round trip = %v, want %v", back, v)
	}
}
