package luabind

import (
	"fmt"
	"math"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/prologot/types"
	"github.com/nathoo/prologot/value"
)

// ToValue converts a Lua value. Whole numbers become Int. A table with
// sequential integer keys from 1 is a sequence and an empty table is an
// empty sequence. Any other table must be keyed only by strings.
func ToValue(v lua.LValue) (value.Value, error) {
	switch val := v.(type) {
	case *lua.LNilType:
		return value.Null, nil
	case lua.LBool:
		return value.Bool(bool(val)), nil
	case lua.LNumber:
		f := float64(val)
		if f == math.Trunc(f) && f >= math.MinInt64 && f < math.MaxInt64 {
			return value.Int(int64(f)), nil
		}
		return value.Float(f), nil
	case lua.LString:
		return value.Str(string(val)), nil
	case *lua.LTable:
		return tableValue(val)
	default:
		return value.Null, fmt.Errorf("%w: cannot convert Lua %s", types.ErrConversion, v.Type())
	}
}

func tableValue(tbl *lua.LTable) (value.Value, error) {
	if n := tbl.MaxN(); n > 0 {
		keys := 0
		tbl.ForEach(func(lua.LValue, lua.LValue) { keys++ })
		if keys != n {
			return value.Null, fmt.Errorf("%w: table mixes a sequence with other keys", types.ErrConversion)
		}
		xs := make([]value.Value, 0, n)
		for i := 1; i <= n; i++ {
			x, err := ToValue(tbl.RawGetInt(i))
			if err != nil {
				return value.Null, err
			}
			xs = append(xs, x)
		}
		return value.List(xs), nil
	}

	m := map[string]value.Value{}
	var err error
	tbl.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		ks, ok := k.(lua.LString)
		if !ok {
			err = fmt.Errorf("%w: table key %s is not a string", types.ErrConversion, k.String())
			return
		}
		m[string(ks)], err = ToValue(v)
	})
	if err != nil {
		return value.Null, err
	}
	if len(m) == 0 {
		return value.Seq(), nil
	}
	return value.Map(m), nil
}

// FromValue converts a value into a Lua value owned by L.
func FromValue(L *lua.LState, v value.Value) lua.LValue {
	switch v.Kind() {
	case value.KindNull:
		return lua.LNil
	case value.KindBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case value.KindInt:
		n, _ := v.AsInt()
		return lua.LNumber(n)
	case value.KindFloat:
		f, _ := v.AsFloat()
		return lua.LNumber(f)
	case value.KindString:
		s, _ := v.AsString()
		return lua.LString(s)
	case value.KindSeq:
		xs, _ := v.AsSeq()
		tbl := L.CreateTable(len(xs), 0)
		for i, x := range xs {
			tbl.RawSetInt(i+1, FromValue(L, x))
		}
		return tbl
	case value.KindMap:
		m, _ := v.AsMap()
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tbl := L.CreateTable(0, len(m))
		for _, k := range keys {
			tbl.RawSetString(k, FromValue(L, m[k]))
		}
		return tbl
	}
	return lua.LNil
}
