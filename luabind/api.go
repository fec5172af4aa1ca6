package luabind

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/prologot/engine"
	"github.com/nathoo/prologot/value"
)

// register installs the prolog table. Every function mirrors an engine
// operation of the same name; failures come back as false, an empty table
// or nil, with the cause in prolog.get_last_error().
func register(L *lua.LState, e *engine.Engine) {
	fns := map[string]lua.LGFunction{
		// initialize([options])
		"initialize": func(L *lua.LState) int {
			opts, err := ToValue(L.Get(1))
			if err != nil {
				L.ArgError(1, err.Error())
			}
			if opts.Kind() == value.KindSeq && opts.Len() == 0 {
				opts = value.Null // {}
			}
			L.Push(lua.LBool(e.Initialize(opts)))
			return 1
		},
		"cleanup": func(L *lua.LState) int {
			e.Cleanup()
			return 0
		},
		"is_initialized": func(L *lua.LState) int {
			L.Push(lua.LBool(e.IsInitialized()))
			return 1
		},
		"consult_file": func(L *lua.LState) int {
			L.Push(lua.LBool(e.ConsultFile(L.CheckString(1))))
			return 1
		},
		"consult_string": func(L *lua.LState) int {
			L.Push(lua.LBool(e.ConsultString(L.CheckString(1))))
			return 1
		},

		// query(goal [, args])
		"query": func(L *lua.LState) int {
			L.Push(lua.LBool(e.Query(L.CheckString(1), args(L, 2)...)))
			return 1
		},
		"query_all": func(L *lua.LState) int {
			L.Push(FromValue(L, value.List(e.QueryAll(L.CheckString(1), args(L, 2)...))))
			return 1
		},
		"query_one": func(L *lua.LState) int {
			L.Push(FromValue(L, e.QueryOne(L.CheckString(1), args(L, 2)...)))
			return 1
		},

		"add_fact": func(L *lua.LState) int {
			L.Push(lua.LBool(e.AddFact(L.CheckString(1))))
			return 1
		},
		"retract_fact": func(L *lua.LState) int {
			L.Push(lua.LBool(e.RetractFact(L.CheckString(1))))
			return 1
		},
		"retract_all": func(L *lua.LState) int {
			L.Push(lua.LBool(e.RetractAll(L.CheckString(1))))
			return 1
		},

		// call_predicate(name [, args])
		"call_predicate": func(L *lua.LState) int {
			L.Push(lua.LBool(e.CallPredicate(L.CheckString(1), args(L, 2)...)))
			return 1
		},
		"call_function": func(L *lua.LState) int {
			L.Push(FromValue(L, e.CallFunction(L.CheckString(1), args(L, 2)...)))
			return 1
		},

		"predicate_exists": func(L *lua.LState) int {
			L.Push(lua.LBool(e.PredicateExists(L.CheckString(1), L.CheckInt(2))))
			return 1
		},
		"list_predicates": func(L *lua.LState) int {
			L.Push(FromValue(L, value.List(e.ListPredicates())))
			return 1
		},
		"get_last_error": func(L *lua.LState) int {
			L.Push(lua.LString(e.LastError()))
			return 1
		},
	}
	L.SetGlobal("prolog", L.SetFuncs(L.NewTable(), fns))
}

// args reads the optional argument list at position n. It must be a
// sequence table; nil means no arguments.
func args(L *lua.LState, n int) []value.Value {
	lv := L.Get(n)
	if lv == lua.LNil {
		return nil
	}
	tbl, ok := lv.(*lua.LTable)
	if !ok {
		L.TypeError(n, lua.LTTable)
		return nil
	}
	v, err := tableValue(tbl)
	if err != nil {
		L.ArgError(n, err.Error())
		return nil
	}
	xs, ok := v.AsSeq()
	if !ok {
		L.ArgError(n, "argument list must be a sequence")
		return nil
	}
	return xs
}
