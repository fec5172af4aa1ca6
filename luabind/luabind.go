// Package luabind exposes an engine to sandboxed Lua scripts as the global
// table "prolog".
package luabind

import (
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/prologot/engine"
	"github.com/nathoo/prologot/value"
)

// Runtime is a Lua state bound to one engine. It is not safe for
// concurrent use.
type Runtime struct {
	state  *lua.LState
	engine *engine.Engine
	out    io.Writer
}

// New creates a sandboxed Lua state with the prolog table registered.
// Script output from print goes to out.
func New(e *engine.Engine, out io.Writer) *Runtime {
	if out == nil {
		out = io.Discard
	}
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibs(L)
	sandbox(L)

	r := &Runtime{state: L, engine: e, out: out}
	L.SetGlobal("print", L.NewFunction(r.print))
	register(L, e)
	return r
}

// DoFile runs a Lua script file.
func (r *Runtime) DoFile(path string) error {
	if err := r.state.DoFile(path); err != nil {
		return fmt.Errorf("executing %s: %w", path, err)
	}
	return nil
}

// DoString runs a chunk of Lua source.
func (r *Runtime) DoString(src string) error {
	if err := r.state.DoString(src); err != nil {
		return fmt.Errorf("executing chunk: %w", err)
	}
	return nil
}

// Global returns a global variable converted to a value.
func (r *Runtime) Global(name string) (value.Value, error) {
	return ToValue(r.state.GetGlobal(name))
}

// Close releases the Lua state. The engine is left running.
func (r *Runtime) Close() {
	r.state.Close()
}

func (r *Runtime) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach the filesystem or bypass metatables.
func sandbox(L *lua.LState) {
	for _, name := range []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	} {
		L.SetGlobal(name, lua.LNil)
	}
}
