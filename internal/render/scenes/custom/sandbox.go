package custom

import (
	"strings"

	"github.com/rs/zerolog"
	lua "github.com/yuin/gopher-lua"
)

// globals removed from the base library: anything that loads code from
// outside the definition or reaches past the sandbox
var blockedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring", "require", "module",
	"collectgarbage", "getfenv", "setfenv", "newproxy", "_printregs",
	"rawset", "rawget", "rawequal",
}

// newSandbox returns a Lua state exposing only base, table, string and
// math, plus a few numeric helpers. There is no io, os, package, debug,
// channel or coroutine access.
func newSandbox(logger zerolog.Logger) *lua.LState {
	L := lua.NewState(lua.Options{
		SkipOpenLibs:    true,
		CallStackSize:   256,
		RegistrySize:    1024 * 4,
		RegistryMaxSize: 1024 * 256,
	})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	if str, ok := L.GetGlobal(lua.StringLibName).(*lua.LTable); ok {
		str.RawSetString("rep", lua.LNil)
		str.RawSetString("dump", lua.LNil)
	}

	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		parts := make([]string, 0, L.GetTop())
		for i := 1; i <= L.GetTop(); i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		logger.Debug().Msg(strings.Join(parts, "\t"))
		return 0
	}))
	L.SetGlobal("zeros", L.NewFunction(luaZeros))
	L.SetGlobal("sum", L.NewFunction(luaSum))
	L.SetGlobal("clamp", L.NewFunction(luaClamp))
	return L
}

// zeros(h, w) returns an h-row table of w zeros.
func luaZeros(L *lua.LState) int {
	h := L.CheckInt(1)
	w := L.CheckInt(2)
	if h < 0 || w < 0 || h*w > 1<<20 {
		L.ArgError(1, "grid too large")
		return 0
	}
	rows := L.CreateTable(h, 0)
	for y := 0; y < h; y++ {
		row := L.CreateTable(w, 0)
		for x := 0; x < w; x++ {
			row.RawSetInt(x+1, lua.LNumber(0))
		}
		rows.RawSetInt(y+1, row)
	}
	L.Push(rows)
	return 1
}

// sum(t) adds the numbers of a flat table.
func luaSum(L *lua.LState) int {
	t := L.CheckTable(1)
	total := 0.0
	t.ForEach(func(_, v lua.LValue) {
		if n, ok := v.(lua.LNumber); ok {
			total += float64(n)
		}
	})
	L.Push(lua.LNumber(total))
	return 1
}

func luaClamp(L *lua.LState) int {
	v := float64(L.CheckNumber(1))
	lo := float64(L.CheckNumber(2))
	hi := float64(L.CheckNumber(3))
	if v < lo {
		v = lo
	}
	if v > hi {
		v = hi
	}
	L.Push(lua.LNumber(v))
	return 1
}
