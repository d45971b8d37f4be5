package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// RegisterModules registers the engine.log and engine.dice tables into L.
//
//	engine.log.debug/info/warn/error(msg)
//	engine.dice.between(lo, hi)  -- uniform integer in [lo, hi]
//	engine.dice.percent()        -- uniform integer in [1, 100]
//	engine.dice.chance(pct)      -- true with probability pct/100
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	engine.RawSetString("log", m.logModule(L))
	engine.RawSetString("dice", m.diceModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	levels := map[string]func(string, ...zap.Field){
		"debug": m.logger.Debug,
		"info":  m.logger.Info,
		"warn":  m.logger.Warn,
		"error": m.logger.Error,
	}
	for name, fn := range levels {
		fn := fn
		L.SetField(t, name, L.NewFunction(func(L *lua.LState) int {
			fn("lua: "+L.CheckString(1), zap.String("source", "script"))
			return 0
		}))
	}
	return t
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "between", L.NewFunction(func(L *lua.LState) int {
		lo, hi := L.CheckInt(1), L.CheckInt(2)
		if lo > hi {
			L.ArgError(2, "hi must be >= lo")
			return 0
		}
		L.Push(lua.LNumber(dice.Between(m.src, lo, hi)))
		return 1
	}))
	L.SetField(t, "percent", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(dice.Percent(m.src)))
		return 1
	}))
	L.SetField(t, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(dice.Chance(m.src, L.CheckInt(1))))
		return 1
	}))
	return t
}
