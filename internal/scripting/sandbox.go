// Package scripting runs content-authored Lua, such as monster behaviour
// hooks, inside a sandboxed GopherLua state with a per-call opcode budget.
// It knows nothing of game rules; the dice source and logger are injected
// through the Manager.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the opcode budget per call when none is configured.
const DefaultInstructionLimit = 100_000

// strippedGlobals can reach the filesystem, load arbitrary chunks, or tamper
// with other functions' environments.
var strippedGlobals = []string{
	"dofile", "loadfile", "load", "loadstring",
	"require", "module", "collectgarbage",
	"getfenv", "setfenv", "newproxy",
}

// budget is a context whose Done method counts opcodes. GopherLua polls Done
// once per instruction when a context is set, so the state is cancelled on
// the instruction that exhausts the budget.
type budget struct {
	context.Context
	left   atomic.Int64
	cancel context.CancelFunc
}

func (b *budget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

func newBudget(limit int) *budget {
	ctx, cancel := context.WithCancel(context.Background())
	b := &budget{Context: ctx, cancel: cancel}
	b.left.Store(int64(limit))
	return b
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultInstructionLimit
	}
	return limit
}

// arm gives L a fresh budget of limit opcodes. Call the returned func once
// the guarded execution is over.
func arm(L *lua.LState, limit int) context.CancelFunc {
	b := newBudget(normalizeLimit(limit))
	L.SetContext(b)
	return b.cancel
}

// NewSandboxedState returns a Lua state with only the base, table, string,
// and math libraries, minus strippedGlobals, armed with a budget of limit
// opcodes (DefaultInstructionLimit when limit <= 0).
//
// Postcondition: The caller owns L and must call the returned cancel func and
// then L.Close.
func NewSandboxedState(limit int) (*lua.LState, context.CancelFunc) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	for _, name := range strippedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L, arm(L, limit)
}
