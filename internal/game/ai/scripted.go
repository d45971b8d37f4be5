package ai

import (
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// ScriptCaller is the interface required to evaluate Lua behaviour hooks.
type ScriptCaller interface {
	// CallHook calls a named Lua function in the given VM.
	// Returns (LNil, nil) if the function is not defined.
	CallHook(vm, hook string, args ...lua.LValue) (lua.LValue, error)
	// NewTable allocates a table owned by the given VM, or nil if the VM does not exist.
	NewTable(vm string) *lua.LTable
}

// ScriptVM is the scripting VM monster hooks are loaded into.
const ScriptVM = "ai"

// Scripted is a combat.Selector that lets a Lua hook decide a monster's
// action. Hooks are bound to template IDs, so templates sharing a display
// name keep their own behaviour. Monsters without a registered hook, and hooks that return anything
// other than "attack" or "defend", fall through to the fallback selector.
//
// Hooks are called as hook(self, foe, roll) where self and foe are tables with
// name, level, hp, max_hp fields and roll is a percentile draw in [1, 100].
type Scripted struct {
	caller   ScriptCaller
	fallback combat.Selector
	logger   *zap.Logger

	mu    sync.RWMutex
	hooks map[string]string // template ID -> hook
}

// NewScripted creates a Scripted selector.
//
// Precondition: caller, fallback, and logger must be non-nil.
func NewScripted(caller ScriptCaller, fallback combat.Selector, logger *zap.Logger) *Scripted {
	return &Scripted{caller: caller, fallback: fallback, logger: logger, hooks: make(map[string]string)}
}

// Register binds templateID to a Lua hook. An empty hook removes the binding.
func (s *Scripted) Register(templateID, hook string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hook == "" {
		delete(s.hooks, templateID)
		return
	}
	s.hooks[templateID] = hook
}

// HookFor returns the hook bound to templateID, if any.
func (s *Scripted) HookFor(templateID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.hooks[templateID]
	return h, ok
}

// SelectAction runs the monster's hook, or the fallback when it has none.
//
// Postcondition: Returns ActionAttack or ActionDefend.
func (s *Scripted) SelectAction(self, opponent combat.Combatant, src dice.Source) combat.Action {
	hook, ok := s.HookFor(self.TemplateID)
	if !ok {
		return s.fallback.SelectAction(self, opponent, src)
	}
	selfT, foeT := s.caller.NewTable(ScriptVM), s.caller.NewTable(ScriptVM)
	if selfT == nil || foeT == nil {
		return s.fallback.SelectAction(self, opponent, src)
	}
	fill(selfT, self)
	fill(foeT, opponent)

	ret, err := s.caller.CallHook(ScriptVM, hook, selfT, foeT, lua.LNumber(dice.Percent(src)))
	if ret == nil {
		ret = lua.LNil
	}
	if err == nil {
		if str, isStr := ret.(lua.LString); isStr {
			if a := combat.Action(str); a == combat.ActionAttack || a == combat.ActionDefend {
				return a
			}
		}
	}
	s.logger.Debug("ai hook returned no usable action, using fallback",
		zap.String("monster", self.TemplateID),
		zap.String("hook", hook),
		zap.String("returned", ret.String()),
	)
	return s.fallback.SelectAction(self, opponent, src)
}

func fill(t *lua.LTable, c combat.Combatant) {
	t.RawSetString("name", lua.LString(c.Name))
	t.RawSetString("level", lua.LNumber(c.Level))
	t.RawSetString("hp", lua.LNumber(c.HP))
	t.RawSetString("max_hp", lua.LNumber(c.MaxHP))
}
