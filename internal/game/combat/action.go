package combat

import (
	"fmt"
	"strings"
)

// Action identifies what a combatant does on its turn.
// The zero value is intentionally invalid.
type Action string

const (
	ActionAttack Action = "attack"
	ActionDefend Action = "defend"
	ActionEscape Action = "escape"
)

// PlayerActions lists every action the player may submit.
var PlayerActions = []Action{ActionAttack, ActionDefend, ActionEscape}

// Valid reports whether a is a recognised player action.
func (a Action) Valid() bool {
	switch a {
	case ActionAttack, ActionDefend, ActionEscape:
		return true
	default:
		return false
	}
}

// String returns the action tag.
func (a Action) String() string { return string(a) }

// ParseAction converts a raw tag into an Action. Matching ignores case and
// surrounding whitespace; "run" and "flee" are accepted as escape.
//
// Postcondition: Returns a valid Action, or an error matching ErrUnknownAction.
func ParseAction(raw string) (Action, error) {
	tag := strings.ToLower(strings.TrimSpace(raw))
	switch tag {
	case "run", "flee":
		return ActionEscape, nil
	}
	a := Action(tag)
	if !a.Valid() {
		return "", &Error{Kind: KindUnknownAction, Msg: fmt.Sprintf("unknown action %q", raw)}
	}
	return a, nil
}
