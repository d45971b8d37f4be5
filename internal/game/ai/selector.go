// Package ai chooses actions for monsters in battle.
//
// The default Heuristic reads only the monster's health ratio. Monsters whose
// template names a Lua hook can be driven by the Scripted selector instead.
package ai

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Health ratio thresholds for the heuristic.
const (
	// AggressiveRatio and above always attacks.
	AggressiveRatio = 0.30
	// DesperateRatio and below favours defending two to one.
	DesperateRatio = 0.10
)

// Heuristic is the stock monster behaviour. It is a stateless combat.Selector.
type Heuristic struct{}

// Candidates returns the candidate set the heuristic picks from uniformly for
// a given current/max HP ratio.
//
// Postcondition:
//   - ratio >= 0.30: [attack]
//   - 0.10 < ratio < 0.30: [attack, defend]
//   - ratio <= 0.10: [attack, defend, defend]
func Candidates(ratio float64) []combat.Action {
	switch {
	case ratio >= AggressiveRatio:
		return []combat.Action{combat.ActionAttack}
	case ratio > DesperateRatio:
		return []combat.Action{combat.ActionAttack, combat.ActionDefend}
	default:
		return []combat.Action{combat.ActionAttack, combat.ActionDefend, combat.ActionDefend}
	}
}

// SelectAction picks uniformly from Candidates(self.HPRatio()).
// A healthy monster consumes no randomness.
//
// Postcondition: Returns ActionAttack or ActionDefend.
func (Heuristic) SelectAction(self, _ combat.Combatant, src dice.Source) combat.Action {
	c := Candidates(self.HPRatio())
	if len(c) == 1 {
		return c[0]
	}
	return c[dice.Pick(src, len(c))]
}
