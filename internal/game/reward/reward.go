// Package reward computes what a player gains from a victory and loses from a defeat.
package reward

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Reward formula constants.
const (
	// ExperiencePerLevelGap is the bonus experience per level the monster has over the player.
	ExperiencePerLevelGap = 5
	// GoldPerLevelGap is the bonus gold per level the monster has over the player.
	GoldPerLevelGap = 3
	// MinGoldPerLevel and MaxGoldPerLevel bound the per-monster-level gold roll.
	MinGoldPerLevel = 10
	MaxGoldPerLevel = 20
)

// LevelGap returns max(0, monster.Level - player.Level).
func LevelGap(player, monster combat.Combatant) int {
	if gap := monster.Level - player.Level; gap > 0 {
		return gap
	}
	return 0
}

// Experience returns monster.ExperienceReward + LevelGap * 5.
//
// Postcondition: Returns >= monster.ExperienceReward.
func Experience(player, monster combat.Combatant) int {
	return monster.ExperienceReward + LevelGap(player, monster)*ExperiencePerLevelGap
}

// Gold returns monster.Level * uniform(10, 20) + LevelGap * 3.
//
// Postcondition: Consumes exactly one draw from src.
func Gold(player, monster combat.Combatant, src dice.Source) int {
	return monster.Level*dice.Between(src, MinGoldPerLevel, MaxGoldPerLevel) + LevelGap(player, monster)*GoldPerLevelGap
}

// Victory computes the reward for defeating monster.
//
// Postcondition: The returned player has reward.GoldGained added to Gold;
// no other field changes.
func Victory(player, monster combat.Combatant, src dice.Source) (combat.Reward, combat.Combatant) {
	r := combat.Reward{
		ExperienceGained: Experience(player, monster),
		GoldGained:       Gold(player, monster, src),
	}
	player.Gold += r.GoldGained
	return r, player
}
