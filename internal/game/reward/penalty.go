package reward

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Defeat penalty bounds, in percent of carried gold.
const (
	MinPenaltyPercent = 20
	MaxPenaltyPercent = 30
)

// DefaultTown is the teleport destination used when no last-visited town is known.
const DefaultTown = "town"

// Defeat computes the defeat penalty for player.
// The destination is lastTown, or fallbackTown when lastTown is empty.
//
// Postcondition: The returned player has HP == 1 and Gold == penalty.RemainingGold;
// 0 <= RemainingGold <= original gold; consumes exactly one draw from src.
func Defeat(player combat.Combatant, lastTown, fallbackTown string, src dice.Source) (combat.Penalty, combat.Combatant) {
	pct := dice.Between(src, MinPenaltyPercent, MaxPenaltyPercent)
	gold := player.Gold
	if gold < 0 {
		gold = 0
	}
	lost := combat.Round(float64(gold) * float64(pct) / 100)
	if lost > gold {
		lost = gold
	}

	dest := lastTown
	if dest == "" {
		dest = fallbackTown
	}
	if dest == "" {
		dest = DefaultTown
	}

	p := combat.Penalty{
		GoldLost:         lost,
		RemainingGold:    gold - lost,
		TeleportLocation: dest,
		PenaltyPercent:   pct,
	}
	player.Gold = p.RemainingGold
	player.HP = 1
	if player.MaxHP < 1 {
		player.MaxHP = 1
	}
	return p, player
}

// Calculator binds the reward and penalty rules into a combat.Settlement.
type Calculator struct {
	// FallbackTown is used when a defeated player has no last-visited town.
	FallbackTown string
}

// NewCalculator returns a Calculator that falls back to fallbackTown.
func NewCalculator(fallbackTown string) *Calculator {
	return &Calculator{FallbackTown: fallbackTown}
}

// Victory implements combat.Settlement.
func (c *Calculator) Victory(player, monster combat.Combatant, src dice.Source) (combat.Reward, combat.Combatant) {
	return Victory(player, monster, src)
}

// Defeat implements combat.Settlement.
func (c *Calculator) Defeat(player combat.Combatant, returnTown string, src dice.Source) (combat.Penalty, combat.Combatant) {
	return Defeat(player, returnTown, c.FallbackTown, src)
}
