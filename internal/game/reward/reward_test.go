package reward_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/reward"
)

func TestExperience_LevelGapBonus(t *testing.T) {
	player := combat.Combatant{Level: 5}
	monster := combat.Combatant{Level: 10, ExperienceReward: 50}
	assert.Equal(t, 75, reward.Experience(player, monster))
}

func TestExperience_NoBonusWhenPlayerOutlevels(t *testing.T) {
	player := combat.Combatant{Level: 12}
	monster := combat.Combatant{Level: 10, ExperienceReward: 50}
	assert.Equal(t, 50, reward.Experience(player, monster))
	assert.Zero(t, reward.LevelGap(player, monster))
}

func TestGold_ExactDraw(t *testing.T) {
	player := combat.Combatant{Level: 5}
	monster := combat.Combatant{Level: 10}
	// Between(10, 20) with raw draw 5 yields 15: 10*15 + 5*3.
	src := dice.NewFixedSource([]int{5})
	assert.Equal(t, 165, reward.Gold(player, monster, src))
}

func TestGold_Property_WithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		player := combat.Combatant{Level: rapid.IntRange(1, 99).Draw(rt, "player_level")}
		monster := combat.Combatant{Level: rapid.IntRange(1, 99).Draw(rt, "monster_level")}
		gap := reward.LevelGap(player, monster)
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))

		g := reward.Gold(player, monster, src)
		assert.GreaterOrEqual(rt, g, monster.Level*reward.MinGoldPerLevel+gap*reward.GoldPerLevelGap)
		assert.LessOrEqual(rt, g, monster.Level*reward.MaxGoldPerLevel+gap*reward.GoldPerLevelGap)
	})
}

func TestVictory_AddsGoldOnly(t *testing.T) {
	player := combat.Combatant{Name: "Hero", Level: 5, HP: 7, MaxHP: 50, Gold: 100}
	monster := combat.Combatant{Name: "Slime", Level: 10, ExperienceReward: 50}

	r, after := reward.Victory(player, monster, dice.NewFixedSource([]int{5}))
	assert.Equal(t, combat.Reward{ExperienceGained: 75, GoldGained: 165}, r)
	assert.Equal(t, 265, after.Gold)
	after.Gold = player.Gold
	assert.Equal(t, player, after)
}

func TestDefeat_ExactPenalty(t *testing.T) {
	player := combat.Combatant{Name: "Hero", HP: 0, MaxHP: 50, Gold: 100}
	// Between(20, 30) with raw draw 5 yields 25%.
	p, after := reward.Defeat(player, "Aldea", "Port", dice.NewFixedSource([]int{5}))
	assert.Equal(t, combat.Penalty{GoldLost: 25, RemainingGold: 75, TeleportLocation: "Aldea", PenaltyPercent: 25}, p)
	assert.Equal(t, 1, after.HP)
	assert.Equal(t, 75, after.Gold)
}

func TestDefeat_RoundsLostGold(t *testing.T) {
	player := combat.Combatant{Name: "Hero", MaxHP: 10, Gold: 15}
	// 15 * 30% = 4.5 rounds to 5.
	p, _ := reward.Defeat(player, "Aldea", "", dice.NewFixedSource([]int{10}))
	assert.Equal(t, 5, p.GoldLost)
	assert.Equal(t, 10, p.RemainingGold)
}

func TestDefeat_ZeroGold(t *testing.T) {
	p, after := reward.Defeat(combat.Combatant{Name: "Hero", MaxHP: 10}, "Aldea", "", dice.NewFixedSource([]int{0}))
	assert.Zero(t, p.GoldLost)
	assert.Zero(t, p.RemainingGold)
	assert.Equal(t, 1, after.HP)
}

func TestDefeat_FallbackTown(t *testing.T) {
	player := combat.Combatant{Name: "Hero", MaxHP: 10}

	p, _ := reward.Defeat(player, "", "Port", dice.NewFixedSource([]int{0}))
	assert.Equal(t, "Port", p.TeleportLocation)

	p, _ = reward.Defeat(player, "", "", dice.NewFixedSource([]int{0}))
	assert.Equal(t, reward.DefaultTown, p.TeleportLocation)
}

func TestDefeat_Property_Bounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		gold := rapid.IntRange(0, 1_000_000).Draw(rt, "gold")
		player := combat.Combatant{Name: "Hero", MaxHP: 10, Gold: gold}
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))

		p, after := reward.Defeat(player, "Aldea", "", src)
		assert.Equal(rt, 1, after.HP)
		assert.GreaterOrEqual(rt, p.RemainingGold, 0)
		assert.LessOrEqual(rt, p.RemainingGold, gold)
		assert.Equal(rt, gold, p.GoldLost+p.RemainingGold)
		assert.Equal(rt, p.RemainingGold, after.Gold)
		assert.GreaterOrEqual(rt, p.PenaltyPercent, reward.MinPenaltyPercent)
		assert.LessOrEqual(rt, p.PenaltyPercent, reward.MaxPenaltyPercent)
	})
}

func TestCalculator_ImplementsSettlement(t *testing.T) {
	var settle combat.Settlement = reward.NewCalculator("Port")
	p, _ := settle.Defeat(combat.Combatant{Name: "Hero", MaxHP: 10, Gold: 10}, "", dice.NewFixedSource([]int{0}))
	assert.Equal(t, "Port", p.TeleportLocation)
}
