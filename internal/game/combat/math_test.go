package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Helpers translating domain draws into raw Intn values for dice.FixedSource.
func pct(d int) int  { return d - 1 }
func mult(m int) int { return m - combat.MinDamageMultiplier }

const (
	noCrit = 99 // percentile 100, never a critical
	crit   = 0  // percentile 1, always a critical
)

func TestHitChance_Example(t *testing.T) {
	atk := combat.Combatant{Attack: 15, Accuracy: 80}
	def := combat.Combatant{Defense: 5, Evasion: 10}
	assert.Equal(t, 70, combat.HitChance(atk, def))
}

func TestHitChance_Clamped(t *testing.T) {
	assert.Equal(t, 10, combat.HitChance(combat.Combatant{Accuracy: 5}, combat.Combatant{Evasion: 50}))
	assert.Equal(t, 100, combat.HitChance(combat.Combatant{Accuracy: 250}, combat.Combatant{Evasion: 0}))
}

func TestHitChance_Property_AlwaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		acc := rapid.IntRange(-500, 500).Draw(rt, "accuracy")
		eva := rapid.IntRange(-500, 500).Draw(rt, "evasion")
		hc := combat.HitChance(combat.Combatant{Accuracy: acc}, combat.Combatant{Evasion: eva})
		assert.GreaterOrEqual(rt, hc, combat.MinHitChance)
		assert.LessOrEqual(rt, hc, combat.MaxHitChance)
	})
}

// TestResolveAttack_Example reproduces the worked example: hit chance 70,
// draw 50, multiplier 1.0 gives max(1, 15-5) = 10 damage.
func TestResolveAttack_Example(t *testing.T) {
	atk := combat.Combatant{Name: "Hero", Attack: 15, Accuracy: 80}
	def := combat.Combatant{Name: "Slime", Defense: 5, Evasion: 10}
	src := dice.NewFixedSource([]int{pct(50), mult(100), noCrit})

	out := combat.ResolveAttack(atk, def, false, src)
	assert.True(t, out.Hit)
	assert.False(t, out.Critical)
	assert.Equal(t, 10, out.Damage)
	assert.Equal(t, 70, out.Chance)
	assert.Equal(t, 50, out.Roll)
	assert.Equal(t, "Hero hits Slime for 10 damage.", out.Message)
}

func TestResolveAttack_MissConsumesOnlyHitRoll(t *testing.T) {
	atk := combat.Combatant{Name: "Hero", Attack: 15, Accuracy: 80}
	def := combat.Combatant{Name: "Slime", Defense: 5, Evasion: 10}
	src := dice.NewFixedSource([]int{pct(71)})

	out := combat.ResolveAttack(atk, def, false, src)
	assert.False(t, out.Hit)
	assert.Zero(t, out.Damage)
	assert.False(t, out.Critical)
	ints, _ := src.Remaining()
	assert.Zero(t, ints)
}

func TestResolveAttack_MagicalUsesMagicAttack(t *testing.T) {
	atk := combat.Combatant{Name: "Mage", Attack: 2, MagicAttack: 30, Accuracy: 100}
	def := combat.Combatant{Name: "Golem", Defense: 10}
	out := combat.ResolveAttack(atk, def, true, dice.NewFixedSource([]int{pct(1), mult(100), noCrit}))
	assert.Equal(t, 20, out.Damage)
}

func TestResolveAttack_MinimumDamageIsOne(t *testing.T) {
	atk := combat.Combatant{Name: "Rat", Attack: 1, Accuracy: 100}
	def := combat.Combatant{Name: "Knight", Defense: 80}
	out := combat.ResolveAttack(atk, def, false, dice.NewFixedSource([]int{pct(1), mult(80), noCrit}))
	assert.True(t, out.Hit)
	assert.Equal(t, 1, out.Damage)
}

func TestResolveAttack_Critical(t *testing.T) {
	atk := combat.Combatant{Name: "Hero", Attack: 15, Accuracy: 100}
	def := combat.Combatant{Name: "Slime", Defense: 5}

	out := combat.ResolveAttack(atk, def, false, dice.NewFixedSource([]int{pct(1), mult(100), crit}))
	assert.True(t, out.Critical)
	assert.Equal(t, 15, out.Damage)

	// 10 * 1.10 = 11, then 11 * 1.5 = 16.5 rounds half away from zero to 17.
	out = combat.ResolveAttack(atk, def, false, dice.NewFixedSource([]int{pct(1), mult(110), crit}))
	assert.Equal(t, 17, out.Damage)
}

func TestScaleDamage_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 12, combat.ScaleDamage(10, 115))
	assert.Equal(t, 9, combat.ScaleDamage(10, 85))
	assert.Equal(t, 1, combat.ScaleDamage(1, 80))
}

func TestResolveAttack_Property_HitDamageAtLeastOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		atk := combat.Combatant{
			Name:     "A",
			Attack:   rapid.IntRange(0, 300).Draw(rt, "attack"),
			Accuracy: rapid.IntRange(0, 200).Draw(rt, "accuracy"),
		}
		def := combat.Combatant{
			Name:    "D",
			Defense: rapid.IntRange(0, 300).Draw(rt, "defense"),
			Evasion: rapid.IntRange(0, 200).Draw(rt, "evasion"),
		}
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		out := combat.ResolveAttack(atk, def, false, src)
		if out.Hit {
			assert.GreaterOrEqual(rt, out.Damage, 1)
		} else {
			assert.Zero(rt, out.Damage)
			assert.False(rt, out.Critical)
		}
	})
}

func TestResolveAttack_Property_CriticalIsRoundedOneAndAHalf(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		atk := combat.Combatant{Name: "A", Attack: rapid.IntRange(1, 300).Draw(rt, "attack"), Accuracy: 100}
		def := combat.Combatant{Name: "D", Defense: rapid.IntRange(0, 300).Draw(rt, "defense")}
		m := rapid.IntRange(combat.MinDamageMultiplier, combat.MaxDamageMultiplier).Draw(rt, "mult")

		normal := combat.ResolveAttack(atk, def, false, dice.NewFixedSource([]int{pct(1), mult(m), noCrit}))
		critical := combat.ResolveAttack(atk, def, false, dice.NewFixedSource([]int{pct(1), mult(m), crit}))
		require.True(rt, critical.Critical)
		assert.Equal(rt, combat.Round(float64(normal.Damage)*1.5), critical.Damage)
	})
}

func TestEscapeRate_Example(t *testing.T) {
	assert.Equal(t, 74, combat.EscapeRate(combat.Combatant{Agility: 18}, combat.Combatant{Agility: 10}))
}

func TestEscapeRate_Clamped(t *testing.T) {
	assert.Equal(t, 90, combat.EscapeRate(combat.Combatant{Agility: 40}, combat.Combatant{Agility: 10}))
	assert.Equal(t, 10, combat.EscapeRate(combat.Combatant{Agility: 0}, combat.Combatant{Agility: 40}))
}

func TestEscapeRate_Property_AlwaysInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(-1000, 1000).Draw(rt, "runner")
		b := rapid.IntRange(-1000, 1000).Draw(rt, "opponent")
		rate := combat.EscapeRate(combat.Combatant{Agility: a}, combat.Combatant{Agility: b})
		assert.GreaterOrEqual(rt, rate, combat.MinEscapeRate)
		assert.LessOrEqual(rt, rate, combat.MaxEscapeRate)
	})
}

func TestAttemptEscape_Threshold(t *testing.T) {
	runner := combat.Combatant{Name: "Hero", Agility: 18}
	opp := combat.Combatant{Name: "Wolf", Agility: 10}

	ok := combat.AttemptEscape(runner, opp, dice.NewFixedSource([]int{pct(74)}))
	assert.True(t, ok.Hit)
	fail := combat.AttemptEscape(runner, opp, dice.NewFixedSource([]int{pct(75)}))
	assert.False(t, fail.Hit)
}

func TestDefend_HalvesDamageRoundingHalfUp(t *testing.T) {
	g := combat.Defend(combat.Combatant{Name: "Hero"})
	assert.Equal(t, combat.DefendReduction, g.Reduction)
	assert.Equal(t, 5, g.Mitigate(10))
	assert.Equal(t, 6, g.Mitigate(11))
	assert.Equal(t, 1, g.Mitigate(1))
	assert.Equal(t, 0, g.Mitigate(0))
}

func TestApplyDamage(t *testing.T) {
	c := combat.Combatant{Name: "G", HP: 18, MaxHP: 18}
	c = combat.ApplyDamage(c, 5, 0)
	assert.Equal(t, 13, c.HP)
	c = combat.ApplyDamage(c, 20, 0)
	assert.Equal(t, 0, c.HP)
}

func TestApplyDamage_WithReduction(t *testing.T) {
	c := combat.Combatant{Name: "G", HP: 100, MaxHP: 100}
	// 10 * 75% = 7.5 rounds to 8.
	assert.Equal(t, 92, combat.ApplyDamage(c, 10, 25).HP)
	assert.Equal(t, 100, combat.ApplyDamage(c, 10, 100).HP)
	assert.Equal(t, 90, combat.ApplyDamage(c, 10, -20).HP, "negative reduction is clamped to 0")
}

func TestApplyDamage_Property_HPStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 500).Draw(rt, "max_hp")
		hp := rapid.IntRange(0, maxHP).Draw(rt, "hp")
		dmg := rapid.IntRange(-100, 1000).Draw(rt, "dmg")
		red := rapid.IntRange(-50, 150).Draw(rt, "reduction")

		c := combat.ApplyDamage(combat.Combatant{Name: "X", HP: hp, MaxHP: maxHP}, dmg, red)
		assert.GreaterOrEqual(rt, c.HP, 0)
		assert.LessOrEqual(rt, c.HP, c.MaxHP)
		assert.LessOrEqual(rt, c.HP, hp, "damage never heals")
	})
}

func TestCombatant_Condition(t *testing.T) {
	tests := []struct {
		hp   int
		want string
	}{
		{100, "unharmed"},
		{90, "barely scratched"},
		{60, "lightly wounded"},
		{40, "moderately wounded"},
		{20, "heavily wounded"},
		{5, "critically wounded"},
		{0, "defeated"},
	}
	for _, tc := range tests {
		c := combat.Combatant{HP: tc.hp, MaxHP: 100}
		assert.Equal(t, tc.want, c.Condition(), "hp=%d", tc.hp)
	}
}

func TestCombatant_Validate(t *testing.T) {
	good := combat.Combatant{Name: "Hero", Level: 1, HP: 10, MaxHP: 10}
	assert.NoError(t, good.Validate())

	bad := []combat.Combatant{
		{Level: 1, HP: 10, MaxHP: 10},
		{Name: "X", Level: 0, HP: 10, MaxHP: 10},
		{Name: "X", Level: 1, HP: 10, MaxHP: 0},
		{Name: "X", Level: 1, HP: 11, MaxHP: 10},
		{Name: "X", Level: 1, HP: 5, MaxHP: 10, DamageReduction: 101},
	}
	for i, c := range bad {
		assert.Error(t, c.Validate(), "case %d", i)
	}
}

func TestParseAction(t *testing.T) {
	for raw, want := range map[string]combat.Action{
		"attack":   combat.ActionAttack,
		" Defend ": combat.ActionDefend,
		"ESCAPE":   combat.ActionEscape,
		"flee":     combat.ActionEscape,
	} {
		got, err := combat.ParseAction(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, got)
	}
	_, err := combat.ParseAction("dance")
	assert.ErrorIs(t, err, combat.ErrUnknownAction)
}
