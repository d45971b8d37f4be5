package combat

import (
	"fmt"
	"math"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Tuning constants for the combat probability model. Percentages are integers
// on a 1-100 scale.
const (
	MinHitChance = 10
	MaxHitChance = 100

	MinDamageMultiplier = 80
	MaxDamageMultiplier = 120

	CriticalChance = 5
	// CriticalMultiplier is applied as damage * 3 / 2.
	CriticalMultiplier = 1.5

	DefendReduction = 50

	BaseEscapeRate   = 50
	EscapePerAgility = 3
	MinEscapeRate    = 10
	MaxEscapeRate    = 90
)

// ActionOutcome is the result of one attack, defense, or escape computation.
type ActionOutcome struct {
	Hit      bool
	Damage   int
	Critical bool
	Message  string

	// Roll is the percentile draw, Chance the threshold it was compared against.
	Roll   int
	Chance int
	// Multiplier is the damage multiplier in percent; zero on a miss.
	Multiplier int
}

// Round rounds half away from zero.
func Round(x float64) int {
	return int(math.Round(x))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// HitChance returns attacker.Accuracy - defender.Evasion clamped to
// [MinHitChance, MaxHitChance].
//
// Postcondition: 10 <= result <= 100.
func HitChance(attacker, defender Combatant) int {
	return clamp(attacker.Accuracy-defender.Evasion, MinHitChance, MaxHitChance)
}

// BaseDamage returns max(1, effective attack - defender.Defense), where the
// effective attack is MagicAttack for magical actions and Attack otherwise.
//
// Postcondition: Returns >= 1.
func BaseDamage(attacker, defender Combatant, magical bool) int {
	atk := attacker.Attack
	if magical {
		atk = attacker.MagicAttack
	}
	if d := atk - defender.Defense; d > 1 {
		return d
	}
	return 1
}

// ScaleDamage applies a percentage multiplier and rounds.
//
// Precondition: base >= 1; pct >= MinDamageMultiplier.
// Postcondition: Returns >= 1.
func ScaleDamage(base, pct int) int {
	d := Round(float64(base) * float64(pct) / 100)
	if d < 1 {
		return 1
	}
	return d
}

// CriticalDamage returns round(damage * 1.5).
func CriticalDamage(damage int) int {
	return Round(float64(damage) * CriticalMultiplier)
}

// ResolveAttack rolls a hit check, damage multiplier, and critical check for
// attacker against defender.
//
// Draw order: percentile hit roll; on a hit, the multiplier in [80, 120] and
// then the independent 5% critical roll. A miss consumes only the hit roll.
//
// Precondition: src must be non-nil.
// Postcondition: On a hit Damage >= 1; on a miss Damage == 0 and Critical is false.
func ResolveAttack(attacker, defender Combatant, magical bool, src dice.Source) ActionOutcome {
	chance := HitChance(attacker, defender)
	roll := dice.Percent(src)
	out := ActionOutcome{Roll: roll, Chance: chance}
	if roll > chance {
		out.Message = fmt.Sprintf("%s attacks %s but misses.", attacker.Name, defender.Name)
		return out
	}

	out.Hit = true
	out.Multiplier = dice.Between(src, MinDamageMultiplier, MaxDamageMultiplier)
	out.Damage = ScaleDamage(BaseDamage(attacker, defender, magical), out.Multiplier)
	if dice.Chance(src, CriticalChance) {
		out.Critical = true
		out.Damage = CriticalDamage(out.Damage)
		out.Message = fmt.Sprintf("Critical hit! %s strikes %s for %d damage.", attacker.Name, defender.Name, out.Damage)
		return out
	}
	out.Message = fmt.Sprintf("%s hits %s for %d damage.", attacker.Name, defender.Name, out.Damage)
	return out
}

// Guard is the mitigation granted by a defend action for the rest of the round.
type Guard struct {
	// Reduction is the percentage of incoming damage removed.
	Reduction int
	Message   string
}

// Defend produces the flat 50% guard for defender. It always succeeds and
// consumes no randomness.
func Defend(defender Combatant) Guard {
	return Guard{
		Reduction: DefendReduction,
		Message:   fmt.Sprintf("%s takes a defensive stance.", defender.Name),
	}
}

// Mitigate applies a guard to incoming damage: round(damage * (100 - reduction) / 100).
//
// Postcondition: 0 <= result <= damage for damage >= 0.
func (g Guard) Mitigate(damage int) int {
	return reduce(damage, g.Reduction)
}

func reduce(amount, pct int) int {
	if amount <= 0 {
		return 0
	}
	pct = clamp(pct, 0, 100)
	if pct == 0 {
		return amount
	}
	return Round(float64(amount) * float64(100-pct) / 100)
}

// EscapeRate returns 50 + 3 * (runner.Agility - opponent.Agility) clamped to [10, 90].
//
// Postcondition: 10 <= result <= 90.
func EscapeRate(runner, opponent Combatant) int {
	rate := BaseEscapeRate + EscapePerAgility*(runner.Agility-opponent.Agility)
	return clamp(rate, MinEscapeRate, MaxEscapeRate)
}

// AttemptEscape rolls a percentile draw against EscapeRate.
//
// Postcondition: Consumes exactly one Intn draw; Hit reports success.
func AttemptEscape(runner, opponent Combatant, src dice.Source) ActionOutcome {
	rate := EscapeRate(runner, opponent)
	roll := dice.Percent(src)
	out := ActionOutcome{Roll: roll, Chance: rate, Hit: roll <= rate}
	if out.Hit {
		out.Message = fmt.Sprintf("%s escapes from %s!", runner.Name, opponent.Name)
	} else {
		out.Message = fmt.Sprintf("%s tries to escape but %s blocks the way!", runner.Name, opponent.Name)
	}
	return out
}

// ApplyDamage returns target with amount of damage applied after the given
// percentage damage-type reduction.
//
// Precondition: reduction is a percentage; values outside [0, 100] are clamped.
// Postcondition: 0 <= result.HP <= result.MaxHP; negative amounts deal no damage.
func ApplyDamage(target Combatant, amount, reduction int) Combatant {
	effective := reduce(amount, reduction)
	target.HP = clamp(target.HP-effective, 0, target.MaxHP)
	return target
}
