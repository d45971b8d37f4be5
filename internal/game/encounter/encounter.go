// Package encounter decides whether a step into a field triggers a battle and
// which monster appears.
package encounter

import (
	"math"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// DefaultRate is the encounter rate used when none is specified or the
// specified value is not a probability.
const DefaultRate = 0.10

// Candidate is an eligible monster with a relative selection weight.
type Candidate struct {
	Monster combat.Combatant
	// Weight <= 0 is treated as 1.
	Weight int
}

// RateOr returns *rate when it is a valid probability, else fallback. An
// invalid fallback resolves to DefaultRate.
//
// Postcondition: 0 <= result <= 1.
func RateOr(rate *float64, fallback float64) float64 {
	if !valid(fallback) {
		fallback = DefaultRate
	}
	if rate == nil || !valid(*rate) {
		return fallback
	}
	return *rate
}

// Rate is RateOr(rate, DefaultRate).
func Rate(rate *float64) float64 { return RateOr(rate, DefaultRate) }

func valid(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= 1
}

// Start resolves one encounter check. It draws r uniformly in [0, 1) and
// triggers when r <= rate, then picks a monster by weight.
//
// Precondition: src must be non-nil.
// Postcondition: Returns (monster, true) when an encounter occurs. An empty
// candidate list never triggers and consumes no randomness; otherwise exactly
// one Float64 draw is made, plus one Intn draw when the check succeeds.
func Start(rate float64, eligible []Candidate, src dice.Source) (combat.Combatant, bool) {
	i, ok := Select(rate, eligible, src)
	if !ok {
		return combat.Combatant{}, false
	}
	return eligible[i].Monster, true
}

// Select is Start returning the index of the chosen candidate.
func Select(rate float64, eligible []Candidate, src dice.Source) (int, bool) {
	if len(eligible) == 0 {
		return -1, false
	}
	if !valid(rate) {
		rate = DefaultRate
	}
	if src.Float64() > rate {
		return -1, false
	}
	return pick(eligible, src), true
}

// pick returns the index of a weighted draw over eligible.
func pick(eligible []Candidate, src dice.Source) int {
	total := 0
	for _, c := range eligible {
		total += weight(c)
	}
	n := src.Intn(total)
	for i, c := range eligible {
		n -= weight(c)
		if n < 0 {
			return i
		}
	}
	return len(eligible) - 1
}

func weight(c Candidate) int {
	if c.Weight <= 0 {
		return 1
	}
	return c.Weight
}
