// Package dice provides the randomness abstraction used by the arena combat
// core. Every random draw in the engine goes through a Source so that tests
// can feed exact sequences.
package dice

import "fmt"

// Source is the randomness provider for all combat draws.
//
// Implementations used from multiple goroutines MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// Between returns a uniform integer in the closed range [lo, hi].
//
// Precondition: lo <= hi; src must be non-nil.
// Postcondition: lo <= result <= hi.
func Between(src Source, lo, hi int) int {
	if lo > hi {
		panic(fmt.Sprintf("dice: Between called with lo %d > hi %d", lo, hi))
	}
	return lo + src.Intn(hi-lo+1)
}

// Percent returns a uniform integer in [1, 100].
//
// Postcondition: 1 <= result <= 100.
func Percent(src Source) int {
	return Between(src, 1, 100)
}

// Chance reports whether a percentile draw lands at or under pct.
// A pct of 0 never succeeds; a pct of 100 always succeeds.
//
// Postcondition: Consumes exactly one Intn draw.
func Chance(src Source, pct int) bool {
	return Percent(src) <= pct
}

// Pick returns a uniform index in [0, n).
//
// Precondition: n > 0.
func Pick(src Source, n int) int {
	return src.Intn(n)
}
