package battle

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Strategy picks the player's next action from the current battle state.
type Strategy func(s combat.Session) combat.Action

// AlwaysAttack attacks every turn.
func AlwaysAttack(combat.Session) combat.Action { return combat.ActionAttack }

// Cautious attacks while above a third of max HP, defends down to a tenth,
// and tries to escape below that.
func Cautious(s combat.Session) combat.Action {
	switch r := s.Player.HPRatio(); {
	case r > 1.0/3:
		return combat.ActionAttack
	case r > 0.1:
		return combat.ActionDefend
	default:
		return combat.ActionEscape
	}
}

// maxSimTurns stops a simulated battle that neither side can finish.
const maxSimTurns = 1000

// SimReport tallies the results of simulated battles.
type SimReport struct {
	Battles   int
	Victories int
	Defeats   int
	Escapes   int
	// Stalemates counts battles cut off at the turn limit.
	Stalemates int
	TotalTurns int
	GoldWon    int
	GoldLost   int
}

// Rate returns n as a percentage of all battles.
func (r SimReport) Rate(n int) float64 {
	if r.Battles == 0 {
		return 0
	}
	return float64(n) * 100 / float64(r.Battles)
}

// AverageTurns returns the mean number of turns per battle.
func (r SimReport) AverageTurns() float64 {
	if r.Battles == 0 {
		return 0
	}
	return float64(r.TotalTurns) / float64(r.Battles)
}

// Simulate runs n independent battles of player against monster, each
// starting from the same snapshots, choosing player actions with strategy.
//
// Precondition: n >= 0; player and monster must be valid combatants with HP > 0.
// Postcondition: Victories+Defeats+Escapes+Stalemates == Battles == n.
func Simulate(engine *combat.Engine, player, monster combat.Combatant, strategy Strategy, n int) (SimReport, error) {
	var rep SimReport
	for i := 0; i < n; i++ {
		s, err := engine.Start(player, monster, "")
		if err != nil {
			return rep, fmt.Errorf("battle %d: %w", i+1, err)
		}
		for !s.Ended() && s.Turn <= maxSimTurns {
			t, err := engine.Submit(s, strategy(s))
			if err != nil {
				return rep, fmt.Errorf("battle %d turn %d: %w", i+1, s.Turn, err)
			}
			s = t.Session
		}

		rep.Battles++
		rep.TotalTurns += s.Turn
		switch s.Result {
		case combat.ResultVictory:
			rep.Victories++
			if s.Reward != nil {
				rep.GoldWon += s.Reward.GoldGained
			}
		case combat.ResultDefeat:
			rep.Defeats++
			if s.Penalty != nil {
				rep.GoldLost += s.Penalty.GoldLost
			}
		case combat.ResultEscaped:
			rep.Escapes++
		default:
			rep.Stalemates++
		}
	}
	return rep, nil
}
