package character

import "github.com/cory-johannsen/arena/internal/game/combat"

// MaxLevel is the level cap.
const MaxLevel = 99

// Per-level growth applied on level-up.
const (
	HPPerLevel = 8
	MPPerLevel = 3
)

// ExperienceForLevel returns the total experience required to reach level.
//
// Postcondition: Returns 0 for level <= 1; strictly increasing above that.
func ExperienceForLevel(level int) int {
	if level <= 1 {
		return 0
	}
	n := level - 1
	return 50 * n * (n + 1)
}

// Outcome summarises what a finished battle did to the character.
type Outcome struct {
	Result           combat.Result
	ExperienceGained int
	GoldDelta        int
	LevelsGained     int
	// Teleported is set on defeat to the location the character woke up in.
	Teleported string
}

// ApplyBattle folds an ended battle session into the character record.
//
// Precondition: s.Ended() is true and s.Player was built from c.
// Postcondition: HP, MP, and Gold mirror s.Player. On victory experience is
// added and any earned levels are applied. On defeat the character is moved
// to the penalty's teleport location.
func (c *Character) ApplyBattle(s combat.Session) Outcome {
	out := Outcome{Result: s.Result, GoldDelta: s.Player.Gold - c.Gold}

	c.CurrentHP = s.Player.HP
	c.CurrentMP = s.Player.MP
	c.Gold = s.Player.Gold

	switch s.Result {
	case combat.ResultVictory:
		if s.Reward != nil {
			out.ExperienceGained = s.Reward.ExperienceGained
			out.LevelsGained = c.GainExperience(s.Reward.ExperienceGained)
		}
	case combat.ResultDefeat:
		if s.Penalty != nil {
			c.MoveTo(s.Penalty.TeleportLocation, true)
			out.Teleported = s.Penalty.TeleportLocation
		}
	}
	return out
}

// GainExperience adds xp and applies every level-up it earns. Each level
// raises max HP and MP and every stat, and fully restores HP and MP.
//
// Precondition: xp >= 0.
// Postcondition: Returns the number of levels gained; Level <= MaxLevel.
func (c *Character) GainExperience(xp int) int {
	if xp > 0 {
		c.Experience += xp
	}
	gained := 0
	for c.Level < MaxLevel && c.Experience >= ExperienceForLevel(c.Level+1) {
		c.Level++
		gained++
		c.MaxHP += HPPerLevel
		c.MaxMP += MPPerLevel
		c.Stats.Attack += 2
		c.Stats.MagicAttack += 2
		c.Stats.Defense++
		c.Stats.Agility++
		c.Stats.Accuracy++
		c.Stats.Evasion++
	}
	if gained > 0 {
		c.Rest()
	}
	return gained
}
