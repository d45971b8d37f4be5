// Package combat implements the arena combat resolution core: the attack,
// defense, and escape probability model and the per-turn battle state machine.
//
// Nothing in this package holds state between calls. Every operation takes its
// inputs explicitly (including the random source) and returns new values.
package combat

import "fmt"

// Kind distinguishes the player combatant from the monster combatant.
type Kind int

const (
	KindPlayer Kind = iota
	KindMonster
)

// String returns "player" or "monster".
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindMonster:
		return "monster"
	default:
		return "unknown"
	}
}

// Combatant is a snapshot of one side of a battle.
//
// Invariant: 0 <= HP <= MaxHP after every mutation made by this package.
type Combatant struct {
	Name  string `json:"name"`
	Kind  Kind   `json:"kind"`
	Level int    `json:"level"`

	// TemplateID is the monster template this combatant was spawned from.
	// Empty for players.
	TemplateID string `json:"template_id,omitempty"`

	HP    int `json:"hp"`
	MaxHP int `json:"max_hp"`
	// MP and SP are carried through battle untouched.
	MP    int `json:"mp"`
	MaxMP int `json:"max_mp"`
	SP    int `json:"sp"`

	Attack      int `json:"attack"`
	MagicAttack int `json:"magic_attack"`
	Defense     int `json:"defense"`
	Agility     int `json:"agility"`
	Accuracy    int `json:"accuracy"`
	Evasion     int `json:"evasion"`

	// Gold is only meaningful for the player.
	Gold int `json:"gold,omitempty"`
	// ExperienceReward is only meaningful for monsters.
	ExperienceReward int `json:"experience_reward,omitempty"`

	// MagicWeapon makes this combatant's attacks use MagicAttack.
	MagicWeapon bool `json:"magic_weapon,omitempty"`
	// DamageReduction is the percentage (0-100) of incoming damage absorbed by equipment.
	DamageReduction int `json:"damage_reduction,omitempty"`
}

// IsPlayer reports whether this combatant is the player.
func (c Combatant) IsPlayer() bool { return c.Kind == KindPlayer }

// IsDefeated reports whether the combatant has no hit points left.
//
// Postcondition: Returns true iff HP <= 0.
func (c Combatant) IsDefeated() bool { return c.HP <= 0 }

// HPRatio returns HP / MaxHP, or 0 when MaxHP is not positive.
//
// Postcondition: Returns a value in [0, 1] for a combatant satisfying the HP invariant.
func (c Combatant) HPRatio() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}

// Condition returns a visible health state string used in battle narration.
//
// Postcondition: Returns a non-empty string.
func (c Combatant) Condition() string {
	if c.HP <= 0 {
		return "defeated"
	}
	pct := c.HPRatio()
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}

// Validate checks the structural invariants of a combatant entering battle.
//
// Postcondition: Returns nil iff Name is non-empty, Level >= 1, MaxHP >= 1,
// 0 <= HP <= MaxHP, and 0 <= DamageReduction <= 100.
func (c Combatant) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("combatant: name must not be empty")
	}
	if c.Level < 1 {
		return fmt.Errorf("combatant %q: level must be >= 1, got %d", c.Name, c.Level)
	}
	if c.MaxHP < 1 {
		return fmt.Errorf("combatant %q: max_hp must be >= 1, got %d", c.Name, c.MaxHP)
	}
	if c.HP < 0 || c.HP > c.MaxHP {
		return fmt.Errorf("combatant %q: hp %d outside [0, %d]", c.Name, c.HP, c.MaxHP)
	}
	if c.DamageReduction < 0 || c.DamageReduction > 100 {
		return fmt.Errorf("combatant %q: damage_reduction must be 0-100, got %d", c.Name, c.DamageReduction)
	}
	return nil
}
