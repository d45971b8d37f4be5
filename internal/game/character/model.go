// Package character defines the persistent player record and the pure logic
// that moves it in and out of battle.
package character

import (
	"time"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Stats holds a character's combat statistics.
type Stats struct {
	Attack      int
	MagicAttack int
	Defense     int
	Agility     int
	Accuracy    int
	Evasion     int
}

// Character represents a player character's persistent state.
//
// ID is set by the persistence layer; zero indicates an unsaved character.
type Character struct {
	ID int64

	Name       string
	Level      int
	Experience int
	Gold       int

	MaxHP     int
	CurrentHP int
	MaxMP     int
	CurrentMP int
	SP        int

	Stats Stats
	// MagicWeapon and DamageReduction come from equipment.
	MagicWeapon     bool
	DamageReduction int

	Location string // current location ID
	LastTown string // last town visited; defeat teleport destination

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Combatant returns the character's battle snapshot.
//
// Postcondition: Kind == combat.KindPlayer; HP and MP mirror the current values.
func (c *Character) Combatant() combat.Combatant {
	return combat.Combatant{
		Name:            c.Name,
		Kind:            combat.KindPlayer,
		Level:           c.Level,
		HP:              c.CurrentHP,
		MaxHP:           c.MaxHP,
		MP:              c.CurrentMP,
		MaxMP:           c.MaxMP,
		SP:              c.SP,
		Attack:          c.Stats.Attack,
		MagicAttack:     c.Stats.MagicAttack,
		Defense:         c.Stats.Defense,
		Agility:         c.Stats.Agility,
		Accuracy:        c.Stats.Accuracy,
		Evasion:         c.Stats.Evasion,
		Gold:            c.Gold,
		MagicWeapon:     c.MagicWeapon,
		DamageReduction: c.DamageReduction,
	}
}

// MoveTo places the character at locationID, recording it as the last town
// when isTown is set.
func (c *Character) MoveTo(locationID string, isTown bool) {
	c.Location = locationID
	if isTown {
		c.LastTown = locationID
	}
}

// Rest restores hit points and magic points to their maximums.
func (c *Character) Rest() {
	c.CurrentHP = c.MaxHP
	c.CurrentMP = c.MaxMP
}
