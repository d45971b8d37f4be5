package character

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Starting values for a new level 1 character.
const (
	StartingHP   = 30
	StartingMP   = 10
	StartingGold = 50
)

// StartingStats are the level 1 combat statistics.
var StartingStats = Stats{
	Attack:      12,
	MagicAttack: 8,
	Defense:     6,
	Agility:     10,
	Accuracy:    85,
	Evasion:     10,
}

// MaxNameLength bounds character names.
const MaxNameLength = 24

// ValidateName checks that name is 2-24 letters, digits, or underscores.
func ValidateName(name string) error {
	if len(name) < 2 || len(name) > MaxNameLength {
		return fmt.Errorf("character name must be 2-%d characters", MaxNameLength)
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return fmt.Errorf("character name may only contain letters, digits, and underscores")
		}
	}
	return nil
}

// New constructs a level 1 Character standing in startTown.
//
// Precondition: name must pass ValidateName; startTown must be non-empty.
// Postcondition: Returns a Character at full health ready for persistence,
// or a non-nil error.
func New(name, startTown string) (*Character, error) {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if startTown == "" {
		return nil, errors.New("start town must not be empty")
	}
	return &Character{
		Name:      name,
		Level:     1,
		Gold:      StartingGold,
		MaxHP:     StartingHP,
		CurrentHP: StartingHP,
		MaxMP:     StartingMP,
		CurrentMP: StartingMP,
		Stats:     StartingStats,
		Location:  startTown,
		LastTown:  startTown,
	}, nil
}
