// Package world provides the arena world model: regions of towns and fields
// joined by exits, and the monster tables that populate the fields.
package world

import "fmt"

// Direction represents a compass direction or named exit.
type Direction string

// Standard compass directions.
const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// StandardDirections contains the four compass directions.
var StandardDirections = []Direction{North, South, East, West}

// IsStandard reports whether d is a compass direction.
func (d Direction) IsStandard() bool {
	for _, sd := range StandardDirections {
		if d == sd {
			return true
		}
	}
	return false
}

// Kind separates safe towns from fields where encounters happen.
type Kind string

const (
	KindTown  Kind = "town"
	KindField Kind = "field"
)

// Exit represents a passage from one location to another.
type Exit struct {
	// Direction is the compass direction or named exit (e.g., "bridge").
	Direction Direction
	// Target is the ID of the destination location.
	Target string
}

// MonsterEntry is one row of a field's encounter table.
type MonsterEntry struct {
	// Template is the monster template ID.
	Template string
	// Weight is the relative selection weight; zero means the default of 1.
	Weight int
}

// Location is a place a character can stand.
type Location struct {
	ID          string
	RegionID    string
	Name        string
	Description string
	Kind        Kind
	// EncounterRate is the per-step chance of an encounter. Nil or a value
	// outside [0, 1] means the configured default applies.
	EncounterRate *float64
	Monsters      []MonsterEntry
	Exits         []Exit
}

// IsTown reports whether the location is a town.
func (l *Location) IsTown() bool { return l.Kind == KindTown }

// ExitTo returns the exit matching a direction name or a target location ID.
//
// Postcondition: Returns (exit, true) if found, or (Exit{}, false) otherwise.
func (l *Location) ExitTo(dirOrTarget string) (Exit, bool) {
	for _, e := range l.Exits {
		if string(e.Direction) == dirOrTarget || e.Target == dirOrTarget {
			return e, true
		}
	}
	return Exit{}, false
}

// Region groups related locations.
type Region struct {
	ID            string
	Name          string
	Description   string
	StartLocation string
	Locations     map[string]*Location
}

// Validate checks region invariants.
//
// Postcondition: Returns nil if valid, or an error describing the first violation.
func (r *Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("region ID must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("region %q: name must not be empty", r.ID)
	}
	if len(r.Locations) == 0 {
		return fmt.Errorf("region %q: must contain at least one location", r.ID)
	}
	if _, ok := r.Locations[r.StartLocation]; !ok {
		return fmt.Errorf("region %q: start_location %q not found in locations", r.ID, r.StartLocation)
	}
	for id, loc := range r.Locations {
		if loc.ID != id {
			return fmt.Errorf("region %q: location key %q does not match location ID %q", r.ID, id, loc.ID)
		}
		if loc.Name == "" {
			return fmt.Errorf("region %q: location %q: name must not be empty", r.ID, id)
		}
		if loc.Kind != KindTown && loc.Kind != KindField {
			return fmt.Errorf("region %q: location %q: kind must be %q or %q, got %q", r.ID, id, KindTown, KindField, loc.Kind)
		}
		if loc.Kind == KindTown && len(loc.Monsters) > 0 {
			return fmt.Errorf("region %q: town %q must not list monsters", r.ID, id)
		}
		for _, m := range loc.Monsters {
			if m.Template == "" {
				return fmt.Errorf("region %q: location %q: monster entry has empty template", r.ID, id)
			}
			if m.Weight < 0 {
				return fmt.Errorf("region %q: location %q: monster %q has negative weight", r.ID, id, m.Template)
			}
		}
		for _, exit := range loc.Exits {
			if exit.Target == "" {
				return fmt.Errorf("region %q: location %q: exit %q has empty target", r.ID, id, exit.Direction)
			}
		}
	}
	return nil
}
