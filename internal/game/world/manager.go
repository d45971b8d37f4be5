package world

import (
	"fmt"
	"sort"
)

// Manager indexes every location across all regions for O(1) lookup. It is
// read-only after construction and safe for concurrent use.
type Manager struct {
	regions     map[string]*Region
	locations   map[string]*Location
	defaultTown string
}

// NewManager creates a Manager from the given regions.
//
// Precondition: regions must be non-empty. defaultTown, when non-empty, must
// name a town; when empty, the first region's start location is used and must
// be a town.
// Postcondition: Returns a Manager with all locations indexed by ID, or an
// error on duplicate IDs, dangling exits, or an invalid default town.
func NewManager(regions []*Region, defaultTown string) (*Manager, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("world: at least one region is required")
	}
	m := &Manager{
		regions:   make(map[string]*Region, len(regions)),
		locations: make(map[string]*Location),
	}

	for _, r := range regions {
		if _, exists := m.regions[r.ID]; exists {
			return nil, fmt.Errorf("duplicate region ID: %q", r.ID)
		}
		m.regions[r.ID] = r
		for id, loc := range r.Locations {
			if existing, exists := m.locations[id]; exists {
				return nil, fmt.Errorf("duplicate location ID %q: in region %q and %q", id, existing.RegionID, r.ID)
			}
			m.locations[id] = loc
		}
	}

	if err := m.validateExits(); err != nil {
		return nil, err
	}

	if defaultTown == "" {
		defaultTown = regions[0].StartLocation
	}
	town, ok := m.locations[defaultTown]
	if !ok {
		return nil, fmt.Errorf("default town %q not found", defaultTown)
	}
	if !town.IsTown() {
		return nil, fmt.Errorf("default town %q is a %s, not a town", defaultTown, town.Kind)
	}
	m.defaultTown = defaultTown
	return m, nil
}

// validateExits checks that every exit resolves to a known location across
// all regions.
func (m *Manager) validateExits() error {
	for _, loc := range m.locations {
		for _, exit := range loc.Exits {
			if _, ok := m.locations[exit.Target]; !ok {
				return fmt.Errorf("region %q: location %q: exit %q targets unknown location %q",
					loc.RegionID, loc.ID, exit.Direction, exit.Target)
			}
		}
	}
	return nil
}

// ValidateMonsters checks that every monster table entry names a template
// for which known returns true.
func (m *Manager) ValidateMonsters(known func(templateID string) bool) error {
	for _, id := range m.locationIDs() {
		for _, e := range m.locations[id].Monsters {
			if !known(e.Template) {
				return fmt.Errorf("location %q: unknown monster template %q", id, e.Template)
			}
		}
	}
	return nil
}

// GetLocation returns the location with the given ID.
//
// Postcondition: Returns (loc, true) if found, or (nil, false) otherwise.
func (m *Manager) GetLocation(id string) (*Location, bool) {
	l, ok := m.locations[id]
	return l, ok
}

// Navigate resolves movement from a location by direction or target ID.
//
// Precondition: fromID must exist in the world.
// Postcondition: Returns the destination, or an error if no such exit exists.
func (m *Manager) Navigate(fromID, dirOrTarget string) (*Location, error) {
	from, ok := m.locations[fromID]
	if !ok {
		return nil, fmt.Errorf("location %q not found", fromID)
	}
	exit, ok := from.ExitTo(dirOrTarget)
	if !ok {
		return nil, fmt.Errorf("no way to %q from %s", dirOrTarget, from.Name)
	}
	return m.locations[exit.Target], nil
}

// EncounterTable returns the monster table of a field. Towns and unknown
// locations yield no table.
//
// Postcondition: Returns (entries, true) only for a known field with at least one entry.
func (m *Manager) EncounterTable(locationID string) ([]MonsterEntry, bool) {
	l, ok := m.locations[locationID]
	if !ok || l.IsTown() || len(l.Monsters) == 0 {
		return nil, false
	}
	return l.Monsters, true
}

// DefaultTown returns the town used when a character has no last town.
func (m *Manager) DefaultTown() *Location {
	return m.locations[m.defaultTown]
}

// Towns returns every town ordered by ID.
func (m *Manager) Towns() []*Location {
	var out []*Location
	for _, id := range m.locationIDs() {
		if l := m.locations[id]; l.IsTown() {
			out = append(out, l)
		}
	}
	return out
}

// LocationCount returns the total number of locations across all regions.
func (m *Manager) LocationCount() int { return len(m.locations) }

// RegionCount returns the number of loaded regions.
func (m *Manager) RegionCount() int { return len(m.regions) }

func (m *Manager) locationIDs() []string {
	ids := make([]string, 0, len(m.locations))
	for id := range m.locations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
