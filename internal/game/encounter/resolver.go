package encounter

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/world"
)

// Encounter is a triggered battle.
type Encounter struct {
	LocationID string
	TemplateID string
	Template   *npc.Template
}

// Resolver checks encounters for world locations using monster templates.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	world       *world.Manager
	monsters    *npc.Registry
	src         dice.Source
	defaultRate float64
	logger      *zap.Logger
}

// NewResolver creates a Resolver. Locations without a valid encounter_rate
// use defaultRate; an invalid defaultRate resolves to DefaultRate.
//
// Precondition: all pointer arguments must be non-nil.
func NewResolver(w *world.Manager, monsters *npc.Registry, src dice.Source, defaultRate float64, logger *zap.Logger) *Resolver {
	return &Resolver{
		world:       w,
		monsters:    monsters,
		src:         src,
		defaultRate: RateOr(nil, defaultRate),
		logger:      logger,
	}
}

// RateFor returns the effective encounter rate at locationID. Towns are always 0.
func (r *Resolver) RateFor(locationID string) (float64, error) {
	loc, ok := r.world.GetLocation(locationID)
	if !ok {
		return 0, fmt.Errorf("location %q not found", locationID)
	}
	if loc.IsTown() {
		return 0, nil
	}
	return RateOr(loc.EncounterRate, r.defaultRate), nil
}

// Check runs one encounter check at locationID.
//
// Postcondition: Returns (nil, nil) when nothing appears, including in towns
// and fields without monsters; an error only for an unknown location or a
// table entry naming an unknown template.
func (r *Resolver) Check(locationID string) (*Encounter, error) {
	loc, ok := r.world.GetLocation(locationID)
	if !ok {
		return nil, fmt.Errorf("location %q not found", locationID)
	}
	table, ok := r.world.EncounterTable(locationID)
	if !ok {
		return nil, nil
	}

	candidates := make([]Candidate, 0, len(table))
	templates := make([]*npc.Template, 0, len(table))
	for _, e := range table {
		tmpl, ok := r.monsters.Get(e.Template)
		if !ok {
			return nil, fmt.Errorf("location %q: unknown monster template %q", locationID, e.Template)
		}
		templates = append(templates, tmpl)
		candidates = append(candidates, Candidate{Monster: tmpl.NewCombatant(), Weight: e.Weight})
	}

	rate := RateOr(loc.EncounterRate, r.defaultRate)
	i, hit := Select(rate, candidates, r.src)
	if !hit {
		r.logger.Debug("no encounter", zap.String("location", locationID), zap.Float64("rate", rate))
		return nil, nil
	}
	tmpl := templates[i]
	r.logger.Debug("encounter",
		zap.String("location", locationID),
		zap.String("monster", tmpl.ID),
		zap.Float64("rate", rate),
	)
	return &Encounter{LocationID: locationID, TemplateID: tmpl.ID, Template: tmpl}, nil
}
