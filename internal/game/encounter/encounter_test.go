package encounter_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/encounter"
	"github.com/cory-johannsen/arena/internal/game/npc"
	"github.com/cory-johannsen/arena/internal/game/world"
)

func ptr(f float64) *float64 { return &f }

func candidates(names ...string) []encounter.Candidate {
	out := make([]encounter.Candidate, len(names))
	for i, n := range names {
		out[i] = encounter.Candidate{Monster: combat.Combatant{Name: n, Level: 1, HP: 5, MaxHP: 5}}
	}
	return out
}

func TestRate_DefaultsForInvalid(t *testing.T) {
	assert.Equal(t, 0.10, encounter.Rate(nil))
	assert.Equal(t, 0.10, encounter.Rate(ptr(math.NaN())))
	assert.Equal(t, 0.10, encounter.Rate(ptr(-0.5)))
	assert.Equal(t, 0.10, encounter.Rate(ptr(1.5)))
	assert.Equal(t, 0.0, encounter.Rate(ptr(0)))
	assert.Equal(t, 1.0, encounter.Rate(ptr(1)))
	assert.Equal(t, 0.4, encounter.Rate(ptr(0.4)))
}

func TestRateOr_Fallback(t *testing.T) {
	assert.Equal(t, 0.3, encounter.RateOr(nil, 0.3))
	assert.Equal(t, 0.10, encounter.RateOr(nil, math.Inf(1)))
	assert.Equal(t, 0.2, encounter.RateOr(ptr(0.2), 0.3))
}

func TestStart_Boundary(t *testing.T) {
	// r == rate triggers.
	m, ok := encounter.Start(0.25, candidates("Slime"), dice.NewFixedSource([]int{0}, 0.25))
	require.True(t, ok)
	assert.Equal(t, "Slime", m.Name)

	_, ok = encounter.Start(0.25, candidates("Slime"), dice.NewFixedSource(nil, 0.2500001))
	assert.False(t, ok)
}

func TestStart_RateZeroAndOne(t *testing.T) {
	_, ok := encounter.Start(0, candidates("Slime"), dice.NewFixedSource(nil, 0.0001))
	assert.False(t, ok)
	_, ok = encounter.Start(1, candidates("Slime"), dice.NewFixedSource([]int{0}, 0.9999))
	assert.True(t, ok)
}

func TestStart_InvalidRateUsesDefault(t *testing.T) {
	_, ok := encounter.Start(math.NaN(), candidates("Slime"), dice.NewFixedSource([]int{0}, 0.05))
	assert.True(t, ok)
	_, ok = encounter.Start(7, candidates("Slime"), dice.NewFixedSource(nil, 0.5))
	assert.False(t, ok)
}

func TestStart_EmptyListNeverTriggers(t *testing.T) {
	src := dice.NewFixedSource(nil)
	_, ok := encounter.Start(1, nil, src)
	assert.False(t, ok)
}

func TestStart_WeightedSelection(t *testing.T) {
	eligible := []encounter.Candidate{
		{Monster: combat.Combatant{Name: "Slime"}, Weight: 3},
		{Monster: combat.Combatant{Name: "Bat"}},
	}
	for draw, want := range map[int]string{0: "Slime", 1: "Slime", 2: "Slime", 3: "Bat"} {
		m, ok := encounter.Start(1, eligible, dice.NewFixedSource([]int{draw}, 0))
		require.True(t, ok)
		assert.Equal(t, want, m.Name, "draw %d", draw)
	}
}

func TestStart_UniformWhenUnweighted(t *testing.T) {
	src := dice.NewSeededSource(7)
	counts := map[string]int{}
	const n = 3000
	for i := 0; i < n; i++ {
		m, ok := encounter.Start(1, candidates("A", "B", "C"), src)
		require.True(t, ok)
		counts[m.Name]++
	}
	for _, name := range []string{"A", "B", "C"} {
		assert.InDelta(t, 1.0/3.0, float64(counts[name])/n, 0.05, name)
	}
}

func TestProperty_TriggerFrequencyTracksRate(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rate := rapid.Float64Range(0, 1).Draw(rt, "rate")
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		const n = 2000
		hits := 0
		for i := 0; i < n; i++ {
			if _, ok := encounter.Start(rate, candidates("A"), src); ok {
				hits++
			}
		}
		assert.InDelta(rt, rate, float64(hits)/n, 0.06)
	})
}

const regionYAML = `
region:
  id: vale
  name: Vale
  start_location: aldea
  locations:
    - {id: aldea, name: Aldea, kind: town, exits: [{direction: north, target: meadow}]}
    - id: meadow
      name: Meadow
      kind: field
      encounter_rate: 0.5
      monsters: [{template: slime, weight: 1}, {template: bat, weight: 1}]
    - id: plain
      name: Plain
      kind: field
      monsters: [{template: slime}]
    - {id: barren, name: Barren, kind: field}
    - id: haunted
      name: Haunted
      kind: field
      monsters: [{template: ghost}]
`

func newResolver(t *testing.T, src dice.Source, defaultRate float64) *encounter.Resolver {
	t.Helper()
	region, err := world.LoadRegionFromBytes([]byte(regionYAML))
	require.NoError(t, err)
	w, err := world.NewManager([]*world.Region{region}, "")
	require.NoError(t, err)
	reg, err := npc.NewRegistry([]*npc.Template{
		{ID: "slime", Name: "Slime", Level: 1, MaxHP: 8},
		{ID: "bat", Name: "Bat", Level: 2, MaxHP: 6},
	})
	require.NoError(t, err)
	return encounter.NewResolver(w, reg, src, defaultRate, zap.NewNop())
}

func TestResolver_Check(t *testing.T) {
	r := newResolver(t, dice.NewFixedSource([]int{1}, 0.3), 0.10)
	enc, err := r.Check("meadow")
	require.NoError(t, err)
	require.NotNil(t, enc)
	assert.Equal(t, "bat", enc.TemplateID)
	assert.Equal(t, "meadow", enc.LocationID)
	assert.Equal(t, "Bat", enc.Template.Name)
}

func TestResolver_NoEncounter(t *testing.T) {
	r := newResolver(t, dice.NewFixedSource(nil, 0.6), 0.10)
	enc, err := r.Check("meadow")
	require.NoError(t, err)
	assert.Nil(t, enc)
}

func TestResolver_TownsAndEmptyFieldsAreSafe(t *testing.T) {
	r := newResolver(t, dice.NewFixedSource(nil), 1)
	for _, id := range []string{"aldea", "barren"} {
		enc, err := r.Check(id)
		require.NoError(t, err)
		assert.Nil(t, enc, id)
	}
	rate, err := r.RateFor("aldea")
	require.NoError(t, err)
	assert.Zero(t, rate)
}

func TestResolver_DefaultRateApplies(t *testing.T) {
	r := newResolver(t, dice.NewFixedSource(nil), 0.35)
	rate, err := r.RateFor("plain")
	require.NoError(t, err)
	assert.Equal(t, 0.35, rate)

	r = newResolver(t, dice.NewFixedSource(nil), -1)
	rate, err = r.RateFor("plain")
	require.NoError(t, err)
	assert.Equal(t, encounter.DefaultRate, rate)
}

func TestResolver_Errors(t *testing.T) {
	r := newResolver(t, dice.NewFixedSource(nil, 0), 0.10)
	_, err := r.Check("atlantis")
	assert.Error(t, err)
	_, err = r.Check("haunted")
	assert.Error(t, err)
}
