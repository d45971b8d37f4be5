// Package npc provides monster template definitions loaded from YAML and
// their conversion into battle combatants.
package npc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/combat"
)

// Stats holds a monster's combat statistics.
type Stats struct {
	Attack      int `yaml:"attack"`
	MagicAttack int `yaml:"magic_attack"`
	Defense     int `yaml:"defense"`
	Agility     int `yaml:"agility"`
	Accuracy    int `yaml:"accuracy"`
	Evasion     int `yaml:"evasion"`
}

// Template defines a reusable monster archetype loaded from YAML.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Level       int    `yaml:"level"`
	MaxHP       int    `yaml:"max_hp"`
	MaxMP       int    `yaml:"max_mp"`
	Stats       Stats  `yaml:"stats"`
	// ExperienceReward is the base experience granted for defeating this monster.
	ExperienceReward int `yaml:"experience_reward"`
	// MagicWeapon makes the monster's attacks use Stats.MagicAttack.
	MagicWeapon bool `yaml:"magic_weapon"`
	// DamageReduction is the percentage of incoming damage absorbed (0-100).
	DamageReduction int `yaml:"damage_reduction"`
	// AIScript names a Lua hook in the ai VM; empty uses the stock heuristic.
	AIScript string `yaml:"ai_script"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, Level >= 1,
// MaxHP >= 1, stats and rewards are non-negative, and DamageReduction is in
// [0, 100]; returns an error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("monster template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", t.ID)
	}
	if t.Level < 1 {
		return fmt.Errorf("monster template %q: level must be >= 1", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("monster template %q: max_hp must be >= 1", t.ID)
	}
	if t.MaxMP < 0 {
		return fmt.Errorf("monster template %q: max_mp must be >= 0", t.ID)
	}
	if t.ExperienceReward < 0 {
		return fmt.Errorf("monster template %q: experience_reward must be >= 0", t.ID)
	}
	if t.DamageReduction < 0 || t.DamageReduction > 100 {
		return fmt.Errorf("monster template %q: damage_reduction must be 0-100", t.ID)
	}
	s := t.Stats
	for name, v := range map[string]int{
		"attack": s.Attack, "magic_attack": s.MagicAttack, "defense": s.Defense,
		"agility": s.Agility, "accuracy": s.Accuracy, "evasion": s.Evasion,
	} {
		if v < 0 {
			return fmt.Errorf("monster template %q: stats.%s must be >= 0", t.ID, name)
		}
	}
	return nil
}

// NewCombatant returns a full-health monster combatant built from t.
//
// Precondition: t must be valid.
// Postcondition: Kind == combat.KindMonster and HP == MaxHP.
func (t *Template) NewCombatant() combat.Combatant {
	return combat.Combatant{
		Name:             t.Name,
		TemplateID:       t.ID,
		Kind:             combat.KindMonster,
		Level:            t.Level,
		HP:               t.MaxHP,
		MaxHP:            t.MaxHP,
		MP:               t.MaxMP,
		MaxMP:            t.MaxMP,
		Attack:           t.Stats.Attack,
		MagicAttack:      t.Stats.MagicAttack,
		Defense:          t.Stats.Defense,
		Agility:          t.Stats.Agility,
		Accuracy:         t.Stats.Accuracy,
		Evasion:          t.Stats.Evasion,
		ExperienceReward: t.ExperienceReward,
		MagicWeapon:      t.MagicWeapon,
		DamageReduction:  t.DamageReduction,
	}
}

// LoadTemplateFromBytes parses a single monster template from raw YAML bytes.
//
// Precondition: data must be valid YAML for a single Template.
// Postcondition: Returns a validated *Template, or an error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("parsing template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or validate
// failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
