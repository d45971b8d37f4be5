package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// yamlRegionFile is the top-level YAML structure for region files.
type yamlRegionFile struct {
	Region yamlRegion `yaml:"region"`
}

type yamlRegion struct {
	ID            string         `yaml:"id"`
	Name          string         `yaml:"name"`
	Description   string         `yaml:"description"`
	StartLocation string         `yaml:"start_location"`
	Locations     []yamlLocation `yaml:"locations"`
}

type yamlLocation struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name"`
	Description   string             `yaml:"description"`
	Kind          string             `yaml:"kind"`
	EncounterRate *float64           `yaml:"encounter_rate"`
	Monsters      []yamlMonsterEntry `yaml:"monsters"`
	Exits         []yamlExit         `yaml:"exits"`
}

type yamlMonsterEntry struct {
	Template string `yaml:"template"`
	Weight   int    `yaml:"weight"`
}

type yamlExit struct {
	Direction string `yaml:"direction"`
	Target    string `yaml:"target"`
}

// LoadRegionFromFile reads and validates a single region YAML file.
//
// Precondition: path must point to a valid YAML region file.
// Postcondition: Returns a validated Region or a non-nil error.
func LoadRegionFromFile(path string) (*Region, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading region file %s: %w", path, err)
	}
	return LoadRegionFromBytes(data)
}

// LoadRegionFromBytes parses and validates a region from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the region schema.
// Postcondition: Returns a validated Region or a non-nil error.
func LoadRegionFromBytes(data []byte) (*Region, error) {
	var file yamlRegionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing region YAML: %w", err)
	}

	region := convertYAMLRegion(file.Region)
	if err := region.Validate(); err != nil {
		return nil, fmt.Errorf("validating region: %w", err)
	}
	return region, nil
}

// LoadRegionsFromDir loads all YAML files in a directory as regions.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated regions or the first error encountered.
func LoadRegionsFromDir(dir string) ([]*Region, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading region directory %s: %w", dir, err)
	}

	var regions []*Region
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		region, err := LoadRegionFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading region from %s: %w", name, err)
		}
		regions = append(regions, region)
	}

	if len(regions) == 0 {
		return nil, fmt.Errorf("no region files found in %s", dir)
	}
	return regions, nil
}

func convertYAMLRegion(yr yamlRegion) *Region {
	region := &Region{
		ID:            yr.ID,
		Name:          yr.Name,
		Description:   strings.TrimSpace(yr.Description),
		StartLocation: yr.StartLocation,
		Locations:     make(map[string]*Location, len(yr.Locations)),
	}
	for _, yl := range yr.Locations {
		loc := &Location{
			ID:            yl.ID,
			RegionID:      yr.ID,
			Name:          yl.Name,
			Description:   strings.TrimSpace(yl.Description),
			Kind:          Kind(strings.ToLower(yl.Kind)),
			EncounterRate: yl.EncounterRate,
		}
		for _, ym := range yl.Monsters {
			loc.Monsters = append(loc.Monsters, MonsterEntry{Template: ym.Template, Weight: ym.Weight})
		}
		for _, ye := range yl.Exits {
			loc.Exits = append(loc.Exits, Exit{Direction: Direction(ye.Direction), Target: ye.Target})
		}
		region.Locations[loc.ID] = loc
	}
	return region
}
