// Package config provides YAML battle scenarios: map generation settings,
// the unit roster and turn timing.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid battle config")

// BattleConfig describes one battle scenario.
type BattleConfig struct {
	Name  string       `yaml:"name"`
	Seed  int64        `yaml:"seed"`
	Debug bool         `yaml:"debug"`
	Map   MapConfig    `yaml:"map"`
	Turn  TurnConfig   `yaml:"turn"`
	Units []UnitConfig `yaml:"units"`
}

// MapConfig defines the battlefield.
type MapConfig struct {
	Width         int               `yaml:"width"`
	Height        int               `yaml:"height"`
	Flat          bool              `yaml:"flat"`
	WaterLevel    float64           `yaml:"water_level"`
	MountainLevel float64           `yaml:"mountain_level"`
	ForestLevel   float64           `yaml:"forest_level"`
	Castles       []Coord           `yaml:"castles"`
	Overrides     []TerrainOverride `yaml:"overrides"`
	// HexSize is the world-space radius used when reporting positions.
	HexSize float64 `yaml:"hex_size"`
}

// TerrainOverride forces one tile's terrain after generation.
type TerrainOverride struct {
	At      Coord  `yaml:"at"`
	Terrain string `yaml:"terrain"`
}

// TurnConfig defines phase timing.
type TurnConfig struct {
	EnemyDelay time.Duration `yaml:"enemy_delay"`
}

// UnitConfig is one roster entry. Units without a position are deployed
// automatically on their side's edge of the map.
type UnitConfig struct {
	Name        string `yaml:"name"`
	Class       string `yaml:"class"`
	Faction     string `yaml:"faction"`
	At          *Coord `yaml:"at,omitempty"`
	MoveRange   *int   `yaml:"move_range,omitempty"`
	AttackRange *int   `yaml:"attack_range,omitempty"`
}

// Range wraps a move or attack range for UnitConfig. Leaving a range nil
// selects the unit default; zero is a real value.
func Range(v int) *int { return &v }

// Coord is an axial coordinate in YAML form: {q: 1, r: 2}.
type Coord struct {
	Q int `yaml:"q"`
	R int `yaml:"r"`
}

// Hex converts to a grid coordinate.
func (c Coord) Hex() world.HexCoord { return world.H(c.Q, c.R) }

// GenConfig converts the map section into world generation parameters.
func (c BattleConfig) GenConfig() world.GenConfig {
	gen := world.DefaultGenConfig()
	gen.Width = c.Map.Width
	gen.Height = c.Map.Height
	gen.Seed = c.Seed
	gen.Flat = c.Map.Flat
	if c.Map.WaterLevel > 0 {
		gen.WaterLevel = c.Map.WaterLevel
	}
	if c.Map.MountainLevel > 0 {
		gen.MountainLvl = c.Map.MountainLevel
	}
	if c.Map.ForestLevel > 0 {
		gen.ForestLvl = c.Map.ForestLevel
	}
	for _, castle := range c.Map.Castles {
		gen.Castles = append(gen.Castles, castle.Hex())
	}
	return gen
}

// Templates converts the roster into spawn templates.
func (c BattleConfig) Templates() ([]units.Template, error) {
	out := make([]units.Template, 0, len(c.Units))
	for i, u := range c.Units {
		faction, ok := units.ParseFaction(u.Faction)
		if !ok {
			return nil, fmt.Errorf("unit %d: unknown faction %q: %w", i, u.Faction, ErrInvalidConfig)
		}
		class := units.ClassInfantry
		if u.Class != "" {
			if class, ok = units.ParseClass(u.Class); !ok {
				return nil, fmt.Errorf("unit %d: unknown class %q: %w", i, u.Class, ErrInvalidConfig)
			}
		}
		t := units.Template{
			Name:        u.Name,
			Class:       class,
			Faction:     faction,
			MoveRange:   u.MoveRange,
			AttackRange: u.AttackRange,
		}
		if u.At != nil {
			pos := u.At.Hex()
			t.Position = &pos
		}
		out = append(out, t)
	}
	return out, nil
}

// Validate checks the scenario for values the battle cannot start with.
func (c BattleConfig) Validate() error {
	var errs []error
	if c.Map.Width <= 0 || c.Map.Height <= 0 {
		errs = append(errs, fmt.Errorf("map size %dx%d must be positive", c.Map.Width, c.Map.Height))
	}
	if c.Turn.EnemyDelay < 0 {
		errs = append(errs, fmt.Errorf("enemy delay %v is negative", c.Turn.EnemyDelay))
	}
	for _, o := range c.Map.Overrides {
		if _, ok := world.ParseTerrain(o.Terrain); !ok {
			errs = append(errs, fmt.Errorf("override at (%d,%d): unknown terrain %q", o.At.Q, o.At.R, o.Terrain))
		}
	}
	for i, u := range c.Units {
		if (u.MoveRange != nil && *u.MoveRange < 0) || (u.AttackRange != nil && *u.AttackRange < 0) {
			errs = append(errs, fmt.Errorf("unit %d: negative range", i))
		}
	}
	if _, err := c.Templates(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
