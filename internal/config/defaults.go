package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/battle.yaml
var defaultBattleYAML []byte

// DefaultBattleConfig returns the built-in skirmish used when no scenario
// file is found.
func DefaultBattleConfig() BattleConfig {
	return BattleConfig{
		Name: "Skirmish",
		Seed: 7,
		Map: MapConfig{
			Width:         10,
			Height:        8,
			WaterLevel:    0.22,
			MountainLevel: 0.75,
			ForestLevel:   0.62,
			HexSize:       1.0,
		},
		Turn: TurnConfig{EnemyDelay: 2 * time.Second},
		Units: []UnitConfig{
			{Name: "Aldric", Class: "Knight", Faction: "Player", MoveRange: Range(4)},
			{Name: "Lyra", Class: "Archer", Faction: "Player", AttackRange: Range(2)},
			{Name: "Grusk", Class: "Infantry", Faction: "Enemy"},
			{Name: "Vharn", Class: "Cavalry", Faction: "Enemy", MoveRange: Range(5)},
		},
	}
}
