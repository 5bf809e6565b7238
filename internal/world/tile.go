package world

import "strings"

// Terrain types for battle tiles.
type Terrain uint8

const (
	TerrainGrass    Terrain = iota // Open ground
	TerrainForest                  // Slows movement, light cover
	TerrainMountain                // Slow, strong defensive position
	TerrainCastle                  // Fortified, easy to cross
	TerrainWater                   // Impassable
)

// UnitID identifies a unit in the unit table. Zero means no unit.
type UnitID uint64

// NoUnit is the empty occupant.
const NoUnit UnitID = 0

// Tile is a single cell of the battle grid.
type Tile struct {
	Coord   HexCoord `json:"coord"`
	Terrain Terrain  `json:"terrain"`

	// Occupant is set and cleared only by unit placement.
	Occupant UnitID `json:"occupant,omitempty"`
}

// Occupied reports whether a unit stands on the tile.
func (t *Tile) Occupied() bool {
	return t.Occupant != NoUnit
}

// MoveCost is the cost of entering the tile.
func (t *Tile) MoveCost() int {
	return t.Terrain.MoveCost()
}

// DefenseBonus is the bonus granted to a unit standing on the tile.
func (t *Tile) DefenseBonus() int {
	return t.Terrain.DefenseBonus()
}

// Passable reports whether units may enter the tile at all.
func (t *Tile) Passable() bool {
	return t.Terrain.Passable()
}

// MoveCost returns the cost of entering a tile of this terrain.
// Impassable terrain reports 0; check Passable first.
func (t Terrain) MoveCost() int {
	switch t {
	case TerrainGrass, TerrainCastle:
		return 1
	case TerrainForest:
		return 2
	case TerrainMountain:
		return 3
	default:
		return 0
	}
}

// DefenseBonus returns the terrain's defensive bonus.
func (t Terrain) DefenseBonus() int {
	switch t {
	case TerrainForest:
		return 10
	case TerrainMountain:
		return 20
	case TerrainCastle:
		return 30
	default:
		return 0
	}
}

// Passable is false for water.
func (t Terrain) Passable() bool {
	return t != TerrainWater
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainGrass:
		return "Grass"
	case TerrainForest:
		return "Forest"
	case TerrainMountain:
		return "Mountain"
	case TerrainCastle:
		return "Castle"
	case TerrainWater:
		return "Water"
	default:
		return "Unknown"
	}
}

// ParseTerrain is the inverse of TerrainName, case-insensitive.
func ParseTerrain(name string) (Terrain, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "grass":
		return TerrainGrass, true
	case "forest":
		return TerrainForest, true
	case "mountain":
		return TerrainMountain, true
	case "castle":
		return TerrainCastle, true
	case "water":
		return TerrainWater, true
	default:
		return TerrainGrass, false
	}
}
