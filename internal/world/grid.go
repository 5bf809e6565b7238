package world

import (
	"errors"
	"fmt"
	"sort"
)

// ErrOccupancyMismatch reports a tile whose occupant does not stand on it.
var ErrOccupancyMismatch = errors.New("occupancy mismatch")

// Grid holds the complete battle map: every tile keyed by coordinate.
// Tiles are only replaced wholesale by Generate.
type Grid struct {
	Tiles  map[HexCoord]*Tile `json:"-"`
	Width  int                `json:"width"`
	Height int                `json:"height"`
}

// NewGrid creates a grid with width×height grass tiles.
func NewGrid(width, height int) *Grid {
	g := &Grid{}
	g.Generate(width, height)
	return g
}

// Generate replaces all tiles with a fresh width×height block of grass at
// q in [0,width), r in [0,height). The new set is built aside and swapped in,
// so no half-built grid is ever visible. Non-positive sizes give an empty grid.
func (g *Grid) Generate(width, height int) {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	tiles := make(map[HexCoord]*Tile, width*height)
	for q := 0; q < width; q++ {
		for r := 0; r < height; r++ {
			c := HexCoord{Q: q, R: r}
			tiles[c] = &Tile{Coord: c, Terrain: TerrainGrass}
		}
	}

	g.Tiles = tiles
	g.Width = width
	g.Height = height
}

// Tile returns the tile at the given coordinate, or false if there is none.
func (g *Grid) Tile(c HexCoord) (*Tile, bool) {
	t, ok := g.Tiles[c]
	return t, ok
}

// Get returns the tile at the given coordinate, or nil if out of bounds.
func (g *Grid) Get(c HexCoord) *Tile {
	return g.Tiles[c]
}

// Contains reports grid membership.
func (g *Grid) Contains(c HexCoord) bool {
	_, ok := g.Tiles[c]
	return ok
}

// Neighbors returns the adjacent coordinates that are on the grid, in
// HexNeighborDirections order.
func (g *Grid) Neighbors(c HexCoord) []HexCoord {
	out := make([]HexCoord, 0, 6)
	for _, n := range c.Neighbors() {
		if _, ok := g.Tiles[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

// Distance returns the hex distance between a and b.
func (g *Grid) Distance(a, b HexCoord) int {
	return Distance(a, b)
}

// SetTerrain changes the terrain of an existing tile.
func (g *Grid) SetTerrain(c HexCoord, t Terrain) bool {
	tile, ok := g.Tiles[c]
	if !ok {
		return false
	}
	tile.Terrain = t
	return true
}

// Coords returns every member coordinate ordered by q, then r.
func (g *Grid) Coords() []HexCoord {
	coords := make([]HexCoord, 0, len(g.Tiles))
	for c := range g.Tiles {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Q != coords[j].Q {
			return coords[i].Q < coords[j].Q
		}
		return coords[i].R < coords[j].R
	})
	return coords
}

// TileCount returns the total number of tiles in the grid.
func (g *Grid) TileCount() int {
	return len(g.Tiles)
}

// CheckOccupancy verifies that every occupied tile's unit reports that tile
// as its position. position looks a unit up in the unit table.
func (g *Grid) CheckOccupancy(position func(UnitID) (HexCoord, bool)) error {
	var errs []error
	for _, c := range g.Coords() {
		t := g.Tiles[c]
		if !t.Occupied() {
			continue
		}
		pos, ok := position(t.Occupant)
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: tile %s holds unknown unit %d", ErrOccupancyMismatch, c, t.Occupant))
		case pos != c:
			errs = append(errs, fmt.Errorf("%w: tile %s holds unit %d which reports %s", ErrOccupancyMismatch, c, t.Occupant, pos))
		}
	}
	return errors.Join(errs...)
}

// String returns a summary of the grid.
func (g *Grid) String() string {
	return fmt.Sprintf("Grid(%dx%d, tiles=%d)", g.Width, g.Height, g.TileCount())
}
