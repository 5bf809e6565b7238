package world

import (
	"errors"
	"testing"
)

func TestGenerate(t *testing.T) {
	g := NewGrid(4, 3)

	if g.TileCount() != 12 {
		t.Fatalf("expected 12 tiles, got %d", g.TileCount())
	}
	for q := 0; q < 4; q++ {
		for r := 0; r < 3; r++ {
			tile, ok := g.Tile(H(q, r))
			if !ok {
				t.Fatalf("missing tile at (%d,%d)", q, r)
			}
			if tile.Terrain != TerrainGrass {
				t.Errorf("tile (%d,%d) terrain = %s, want Grass", q, r, TerrainName(tile.Terrain))
			}
			if tile.Coord != H(q, r) {
				t.Errorf("tile coord = %v, want (%d,%d)", tile.Coord, q, r)
			}
		}
	}
}

func TestGenerateReplacesTiles(t *testing.T) {
	g := NewGrid(3, 3)
	g.SetTerrain(H(1, 1), TerrainForest)
	old := g.Get(H(1, 1))

	g.Generate(2, 2)

	if g.TileCount() != 4 {
		t.Fatalf("expected 4 tiles after regenerate, got %d", g.TileCount())
	}
	if g.Contains(H(2, 2)) {
		t.Error("old tile (2,2) should be gone")
	}
	if g.Get(H(1, 1)) == old {
		t.Error("regenerate should build new tiles")
	}
	if g.Get(H(1, 1)).Terrain != TerrainGrass {
		t.Error("regenerated tile should be grass")
	}
}

func TestGenerateEmpty(t *testing.T) {
	g := NewGrid(0, 5)
	if g.TileCount() != 0 {
		t.Errorf("expected empty grid, got %d tiles", g.TileCount())
	}
	g.Generate(-1, -1)
	if g.TileCount() != 0 {
		t.Errorf("expected empty grid for negative size, got %d tiles", g.TileCount())
	}
}

func TestTileAbsent(t *testing.T) {
	g := NewGrid(3, 3)

	for _, c := range []HexCoord{H(-1, 0), H(3, 0), H(0, 3), H(100, -100)} {
		if tile, ok := g.Tile(c); ok || tile != nil {
			t.Errorf("Tile(%v) = %v, %v; want nil, false", c, tile, ok)
		}
		if g.Get(c) != nil {
			t.Errorf("Get(%v) should be nil", c)
		}
	}
}

func TestGridNeighbors(t *testing.T) {
	g := NewGrid(3, 3)

	tests := []struct {
		name  string
		coord HexCoord
		want  []HexCoord
	}{
		{"corner", H(0, 0), []HexCoord{H(1, 0), H(0, 1)}},
		{"center", H(1, 1), []HexCoord{H(2, 1), H(2, 0), H(1, 0), H(0, 1), H(0, 2), H(1, 2)}},
		{"far corner", H(2, 2), []HexCoord{H(2, 1), H(1, 2)}},
		{"outside", H(5, 5), []HexCoord{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := g.Neighbors(tc.coord)
			if len(got) != len(tc.want) {
				t.Fatalf("Neighbors(%v) = %v, want %v", tc.coord, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("Neighbors(%v)[%d] = %v, want %v", tc.coord, i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestGridNeighborsProperties(t *testing.T) {
	g := NewGrid(6, 5)
	for _, c := range g.Coords() {
		ns := g.Neighbors(c)
		if len(ns) > 6 {
			t.Fatalf("%v has %d neighbors", c, len(ns))
		}
		for _, n := range ns {
			if Distance(c, n) != 1 {
				t.Errorf("neighbor %v of %v at distance %d", n, c, Distance(c, n))
			}
			if !g.Contains(n) {
				t.Errorf("neighbor %v of %v is not a grid member", n, c)
			}
		}
	}
}

func TestCoordsOrdered(t *testing.T) {
	g := NewGrid(2, 2)
	want := []HexCoord{H(0, 0), H(0, 1), H(1, 0), H(1, 1)}
	got := g.Coords()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Coords() = %v, want %v", got, want)
		}
	}
}

func TestCheckOccupancy(t *testing.T) {
	g := NewGrid(3, 3)
	positions := map[UnitID]HexCoord{1: H(0, 0), 2: H(2, 2)}
	lookup := func(id UnitID) (HexCoord, bool) {
		c, ok := positions[id]
		return c, ok
	}

	g.Get(H(0, 0)).Occupant = 1
	g.Get(H(2, 2)).Occupant = 2
	if err := g.CheckOccupancy(lookup); err != nil {
		t.Fatalf("consistent grid reported %v", err)
	}

	// Unit 2 claims a different tile.
	positions[2] = H(1, 1)
	err := g.CheckOccupancy(lookup)
	if !errors.Is(err, ErrOccupancyMismatch) {
		t.Fatalf("expected ErrOccupancyMismatch, got %v", err)
	}

	// Unknown occupant.
	positions[2] = H(2, 2)
	g.Get(H(1, 0)).Occupant = 9
	if err := g.CheckOccupancy(lookup); !errors.Is(err, ErrOccupancyMismatch) {
		t.Fatalf("expected ErrOccupancyMismatch for unknown unit, got %v", err)
	}
}
