package render

import (
	"strings"
	"testing"

	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

func TestMapPlain(t *testing.T) {
	g := world.NewGrid(3, 2)
	g.SetTerrain(world.H(1, 0), world.TerrainForest)
	g.SetTerrain(world.H(2, 1), world.TerrainWater)

	got := New(false).Map(g, nil, Overlay{})
	want := ". f .\n . . ~"
	if got != want {
		t.Errorf("Map() =\n%q\nwant\n%q", got, want)
	}
}

func TestMapUnitsAndOverlay(t *testing.T) {
	g := world.NewGrid(4, 1)
	reg := units.NewRegistry()
	hero := &units.Unit{Name: "hero", Faction: units.FactionPlayer}
	orc := &units.Unit{Name: "orc", Faction: units.FactionEnemy}
	for _, u := range []*units.Unit{hero, orc} {
		if err := reg.Add(u); err != nil {
			t.Fatal(err)
		}
	}
	if err := reg.Place(g, hero.ID, world.H(0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := reg.Place(g, orc.ID, world.H(3, 0)); err != nil {
		t.Fatal(err)
	}

	reach := mapset.New[world.HexCoord]()
	reach.Put(world.H(1, 0))
	reach.Put(world.H(2, 0))

	tests := []struct {
		name string
		ov   Overlay
		want string
	}{
		{"no overlay", Overlay{}, "P . . E"},
		{"reach", Overlay{Reach: reach}, "P * * E"},
		{"path over reach", Overlay{Reach: reach, Path: []world.HexCoord{world.H(1, 0)}}, "P o * E"},
		{"attack", Overlay{Attack: []world.HexCoord{world.H(2, 0), world.H(3, 0)}}, "P . x E"},
	}

	r := New(false)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Map(g, reg, tc.ov); got != tc.want {
				t.Errorf("Map() = %q, want %q", got, tc.want)
			}
		})
	}

	if got := r.Map(g, nil, Overlay{}); got != "? . . ?" {
		t.Errorf("Map() without factions = %q", got)
	}
}

func TestMapEmptyGrid(t *testing.T) {
	if got := New(true).Map(world.NewGrid(0, 0), nil, Overlay{}); got != "" {
		t.Errorf("empty grid rendered as %q", got)
	}
}

func TestLegend(t *testing.T) {
	legend := New(false).Legend()
	for _, label := range []string{"grass", "water", "player", "enemy", "path"} {
		if !strings.Contains(legend, label) {
			t.Errorf("legend missing %q: %s", label, legend)
		}
	}
}

func TestColorKeepsGlyphs(t *testing.T) {
	g := world.NewGrid(2, 1)
	g.SetTerrain(world.H(1, 0), world.TerrainMountain)
	out := New(true).Map(g, nil, Overlay{})
	if !strings.Contains(out, "^") || !strings.Contains(out, ".") {
		t.Errorf("colored output lost glyphs: %q", out)
	}
}
