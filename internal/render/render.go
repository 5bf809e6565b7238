// Package render draws a battle grid as text for the CLI.
//
// Rows are drawn in axial order: row r is shifted right by r columns, so a
// tile's six neighbours sit left, right and on the diagonals above and below.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

// Factions resolves the faction of a tile occupant.
type Factions interface {
	FactionOf(id world.UnitID) (units.Faction, bool)
}

// Overlay marks tiles on top of the terrain. Path beats Attack beats Reach;
// units are always drawn.
type Overlay struct {
	Reach  mapset.Set[world.HexCoord]
	Attack []world.HexCoord
	Path   []world.HexCoord
}

const (
	glyphReach  = "*"
	glyphAttack = "x"
	glyphPath   = "o"
	glyphAbsent = " "
)

var terrainGlyphs = map[world.Terrain]string{
	world.TerrainGrass:    ".",
	world.TerrainForest:   "f",
	world.TerrainMountain: "^",
	world.TerrainCastle:   "#",
	world.TerrainWater:    "~",
}

var factionGlyphs = map[units.Faction]string{
	units.FactionPlayer:  "P",
	units.FactionEnemy:   "E",
	units.FactionAlly:    "A",
	units.FactionNeutral: "N",
}

var terrainStyles = map[world.Terrain]lipgloss.Style{
	world.TerrainGrass:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	world.TerrainForest:   lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
	world.TerrainMountain: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	world.TerrainCastle:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	world.TerrainWater:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
}

var factionStyles = map[units.Faction]lipgloss.Style{
	units.FactionPlayer:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
	units.FactionEnemy:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
	units.FactionAlly:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
	units.FactionNeutral: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
}

var (
	reachStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	attackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	pathStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

// Renderer turns grids into text. With Color off the output is plain ASCII.
type Renderer struct {
	Color bool
}

// New creates a renderer.
func New(color bool) *Renderer {
	return &Renderer{Color: color}
}

// Map draws g with its occupants and the overlay. factions may be nil, in
// which case every occupant is drawn as "?".
func (r *Renderer) Map(g *world.Grid, factions Factions, ov Overlay) string {
	attack := toSet(ov.Attack)
	path := toSet(ov.Path)

	var sb strings.Builder
	for row := 0; row < g.Height; row++ {
		sb.WriteString(strings.Repeat(" ", row))
		for q := 0; q < g.Width; q++ {
			if q > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(r.cell(g, world.H(q, row), factions, attack, path, ov.Reach))
		}
		if row < g.Height-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (r *Renderer) cell(g *world.Grid, c world.HexCoord, factions Factions, attack, path, reach mapset.Set[world.HexCoord]) string {
	t, ok := g.Tile(c)
	if !ok {
		return glyphAbsent
	}

	if t.Occupied() {
		glyph, style := "?", lipgloss.NewStyle()
		if factions != nil {
			if f, ok := factions.FactionOf(t.Occupant); ok {
				glyph, style = factionGlyphs[f], factionStyles[f]
			}
		}
		return r.paint(style, glyph)
	}

	switch {
	case path.Has(c):
		return r.paint(pathStyle, glyphPath)
	case attack.Has(c):
		return r.paint(attackStyle, glyphAttack)
	case reach.Has(c):
		return r.paint(reachStyle, glyphReach)
	}
	return r.paint(terrainStyles[t.Terrain], terrainGlyphs[t.Terrain])
}

func (r *Renderer) paint(style lipgloss.Style, glyph string) string {
	if !r.Color {
		return glyph
	}
	return style.Render(glyph)
}

// Legend explains the glyphs.
func (r *Renderer) Legend() string {
	entries := []struct {
		glyph string
		style lipgloss.Style
		label string
	}{
		{terrainGlyphs[world.TerrainGrass], terrainStyles[world.TerrainGrass], "grass"},
		{terrainGlyphs[world.TerrainForest], terrainStyles[world.TerrainForest], "forest"},
		{terrainGlyphs[world.TerrainMountain], terrainStyles[world.TerrainMountain], "mountain"},
		{terrainGlyphs[world.TerrainCastle], terrainStyles[world.TerrainCastle], "castle"},
		{terrainGlyphs[world.TerrainWater], terrainStyles[world.TerrainWater], "water"},
		{factionGlyphs[units.FactionPlayer], factionStyles[units.FactionPlayer], "player"},
		{factionGlyphs[units.FactionEnemy], factionStyles[units.FactionEnemy], "enemy"},
		{glyphReach, reachStyle, "reachable"},
		{glyphAttack, attackStyle, "attack"},
		{glyphPath, pathStyle, "path"},
	}
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, r.paint(e.style, e.glyph)+" "+e.label)
	}
	return strings.Join(parts, "  ")
}

func toSet(coords []world.HexCoord) mapset.Set[world.HexCoord] {
	s := mapset.New[world.HexCoord]()
	for _, c := range coords {
		s.Put(c)
	}
	return s
}
