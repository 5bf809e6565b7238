// Deployment placement: finds starting tiles for units that have no fixed position.
package world

import "sort"

// Side selects a deployment zone.
type Side uint8

const (
	SideWest Side = iota // Low q columns
	SideEast             // High q columns
)

// DeploymentSlots picks up to count free, passable tiles in the side's zone,
// preferring defensible terrain, keeping at least minSpacing between picks.
// The zone is the outer third of the columns. Deterministic for a given grid.
func DeploymentSlots(g *Grid, side Side, count, minSpacing int) []HexCoord {
	zone := g.Width / 3
	if zone < 1 {
		zone = 1
	}

	type scored struct {
		coord HexCoord
		score int
	}
	var candidates []scored

	for _, c := range g.Coords() {
		if side == SideWest && c.Q >= zone {
			continue
		}
		if side == SideEast && c.Q < g.Width-zone {
			continue
		}
		t := g.Tiles[c]
		if !t.Passable() || t.Occupied() {
			continue
		}
		candidates = append(candidates, scored{c, deploymentScore(g, c, t)})
	}

	// Stable on ties so equal scores keep coordinate order.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var picks []HexCoord
	for _, c := range candidates {
		if len(picks) >= count {
			break
		}
		if tooClose(c.coord, picks, minSpacing) {
			continue
		}
		picks = append(picks, c.coord)
	}
	return picks
}

// deploymentScore favours cover and an open line of advance.
func deploymentScore(g *Grid, c HexCoord, t *Tile) int {
	score := t.DefenseBonus()

	// Units boxed in by water or mountains deploy badly.
	for _, n := range g.Neighbors(c) {
		nt := g.Tiles[n]
		if nt.Passable() && nt.MoveCost() <= 2 {
			score += 2
		}
	}
	return score
}

func tooClose(c HexCoord, existing []HexCoord, minDist int) bool {
	for _, e := range existing {
		if Distance(c, e) < minDist {
			return true
		}
	}
	return false
}
