// Package world provides the hex grid, terrain, and tile occupancy.
// Uses axial coordinates (q, r) for the hex grid, flat-top layout.
package world

import (
	"fmt"
	"math"
)

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// H is a convenience constructor for HexCoord.
func H(q, r int) HexCoord {
	return HexCoord{Q: q, R: r}
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Add returns the component-wise sum of two coordinates.
func (h HexCoord) Add(o HexCoord) HexCoord {
	return HexCoord{Q: h.Q + o.Q, R: h.R + o.R}
}

// String returns "(q,r)".
func (h HexCoord) String() string {
	return fmt.Sprintf("(%d,%d)", h.Q, h.R)
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
// The order is fixed: East, Northeast, Northwest, West, Southwest, Southeast,
// with r growing southward as the text map draws it. Search code relies on it
// for deterministic tie-breaking.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates, grid membership aside.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = h.Add(dir)
	}
	return result
}

// Distance returns the hex distance between two coordinates.
// Defined for any pair, whether or not either is on a grid.
func Distance(a, b HexCoord) int {
	dq := a.Q - b.Q
	dr := a.R - b.R
	return (abs(dq) + abs(dq+dr) + abs(dr)) / 2
}

// WorldPosition maps a coordinate to the plane for a flat-top layout with the
// given hex size. Returns (x, z); y is left to the presentation layer.
func WorldPosition(h HexCoord, size float64) (x, z float64) {
	x = size * 1.5 * float64(h.Q)
	z = size * (math.Sqrt(3)/2*float64(h.Q) + math.Sqrt(3)*float64(h.R))
	return x, z
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
