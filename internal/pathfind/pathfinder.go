// Package pathfind answers movement queries over a battle grid: the area a
// unit can reach, the cheapest path to a tile, and the tiles it can strike.
//
// A Pathfinder holds no per-query state. Every call re-reads terrain and
// occupancy from the grid and never mutates it, so concurrent queries are safe
// as long as nothing places or removes units at the same time.
package pathfind

import (
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"

	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

// Occupants resolves the faction of the unit standing on a tile.
// *units.Registry implements it.
type Occupants interface {
	FactionOf(id world.UnitID) (units.Faction, bool)
}

// Pathfinder runs searches over one grid.
type Pathfinder struct {
	grid      *world.Grid
	occupants Occupants
}

// New creates a pathfinder over g. occupants may be nil, in which case
// occupancy never blocks movement.
func New(g *world.Grid, occupants Occupants) *Pathfinder {
	return &Pathfinder{grid: g, occupants: occupants}
}

// Reachable returns every tile a unit of the given faction can enter from
// start with at most moveRange movement points. start itself is not included.
// Each tile appears once, in the order it was first discovered.
func (p *Pathfinder) Reachable(start world.HexCoord, moveRange int, faction units.Faction) []world.HexCoord {
	order, _ := p.flood(start, moveRange, faction)
	return order
}

// ReachableSet is Reachable as a set.
func (p *Pathfinder) ReachableSet(start world.HexCoord, moveRange int, faction units.Faction) mapset.Set[world.HexCoord] {
	set := mapset.New[world.HexCoord]()
	for _, c := range p.Reachable(start, moveRange, faction) {
		set.Put(c)
	}
	return set
}

// ReachableCosts returns the cheapest movement cost to every reachable tile.
func (p *Pathfinder) ReachableCosts(start world.HexCoord, moveRange int, faction units.Faction) map[world.HexCoord]int {
	_, cost := p.flood(start, moveRange, faction)
	return cost
}

// flood is a uniform-cost flood fill with a FIFO frontier. A tile is queued
// again whenever a strictly cheaper cost to it turns up, so the final costs
// are minimal even though the queue is not ordered by cost.
func (p *Pathfinder) flood(start world.HexCoord, moveRange int, faction units.Faction) ([]world.HexCoord, map[world.HexCoord]int) {
	cost := make(map[world.HexCoord]int)
	if moveRange < 0 || !p.grid.Contains(start) {
		return nil, cost
	}

	var order []world.HexCoord
	cost[start] = 0
	frontier := []world.HexCoord{start}

	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]

		for _, next := range p.grid.Neighbors(current) {
			if !p.canEnter(start, next, faction, true) {
				continue
			}
			newCost := cost[current] + p.grid.Get(next).MoveCost()
			if newCost > moveRange {
				continue
			}
			old, seen := cost[next]
			if seen && newCost >= old {
				continue
			}
			if !seen {
				order = append(order, next)
			}
			cost[next] = newCost
			frontier = append(frontier, next)
		}
	}

	delete(cost, start)
	return order, cost
}

// FindPath returns the cheapest path from start to goal, excluding start and
// ending at goal. The mover is whoever stands on start: enemy-occupied tiles
// block it exactly as they do in Reachable. With nobody on start, occupancy is
// ignored. An empty result means no path, or start == goal.
func (p *Pathfinder) FindPath(start, goal world.HexCoord) []world.HexCoord {
	if t, ok := p.grid.Tile(start); ok && t.Occupied() && p.occupants != nil {
		if f, ok := p.occupants.FactionOf(t.Occupant); ok {
			return p.search(start, goal, f, true)
		}
	}
	return p.search(start, goal, 0, false)
}

// FindPathFor is FindPath for an explicit mover faction.
func (p *Pathfinder) FindPathFor(start, goal world.HexCoord, faction units.Faction) []world.HexCoord {
	return p.search(start, goal, faction, true)
}

type frontierNode struct {
	coord    world.HexCoord
	priority int
	seq      int
}

// search is A* with the hex distance heuristic. It is admissible because no
// passable tile costs less than 1. Equal priorities pop in insertion order.
func (p *Pathfinder) search(start, goal world.HexCoord, faction units.Faction, blockEnemies bool) []world.HexCoord {
	if start == goal || !p.grid.Contains(start) || !p.grid.Contains(goal) {
		return nil
	}

	frontier := heap.New[frontierNode](func(a, b frontierNode) bool {
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.seq < b.seq
	})
	seq := 0
	frontier.Push(frontierNode{coord: start, priority: 0, seq: seq})

	cameFrom := map[world.HexCoord]world.HexCoord{start: start}
	costSoFar := map[world.HexCoord]int{start: 0}
	closed := make(map[world.HexCoord]bool)

	for frontier.Size() > 0 {
		node, _ := frontier.Pop()
		current := node.coord
		if current == goal {
			break
		}
		// Stale duplicate of an already expanded tile.
		if closed[current] {
			continue
		}
		closed[current] = true

		for _, next := range p.grid.Neighbors(current) {
			if !p.canEnter(start, next, faction, blockEnemies) {
				continue
			}
			newCost := costSoFar[current] + p.grid.Get(next).MoveCost()
			if old, seen := costSoFar[next]; seen && newCost >= old {
				continue
			}
			costSoFar[next] = newCost
			cameFrom[next] = current
			seq++
			frontier.Push(frontierNode{
				coord:    next,
				priority: newCost + world.Distance(next, goal),
				seq:      seq,
			})
		}
	}

	return reconstructPath(cameFrom, start, goal)
}

func reconstructPath(cameFrom map[world.HexCoord]world.HexCoord, start, goal world.HexCoord) []world.HexCoord {
	if _, ok := cameFrom[goal]; !ok {
		return nil
	}

	var path []world.HexCoord
	for current := goal; current != start; current = cameFrom[current] {
		path = append(path, current)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// canEnter reports whether a mover of the given faction may step onto next.
// Water is never enterable. Tiles held by another faction block, except the
// start tile. An occupant missing from the unit table also blocks.
func (p *Pathfinder) canEnter(start, next world.HexCoord, faction units.Faction, blockEnemies bool) bool {
	t, ok := p.grid.Tile(next)
	if !ok || !t.Passable() {
		return false
	}
	if !blockEnemies || next == start || !t.Occupied() || p.occupants == nil {
		return true
	}
	f, ok := p.occupants.FactionOf(t.Occupant)
	return ok && f == faction
}

// PathCost sums the entry cost of every tile on a path.
// Tiles missing from the grid contribute nothing.
func (p *Pathfinder) PathCost(path []world.HexCoord) int {
	total := 0
	for _, c := range path {
		if t, ok := p.grid.Tile(c); ok {
			total += t.MoveCost()
		}
	}
	return total
}

// AttackArea returns every grid tile within attackRange hexes of position,
// position included. Terrain, occupancy and movement cost play no part.
func (p *Pathfinder) AttackArea(position world.HexCoord, attackRange int) []world.HexCoord {
	var area []world.HexCoord
	for dq := -attackRange; dq <= attackRange; dq++ {
		for dr := -attackRange; dr <= attackRange; dr++ {
			c := position.Add(world.HexCoord{Q: dq, R: dr})
			if world.Distance(position, c) <= attackRange && p.grid.Contains(c) {
				area = append(area, c)
			}
		}
	}
	return area
}
