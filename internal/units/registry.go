package units

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/talgya/hex-tactics/internal/world"
)

// Errors returned by registry and placement operations.
var (
	ErrUnknownUnit  = errors.New("unknown unit")
	ErrDuplicateID  = errors.New("duplicate unit id")
	ErrNoTile       = errors.New("no tile at coordinate")
	ErrImpassable   = errors.New("tile is impassable")
	ErrTileOccupied = errors.New("tile is occupied")
)

// Registry is the unit table. Tiles refer to units by ID only; the registry
// owns the Unit values.
type Registry struct {
	units  map[world.UnitID]*Unit
	nextID world.UnitID
}

// NewRegistry creates an empty unit table.
func NewRegistry() *Registry {
	return &Registry{
		units:  make(map[world.UnitID]*Unit),
		nextID: 1,
	}
}

// Add stores u. A zero ID is replaced by the next free one.
func (r *Registry) Add(u *Unit) error {
	if u.ID == world.NoUnit {
		u.ID = r.nextID
	}
	if _, exists := r.units[u.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateID, u.ID)
	}
	if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	u.Alive = true
	r.units[u.ID] = u
	return nil
}

// Get returns the unit with the given ID, or nil.
func (r *Registry) Get(id world.UnitID) *Unit {
	return r.units[id]
}

// Len returns the number of units in the table.
func (r *Registry) Len() int {
	return len(r.units)
}

// All returns every unit ordered by ID.
func (r *Registry) All() []*Unit {
	out := make([]*Unit, 0, len(r.units))
	for _, u := range r.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByFaction returns the units of one faction ordered by ID.
func (r *Registry) ByFaction(f Faction) []*Unit {
	var out []*Unit
	for _, u := range r.All() {
		if u.Faction == f {
			out = append(out, u)
		}
	}
	return out
}

// FindByName returns the first unit (by ID) with the given name.
func (r *Registry) FindByName(name string) *Unit {
	for _, u := range r.All() {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// FactionOf reports the faction of a unit.
func (r *Registry) FactionOf(id world.UnitID) (Faction, bool) {
	u, ok := r.units[id]
	if !ok {
		return 0, false
	}
	return u.Faction, true
}

// Position reports where a placed unit stands.
func (r *Registry) Position(id world.UnitID) (world.HexCoord, bool) {
	u, ok := r.units[id]
	if !ok || !u.Placed {
		return world.HexCoord{}, false
	}
	return u.Position, true
}

// Place moves a unit onto coord, updating the tile occupant and the unit
// position together. The previous tile, if any, is cleared.
func (r *Registry) Place(g *world.Grid, id world.UnitID, coord world.HexCoord) error {
	u, ok := r.units[id]
	if !ok {
		return fmt.Errorf("place %d: %w", id, ErrUnknownUnit)
	}
	dst, ok := g.Tile(coord)
	if !ok {
		return fmt.Errorf("place %s at %s: %w", u.Name, coord, ErrNoTile)
	}
	if !dst.Passable() {
		return fmt.Errorf("place %s at %s: %w", u.Name, coord, ErrImpassable)
	}
	if dst.Occupied() && dst.Occupant != id {
		return fmt.Errorf("place %s at %s: %w", u.Name, coord, ErrTileOccupied)
	}

	if u.Placed {
		if src, ok := g.Tile(u.Position); ok && src.Occupant == id {
			src.Occupant = world.NoUnit
		}
	}

	dst.Occupant = id
	u.Position = coord
	u.Placed = true

	slog.Debug("unit placed", "unit", u.Name, "id", id, "coord", coord.String())
	return nil
}

// Remove takes a unit off the board and out of the table.
func (r *Registry) Remove(g *world.Grid, id world.UnitID) error {
	u, ok := r.units[id]
	if !ok {
		return fmt.Errorf("remove %d: %w", id, ErrUnknownUnit)
	}
	if u.Placed {
		if t, ok := g.Tile(u.Position); ok && t.Occupant == id {
			t.Occupant = world.NoUnit
		}
	}
	u.Placed = false
	u.Alive = false
	delete(r.units, id)

	slog.Debug("unit removed", "unit", u.Name, "id", id)
	return nil
}
