// Unit spawning from scenario templates.
package units

import (
	"math/rand"

	"github.com/talgya/hex-tactics/internal/world"
)

// Template describes a unit to spawn. Nil ranges fall back to the defaults;
// a nil Position leaves placement to the caller.
type Template struct {
	Name        string
	Class       Class
	Faction     Faction
	Position    *world.HexCoord
	MoveRange   *int
	AttackRange *int
}

// Spawner creates units with sequential IDs.
type Spawner struct {
	rng    *rand.Rand
	nextID world.UnitID
}

// NewSpawner creates a unit spawner with the given seed.
func NewSpawner(seed int64) *Spawner {
	return &Spawner{
		rng:    rand.New(rand.NewSource(seed + 300)),
		nextID: 1,
	}
}

// SetNextID sets the next unit ID to be issued.
func (s *Spawner) SetNextID(id world.UnitID) {
	s.nextID = id
}

// Spawn builds one unit from a template. The unit is not placed.
func (s *Spawner) Spawn(t Template) *Unit {
	id := s.nextID
	s.nextID++

	name := t.Name
	if name == "" {
		name = s.generateName(t.Faction, t.Class)
	}

	move, attack := DefaultMoveRange, DefaultAttackRange
	if t.MoveRange != nil {
		move = *t.MoveRange
	}
	if t.AttackRange != nil {
		attack = *t.AttackRange
	}

	return &Unit{
		ID:          id,
		Name:        name,
		Class:       t.Class,
		Faction:     t.Faction,
		MoveRange:   move,
		AttackRange: attack,
		Alive:       true,
	}
}

// SpawnAll builds a batch of units in template order.
func (s *Spawner) SpawnAll(templates []Template) []*Unit {
	out := make([]*Unit, 0, len(templates))
	for _, t := range templates {
		out = append(out, s.Spawn(t))
	}
	return out
}

func (s *Spawner) generateName(f Faction, c Class) string {
	pool := heroNames
	if f == FactionEnemy {
		pool = foeNames
	}
	return pool[s.rng.Intn(len(pool))] + " the " + c.String()
}

var heroNames = []string{
	"Aldric", "Brenna", "Cedric", "Dara", "Edmund", "Fiona", "Gareth",
	"Helena", "Ivor", "Jocelyn", "Kester", "Lyra", "Merek", "Nessa",
}

var foeNames = []string{
	"Grusk", "Vharn", "Skarra", "Morduk", "Thessa", "Kragg", "Zolvan",
	"Ulgra", "Drax", "Sorrow", "Ruk", "Venna", "Hask", "Blight",
}
