// Package battle ties the grid, the unit table, the pathfinder and the turn
// controller together into one playable engagement.
package battle

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/hex-tactics/internal/config"
	"github.com/talgya/hex-tactics/internal/pathfind"
	"github.com/talgya/hex-tactics/internal/turn"
	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

var (
	ErrBattleOver   = errors.New("battle is over")
	ErrCannotAct    = errors.New("unit cannot act this phase")
	ErrNotPlaced    = errors.New("unit is not on the board")
	ErrUnreachable  = errors.New("destination not reachable")
	ErrNoDeployment = errors.New("no free deployment tile")
	ErrDestOccupied = errors.New("destination occupied")
)

// maxEvents bounds the in-memory event log.
const maxEvents = 1000

// Event is a notable occurrence during the battle.
type Event struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"` // "phase", "deploy", "move", "wait", "remove", "outcome"
}

// Battle holds the complete engagement state.
type Battle struct {
	ID      uuid.UUID
	Name    string
	Seed    int64
	HexSize float64
	Debug   bool // Check occupancy after every mutation

	Grid  *world.Grid
	Units *units.Registry
	Paths *pathfind.Pathfinder
	Turns *turn.Controller

	Events []Event

	spawner     *units.Spawner
	unsubscribe func()
}

// NewFromGrid creates an empty battle on an existing grid.
func NewFromGrid(g *world.Grid, enemyDelay time.Duration) *Battle {
	reg := units.NewRegistry()
	b := &Battle{
		ID:      uuid.New(),
		HexSize: 1.0,
		Grid:    g,
		Units:   reg,
		Paths:   pathfind.New(g, reg),
		Turns:   turn.New(turn.WithEnemyDelay(enemyDelay)),
		spawner: units.NewSpawner(0),
	}
	b.unsubscribe = b.Turns.Subscribe(b.onPhaseChange)
	return b
}

// New builds a battle from a scenario: generates the map, applies terrain
// overrides, spawns the roster and deploys every unit. The battle is not
// started; call Start.
func New(cfg config.BattleConfig) (*Battle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	g := world.Generate(cfg.GenConfig())
	for _, o := range cfg.Map.Overrides {
		t, _ := world.ParseTerrain(o.Terrain)
		if !g.SetTerrain(o.At.Hex(), t) {
			slog.Warn("terrain override off the map", "coord", o.At.Hex().String())
		}
	}

	b := NewFromGrid(g, cfg.Turn.EnemyDelay)
	b.Name = cfg.Name
	b.Seed = cfg.Seed
	b.Debug = cfg.Debug
	if cfg.Map.HexSize > 0 {
		b.HexSize = cfg.Map.HexSize
	}
	b.spawner = units.NewSpawner(cfg.Seed)

	templates, err := cfg.Templates()
	if err != nil {
		return nil, err
	}

	// Fixed positions first so automatic deployment works around them.
	var pending []*units.Unit
	for i, u := range b.spawner.SpawnAll(templates) {
		t := templates[i]
		if t.Position == nil {
			pending = append(pending, u)
			continue
		}
		if err := b.Deploy(u, *t.Position); err != nil {
			return nil, fmt.Errorf("deploy %s: %w", u.Name, err)
		}
	}
	if err := b.autoDeploy(pending); err != nil {
		return nil, err
	}

	slog.Info("battle created",
		"id", b.ID,
		"name", b.Name,
		"tiles", g.TileCount(),
		"units", b.Units.Len(),
	)
	return b, nil
}

// autoDeploy places units on their side's edge: players and allies in the
// west, everyone else in the east.
func (b *Battle) autoDeploy(pending []*units.Unit) error {
	bySide := map[world.Side][]*units.Unit{}
	for _, u := range pending {
		side := world.SideEast
		if u.Faction == units.FactionPlayer || u.Faction == units.FactionAlly {
			side = world.SideWest
		}
		bySide[side] = append(bySide[side], u)
	}

	for _, side := range []world.Side{world.SideWest, world.SideEast} {
		group := bySide[side]
		if len(group) == 0 {
			continue
		}
		slots := world.DeploymentSlots(b.Grid, side, len(group), 2)
		if len(slots) < len(group) {
			slots = world.DeploymentSlots(b.Grid, side, len(group), 1)
		}
		if len(slots) < len(group) {
			return fmt.Errorf("deploy %d units on side %d: %w", len(group), side, ErrNoDeployment)
		}
		for i, u := range group {
			if err := b.Deploy(u, slots[i]); err != nil {
				return fmt.Errorf("deploy %s: %w", u.Name, err)
			}
		}
	}
	return nil
}

// Spawn creates a unit from t with the next free ID. The unit still has to be
// deployed.
func (b *Battle) Spawn(t units.Template) *units.Unit {
	return b.spawner.Spawn(t)
}

// ResumeIDs moves the spawner past every ID already in the unit table. Call it
// after filling the table by hand, as a snapshot load does.
func (b *Battle) ResumeIDs() {
	next := world.UnitID(1)
	for _, u := range b.Units.All() {
		if u.ID >= next {
			next = u.ID + 1
		}
	}
	b.spawner.SetNextID(next)
}

// Start begins the first player phase.
func (b *Battle) Start() {
	b.Turns.Start()
}

// Close detaches the battle from its controller's notifications.
func (b *Battle) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
}

// Deploy adds u to the battle (if it is not already in the unit table),
// places it on coord and registers it with the turn controller. A unit added
// here is taken out again when placement fails.
func (b *Battle) Deploy(u *units.Unit, coord world.HexCoord) error {
	added := false
	if b.Units.Get(u.ID) != u {
		if err := b.Units.Add(u); err != nil {
			return err
		}
		added = true
	}
	if err := b.Units.Place(b.Grid, u.ID, coord); err != nil {
		if added {
			if rmErr := b.Units.Remove(b.Grid, u.ID); rmErr != nil {
				slog.Error("undo deploy failed", "unit", u.Name, "err", rmErr)
			}
		}
		return err
	}
	b.Turns.RegisterUnit(u)
	b.addEvent("deploy", fmt.Sprintf("%s (%s) deployed at %s", u.Name, u.Faction, coord))
	b.checkOccupancy("deploy")
	return nil
}

// MovableArea returns the tiles u can end its move on: reachable and empty.
// Tiles held by friendly units can be crossed but not occupied, so they are
// left out.
func (b *Battle) MovableArea(id world.UnitID) []world.HexCoord {
	u := b.Units.Get(id)
	if u == nil || !u.Placed {
		return nil
	}
	var out []world.HexCoord
	for _, c := range b.Paths.Reachable(u.Position, u.MoveRange, u.Faction) {
		if !b.Grid.Get(c).Occupied() {
			out = append(out, c)
		}
	}
	return out
}

// PathTo returns the cheapest path for u to dest, honouring enemy blocking.
func (b *Battle) PathTo(id world.UnitID, dest world.HexCoord) []world.HexCoord {
	u := b.Units.Get(id)
	if u == nil || !u.Placed {
		return nil
	}
	return b.Paths.FindPathFor(u.Position, dest, u.Faction)
}

// MoveUnit walks u to dest and marks it as having acted. It returns the
// path taken.
func (b *Battle) MoveUnit(id world.UnitID, dest world.HexCoord) ([]world.HexCoord, error) {
	u, err := b.actingUnit(id)
	if err != nil {
		return nil, err
	}

	t, ok := b.Grid.Tile(dest)
	if !ok {
		return nil, fmt.Errorf("move %s to %s: %w", u.Name, dest, ErrUnreachable)
	}
	if t.Occupied() {
		return nil, fmt.Errorf("move %s to %s: %w", u.Name, dest, ErrDestOccupied)
	}
	if !b.Paths.ReachableSet(u.Position, u.MoveRange, u.Faction).Has(dest) {
		return nil, fmt.Errorf("move %s to %s: %w", u.Name, dest, ErrUnreachable)
	}

	path := b.Paths.FindPathFor(u.Position, dest, u.Faction)
	if len(path) == 0 {
		return nil, fmt.Errorf("move %s to %s: %w", u.Name, dest, ErrUnreachable)
	}

	from := u.Position
	if err := b.Units.Place(b.Grid, id, dest); err != nil {
		return nil, err
	}
	u.HasActed = true

	b.addEvent("move", fmt.Sprintf("%s moved %s -> %s (cost %d)", u.Name, from, dest, b.Paths.PathCost(path)))
	b.checkOccupancy("move")
	return path, nil
}

// Wait ends u's action for this phase without moving.
func (b *Battle) Wait(id world.UnitID) error {
	u, err := b.actingUnit(id)
	if err != nil {
		return err
	}
	u.HasActed = true
	b.addEvent("wait", fmt.Sprintf("%s waits at %s", u.Name, u.Position))
	return nil
}

func (b *Battle) actingUnit(id world.UnitID) (*units.Unit, error) {
	if b.Turns.Phase().Terminal() {
		return nil, ErrBattleOver
	}
	u := b.Units.Get(id)
	if u == nil {
		return nil, fmt.Errorf("unit %d: %w", id, units.ErrUnknownUnit)
	}
	if !u.Placed {
		return nil, fmt.Errorf("unit %s: %w", u.Name, ErrNotPlaced)
	}
	if !b.Turns.CanAct(u) {
		return nil, fmt.Errorf("unit %s in %s: %w", u.Name, b.Turns.Phase(), ErrCannotAct)
	}
	return u, nil
}

// AttackTargets returns the opposing units inside u's attack area.
func (b *Battle) AttackTargets(id world.UnitID) []*units.Unit {
	u := b.Units.Get(id)
	if u == nil || !u.Placed {
		return nil
	}
	var targets []*units.Unit
	for _, c := range b.Paths.AttackArea(u.Position, u.AttackRange) {
		t := b.Grid.Get(c)
		if !t.Occupied() || t.Occupant == id {
			continue
		}
		other := b.Units.Get(t.Occupant)
		if other != nil && hostile(u.Faction, other.Faction) {
			targets = append(targets, other)
		}
	}
	return targets
}

// hostile reports whether two factions fight each other. Players and allies
// share a side; neutrals fight nobody.
func hostile(a, b units.Faction) bool {
	side := func(f units.Faction) int {
		switch f {
		case units.FactionPlayer, units.FactionAlly:
			return 1
		case units.FactionEnemy:
			return 2
		default:
			return 0
		}
	}
	sa, sb := side(a), side(b)
	return sa != 0 && sb != 0 && sa != sb
}

// RemoveUnit takes a defeated unit off the board and out of the rosters,
// then ends the battle if one side has nobody left.
func (b *Battle) RemoveUnit(id world.UnitID) error {
	u := b.Units.Get(id)
	if u == nil {
		return fmt.Errorf("remove %d: %w", id, units.ErrUnknownUnit)
	}
	b.Turns.UnregisterUnit(u)
	if err := b.Units.Remove(b.Grid, id); err != nil {
		return err
	}
	b.addEvent("remove", fmt.Sprintf("%s has fallen", u.Name))
	b.checkOccupancy("remove")
	b.checkOutcome()
	return nil
}

func (b *Battle) checkOutcome() {
	if b.Turns.Phase().Terminal() {
		return
	}
	var outcome turn.Phase
	switch {
	case len(b.Units.ByFaction(units.FactionEnemy)) == 0:
		outcome = turn.PhaseVictory
	case len(b.Units.ByFaction(units.FactionPlayer)) == 0:
		outcome = turn.PhaseDefeat
	default:
		return
	}
	if err := b.Turns.EndBattle(outcome); err != nil {
		slog.Error("end battle failed", "err", err)
	}
}

// EndPlayerTurn hands control to the enemy side.
func (b *Battle) EndPlayerTurn() error {
	return b.Turns.EndPlayerTurn()
}

// Tick advances battle time. Hook it to engine.Engine.OnTick.
func (b *Battle) Tick(dt time.Duration) {
	b.Turns.Tick(dt)
}

// Over reports whether the battle has reached Victory or Defeat.
func (b *Battle) Over() bool {
	return b.Turns.Phase().Terminal()
}

// WorldPosition returns the presentation-space position of a placed unit.
func (b *Battle) WorldPosition(id world.UnitID) (x, z float64, ok bool) {
	pos, ok := b.Units.Position(id)
	if !ok {
		return 0, 0, false
	}
	x, z = world.WorldPosition(pos, b.HexSize)
	return x, z, true
}

// RecentEvents returns up to n of the latest events, oldest first.
func (b *Battle) RecentEvents(n int) []Event {
	if n <= 0 || len(b.Events) == 0 {
		return nil
	}
	start := len(b.Events) - n
	if start < 0 {
		start = 0
	}
	return b.Events[start:]
}

func (b *Battle) onPhaseChange(pc turn.PhaseChange) {
	b.addEvent("phase", fmt.Sprintf("turn %d: %s", pc.Turn, pc.Phase))
	if pc.Phase.Terminal() {
		b.addEvent("outcome", pc.Phase.String())
	}
}

func (b *Battle) addEvent(category, desc string) {
	b.Events = append(b.Events, Event{
		Turn:        b.Turns.TurnNumber(),
		Description: desc,
		Category:    category,
	})
	// Trim old events to prevent unbounded growth.
	if len(b.Events) > maxEvents {
		b.Events = b.Events[len(b.Events)-maxEvents:]
	}
}

// checkOccupancy verifies tile and unit positions agree. Only runs in debug
// mode.
func (b *Battle) checkOccupancy(after string) {
	if !b.Debug {
		return
	}
	if err := b.Grid.CheckOccupancy(b.Units.Position); err != nil {
		slog.Error("occupancy check failed", "after", after, "err", err)
	}
}

// CheckOccupancy runs the occupancy check regardless of debug mode.
func (b *Battle) CheckOccupancy() error {
	return b.Grid.CheckOccupancy(b.Units.Position)
}
