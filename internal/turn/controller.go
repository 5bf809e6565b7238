// Package turn implements the battle's phase state machine: whose turn it
// is, which units have acted, and the timed hand-back from the enemy side.
package turn

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/hex-tactics/internal/engine"
	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

// DefaultEnemyDelay is how long the enemy phase lasts before control
// returns to the player.
const DefaultEnemyDelay = 2 * time.Second

var (
	// ErrInvalidTransition is returned when a transition is requested from a
	// phase that does not permit it.
	ErrInvalidTransition = errors.New("invalid phase transition")
	// ErrInvalidOutcome is returned when EndBattle gets a non-terminal phase.
	ErrInvalidOutcome = errors.New("battle outcome must be Victory or Defeat")
)

// Phase is the current turn owner or the battle outcome.
type Phase uint8

const (
	PhasePlayerTurn Phase = iota
	PhaseEnemyTurn
	PhaseVictory
	PhaseDefeat
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePlayerTurn:
		return "PlayerTurn"
	case PhaseEnemyTurn:
		return "EnemyTurn"
	case PhaseVictory:
		return "Victory"
	case PhaseDefeat:
		return "Defeat"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(name string) (Phase, bool) {
	for p := PhasePlayerTurn; p <= PhaseDefeat; p++ {
		if p.String() == name {
			return p, true
		}
	}
	return PhasePlayerTurn, false
}

// Terminal reports whether the battle is over.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat
}

// PhaseChange is delivered to subscribers on every phase entry.
type PhaseChange struct {
	Phase Phase
	Turn  int
}

type subscriber struct {
	id int
	fn func(PhaseChange)
}

// roster is an insertion-ordered set of units.
type roster struct {
	units []*units.Unit
	index map[world.UnitID]int
}

func newRoster() roster {
	return roster{index: make(map[world.UnitID]int)}
}

func (r *roster) add(u *units.Unit) bool {
	if _, ok := r.index[u.ID]; ok {
		return false
	}
	r.index[u.ID] = len(r.units)
	r.units = append(r.units, u)
	return true
}

func (r *roster) remove(id world.UnitID) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.units = append(r.units[:i], r.units[i+1:]...)
	delete(r.index, id)
	for j := i; j < len(r.units); j++ {
		r.index[r.units[j].ID] = j
	}
	return true
}

func (r *roster) resetActed() {
	for _, u := range r.units {
		u.HasActed = false
	}
}

// Controller tracks the phase, the turn number and both rosters.
// It is not safe for concurrent use.
type Controller struct {
	phase Phase
	turn  int

	players roster
	enemies roster

	enemyDelay time.Duration
	enemyTimer engine.Timer

	subs    []subscriber
	nextSub int
}

// Option configures a Controller.
type Option func(*Controller)

// WithEnemyDelay sets how long the enemy phase lasts before it ends itself.
func WithEnemyDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.enemyDelay = d
		}
	}
}

// New creates a controller in PlayerTurn, turn 1, with empty rosters.
func New(opts ...Option) *Controller {
	c := &Controller{
		phase:      PhasePlayerTurn,
		turn:       1,
		players:    newRoster(),
		enemies:    newRoster(),
		enemyDelay: DefaultEnemyDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// TurnNumber returns the current turn, starting at 1.
func (c *Controller) TurnNumber() int { return c.turn }

// EnemyDelay returns the configured enemy phase length.
func (c *Controller) EnemyDelay() time.Duration { return c.enemyDelay }

// Start begins the battle with the player's phase.
func (c *Controller) Start() {
	slog.Info("battle started", "turn", c.turn)
	c.StartPlayerTurn()
}

// StartPlayerTurn enters PlayerTurn and clears the acted flag on every
// player unit.
func (c *Controller) StartPlayerTurn() {
	c.enemyTimer.Cancel()
	c.phase = PhasePlayerTurn
	c.players.resetActed()
	c.notify()
}

// EndPlayerTurn hands control to the enemy side.
func (c *Controller) EndPlayerTurn() error {
	if c.phase != PhasePlayerTurn {
		slog.Warn("end player turn rejected", "phase", c.phase)
		return fmt.Errorf("end player turn in %s: %w", c.phase, ErrInvalidTransition)
	}
	c.StartEnemyTurn()
	return nil
}

// StartEnemyTurn enters EnemyTurn, clears the acted flag on every enemy
// unit and arms the timer that ends the phase.
func (c *Controller) StartEnemyTurn() {
	c.phase = PhaseEnemyTurn
	c.enemies.resetActed()
	c.enemyTimer.Schedule(c.enemyDelay)
	c.notify()
}

// EndEnemyTurn advances the turn number and returns control to the player.
func (c *Controller) EndEnemyTurn() error {
	if c.phase != PhaseEnemyTurn {
		slog.Warn("end enemy turn rejected", "phase", c.phase)
		return fmt.Errorf("end enemy turn in %s: %w", c.phase, ErrInvalidTransition)
	}
	c.enemyTimer.Cancel()
	c.turn++
	c.StartPlayerTurn()
	return nil
}

// EndBattle enters a terminal phase and cancels any pending enemy timer.
func (c *Controller) EndBattle(outcome Phase) error {
	if !outcome.Terminal() {
		return fmt.Errorf("end battle with %s: %w", outcome, ErrInvalidOutcome)
	}
	if c.phase.Terminal() {
		return fmt.Errorf("end battle in %s: %w", c.phase, ErrInvalidTransition)
	}
	c.enemyTimer.Cancel()
	c.phase = outcome
	slog.Info("battle ended", "outcome", outcome, "turn", c.turn)
	c.notify()
	return nil
}

// Tick advances the enemy timer by dt, ending the enemy phase when it fires.
func (c *Controller) Tick(dt time.Duration) {
	if c.enemyTimer.Advance(dt) {
		if err := c.EndEnemyTurn(); err != nil {
			slog.Error("enemy timer fired out of phase", "err", err)
		}
	}
}

// PendingTransition returns the time until the enemy phase ends itself.
func (c *Controller) PendingTransition() (time.Duration, bool) {
	if !c.enemyTimer.Pending() {
		return 0, false
	}
	return c.enemyTimer.Remaining(), true
}

// CanAct reports whether u belongs to the side whose phase it is and has
// not yet acted. Ally and Neutral units never act.
func (c *Controller) CanAct(u *units.Unit) bool {
	if u == nil || u.HasActed {
		return false
	}
	switch c.phase {
	case PhasePlayerTurn:
		return u.Faction == units.FactionPlayer
	case PhaseEnemyTurn:
		return u.Faction == units.FactionEnemy
	default:
		return false
	}
}

// RegisterUnit adds u to its side's roster. Registering twice is a no-op,
// as is registering an Ally or Neutral unit.
func (c *Controller) RegisterUnit(u *units.Unit) {
	if u == nil {
		return
	}
	if r := c.rosterFor(u.Faction); r != nil && r.add(u) {
		slog.Debug("unit registered", "unit", u.ID, "faction", u.Faction)
	}
}

// UnregisterUnit drops u from both rosters by ID, so a unit whose faction
// changed after registration is still removed. Unknown units are ignored.
func (c *Controller) UnregisterUnit(u *units.Unit) {
	if u == nil {
		return
	}
	for _, r := range []*roster{&c.players, &c.enemies} {
		if r.remove(u.ID) {
			slog.Debug("unit unregistered", "unit", u.ID, "faction", u.Faction)
		}
	}
}

// Roster returns a copy of a side's roster in registration order.
func (c *Controller) Roster(f units.Faction) []*units.Unit {
	r := c.rosterFor(f)
	if r == nil {
		return nil
	}
	out := make([]*units.Unit, len(r.units))
	copy(out, r.units)
	return out
}

func (c *Controller) rosterFor(f units.Faction) *roster {
	switch f {
	case units.FactionPlayer:
		return &c.players
	case units.FactionEnemy:
		return &c.enemies
	default:
		return nil
	}
}

// Subscribe registers fn for phase changes and returns a function that
// removes it. Subscribers run in subscription order.
func (c *Controller) Subscribe(fn func(PhaseChange)) (unsubscribe func()) {
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// Restore sets the phase and turn number from a snapshot. Rosters are
// untouched and nobody is notified. An enemy phase gets a fresh timer.
func (c *Controller) Restore(phase Phase, turnNumber int) {
	if turnNumber < 1 {
		turnNumber = 1
	}
	c.phase = phase
	c.turn = turnNumber
	c.enemyTimer.Cancel()
	if phase == PhaseEnemyTurn {
		c.enemyTimer.Schedule(c.enemyDelay)
	}
}

func (c *Controller) notify() {
	change := PhaseChange{Phase: c.phase, Turn: c.turn}
	slog.Debug("phase changed", "phase", change.Phase, "turn", change.Turn)
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	for _, s := range subs {
		s.fn(change)
	}
}
