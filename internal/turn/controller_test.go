package turn

import (
	"errors"
	"testing"
	"time"

	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

func unit(id uint64, f units.Faction) *units.Unit {
	return &units.Unit{ID: world.UnitID(id), Faction: f, Alive: true}
}

func TestTurnCycle(t *testing.T) {
	c := New()
	knight := unit(1, units.FactionPlayer)
	orc := unit(2, units.FactionEnemy)
	c.RegisterUnit(knight)
	c.RegisterUnit(orc)

	var changes []PhaseChange
	c.Subscribe(func(pc PhaseChange) { changes = append(changes, pc) })

	c.Start()
	if c.Phase() != PhasePlayerTurn || c.TurnNumber() != 1 {
		t.Fatalf("after Start: %s turn %d", c.Phase(), c.TurnNumber())
	}

	knight.HasActed = true
	orc.HasActed = true
	if err := c.EndPlayerTurn(); err != nil {
		t.Fatalf("EndPlayerTurn() failed: %v", err)
	}
	if c.Phase() != PhaseEnemyTurn {
		t.Fatalf("expected EnemyTurn, got %s", c.Phase())
	}
	if orc.HasActed {
		t.Error("enemy acted flag should reset on enemy phase entry")
	}

	c.Tick(time.Second)
	if c.Phase() != PhaseEnemyTurn {
		t.Fatal("enemy phase ended before its delay")
	}
	c.Tick(time.Second)

	if c.Phase() != PhasePlayerTurn || c.TurnNumber() != 2 {
		t.Errorf("after enemy timer: %s turn %d, want PlayerTurn turn 2", c.Phase(), c.TurnNumber())
	}
	if knight.HasActed {
		t.Error("player acted flag should reset on player phase entry")
	}

	want := []PhaseChange{
		{PhasePlayerTurn, 1},
		{PhaseEnemyTurn, 1},
		{PhasePlayerTurn, 2},
	}
	if len(changes) != len(want) {
		t.Fatalf("got %d notifications, want %d: %v", len(changes), len(want), changes)
	}
	for i := range want {
		if changes[i] != want[i] {
			t.Errorf("notification %d = %+v, want %+v", i, changes[i], want[i])
		}
	}
}

func TestTimerFiresOnce(t *testing.T) {
	c := New(WithEnemyDelay(500 * time.Millisecond))
	c.Start()
	if err := c.EndPlayerTurn(); err != nil {
		t.Fatal(err)
	}
	if d, ok := c.PendingTransition(); !ok || d != 500*time.Millisecond {
		t.Errorf("PendingTransition() = %v, %v", d, ok)
	}

	c.Tick(time.Second)
	c.Tick(time.Second)
	c.Tick(time.Second)
	if c.TurnNumber() != 2 {
		t.Errorf("turn = %d, the timer must fire exactly once", c.TurnNumber())
	}
	if _, ok := c.PendingTransition(); ok {
		t.Error("no transition should be pending in PlayerTurn")
	}
}

func TestEndBattleCancelsTimer(t *testing.T) {
	c := New()
	c.Start()
	if err := c.EndPlayerTurn(); err != nil {
		t.Fatal(err)
	}
	if err := c.EndBattle(PhaseVictory); err != nil {
		t.Fatalf("EndBattle() failed: %v", err)
	}
	if _, ok := c.PendingTransition(); ok {
		t.Error("EndBattle should cancel the enemy timer")
	}

	c.Tick(10 * time.Second)
	if c.Phase() != PhaseVictory || c.TurnNumber() != 1 {
		t.Errorf("stale transition fired: %s turn %d", c.Phase(), c.TurnNumber())
	}

	if err := c.EndBattle(PhaseDefeat); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second EndBattle() = %v, want ErrInvalidTransition", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *Controller)
		call  func(c *Controller) error
		want  error
	}{
		{
			name: "end player turn during enemy turn",
			setup: func(c *Controller) {
				c.Start()
				_ = c.EndPlayerTurn()
			},
			call: (*Controller).EndPlayerTurn,
			want: ErrInvalidTransition,
		},
		{
			name:  "end enemy turn during player turn",
			setup: func(c *Controller) { c.Start() },
			call:  (*Controller).EndEnemyTurn,
			want:  ErrInvalidTransition,
		},
		{
			name: "end player turn after victory",
			setup: func(c *Controller) {
				c.Start()
				_ = c.EndBattle(PhaseVictory)
			},
			call: (*Controller).EndPlayerTurn,
			want: ErrInvalidTransition,
		},
		{
			name:  "non-terminal outcome",
			setup: func(c *Controller) { c.Start() },
			call:  func(c *Controller) error { return c.EndBattle(PhaseEnemyTurn) },
			want:  ErrInvalidOutcome,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			tc.setup(c)
			before, turn := c.Phase(), c.TurnNumber()
			if err := tc.call(c); !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
			if c.Phase() != before || c.TurnNumber() != turn {
				t.Error("rejected transition must not change state")
			}
		})
	}
}

func TestCanAct(t *testing.T) {
	c := New()
	player := unit(1, units.FactionPlayer)
	enemy := unit(2, units.FactionEnemy)
	ally := unit(3, units.FactionAlly)
	acted := unit(4, units.FactionPlayer)
	acted.HasActed = true

	tests := []struct {
		name  string
		phase Phase
		u     *units.Unit
		want  bool
	}{
		{"player in player turn", PhasePlayerTurn, player, true},
		{"enemy in player turn", PhasePlayerTurn, enemy, false},
		{"acted player", PhasePlayerTurn, acted, false},
		{"ally in player turn", PhasePlayerTurn, ally, false},
		{"enemy in enemy turn", PhaseEnemyTurn, enemy, true},
		{"player in enemy turn", PhaseEnemyTurn, player, false},
		{"player after victory", PhaseVictory, player, false},
		{"enemy after defeat", PhaseDefeat, enemy, false},
		{"nil unit", PhasePlayerTurn, nil, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c.Restore(tc.phase, 1)
			if got := c.CanAct(tc.u); got != tc.want {
				t.Errorf("CanAct() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRegisterIdempotent(t *testing.T) {
	c := New()
	knight := unit(1, units.FactionPlayer)
	orc := unit(2, units.FactionEnemy)

	c.RegisterUnit(knight)
	c.RegisterUnit(knight)
	c.RegisterUnit(orc)
	c.RegisterUnit(unit(3, units.FactionNeutral))
	c.RegisterUnit(nil)

	if n := len(c.Roster(units.FactionPlayer)); n != 1 {
		t.Errorf("player roster size = %d, want 1", n)
	}
	if n := len(c.Roster(units.FactionEnemy)); n != 1 {
		t.Errorf("enemy roster size = %d, want 1", n)
	}
	if c.Roster(units.FactionNeutral) != nil {
		t.Error("neutral units have no roster")
	}

	c.UnregisterUnit(unit(9, units.FactionPlayer))
	c.UnregisterUnit(nil)
	if n := len(c.Roster(units.FactionPlayer)); n != 1 {
		t.Errorf("unregistering a stranger changed the roster: %d", n)
	}

	c.UnregisterUnit(knight)
	c.UnregisterUnit(knight)
	if n := len(c.Roster(units.FactionPlayer)); n != 0 {
		t.Errorf("player roster size = %d after unregister, want 0", n)
	}

	// An unregistered unit is no longer reset at phase start.
	knight.HasActed = true
	c.StartPlayerTurn()
	if !knight.HasActed {
		t.Error("unregistered unit should keep its acted flag")
	}
}

func TestRosterKeepsOrder(t *testing.T) {
	c := New()
	for _, id := range []uint64{5, 2, 9, 7} {
		c.RegisterUnit(unit(id, units.FactionEnemy))
	}
	c.UnregisterUnit(unit(2, units.FactionEnemy))
	c.RegisterUnit(unit(2, units.FactionEnemy))

	var got []uint64
	for _, u := range c.Roster(units.FactionEnemy) {
		got = append(got, uint64(u.ID))
	}
	want := []uint64{5, 9, 7, 2}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("roster order = %v, want %v", got, want)
		}
	}
}

func TestUnsubscribe(t *testing.T) {
	c := New()
	var a, b int
	unsubA := c.Subscribe(func(PhaseChange) { a++ })
	c.Subscribe(func(PhaseChange) { b++ })

	c.Start()
	unsubA()
	unsubA()
	c.StartEnemyTurn()

	if a != 1 || b != 2 {
		t.Errorf("notification counts = %d, %d; want 1, 2", a, b)
	}
}

func TestRestore(t *testing.T) {
	c := New(WithEnemyDelay(time.Second))
	notified := false
	c.Subscribe(func(PhaseChange) { notified = true })

	c.Restore(PhaseEnemyTurn, 4)
	if notified {
		t.Error("Restore must not notify")
	}
	if c.Phase() != PhaseEnemyTurn || c.TurnNumber() != 4 {
		t.Errorf("restored %s turn %d", c.Phase(), c.TurnNumber())
	}
	c.Tick(time.Second)
	if c.Phase() != PhasePlayerTurn || c.TurnNumber() != 5 {
		t.Errorf("restored enemy phase should still end: %s turn %d", c.Phase(), c.TurnNumber())
	}

	c.Restore(PhaseVictory, 0)
	if c.TurnNumber() != 1 {
		t.Errorf("turn number clamps to 1, got %d", c.TurnNumber())
	}
}

func TestPhaseNames(t *testing.T) {
	for p := PhasePlayerTurn; p <= PhaseDefeat; p++ {
		got, ok := ParsePhase(p.String())
		if !ok || got != p {
			t.Errorf("ParsePhase(%q) = %v, %v", p.String(), got, ok)
		}
	}
	if _, ok := ParsePhase("Lunch"); ok {
		t.Error("ParsePhase(Lunch) should fail")
	}
}

func TestUnregisterAfterFactionChange(t *testing.T) {
	c := New()
	turncoat := unit(4, units.FactionPlayer)
	c.RegisterUnit(turncoat)

	turncoat.Faction = units.FactionEnemy
	c.UnregisterUnit(turncoat)

	if n := len(c.Roster(units.FactionPlayer)); n != 0 {
		t.Errorf("player roster size = %d, want 0", n)
	}
	if n := len(c.Roster(units.FactionEnemy)); n != 0 {
		t.Errorf("enemy roster size = %d, want 0", n)
	}
}
