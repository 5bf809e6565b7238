package persistence

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/talgya/hex-tactics/internal/battle"
	"github.com/talgya/hex-tactics/internal/config"
	"github.com/talgya/hex-tactics/internal/turn"
	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "battle.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "test.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestLoadEmpty(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.LoadBattle(); !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("LoadBattle() on empty db = %v, want ErrNoSnapshot", err)
	}
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)
	if err := db.SaveMeta("k", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.SaveMeta("k", "v2"); err != nil {
		t.Fatal(err)
	}
	got, err := db.GetMeta("k")
	if err != nil || got != "v2" {
		t.Errorf("GetMeta() = %q, %v; want v2", got, err)
	}
}

func TestSaveAndLoadBattle(t *testing.T) {
	cfg := config.DefaultBattleConfig()
	cfg.Turn.EnemyDelay = 1500 * time.Millisecond
	cfg.Map.Overrides = []config.TerrainOverride{{At: config.Coord{Q: 5, R: 0}, Terrain: "Castle"}}
	b, err := battle.New(cfg)
	if err != nil {
		t.Fatalf("battle.New() failed: %v", err)
	}
	b.Start()

	mover := b.Units.FindByName("Aldric")
	if area := b.MovableArea(mover.ID); len(area) > 0 {
		if _, err := b.MoveUnit(mover.ID, area[0]); err != nil {
			t.Fatalf("MoveUnit() failed: %v", err)
		}
	}
	if err := b.EndPlayerTurn(); err != nil {
		t.Fatal(err)
	}

	db := openTestDB(t)
	if err := db.SaveBattle(b); err != nil {
		t.Fatalf("SaveBattle() failed: %v", err)
	}
	// Saving twice replaces rather than duplicates.
	if err := db.SaveBattle(b); err != nil {
		t.Fatalf("second SaveBattle() failed: %v", err)
	}

	loaded, err := db.LoadBattle()
	if err != nil {
		t.Fatalf("LoadBattle() failed: %v", err)
	}

	if loaded.ID != b.ID || loaded.Name != b.Name || loaded.Seed != b.Seed {
		t.Errorf("identity mismatch: %v/%q/%d vs %v/%q/%d", loaded.ID, loaded.Name, loaded.Seed, b.ID, b.Name, b.Seed)
	}
	if loaded.Grid.TileCount() != b.Grid.TileCount() {
		t.Fatalf("tile count = %d, want %d", loaded.Grid.TileCount(), b.Grid.TileCount())
	}
	for _, c := range b.Grid.Coords() {
		want, got := b.Grid.Get(c), loaded.Grid.Get(c)
		if got.Terrain != want.Terrain || got.Occupant != want.Occupant {
			t.Errorf("tile %s = %+v, want %+v", c, got, want)
		}
	}
	if loaded.Grid.Get(world.H(5, 0)).Terrain != world.TerrainCastle {
		t.Error("terrain override lost")
	}

	if loaded.Units.Len() != b.Units.Len() {
		t.Fatalf("unit count = %d, want %d", loaded.Units.Len(), b.Units.Len())
	}
	for _, u := range b.Units.All() {
		l := loaded.Units.Get(u.ID)
		if l == nil {
			t.Errorf("unit %d missing", u.ID)
			continue
		}
		if l.Name != u.Name || l.Faction != u.Faction || l.Class != u.Class ||
			l.Position != u.Position || l.HasActed != u.HasActed || l.MoveRange != u.MoveRange {
			t.Errorf("unit %d = %+v, want %+v", u.ID, l, u)
		}
	}
	if err := loaded.CheckOccupancy(); err != nil {
		t.Errorf("loaded battle inconsistent: %v", err)
	}

	if loaded.Turns.Phase() != turn.PhaseEnemyTurn || loaded.Turns.TurnNumber() != 1 {
		t.Errorf("restored %s turn %d", loaded.Turns.Phase(), loaded.Turns.TurnNumber())
	}
	if loaded.Turns.EnemyDelay() != 1500*time.Millisecond {
		t.Errorf("enemy delay = %v", loaded.Turns.EnemyDelay())
	}
	if len(loaded.Turns.Roster(units.FactionPlayer)) == 0 {
		t.Error("rosters were not rebuilt")
	}

	extra := loaded.Spawn(units.Template{Name: "reinforcement", Faction: units.FactionPlayer})
	for _, u := range loaded.Units.All() {
		if u.ID >= extra.ID {
			t.Errorf("spawned ID %d does not follow restored unit %d", extra.ID, u.ID)
		}
	}

	if len(loaded.Events) != len(b.Events) {
		t.Errorf("event count = %d, want %d", len(loaded.Events), len(b.Events))
	}

	// The restored enemy phase still hands control back.
	loaded.Tick(1500 * time.Millisecond)
	if loaded.Turns.Phase() != turn.PhasePlayerTurn || loaded.Turns.TurnNumber() != 2 {
		t.Errorf("after tick: %s turn %d", loaded.Turns.Phase(), loaded.Turns.TurnNumber())
	}
}

func TestRecentEvents(t *testing.T) {
	db := openTestDB(t)
	events := []battle.Event{
		{Turn: 1, Description: "first", Category: "phase"},
		{Turn: 1, Description: "second", Category: "move"},
		{Turn: 2, Description: "third", Category: "phase"},
	}
	if err := db.SaveEvents(events); err != nil {
		t.Fatal(err)
	}

	got, err := db.RecentEvents(2)
	if err != nil {
		t.Fatalf("RecentEvents() failed: %v", err)
	}
	if len(got) != 2 || got[0].Description != "third" || got[1].Description != "second" {
		t.Errorf("RecentEvents(2) = %+v", got)
	}
}
