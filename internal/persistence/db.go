// Package persistence provides SQLite-based battle snapshots.
package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/talgya/hex-tactics/internal/battle"
	"github.com/talgya/hex-tactics/internal/turn"
	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

// ErrNoSnapshot is returned by LoadBattle on a database with nothing saved.
var ErrNoSnapshot = errors.New("no battle snapshot")

// DB wraps a SQLite connection holding one battle snapshot.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path, creating
// parent directories as needed. A leading ~ expands to the home directory.
func Open(path string) (*DB, error) {
	if path != "" && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("expand home: %w", err)
		}
		path = filepath.Join(home, path[1:])
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tiles (
		q INTEGER NOT NULL,
		r INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		occupant INTEGER NOT NULL,
		PRIMARY KEY (q, r)
	);

	CREATE TABLE IF NOT EXISTS units (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		class INTEGER NOT NULL,
		faction INTEGER NOT NULL,
		pos_q INTEGER NOT NULL,
		pos_r INTEGER NOT NULL,
		placed INTEGER NOT NULL,
		move_range INTEGER NOT NULL,
		attack_range INTEGER NOT NULL,
		has_acted INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS battle_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	CREATE INDEX IF NOT EXISTS idx_units_faction ON units(faction);
	`
	_, err := db.conn.Exec(schema)
	return err
}

type tileRow struct {
	Q        int   `db:"q"`
	R        int   `db:"r"`
	Terrain  int   `db:"terrain"`
	Occupant int64 `db:"occupant"`
}

type unitRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Class       int    `db:"class"`
	Faction     int    `db:"faction"`
	PosQ        int    `db:"pos_q"`
	PosR        int    `db:"pos_r"`
	Placed      int    `db:"placed"`
	MoveRange   int    `db:"move_range"`
	AttackRange int    `db:"attack_range"`
	HasActed    int    `db:"has_acted"`
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// SaveTiles writes the whole grid (full replace).
func (db *DB) SaveTiles(g *world.Grid) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tiles"); err != nil {
		return err
	}

	stmt, err := tx.Preparex("INSERT INTO tiles (q, r, terrain, occupant) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range g.Coords() {
		t := g.Tiles[c]
		if _, err := stmt.Exec(c.Q, c.R, int(t.Terrain), int64(t.Occupant)); err != nil {
			return fmt.Errorf("insert tile %s: %w", c, err)
		}
	}

	return tx.Commit()
}

// SaveUnits writes every unit in the table (full replace).
func (db *DB) SaveUnits(reg *units.Registry) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM units"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO units
		(id, name, class, faction, pos_q, pos_r, placed, move_range, attack_range, has_acted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, u := range reg.All() {
		_, err := stmt.Exec(
			int64(u.ID), u.Name, int(u.Class), int(u.Faction),
			u.Position.Q, u.Position.R, boolInt(u.Placed),
			u.MoveRange, u.AttackRange, boolInt(u.HasActed),
		)
		if err != nil {
			return fmt.Errorf("insert unit %d: %w", u.ID, err)
		}
	}

	return tx.Commit()
}

// SaveEvents replaces the stored event log.
func (db *DB) SaveEvents(events []battle.Event) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM events"); err != nil {
		return err
	}
	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (turn, description, category) VALUES (?, ?, ?)",
			e.Turn, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in battle metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO battle_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM battle_meta WHERE key = ?", key)
	return value, err
}

// SaveBattle performs a full save of the battle.
func (db *DB) SaveBattle(b *battle.Battle) error {
	slog.Info("saving battle", "id", b.ID, "tiles", b.Grid.TileCount(), "units", b.Units.Len())

	if err := db.SaveTiles(b.Grid); err != nil {
		return fmt.Errorf("save tiles: %w", err)
	}
	if err := db.SaveUnits(b.Units); err != nil {
		return fmt.Errorf("save units: %w", err)
	}
	if err := db.SaveEvents(b.Events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}

	meta := map[string]string{
		"id":             b.ID.String(),
		"name":           b.Name,
		"seed":           strconv.FormatInt(b.Seed, 10),
		"width":          strconv.Itoa(b.Grid.Width),
		"height":         strconv.Itoa(b.Grid.Height),
		"hex_size":       strconv.FormatFloat(b.HexSize, 'g', -1, 64),
		"debug":          strconv.FormatBool(b.Debug),
		"phase":          b.Turns.Phase().String(),
		"turn":           strconv.Itoa(b.Turns.TurnNumber()),
		"enemy_delay_ms": strconv.FormatInt(b.Turns.EnemyDelay().Milliseconds(), 10),
		"saved_at":       time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if err := db.SaveMeta(k, v); err != nil {
			return fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	slog.Info("battle saved")
	return nil
}

// LoadBattle rebuilds the saved battle. The phase and turn number are
// restored without notifying anyone; an enemy phase restarts its timer.
func (db *DB) LoadBattle() (*battle.Battle, error) {
	idStr, err := db.GetMeta("id")
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}
	meta, err := db.allMeta()
	if err != nil {
		return nil, fmt.Errorf("load meta: %w", err)
	}

	width, _ := strconv.Atoi(meta["width"])
	height, _ := strconv.Atoi(meta["height"])
	delayMS, _ := strconv.ParseInt(meta["enemy_delay_ms"], 10, 64)

	g := world.NewGrid(width, height)
	var tiles []tileRow
	if err := db.conn.Select(&tiles, "SELECT q, r, terrain, occupant FROM tiles"); err != nil {
		return nil, fmt.Errorf("load tiles: %w", err)
	}
	for _, t := range tiles {
		g.SetTerrain(world.H(t.Q, t.R), world.Terrain(t.Terrain))
	}

	b := battle.NewFromGrid(g, time.Duration(delayMS)*time.Millisecond)
	if b.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("parse battle id: %w", err)
	}
	b.Name = meta["name"]
	b.Seed, _ = strconv.ParseInt(meta["seed"], 10, 64)
	b.Debug, _ = strconv.ParseBool(meta["debug"])
	if size, err := strconv.ParseFloat(meta["hex_size"], 64); err == nil && size > 0 {
		b.HexSize = size
	}

	var rows []unitRow
	if err := db.conn.Select(&rows, `SELECT id, name, class, faction, pos_q, pos_r,
		placed, move_range, attack_range, has_acted FROM units ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load units: %w", err)
	}
	for _, r := range rows {
		u := &units.Unit{
			ID:          world.UnitID(r.ID),
			Name:        r.Name,
			Class:       units.Class(r.Class),
			Faction:     units.Faction(r.Faction),
			MoveRange:   r.MoveRange,
			AttackRange: r.AttackRange,
			HasActed:    r.HasActed != 0,
		}
		if err := b.Units.Add(u); err != nil {
			return nil, fmt.Errorf("load unit %d: %w", r.ID, err)
		}
		if r.Placed != 0 {
			if err := b.Units.Place(g, u.ID, world.H(r.PosQ, r.PosR)); err != nil {
				return nil, fmt.Errorf("load unit %d: %w", r.ID, err)
			}
		}
		b.Turns.RegisterUnit(u)
	}
	b.ResumeIDs()

	// Cross-check against the saved tile occupants.
	for _, t := range tiles {
		if got := g.Get(world.H(t.Q, t.R)).Occupant; int64(got) != t.Occupant {
			slog.Warn("snapshot occupancy differs", "coord", world.H(t.Q, t.R).String(), "saved", t.Occupant, "rebuilt", got)
		}
	}

	if err := db.conn.Select(&b.Events,
		"SELECT turn, description, category FROM events ORDER BY id",
	); err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	phase, ok := turn.ParsePhase(meta["phase"])
	if !ok {
		return nil, fmt.Errorf("unknown phase %q in snapshot", meta["phase"])
	}
	turnNumber, _ := strconv.Atoi(meta["turn"])
	b.Turns.Restore(phase, turnNumber)

	slog.Info("battle loaded", "id", b.ID, "units", b.Units.Len(), "phase", phase, "turn", turnNumber)
	return b, nil
}

func (db *DB) allMeta() (map[string]string, error) {
	var rows []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := db.conn.Select(&rows, "SELECT key, value FROM battle_meta"); err != nil {
		return nil, err
	}
	meta := make(map[string]string, len(rows))
	for _, r := range rows {
		meta[r.Key] = r.Value
	}
	return meta, nil
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]battle.Event, error) {
	var events []battle.Event
	err := db.conn.Select(&events,
		"SELECT turn, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
