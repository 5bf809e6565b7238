package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/hex-tactics/internal/battle"
	"github.com/talgya/hex-tactics/internal/engine"
	"github.com/talgya/hex-tactics/internal/persistence"
	"github.com/talgya/hex-tactics/internal/render"
	"github.com/talgya/hex-tactics/internal/turn"
	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

var (
	flagTurns    int
	flagSave     bool
	flagRealtime bool
	flagSpeed    float64
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play out turns with a scripted player advance",
	Long: `Run the battle for a number of turns. Each player unit marches toward the
nearest enemy, then the enemy phase runs out its timer. With --realtime the
enemy delay is waited out on the wall clock; otherwise time is stepped offline.

Examples:
  tactics simulate --turns 5
  tactics simulate --turns 2 --realtime --speed 4
  tactics simulate --save --db data/battle.db`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVar(&flagTurns, "turns", 3, "Number of full turns to play")
	simulateCmd.Flags().BoolVar(&flagSave, "save", false, "Save the final state to the database")
	simulateCmd.Flags().BoolVar(&flagRealtime, "realtime", false, "Wait out enemy phases on the wall clock")
	simulateCmd.Flags().Float64Var(&flagSpeed, "speed", 1.0, "Real-time speed multiplier")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	b, err := loadBattle()
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eng := engine.NewEngine()
	eng.Speed = flagSpeed

	b.Start()
	for played := 0; played < flagTurns && !b.Over(); played++ {
		advancePlayers(b)
		if b.Over() {
			break
		}
		if err := b.EndPlayerTurn(); err != nil {
			return err
		}

		if flagRealtime {
			if err := waitEnemyPhase(ctx, eng, b); err != nil {
				slog.Warn("simulation interrupted", "err", err)
				break
			}
		} else {
			eng.OnTick = b.Tick
			budget := b.Turns.EnemyDelay() + eng.Interval
			eng.RunFor(budget, eng.Interval, func() bool {
				return b.Turns.Phase() != turn.PhaseEnemyTurn
			})
		}

		slog.Info("turn complete", "turn", b.Turns.TurnNumber()-1, "ticks", eng.Ticks)
	}

	printBattle(b, render.Overlay{})
	fmt.Println()
	for _, e := range b.RecentEvents(15) {
		fmt.Printf("  [turn %d] %-7s %s\n", e.Turn, e.Category, e.Description)
	}

	if flagSave {
		db, err := persistence.Open(flagDBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.SaveBattle(b); err != nil {
			return err
		}
		fmt.Printf("\nSaved to %s\n", flagDBPath)
	}
	return nil
}

// waitEnemyPhase runs the engine on the wall clock until control returns to
// the player or ctx is cancelled.
func waitEnemyPhase(ctx context.Context, eng *engine.Engine, b *battle.Battle) error {
	phaseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	eng.OnTick = func(dt time.Duration) {
		b.Tick(dt)
		if b.Turns.Phase() != turn.PhaseEnemyTurn {
			cancel()
		}
	}
	eng.Run(phaseCtx)
	return ctx.Err()
}

// advancePlayers moves every ready player unit to the free tile closest to
// its nearest enemy. Units that cannot get closer wait.
func advancePlayers(b *battle.Battle) {
	enemies := b.Units.ByFaction(units.FactionEnemy)
	for _, u := range b.Units.ByFaction(units.FactionPlayer) {
		if !b.Turns.CanAct(u) || !u.Placed {
			continue
		}
		target, ok := nearest(u.Position, enemies)
		if !ok {
			wait(b, u)
			continue
		}

		best, bestDist := u.Position, world.Distance(u.Position, target)
		for _, c := range b.MovableArea(u.ID) {
			if d := world.Distance(c, target); d < bestDist {
				best, bestDist = c, d
			}
		}
		if best == u.Position {
			wait(b, u)
			continue
		}
		if _, err := b.MoveUnit(u.ID, best); err != nil {
			slog.Warn("move failed", "unit", u.Name, "err", err)
			wait(b, u)
		}
	}
}

func wait(b *battle.Battle, u *units.Unit) {
	if err := b.Wait(u.ID); err != nil {
		slog.Debug("wait failed", "unit", u.Name, "err", err)
	}
}

func nearest(from world.HexCoord, candidates []*units.Unit) (world.HexCoord, bool) {
	var best world.HexCoord
	bestDist, found := 0, false
	for _, c := range candidates {
		if !c.Placed {
			continue
		}
		if d := world.Distance(from, c.Position); !found || d < bestDist {
			best, bestDist, found = c.Position, d, true
		}
	}
	return best, found
}
