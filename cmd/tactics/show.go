package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hex-tactics/internal/battle"
	"github.com/talgya/hex-tactics/internal/render"
	"github.com/talgya/hex-tactics/internal/units"
	"github.com/talgya/hex-tactics/internal/world"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Draw the battlefield and list the units",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	b, err := loadBattle()
	if err != nil {
		return err
	}
	defer b.Close()
	b.Start()

	printBattle(b, render.Overlay{})
	return nil
}

// printBattle writes the header, map, legend and roster to stdout.
func printBattle(b *battle.Battle, ov render.Overlay) {
	r := render.New(colorOutput())

	fmt.Printf("%s  (%s)\n", b.Name, b.ID)
	fmt.Printf("%s turn, %s  -  %s tiles\n\n",
		humanize.Ordinal(b.Turns.TurnNumber()),
		b.Turns.Phase(),
		humanize.Comma(int64(b.Grid.TileCount())),
	)
	fmt.Println(r.Map(b.Grid, b.Units, ov))
	fmt.Println()
	fmt.Println(r.Legend())
	fmt.Println()
	printTerrain(b.Grid)
	printRoster(b)
}

func printTerrain(g *world.Grid) {
	counts := world.TerrainCounts(g)
	terrains := make([]world.Terrain, 0, len(counts))
	for t := range counts {
		terrains = append(terrains, t)
	}
	sort.Slice(terrains, func(i, j int) bool { return terrains[i] < terrains[j] })
	for _, t := range terrains {
		fmt.Printf("  %-9s %s\n", world.TerrainName(t), humanize.Comma(int64(counts[t])))
	}
	fmt.Println()
}

func printRoster(b *battle.Battle) {
	fmt.Printf("  %-3s  %-22s  %-8s  %-8s  %-7s  %-4s  %-4s  %s\n",
		"ID", "Name", "Faction", "Class", "At", "Move", "Atk", "Ready")
	for _, u := range b.Units.All() {
		at := "-"
		if u.Placed {
			at = u.Position.String()
		}
		ready := "no"
		if b.Turns.CanAct(u) {
			ready = "yes"
		}
		fmt.Printf("  %-3d  %-22s  %-8s  %-8s  %-7s  %-4d  %-4d  %s\n",
			u.ID, u.Name, u.Faction, u.Class, at, u.MoveRange, u.AttackRange, ready)
	}
}

// findUnit resolves a unit by numeric ID or by name.
func findUnit(b *battle.Battle, ref string) (*units.Unit, error) {
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		if u := b.Units.Get(world.UnitID(id)); u != nil {
			return u, nil
		}
	}
	if u := b.Units.FindByName(ref); u != nil {
		return u, nil
	}
	return nil, fmt.Errorf("unknown unit %q", ref)
}
