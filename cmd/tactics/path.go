package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/talgya/hex-tactics/internal/render"
	"github.com/talgya/hex-tactics/internal/world"
)

var pathCmd = &cobra.Command{
	Use:   "path <unit> <q> <r>",
	Short: "Show the cheapest path from a unit to a tile",
	Long: `Find the cheapest path for the unit to the given axial coordinate.
Enemy-held tiles block the way; friendly tiles can be crossed.

Examples:
  tactics path Aldric 6 3`,
	Args: cobra.ExactArgs(3),
	RunE: runPath,
}

func runPath(cmd *cobra.Command, args []string) error {
	q, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("q: %w", err)
	}
	r, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("r: %w", err)
	}

	b, err := loadBattle()
	if err != nil {
		return err
	}
	defer b.Close()
	b.Start()

	u, err := findUnit(b, args[0])
	if err != nil {
		return err
	}
	dest := world.H(q, r)

	path := b.PathTo(u.ID, dest)
	printBattle(b, render.Overlay{Path: path})
	fmt.Println()

	if len(path) == 0 {
		fmt.Printf("No path from %s to %s.\n", u.Position, dest)
		return nil
	}
	cost := b.Paths.PathCost(path)
	fmt.Printf("%s -> %s: %d steps, cost %d", u.Position, dest, len(path), cost)
	if cost <= u.MoveRange {
		fmt.Println(" (within move range)")
	} else {
		fmt.Printf(" (%d turns at move range %d)\n", (cost+u.MoveRange-1)/max(u.MoveRange, 1), u.MoveRange)
	}
	for i, c := range path {
		fmt.Printf("  %2d. %s\n", i+1, c)
	}
	return nil
}
