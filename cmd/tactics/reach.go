package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talgya/hex-tactics/internal/render"
)

var reachCmd = &cobra.Command{
	Use:   "reach <unit>",
	Short: "Show the tiles a unit can move to and strike",
	Long: `Highlight every tile the unit can reach with its movement points,
and the tiles its attack covers from where it stands.

Examples:
  tactics reach Aldric
  tactics reach 3`,
	Args: cobra.ExactArgs(1),
	RunE: runReach,
}

func runReach(cmd *cobra.Command, args []string) error {
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

	reach := b.Paths.ReachableSet(u.Position, u.MoveRange, u.Faction)
	costs := b.Paths.ReachableCosts(u.Position, u.MoveRange, u.Faction)
	printBattle(b, render.Overlay{
		Reach:  reach,
		Attack: b.Paths.AttackArea(u.Position, u.AttackRange),
	})

	fmt.Printf("\n%s at %s: %d reachable tiles, %d free to stop on\n",
		u.Name, u.Position, reach.Size(), len(b.MovableArea(u.ID)))
	for _, c := range b.Paths.Reachable(u.Position, u.MoveRange, u.Faction) {
		fmt.Printf("  %-8s cost %d\n", c, costs[c])
	}
	for _, t := range b.AttackTargets(u.ID) {
		fmt.Printf("  in range: %s (%s) at %s\n", t.Name, t.Faction, t.Position)
	}
	return nil
}
