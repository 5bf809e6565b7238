package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hex-tactics/internal/persistence"
	"github.com/talgya/hex-tactics/internal/render"
)

var flagEvents int

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Show the battle saved in the database",
	Args:  cobra.NoArgs,
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().IntVar(&flagEvents, "events", 10, "Number of recent events to list")
}

func runLoad(cmd *cobra.Command, args []string) error {
	db, err := persistence.Open(flagDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	b, err := db.LoadBattle()
	if errors.Is(err, persistence.ErrNoSnapshot) {
		fmt.Printf("No battle saved in %s.\n", flagDBPath)
		fmt.Println("Run 'tactics simulate --save' to create one.")
		return nil
	}
	if err != nil {
		return err
	}
	defer b.Close()

	if saved, err := db.GetMeta("saved_at"); err == nil {
		if t, err := time.Parse(time.RFC3339, saved); err == nil {
			fmt.Printf("Saved %s\n", humanize.Time(t))
		}
	}
	printBattle(b, render.Overlay{})

	events, err := db.RecentEvents(flagEvents)
	if err != nil {
		return fmt.Errorf("recent events: %w", err)
	}
	if len(events) > 0 {
		fmt.Println()
		fmt.Println("Recent events:")
	}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		fmt.Printf("  [turn %d] %-7s %s\n", e.Turn, e.Category, e.Description)
	}
	return nil
}
