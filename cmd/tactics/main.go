// tactics drives hex battles from the command line.
//
// Usage:
//
//	tactics show                   - Draw the battlefield and roster
//	tactics reach <unit>           - Show where a unit can move
//	tactics path <unit> <q> <r>    - Show the cheapest path to a tile
//	tactics simulate               - Play out turns and optionally save them
//	tactics load                   - Show the battle saved in the database
//
// Global flags:
//
//	--config <path>   - Scenario file (default: search ~/.hex-tactics, ./configs, built-in)
//	--seed <value>    - Override the scenario seed
//	--db <path>       - Snapshot database (default: data/battle.db)
//	--log-level <lvl> - debug, info, warn or error
//	--no-color        - Plain ASCII output
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/hex-tactics/internal/battle"
	"github.com/talgya/hex-tactics/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string
	flagNoColor  bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tactics",
	Short: "Hex tactics - movement and turn engine for hex battles",
	Long: `Hex tactics builds a battle from a YAML scenario and answers movement
questions about it: where a unit can go, how it gets there, and whose turn it is.

Examples:
  tactics show
  tactics reach Aldric
  tactics path Aldric 6 3
  tactics simulate --turns 3 --save
  tactics load`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(flagLogLevel, os.Stderr)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Scenario file (YAML)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Override scenario seed (0 = keep)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "data/battle.db", "Path to snapshot database")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored map output")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(reachCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(loadCmd)
}

// loadBattle builds a battle from the configured scenario.
func loadBattle() (*battle.Battle, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	b, err := battle.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("build battle: %w", err)
	}
	return b, nil
}
