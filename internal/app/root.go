package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	dbPath string

	// RootCmd is the root command for camsort
	RootCmd = &cobra.Command{
		Use:   "camsort",
		Short: "Sort camera-trap detector output into per-category folders",
		Long: `camsort takes the batch results JSON produced by a camera-trap detector
and separates the referenced images into folders (animals, people, vehicles,
empty, multiple) according to per-category confidence thresholds.

Images are always copied, never moved, and relative paths are preserved under
each category folder. Every sort run is recorded in a local database so a run
with the wrong thresholds can be rolled back with a single command.

Quick Start:
  1. camsort separate results.json ./images ./sorted
  2. camsort runs                  # review what happened
  3. camsort undo latest           # roll back if the thresholds were wrong

Features:
  • Per-category confidence thresholds with a config-file default
  • Concurrent copying with progress reporting
  • Checksum-verified rollback of any recorded run
  • Drop-folder watching for unattended batch pipelines
  • Environment manifest inspection and transcription

Examples:
  # Sort with a stricter person threshold
  camsort separate results.json ./images ./sorted --category-threshold person=0.85

  # See what a run would do without copying anything
  camsort separate results.json ./images ./sorted --dry-run

  # Process results files as the detector drops them
  camsort watch ./incoming --input ./images --output ./sorted

  # Re-express the detector environment as pip requirements
  camsort env export environment.yml -o requirements.txt`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("camsort: camera-trap detection sorting with rollback")
			fmt.Println()
			fmt.Println("Run 'camsort separate --help' to get started.")
			fmt.Println("Run 'camsort --help' for the full reference.")
			return nil
		},
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default: ~/.camsort/camsort.db)")

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// getDBPath returns the database path, using the flag value or default
func getDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	camsortDir := filepath.Join(home, ".camsort")
	if err := os.MkdirAll(camsortDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create camsort directory: %w", err)
	}

	return filepath.Join(camsortDir, "camsort.db"), nil
}
