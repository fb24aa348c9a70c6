package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wildtrack-systems/camsort/internal/output"
	"github.com/wildtrack-systems/camsort/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded sort runs",
	Long: `List every recorded sort run, newest first, with its image and error
counts. Run ids from this table are what 'camsort undo' accepts.`,
	Example: `  camsort runs`,
	RunE:    runRuns,
}

func init() {
	RootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	path, err := getDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}

	fmt.Print(output.RenderRunTable(runs))
	return nil
}
