package app

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wildtrack-systems/camsort/internal/output"
	"github.com/wildtrack-systems/camsort/internal/separator"
	"github.com/wildtrack-systems/camsort/internal/store"
)

var (
	undoFlagList bool
	undoFlagYes  bool
)

var undoCmd = &cobra.Command{
	Use:   "undo [run-id | latest]",
	Short: "Roll back a recorded sort run",
	Long: `Delete the copies a sort run created, leaving the source images untouched.

Every copied file's checksum was recorded during the run; a copy that has
been modified since is kept and reported rather than deleted. Category
folders that end up empty are pruned. The run record is removed afterwards.

Arguments:
  run-id   The numeric ID of the run to roll back (see 'camsort runs')
  latest   Roll back the most recent run`,
	Example: `  camsort undo --list        # List recorded runs
  camsort undo latest        # Roll back the most recent run
  camsort undo 42            # Roll back run ID 42
  camsort undo 42 --yes      # Roll back without confirmation`,
	RunE: runUndo,
}

func init() {
	undoCmd.Flags().BoolVar(&undoFlagList, "list", false, "List recorded runs")
	undoCmd.Flags().BoolVar(&undoFlagYes, "yes", false, "Skip confirmation prompt")

	RootCmd.AddCommand(undoCmd)
}

func runUndo(cmd *cobra.Command, args []string) error {
	path, err := getDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer st.Close()

	if undoFlagList {
		runs, err := st.ListRuns()
		if err != nil {
			return err
		}
		fmt.Print(output.RenderRunTable(runs))
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("run ID or 'latest' required\n\nUsage: camsort undo [run-id | latest]\n\nUse 'camsort undo --list' to see recorded runs")
	}

	run, err := resolveRun(st, args[0])
	if err != nil {
		return err
	}

	files, err := st.ListRunFiles(run.ID)
	if err != nil {
		return err
	}

	if !undoFlagYes {
		fmt.Printf("This will delete %d copied file(s) under %s.\n", len(files), run.OutputRoot)
		fmt.Print("Continue? [y/N] ")

		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	removed, kept, missing := 0, 0, 0
	for _, file := range files {
		switch verifyAndRemove(file) {
		case removeOK:
			removed++
		case removeMissing:
			missing++
		case removeKept:
			kept++
			fmt.Fprintf(os.Stderr, "keeping %s: modified since the run\n", file.DestPath)
		}
	}

	pruneEmptyDirs(run.OutputRoot, files)

	if err := st.DeleteRun(run.ID); err != nil {
		return err
	}

	fmt.Printf("Rolled back run %d: %d removed, %d kept, %d already missing\n",
		run.ID, removed, kept, missing)
	return nil
}

// resolveRun turns the undo argument into a run record.
func resolveRun(st *store.Store, arg string) (*store.Run, error) {
	if strings.ToLower(arg) == "latest" {
		return st.LatestRun()
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid run ID %q (want a number or 'latest')", arg)
	}
	return st.GetRun(id)
}

type removeResult int

const (
	removeOK removeResult = iota
	removeMissing
	removeKept
)

// verifyAndRemove deletes one copied file if it still matches its recorded
// checksum.
func verifyAndRemove(file *store.RunFile) removeResult {
	if _, err := os.Stat(file.DestPath); err != nil {
		return removeMissing
	}

	want, err := strconv.ParseUint(file.Checksum, 16, 64)
	if err != nil {
		// Unreadable record; err on the side of keeping the file.
		return removeKept
	}
	got, err := separator.ChecksumFile(file.DestPath)
	if err != nil || got != want {
		return removeKept
	}

	if err := os.Remove(file.DestPath); err != nil {
		fmt.Fprintf(os.Stderr, "failed to remove %s: %v\n", file.DestPath, err)
		return removeKept
	}
	return removeOK
}

// pruneEmptyDirs removes directories the rollback emptied, walking up from
// each deleted file's folder but never past the output root.
func pruneEmptyDirs(outputRoot string, files []*store.RunFile) {
	cleanRoot := filepath.Clean(outputRoot)

	for _, file := range files {
		dir := filepath.Dir(file.DestPath)
		for {
			cleanDir := filepath.Clean(dir)
			if cleanDir == cleanRoot || !strings.HasPrefix(cleanDir, cleanRoot+string(filepath.Separator)) {
				break
			}
			entries, err := os.ReadDir(cleanDir)
			if err != nil || len(entries) > 0 {
				break
			}
			if err := os.Remove(cleanDir); err != nil {
				break
			}
			dir = filepath.Dir(cleanDir)
		}
	}
}
