package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wildtrack-systems/camsort/internal/config"
	"github.com/wildtrack-systems/camsort/internal/megadetector"
	"github.com/wildtrack-systems/camsort/internal/output"
	"github.com/wildtrack-systems/camsort/internal/separator"
	"github.com/wildtrack-systems/camsort/internal/store"
)

var (
	separateThreshold          float64
	separateCategoryThresholds []string
	separateThreads            int
	separateAllowExisting      bool
	separateDryRun             bool
	separateQuiet              bool

	separateCmd = &cobra.Command{
		Use:   "separate <results.json> <input-folder> <output-folder>",
		Short: "Sort detector results into per-category folders",
		Long: `Sort the images referenced by a detector results file into per-category
folders under the output folder.

For each image, the maximum confidence per category is compared against that
category's threshold. Images above threshold for exactly one category go to
that category's folder, images above threshold for several go to 'multiple',
and images above threshold for none go to 'empty'. Relative paths are
preserved inside each folder, and files are copied, never moved.

The output folder must be empty unless --allow-existing is given. The run is
recorded in the camsort database and can be rolled back with 'camsort undo'.

Thresholds come from, in increasing precedence: the built-in default (0.725),
the thresholds config file, --threshold, and --category-threshold.`,
		Example: `  # Sort with defaults
  camsort separate results.json ./images ./sorted

  # Stricter person threshold, four copy workers
  camsort separate results.json ./images ./sorted --category-threshold person=0.85 --threads 4

  # Check the routing without touching any file
  camsort separate results.json ./images ./sorted --dry-run`,
		Args: cobra.ExactArgs(3),
		RunE: runSeparate,
	}
)

func init() {
	separateCmd.Flags().Float64Var(&separateThreshold, "threshold", 0, "default confidence threshold in (0, 1)")
	separateCmd.Flags().StringArrayVar(&separateCategoryThresholds, "category-threshold", nil, "per-category override as name=value (repeatable)")
	separateCmd.Flags().IntVar(&separateThreads, "threads", 1, "number of concurrent file copies")
	separateCmd.Flags().BoolVar(&separateAllowExisting, "allow-existing", false, "proceed even if the output folder is not empty")
	separateCmd.Flags().BoolVar(&separateDryRun, "dry-run", false, "plan and verify sources without copying")
	separateCmd.Flags().BoolVar(&separateQuiet, "quiet", false, "suppress output")

	RootCmd.AddCommand(separateCmd)
}

func runSeparate(cmd *cobra.Command, args []string) error {
	opts, err := buildSeparateOptions()
	if err != nil {
		return err
	}

	summary, err := runSeparation(args[0], args[1], args[2], opts, separateQuiet)
	if err != nil {
		return err
	}

	if !separateQuiet {
		fmt.Print(output.RenderCategoryTable(summary))
	}

	if len(summary.Errors) > 0 {
		return fmt.Errorf("%d of %d file(s) could not be copied", len(summary.Errors), summary.Total)
	}
	return nil
}

// buildSeparateOptions merges the built-in defaults, the thresholds config
// file, and the command-line flags, in that precedence order.
func buildSeparateOptions() (separator.Options, error) {
	opts := separator.DefaultOptions()
	opts.CategoryThresholds = make(map[string]float64)

	if cfgDir, err := config.Dir(); err == nil {
		cfg, err := config.LoadThresholds(cfgDir)
		if err != nil {
			return opts, fmt.Errorf("failed to read thresholds config: %w", err)
		}
		if cfg.Default > 0 {
			opts.DefaultThreshold = cfg.Default
		}
		for category, value := range cfg.Categories {
			opts.CategoryThresholds[category] = value
		}
	}

	if separateThreshold != 0 {
		if separateThreshold <= 0 || separateThreshold >= 1 {
			return opts, fmt.Errorf("--threshold must be in (0, 1), got %v", separateThreshold)
		}
		opts.DefaultThreshold = separateThreshold
	}

	for _, raw := range separateCategoryThresholds {
		category, value, err := parseCategoryThreshold(raw)
		if err != nil {
			return opts, err
		}
		opts.CategoryThresholds[category] = value
	}

	opts.Workers = separateThreads
	opts.AllowExisting = separateAllowExisting
	opts.DryRun = separateDryRun
	return opts, nil
}

// parseCategoryThreshold parses a name=value override.
func parseCategoryThreshold(raw string) (string, float64, error) {
	idx := strings.IndexByte(raw, '=')
	if idx <= 0 || idx == len(raw)-1 {
		return "", 0, fmt.Errorf("invalid --category-threshold %q (want name=value)", raw)
	}

	category := strings.TrimSpace(raw[:idx])
	value, err := strconv.ParseFloat(strings.TrimSpace(raw[idx+1:]), 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid --category-threshold %q: %v", raw, err)
	}
	if value <= 0 || value >= 1 {
		return "", 0, fmt.Errorf("invalid --category-threshold %q: threshold must be in (0, 1)", raw)
	}
	return category, value, nil
}

// runSeparation loads a results file, plans the routing, executes the
// copies, and records the run. Shared by separate and watch.
func runSeparation(resultsPath, inputRoot, outputRoot string, opts separator.Options, quiet bool) (*separator.Summary, error) {
	var spin *output.Spinner
	if !quiet {
		spin = output.NewSpinner("Loading " + filepath.Base(resultsPath))
		spin.Start()
	}
	results, err := megadetector.LoadResults(resultsPath)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return nil, err
	}

	plan := separator.BuildPlan(results, opts)
	for _, warning := range plan.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
	}

	if !quiet {
		mode := ""
		if opts.DryRun {
			mode = " (dry run)"
		}
		fmt.Printf("Sorting %d image(s) into %s%s\n", len(plan.Entries), outputRoot, mode)
	}

	// Dry runs are not recorded: nothing happened.
	var st *store.Store
	var runID int64
	if !opts.DryRun {
		path, err := getDBPath()
		if err != nil {
			return nil, err
		}
		st, err = store.New(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer st.Close()

		if err := st.CreateSchema(); err != nil {
			return nil, err
		}

		runID, err = st.InsertRun(&store.Run{
			StartedAt:   time.Now(),
			ResultsFile: absPath(resultsPath),
			InputRoot:   absPath(inputRoot),
			OutputRoot:  absPath(outputRoot),
			ImageCount:  len(plan.Entries),
		})
		if err != nil {
			return nil, err
		}
	}

	var progress *output.ProgressBar
	var onProgress func()
	if !quiet {
		progress = output.NewProgress(len(plan.Entries), "Sorting images")
		onProgress = progress.Increment
	}

	summary, err := separator.Execute(context.Background(), plan, inputRoot, outputRoot, opts, onProgress)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return nil, err
	}

	if st != nil {
		files := make([]*store.RunFile, 0, len(summary.Records))
		for _, record := range summary.Records {
			files = append(files, &store.RunFile{
				RunID:      runID,
				Category:   record.Folder,
				SourcePath: record.Source,
				DestPath:   record.Dest,
				SizeBytes:  record.SizeBytes,
				Checksum:   fmt.Sprintf("%016x", record.Checksum),
			})
		}
		if err := st.InsertRunFiles(runID, files); err != nil {
			return summary, err
		}
		if err := st.FinishRun(runID, summary.Copied, len(summary.Errors)); err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// absPath resolves a path for the run record; on failure the original is
// recorded as-is.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
