package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wildtrack-systems/camsort/internal/watcher"
)

var (
	watchInput  string
	watchOutput string

	watchCmd = &cobra.Command{
		Use:   "watch <drop-folder>",
		Short: "Sort results files as they land in a drop folder",
		Long: `Watch a drop folder and sort each detector results file that lands in it.

Detector batch jobs typically finish by writing a results .json file. The
watch command picks those files up as they appear (waiting for writes to
settle first) and runs each through the same pipeline as 'camsort separate',
copying from the input folder into the output folder.

All runs share the output folder, so sorting proceeds as if --allow-existing
were set. Each processed results file is recorded as its own run and can be
rolled back individually.

Runs in the foreground; stop with Ctrl+C.`,
		Example: `  # Sort everything the detector drops into ./incoming
  camsort watch ./incoming --input ./images --output ./sorted

  # With a custom default threshold and more copy workers
  camsort watch ./incoming --input ./images --output ./sorted --threshold 0.8 --threads 4`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchInput, "input", "", "image input folder (required)")
	watchCmd.Flags().StringVar(&watchOutput, "output", "", "sorted output folder (required)")
	watchCmd.Flags().Float64Var(&separateThreshold, "threshold", 0, "default confidence threshold in (0, 1)")
	watchCmd.Flags().StringArrayVar(&separateCategoryThresholds, "category-threshold", nil, "per-category override as name=value (repeatable)")
	watchCmd.Flags().IntVar(&separateThreads, "threads", 1, "number of concurrent file copies")

	watchCmd.MarkFlagRequired("input")
	watchCmd.MarkFlagRequired("output")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	opts, err := buildSeparateOptions()
	if err != nil {
		return err
	}
	// The output root accumulates results from every processed file.
	opts.AllowExisting = true
	opts.DryRun = false

	handler := func(path string) error {
		fmt.Printf("Processing %s\n", path)
		summary, err := runSeparation(path, watchInput, watchOutput, opts, false)
		if err != nil {
			return err
		}
		fmt.Printf("Done: %d copied, %d error(s)\n", summary.Copied, len(summary.Errors))
		return nil
	}

	w, err := watcher.New(args[0], handler)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", args[0])

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nStopping...")
	return w.Stop()
}
