package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wildtrack-systems/camsort/internal/envspec"
)

var (
	envExportOutput string

	envCmd = &cobra.Command{
		Use:   "env",
		Short: "Inspect the detector's environment manifest",
		Long: `Work with the conda environment manifest the detector ships with.

The manifest declares which packages (and version constraints) the detector
runtime needs. camsort does not resolve or install anything — these commands
read the declarative list, check it for internal consistency, and transcribe
it into other manifest formats.`,
	}

	envShowCmd = &cobra.Command{
		Use:   "show [environment.yml]",
		Short: "Print the manifest's packages and constraints",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnvShow,
	}

	envLintCmd = &cobra.Command{
		Use:   "lint [environment.yml]",
		Short: "Check the manifest for duplicate or conflicting entries",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnvLint,
	}

	envExportCmd = &cobra.Command{
		Use:   "export [environment.yml]",
		Short: "Transcribe the manifest into pip requirements format",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnvExport,
	}
)

func init() {
	envExportCmd.Flags().StringVarP(&envExportOutput, "output", "o", "", "write requirements to this file (default: stdout)")

	envCmd.AddCommand(envShowCmd)
	envCmd.AddCommand(envLintCmd)
	envCmd.AddCommand(envExportCmd)
	RootCmd.AddCommand(envCmd)
}

// manifestPath returns the manifest argument, defaulting to the
// environment.yml in the working directory.
func manifestPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "environment.yml"
}

func runEnvShow(cmd *cobra.Command, args []string) error {
	env, err := envspec.Load(manifestPath(args))
	if err != nil {
		return err
	}

	name := env.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("Environment: %s\n", name)
	if len(env.Channels) > 0 {
		fmt.Printf("Channels:    %s\n", strings.Join(env.Channels, ", "))
	}

	fmt.Printf("\n%-24s %s\n", "Package", "Constraint")
	fmt.Println(strings.Repeat("─", 48))
	printSpecs := func(specs []envspec.PackageSpec, suffix string) {
		for _, spec := range specs {
			constraint := "any"
			if len(spec.Constraints) > 0 || spec.Build != "" {
				constraint = strings.TrimPrefix(spec.String(), spec.Name)
			}
			fmt.Printf("%-24s %s%s\n", spec.Name, constraint, suffix)
		}
	}
	printSpecs(env.Dependencies, "")
	printSpecs(env.Pip, "  (pip)")

	return nil
}

func runEnvLint(cmd *cobra.Command, args []string) error {
	path := manifestPath(args)
	env, err := envspec.Load(path)
	if err != nil {
		return err
	}

	issues := envspec.Lint(env)
	if len(issues) == 0 {
		fmt.Printf("%s: no issues found\n", path)
		return nil
	}

	for _, issue := range issues {
		fmt.Printf("%s: %s\n", path, issue)
	}
	return fmt.Errorf("%d issue(s) found", len(issues))
}

func runEnvExport(cmd *cobra.Command, args []string) error {
	env, err := envspec.Load(manifestPath(args))
	if err != nil {
		return err
	}

	if envExportOutput == "" {
		return envspec.ExportRequirements(env, os.Stdout)
	}

	f, err := os.Create(envExportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", envExportOutput, err)
	}
	defer f.Close()

	if err := envspec.ExportRequirements(env, f); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", envExportOutput)
	return nil
}
