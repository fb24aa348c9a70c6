package envspec

import (
	"fmt"
	"io"
	"strings"
)

// interpreterPackages are provided by the Python runtime itself and have no
// pip-installable equivalent, so transcription skips them.
var interpreterPackages = map[string]bool{
	"python": true,
	"pip":    true,
}

// ExportRequirements re-expresses the manifest's dependency list in pip
// requirements.txt form. Channels and other conda-only metadata are dropped;
// conda's fuzzy "=" becomes pip's "=="; build-string pins are omitted from
// the constraint. Entries from the nested pip section are carried over as-is.
func ExportRequirements(env *Environment, w io.Writer) error {
	name := env.Name
	if name == "" {
		name = "unnamed"
	}
	if _, err := fmt.Fprintf(w, "# Transcribed from conda environment %q.\n", name); err != nil {
		return fmt.Errorf("failed to write requirements: %w", err)
	}
	if _, err := fmt.Fprintf(w, "# Interpreter-level entries (python, pip) and channels are not carried over.\n"); err != nil {
		return fmt.Errorf("failed to write requirements: %w", err)
	}

	for _, spec := range env.Dependencies {
		if interpreterPackages[spec.Name] {
			continue
		}
		if _, err := fmt.Fprintln(w, requirementLine(spec)); err != nil {
			return fmt.Errorf("failed to write requirements: %w", err)
		}
	}
	for _, spec := range env.Pip {
		if _, err := fmt.Fprintln(w, requirementLine(spec)); err != nil {
			return fmt.Errorf("failed to write requirements: %w", err)
		}
	}
	return nil
}

// requirementLine renders one specifier in pip syntax.
func requirementLine(spec PackageSpec) string {
	if len(spec.Constraints) == 0 {
		return spec.Name
	}

	parts := make([]string, 0, len(spec.Constraints))
	for _, c := range spec.Constraints {
		op := c.Op
		if op == OpMatch {
			op = OpEq
		}
		parts = append(parts, string(op)+c.Version)
	}
	return spec.Name + strings.Join(parts, ",")
}
