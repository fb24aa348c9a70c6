package envspec

import "fmt"

// Issue is a single lint finding. Lint reports, it never rejects: the
// manifest is raw declarative input and the package manager downstream is the
// one that has to live with it.
type Issue struct {
	Spec    string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Spec, i.Message)
}

// Lint checks the manifest against the one structural expectation the format
// carries: each package name appears at most once, with a consistent
// constraint. It also flags build-string pins, which cannot be transcribed
// to other manifest formats.
func Lint(env *Environment) []Issue {
	var issues []Issue
	seen := make(map[string]PackageSpec)

	check := func(spec PackageSpec, section string) {
		if prev, ok := seen[spec.Name]; ok {
			if prev.String() == spec.String() {
				issues = append(issues, Issue{
					Spec:    spec.String(),
					Message: fmt.Sprintf("duplicate entry for %q in %s section", spec.Name, section),
				})
			} else {
				issues = append(issues, Issue{
					Spec:    spec.String(),
					Message: fmt.Sprintf("%q listed more than once with conflicting constraints (%s vs %s)", spec.Name, prev, spec),
				})
			}
		} else {
			seen[spec.Name] = spec
		}

		if spec.Build != "" {
			issues = append(issues, Issue{
				Spec:    spec.String(),
				Message: "build-string pin cannot be transcribed to requirements format",
			})
		}
	}

	for _, spec := range env.Dependencies {
		check(spec, "conda")
	}
	for _, spec := range env.Pip {
		check(spec, "pip")
	}

	return issues
}
