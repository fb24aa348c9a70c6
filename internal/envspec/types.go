// Package envspec models conda environment manifests for the detector toolchain.
//
// An environment manifest is declarative input for a package manager: a name,
// a channel list, and a list of package specifiers. This package reads,
// lints, and transcribes that list. It is deliberately not a resolver — no
// version solving, no fetching, no installing.
package envspec

import "strings"

// Op is a version comparison operator in a package specifier.
type Op string

const (
	OpEq    Op = "=="
	OpMatch Op = "=" // conda's fuzzy match, e.g. python=3.7
	OpGTE   Op = ">="
	OpLTE   Op = "<="
	OpGT    Op = ">"
	OpLT    Op = "<"
	OpNE    Op = "!="
)

// Constraint is a single version bound, e.g. ">=1.9.0".
type Constraint struct {
	Op      Op
	Version string
}

func (c Constraint) String() string {
	return string(c.Op) + c.Version
}

// PackageSpec is one entry in a dependency list: a package name plus zero or
// more version constraints. A bare name carries no constraints. Build is the
// optional conda build-string pin (pkg=1.0=h6de7cb9_0); it survives parsing
// so lint can flag it, but it is never transcribed.
type PackageSpec struct {
	Name        string
	Constraints []Constraint
	Build       string
}

// String reassembles the specifier in conda syntax.
func (p PackageSpec) String() string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	for i, c := range p.Constraints {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(c.String())
	}
	if p.Build != "" {
		sb.WriteString("=")
		sb.WriteString(p.Build)
	}
	return sb.String()
}

// Environment is a parsed manifest. Dependencies holds the conda-managed
// entries; Pip holds the nested pip section, if any.
type Environment struct {
	Name         string
	Channels     []string
	Dependencies []PackageSpec
	Pip          []PackageSpec
}

// Find returns the first dependency (conda list first, then pip) with the
// given name, or nil.
func (e *Environment) Find(name string) *PackageSpec {
	for i := range e.Dependencies {
		if e.Dependencies[i].Name == name {
			return &e.Dependencies[i]
		}
	}
	for i := range e.Pip {
		if e.Pip[i].Name == name {
			return &e.Pip[i]
		}
	}
	return nil
}
