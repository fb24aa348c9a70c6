package envspec

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// rawEnvironment keeps the dependency entries as yaml nodes because a conda
// dependency list mixes scalar specifiers with one optional pip mapping.
type rawEnvironment struct {
	Name         string      `yaml:"name"`
	Channels     []string    `yaml:"channels"`
	Dependencies []yaml.Node `yaml:"dependencies"`
}

// Load reads and parses an environment manifest from disk.
func Load(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	env, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return env, nil
}

// Parse decodes a conda environment.yml document. Unknown top-level keys are
// ignored; malformed dependency entries are errors naming the entry.
func Parse(data []byte) (*Environment, error) {
	var raw rawEnvironment
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	env := &Environment{
		Name:     raw.Name,
		Channels: raw.Channels,
	}

	for i := range raw.Dependencies {
		node := &raw.Dependencies[i]
		switch node.Kind {
		case yaml.ScalarNode:
			spec, err := ParseSpec(node.Value)
			if err != nil {
				return nil, fmt.Errorf("dependency %d: %w", i+1, err)
			}
			env.Dependencies = append(env.Dependencies, spec)
		case yaml.MappingNode:
			pip, err := parsePipSection(node)
			if err != nil {
				return nil, fmt.Errorf("dependency %d: %w", i+1, err)
			}
			env.Pip = append(env.Pip, pip...)
		default:
			return nil, fmt.Errorf("dependency %d: entry must be a specifier string or a pip section", i+1)
		}
	}

	return env, nil
}

// parsePipSection decodes the {pip: [...]} mapping conda allows as a
// dependency entry.
func parsePipSection(node *yaml.Node) ([]PackageSpec, error) {
	var specs []PackageSpec
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Value != "pip" {
			return nil, fmt.Errorf("unsupported dependency map key %q", key.Value)
		}
		if val.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("pip section must be a list")
		}
		for j, item := range val.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("pip dependency %d: entry must be a specifier string", j+1)
			}
			spec, err := ParseSpec(item.Value)
			if err != nil {
				return nil, fmt.Errorf("pip dependency %d: %w", j+1, err)
			}
			specs = append(specs, spec)
		}
	}
	return specs, nil
}

// constraintOps in match order: two-character operators must be tried before
// their one-character prefixes.
var constraintOps = []Op{OpGTE, OpLTE, OpEq, OpNE, OpGT, OpLT, OpMatch}

// ParseSpec parses a single package specifier such as "pillow",
// "tensorflow>=1.9.0,<2.0" or "libgcc=7.2.0=h69d50b8_2".
func ParseSpec(s string) (PackageSpec, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PackageSpec{}, fmt.Errorf("empty package specifier")
	}

	i := strings.IndexAny(s, "<>=!")
	if i == -1 {
		if strings.ContainsAny(s, " \t") {
			return PackageSpec{}, fmt.Errorf("invalid package name %q", s)
		}
		return PackageSpec{Name: s}, nil
	}
	if i == 0 {
		return PackageSpec{}, fmt.Errorf("specifier %q has no package name", s)
	}

	spec := PackageSpec{Name: strings.TrimSpace(s[:i])}
	rest := s[i:]

	// Build-string pin: name=version=build. Exactly two bare "=" and no
	// comma-joined constraints.
	if strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==") &&
		strings.Count(rest, "=") == 2 && !strings.Contains(rest, ",") {
		parts := strings.SplitN(rest[1:], "=", 2)
		if parts[0] == "" || parts[1] == "" {
			return PackageSpec{}, fmt.Errorf("specifier %q has a malformed build pin", s)
		}
		spec.Constraints = []Constraint{{Op: OpMatch, Version: parts[0]}}
		spec.Build = parts[1]
		return spec, nil
	}

	for _, part := range strings.Split(rest, ",") {
		c, err := parseConstraint(strings.TrimSpace(part))
		if err != nil {
			return PackageSpec{}, fmt.Errorf("specifier %q: %w", s, err)
		}
		spec.Constraints = append(spec.Constraints, c)
	}
	return spec, nil
}

func parseConstraint(s string) (Constraint, error) {
	for _, op := range constraintOps {
		if strings.HasPrefix(s, string(op)) {
			version := strings.TrimSpace(strings.TrimPrefix(s, string(op)))
			if version == "" {
				return Constraint{}, fmt.Errorf("constraint %q has no version", s)
			}
			return Constraint{Op: op, Version: version}, nil
		}
	}
	return Constraint{}, fmt.Errorf("constraint %q has no operator", s)
}
