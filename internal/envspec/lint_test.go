package envspec

import (
	"strings"
	"testing"
)

func TestLint_CleanManifest(t *testing.T) {
	env, err := Parse([]byte(detectorManifest))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if issues := Lint(env); len(issues) != 0 {
		t.Errorf("Lint() on a clean manifest = %v, want no issues", issues)
	}
}

func TestLint(t *testing.T) {
	tests := []struct {
		name     string
		env      *Environment
		want     int
		contains string
	}{
		{
			name: "exact duplicate",
			env: &Environment{
				Dependencies: []PackageSpec{
					{Name: "pillow"},
					{Name: "pillow"},
				},
			},
			want:     1,
			contains: "duplicate entry",
		},
		{
			name: "conflicting constraints",
			env: &Environment{
				Dependencies: []PackageSpec{
					{Name: "tensorflow", Constraints: []Constraint{{Op: OpGTE, Version: "1.9.0"}}},
					{Name: "tensorflow", Constraints: []Constraint{{Op: OpLT, Version: "1.5"}}},
				},
			},
			want:     1,
			contains: "conflicting constraints",
		},
		{
			name: "duplicate across conda and pip",
			env: &Environment{
				Dependencies: []PackageSpec{{Name: "requests"}},
				Pip:          []PackageSpec{{Name: "requests"}},
			},
			want:     1,
			contains: "pip section",
		},
		{
			name: "build pin flagged",
			env: &Environment{
				Dependencies: []PackageSpec{
					{Name: "libgcc", Constraints: []Constraint{{Op: OpMatch, Version: "7.2.0"}}, Build: "h69d50b8_2"},
				},
			},
			want:     1,
			contains: "build-string pin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := Lint(tt.env)
			if len(issues) != tt.want {
				t.Fatalf("Lint() = %v, want %d issue(s)", issues, tt.want)
			}
			if tt.want > 0 && !strings.Contains(issues[0].String(), tt.contains) {
				t.Errorf("Lint() issue %q should contain %q", issues[0], tt.contains)
			}
		})
	}
}
