package envspec

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSpec(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    PackageSpec
		wantErr bool
	}{
		{
			name:  "bare name",
			input: "pillow",
			want:  PackageSpec{Name: "pillow"},
		},
		{
			name:  "lower bound",
			input: "tensorflow>=1.9.0",
			want: PackageSpec{
				Name:        "tensorflow",
				Constraints: []Constraint{{Op: OpGTE, Version: "1.9.0"}},
			},
		},
		{
			name:  "version range",
			input: "tensorflow>=1.9.0,<2.0",
			want: PackageSpec{
				Name: "tensorflow",
				Constraints: []Constraint{
					{Op: OpGTE, Version: "1.9.0"},
					{Op: OpLT, Version: "2.0"},
				},
			},
		},
		{
			name:  "fuzzy match",
			input: "python=3.7",
			want: PackageSpec{
				Name:        "python",
				Constraints: []Constraint{{Op: OpMatch, Version: "3.7"}},
			},
		},
		{
			name:  "exact pin",
			input: "humanfriendly==4.18",
			want: PackageSpec{
				Name:        "humanfriendly",
				Constraints: []Constraint{{Op: OpEq, Version: "4.18"}},
			},
		},
		{
			name:  "not equal",
			input: "numpy!=1.16.0",
			want: PackageSpec{
				Name:        "numpy",
				Constraints: []Constraint{{Op: OpNE, Version: "1.16.0"}},
			},
		},
		{
			name:  "build string pin",
			input: "libgcc=7.2.0=h69d50b8_2",
			want: PackageSpec{
				Name:        "libgcc",
				Constraints: []Constraint{{Op: OpMatch, Version: "7.2.0"}},
				Build:       "h69d50b8_2",
			},
		},
		{
			name:  "surrounding whitespace",
			input: "  tqdm ",
			want:  PackageSpec{Name: "tqdm"},
		},
		{
			name:    "empty",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "operator without name",
			input:   ">=1.0",
			wantErr: true,
		},
		{
			name:    "dangling operator",
			input:   "tensorflow>=",
			wantErr: true,
		},
		{
			name:    "space in name",
			input:   "not a package",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSpec(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSpec(%q) expected error, got %+v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSpec(%q) failed: %v", tt.input, err)
			}
			if got.String() != tt.want.String() {
				t.Errorf("ParseSpec(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSpecRoundTrip(t *testing.T) {
	inputs := []string{
		"pillow",
		"tensorflow>=1.9.0,<2.0",
		"python=3.7",
		"libgcc=7.2.0=h69d50b8_2",
	}
	for _, input := range inputs {
		spec, err := ParseSpec(input)
		if err != nil {
			t.Fatalf("ParseSpec(%q) failed: %v", input, err)
		}
		if spec.String() != input {
			t.Errorf("round trip of %q = %q", input, spec.String())
		}
	}
}

const detectorManifest = `# Environment for the camera-trap detector.
name: cameratraps-detector
channels:
  - conda-forge
dependencies:
  - python>=3.5
  - tensorflow>=1.9.0,<2.0
  - pillow
  - humanfriendly
  - matplotlib
  - tqdm
  - requests
  - pip
  - pip:
    - jsonpickle
    - azure-storage-blob>=2.1.0
`

func TestParse(t *testing.T) {
	env, err := Parse([]byte(detectorManifest))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}

	if env.Name != "cameratraps-detector" {
		t.Errorf("Name = %q, want cameratraps-detector", env.Name)
	}
	if len(env.Channels) != 1 || env.Channels[0] != "conda-forge" {
		t.Errorf("Channels = %v, want [conda-forge]", env.Channels)
	}
	if len(env.Dependencies) != 8 {
		t.Fatalf("got %d conda dependencies, want 8", len(env.Dependencies))
	}
	if len(env.Pip) != 2 {
		t.Fatalf("got %d pip dependencies, want 2", len(env.Pip))
	}

	tf := env.Find("tensorflow")
	if tf == nil {
		t.Fatal("tensorflow not found in parsed environment")
	}
	if len(tf.Constraints) != 2 {
		t.Fatalf("tensorflow constraints = %v, want 2 entries", tf.Constraints)
	}
	if tf.Constraints[0].Op != OpGTE || tf.Constraints[0].Version != "1.9.0" {
		t.Errorf("tensorflow lower bound = %s, want >=1.9.0", tf.Constraints[0])
	}
	if tf.Constraints[1].Op != OpLT || tf.Constraints[1].Version != "2.0" {
		t.Errorf("tensorflow upper bound = %s, want <2.0", tf.Constraints[1])
	}

	if spec := env.Find("azure-storage-blob"); spec == nil {
		t.Error("pip section entry azure-storage-blob not found")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"invalid yaml", "dependencies: [unclosed"},
		{"bad specifier", "dependencies:\n  - '>=1.0'"},
		{"unknown map key", "dependencies:\n  - conda: [x]"},
		{"pip not a list", "dependencies:\n  - pip: notalist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.input)); err == nil {
				t.Errorf("Parse(%q) expected error, got nil", tt.input)
			}
		})
	}
}

func TestParse_IgnoresUnknownTopLevelKeys(t *testing.T) {
	input := "name: x\nprefix: /opt/conda/envs/x\ndependencies:\n  - pillow\n"
	env, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	if len(env.Dependencies) != 1 || env.Dependencies[0].Name != "pillow" {
		t.Errorf("Dependencies = %v, want [pillow]", env.Dependencies)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "environment.yml")
	if err := os.WriteFile(path, []byte(detectorManifest), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	env, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if env.Name != "cameratraps-detector" {
		t.Errorf("Name = %q, want cameratraps-detector", env.Name)
	}

	// Missing file surfaces as an error, not an empty environment.
	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("Load() on a missing file should return an error")
	}
}

func TestLoad_ErrorNamesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "environment.yml")
	if err := os.WriteFile(path, []byte("dependencies:\n  - '>=broken'\n"), 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() should fail on a malformed specifier")
	}
	if !strings.Contains(err.Error(), "environment.yml") {
		t.Errorf("error %q should name the manifest file", err)
	}
}
