package megadetector

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadResults parses and validates a batch-output file.
//
// Image paths must be relative: the sorter preserves each image's path under
// the output root, which is impossible to do sensibly with absolute paths.
func LoadResults(path string) (*Results, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results file: %w", err)
	}
	defer f.Close()

	var results Results
	if err := json.NewDecoder(f).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to parse results file %s: %w", path, err)
	}

	if len(results.DetectionCategories) == 0 {
		return nil, fmt.Errorf("results file %s has no detection_categories map", path)
	}

	for i, img := range results.Images {
		if img.File == "" {
			return nil, fmt.Errorf("results file %s: image %d has an empty file path", path, i)
		}
		if PathIsAbs(img.File) {
			return nil, fmt.Errorf("results file %s: image path %s is absolute; only relative paths can be sorted", path, img.File)
		}
	}

	return &results, nil
}

// PathIsAbs reports whether an image path is absolute in either Unix or
// Windows notation. Results files are produced on both, so filepath.IsAbs
// alone is not enough.
func PathIsAbs(p string) bool {
	return len(p) > 1 && (p[0] == '/' || p[1] == ':')
}
