// Package config provides configuration file parsing for camsort.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Dir returns the camsort config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/camsort if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "camsort"), nil
}

// Thresholds holds confidence threshold overrides declared by the user.
// Default is the fallback threshold ("default=0.8" in the file); Categories
// maps category names to their own cutoffs. A Default of 0 means the file
// declared none.
type Thresholds struct {
	Default    float64
	Categories map[string]float64
}

// LoadThresholds reads the thresholds file at {dir}/thresholds and returns
// the parsed config. If the file does not exist, an empty config is
// returned without an error. Invalid or malformed lines are silently
// skipped.
func LoadThresholds(dir string) (*Thresholds, error) {
	cfg := &Thresholds{
		Categories: make(map[string]float64),
	}

	path := filepath.Join(dir, "thresholds")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Expect exactly one "=" separating category from threshold.
		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue // no "=" or "=" is first character — invalid, skip
		}

		category := strings.TrimSpace(line[:idx])
		rawValue := strings.TrimSpace(line[idx+1:])
		if category == "" || rawValue == "" {
			continue
		}

		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil || value <= 0 || value >= 1 {
			continue // thresholds are confidences, open interval (0, 1)
		}

		if category == "default" {
			cfg.Default = value
		} else {
			cfg.Categories[category] = value
		}
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
