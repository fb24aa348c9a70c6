package watcher

import "strings"

// IsResultsFile reports whether a file name looks like a detector results
// file worth handling. Hidden files, editor temp files, and non-JSON
// files are ignored.
func IsResultsFile(name string) bool {
	if name == "" || strings.HasPrefix(name, ".") {
		return false
	}
	if strings.HasSuffix(name, "~") || strings.HasSuffix(name, ".tmp") {
		return false
	}
	return strings.HasSuffix(strings.ToLower(name), ".json")
}
