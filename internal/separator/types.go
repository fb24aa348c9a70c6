// Package separator routes detector batch results into per-category folders
// and copies the image files accordingly.
package separator

import "errors"

// Reserved output folders. Images above threshold for more than one category
// go to FolderMultiple; images above threshold for none go to FolderEmpty.
const (
	FolderEmpty    = "empty"
	FolderMultiple = "multiple"
)

// DefaultThreshold is the confidence cutoff used when no per-category
// override applies.
const DefaultThreshold = 0.725

// ErrOutputNotEmpty is returned when the output folder already has contents
// and the caller did not opt in to writing alongside them.
var ErrOutputNotEmpty = errors.New("output folder exists and is not empty (use --allow-existing to proceed)")

// friendlyFolderNames maps detector category names to the folder names users
// actually want to see. Categories without an entry keep their own name.
var friendlyFolderNames = map[string]string{
	"animal":  "animals",
	"person":  "people",
	"vehicle": "vehicles",
}

// Options controls a sort run.
type Options struct {
	// DefaultThreshold applies to any category without an override.
	DefaultThreshold float64

	// CategoryThresholds overrides the default per category name.
	CategoryThresholds map[string]float64

	// Workers bounds the concurrent file copies.
	Workers int

	// AllowExisting permits a non-empty output folder.
	AllowExisting bool

	// DryRun plans and verifies sources without copying anything.
	DryRun bool
}

// DefaultOptions returns the options the CLI starts from.
func DefaultOptions() Options {
	return Options{
		DefaultThreshold: DefaultThreshold,
		Workers:          1,
	}
}

// thresholdFor resolves the effective threshold for a category.
func (o Options) thresholdFor(category string) float64 {
	if t, ok := o.CategoryThresholds[category]; ok {
		return t
	}
	return o.DefaultThreshold
}

// FileRecord describes one copied file.
type FileRecord struct {
	Folder    string
	Source    string
	Dest      string
	SizeBytes int64
	Checksum  uint64
}

// FileError is a per-file failure. File errors do not abort the run; they
// are collected and reported at the end.
type FileError struct {
	File string
	Err  error
}

// Summary is the outcome of an executed plan.
type Summary struct {
	Total   int
	Copied  int
	Counts  map[string]int
	Records []FileRecord
	Errors  []FileError
}
