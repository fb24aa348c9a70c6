package store

import "time"

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
)

// Run is one recorded sort run.
type Run struct {
	ID          int64
	StartedAt   time.Time
	FinishedAt  time.Time
	ResultsFile string
	InputRoot   string
	OutputRoot  string
	ImageCount  int
	CopiedCount int
	ErrorCount  int
	Status      string
}

// RunFile is one file copied by a run. Checksum is the xxhash of the copy,
// stored as 16 hex digits, used to verify the file before rollback deletes
// it.
type RunFile struct {
	RunID      int64
	Category   string
	SourcePath string
	DestPath   string
	SizeBytes  int64
	Checksum   string
}
