package separator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"
)

// Execute copies every planned file from inputRoot into its category folder
// under outputRoot, preserving the relative path. Files are copied, never
// moved. Missing or unreadable sources become per-file errors in the
// summary; only context cancellation aborts the run.
//
// onProgress, if non-nil, is called once per processed file from worker
// goroutines.
func Execute(ctx context.Context, plan *Plan, inputRoot, outputRoot string, opts Options, onProgress func()) (*Summary, error) {
	if err := checkOutputRoot(outputRoot, opts); err != nil {
		return nil, err
	}

	if !opts.DryRun {
		for _, folder := range plan.Folders {
			if err := os.MkdirAll(filepath.Join(outputRoot, folder), 0755); err != nil {
				return nil, fmt.Errorf("failed to create category folder %s: %w", folder, err)
			}
		}
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	summary := &Summary{
		Total:  len(plan.Entries),
		Counts: make(map[string]int),
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, entry := range plan.Entries {
		entry := entry
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			record, err := copyOne(entry, inputRoot, outputRoot, opts.DryRun)

			mu.Lock()
			if err != nil {
				summary.Errors = append(summary.Errors, FileError{File: entry.RelPath, Err: err})
			} else {
				summary.Records = append(summary.Records, record)
				summary.Counts[entry.Folder]++
				summary.Copied++
			}
			mu.Unlock()

			if onProgress != nil {
				onProgress()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, fmt.Errorf("sort interrupted: %w", err)
	}
	return summary, nil
}

// checkOutputRoot enforces the empty-output rule unless the caller opted out.
func checkOutputRoot(outputRoot string, opts Options) error {
	entries, err := os.ReadDir(outputRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read output folder: %w", err)
	}
	if len(entries) > 0 && !opts.AllowExisting {
		return ErrOutputNotEmpty
	}
	return nil
}

// copyOne copies a single image, hashing it in the same pass so the run can
// be rolled back safely later. In dry-run mode the source is only verified.
func copyOne(entry Entry, inputRoot, outputRoot string, dryRun bool) (FileRecord, error) {
	rel := filepath.FromSlash(entry.RelPath)
	source := filepath.Join(inputRoot, rel)
	dest := filepath.Join(outputRoot, entry.Folder, rel)

	info, err := os.Stat(source)
	if err != nil {
		return FileRecord{}, fmt.Errorf("cannot find file %s: %w", source, err)
	}

	record := FileRecord{
		Folder:    entry.Folder,
		Source:    source,
		Dest:      dest,
		SizeBytes: info.Size(),
	}

	if dryRun {
		return record, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return FileRecord{}, fmt.Errorf("failed to create folder for %s: %w", dest, err)
	}

	src, err := os.Open(source)
	if err != nil {
		return FileRecord{}, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return FileRecord{}, fmt.Errorf("failed to create %s: %w", dest, err)
	}

	digest := xxhash.New()
	if _, err := io.Copy(io.MultiWriter(dst, digest), src); err != nil {
		dst.Close()
		os.Remove(dest)
		return FileRecord{}, fmt.Errorf("failed to copy %s: %w", source, err)
	}
	if err := dst.Close(); err != nil {
		return FileRecord{}, fmt.Errorf("failed to close %s: %w", dest, err)
	}

	record.Checksum = digest.Sum64()
	return record, nil
}

// ChecksumFile hashes a file the same way copies are hashed, for rollback
// verification.
func ChecksumFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return digest.Sum64(), nil
}
