package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one stable results file.
type Handler func(path string) error

// fileStamp identifies the version of a file that was handled, so rewrites
// get reprocessed and duplicate events do not.
type fileStamp struct {
	modTime time.Time
	size    int64
}

// Watcher monitors a drop directory for detector results files and hands
// each stable file to the handler.
type Watcher struct {
	dir      string
	handler  Handler
	debounce time.Duration

	fsw      *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	mu      sync.Mutex
	pending map[string]time.Time
	seen    map[string]fileStamp
}

// New creates a watcher for the given drop directory.
func New(dir string, handler Handler) (*Watcher, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler cannot be nil")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: not a directory", dir)
	}

	return &Watcher{
		dir:      dir,
		handler:  handler,
		debounce: 2 * time.Second,
		stopCh:   make(chan struct{}),
		pending:  make(map[string]time.Time),
		seen:     make(map[string]fileStamp),
	}, nil
}

// SetDebounce overrides the quiet period a file must survive before it is
// handled. Useful for testing.
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

// Start begins watching. Results files already sitting in the drop
// directory are queued immediately.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		fsw.Close()
		return fmt.Errorf("failed to read %s: %w", w.dir, err)
	}
	now := time.Now()
	w.mu.Lock()
	for _, entry := range entries {
		if !entry.IsDir() && IsResultsFile(entry.Name()) {
			w.pending[filepath.Join(w.dir, entry.Name())] = now
		}
	}
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()
	return nil
}

// Stop halts the watcher, draining any files whose quiet period has not
// elapsed yet. Safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		if w.fsw != nil {
			err = w.fsw.Close()
		}
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !IsResultsFile(filepath.Base(event.Name)) {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watcher: filesystem error: %v\n", err)

		case <-ticker.C:
			w.processReady(false)

		case <-w.stopCh:
			w.processReady(true)
			return
		}
	}
}

// processReady handles every pending file whose quiet period has elapsed.
// With force set, the quiet period is waived (shutdown drain).
func (w *Watcher) processReady(force bool) {
	now := time.Now()

	w.mu.Lock()
	debounce := w.debounce
	var ready []string
	for path, last := range w.pending {
		if force || now.Sub(last) >= debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	sort.Strings(ready)

	for _, path := range ready {
		info, err := os.Stat(path)
		if err != nil {
			// Deleted before its quiet period elapsed.
			continue
		}
		stamp := fileStamp{modTime: info.ModTime(), size: info.Size()}

		w.mu.Lock()
		handled := w.seen[path] == stamp
		w.mu.Unlock()
		if handled {
			continue
		}

		if err := w.handler(path); err != nil {
			fmt.Fprintf(os.Stderr, "watcher: %s: %v\n", path, err)
		}

		// Mark the version handled even on failure; a failing file would
		// otherwise be retried every tick. A rewrite changes the stamp and
		// gets a fresh attempt.
		w.mu.Lock()
		w.seen[path] = stamp
		w.mu.Unlock()
	}
}
