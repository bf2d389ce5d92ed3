// Package watcher monitors a folder for newly dropped PDF files.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay is how long the watcher waits after the last filesystem
// event before scanning, so partially written files settle first.
const debounceDelay = 500 * time.Millisecond

// Watcher emits paths of new PDFs appearing in a directory. Files present
// when the watcher starts form the baseline and are not emitted.
type Watcher struct {
	dir   string
	files chan string
	errs  chan error
	known map[string]bool
}

// New creates a watcher for dir. The directory must exist.
func New(dir string) (*Watcher, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("watch folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch folder %s is not a directory", dir)
	}

	return &Watcher{
		dir:   dir,
		files: make(chan string),
		errs:  make(chan error, 1),
		known: make(map[string]bool),
	}, nil
}

// Files returns the channel of newly detected PDF paths.
func (w *Watcher) Files() <-chan string { return w.files }

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Run watches until the context is cancelled. It closes the Files channel
// on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.files)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}

	// Baseline: whatever is already there does not count as new.
	if err := w.scanBaseline(); err != nil {
		return err
	}

	var debounce *time.Timer
	var debounceC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
				debounceC = debounce.C
			} else {
				debounce.Reset(debounceDelay)
			}

		case <-debounceC:
			debounce = nil
			debounceC = nil
			if err := w.emitNew(ctx); err != nil {
				return err
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}

func (w *Watcher) scanBaseline() error {
	names, err := listPDFs(w.dir)
	if err != nil {
		return err
	}
	for _, name := range names {
		w.known[name] = true
	}
	return nil
}

func (w *Watcher) emitNew(ctx context.Context) error {
	names, err := listPDFs(w.dir)
	if err != nil {
		select {
		case w.errs <- err:
		default:
		}
		return nil
	}

	// Forget names that left the folder, so a file re-dropped under the
	// same name later counts as new again.
	current := make(map[string]bool, len(names))
	for _, name := range names {
		current[name] = true
	}
	for name := range w.known {
		if !current[name] {
			delete(w.known, name)
		}
	}

	for _, name := range names {
		if w.known[name] {
			continue
		}
		path := filepath.Join(w.dir, name)
		if !fileReady(path) {
			// Still being written; the next event cycle retries it.
			continue
		}
		w.known[name] = true
		select {
		case w.files <- path:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func listPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// fileReady probes whether the file can be opened for reading, filtering
// out files still locked by the writer.
func fileReady(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
