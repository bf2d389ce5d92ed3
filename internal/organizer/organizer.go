// Package organizer applies a resolved record to the filesystem: it
// renames the source PDF into the target directory and catalogs the
// result. Moves never silently overwrite and never leave zero copies of
// the file on disk.
package organizer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/biblioflow/biblioflow/internal/citation"
	"github.com/biblioflow/biblioflow/internal/library"
	"github.com/biblioflow/biblioflow/internal/naming"
	"github.com/biblioflow/biblioflow/internal/record"
)

// ErrorKind classifies organize failures.
type ErrorKind int

const (
	// MoveFailed: the file could not be moved; the original is intact.
	MoveFailed ErrorKind = iota
	// IndexWriteFailed: the file moved but the catalog write failed. The
	// caller must reconcile: the file lives at Target with no entry.
	IndexWriteFailed
)

func (k ErrorKind) String() string {
	if k == IndexWriteFailed {
		return "index-write-failed"
	}
	return "move-failed"
}

// Error is a typed organize failure carrying both paths.
type Error struct {
	Kind   ErrorKind
	Source string
	Target string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s -> %s): %v", e.Kind, e.Source, e.Target, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage maps the error to an actionable message for display.
func (e *Error) UserMessage() string {
	if e.Kind == IndexWriteFailed {
		return fmt.Sprintf("file moved to %s but the library catalog was not updated (original: %s)", e.Target, e.Source)
	}
	return fmt.Sprintf("could not move %s to %s; the original file is untouched", e.Source, e.Target)
}

// Organizer performs collision-safe renames and writes library entries.
// It is the library store's single writer.
type Organizer struct {
	store *library.Store
	copy  bool // copy instead of move, leaving the source in place

	// nameLocks serializes the collision-check-then-write sequence per
	// target name so two resolutions cannot claim the same
	// disambiguated path.
	nameLocks sync.Map // target path (pre-disambiguation) -> *sync.Mutex
}

// Option configures an Organizer.
type Option func(*Organizer)

// WithCopy makes Organize copy the source instead of moving it.
func WithCopy(copyMode bool) Option {
	return func(o *Organizer) { o.copy = copyMode }
}

// New creates an Organizer writing to the given store.
func New(store *library.Store, opts ...Option) *Organizer {
	o := &Organizer{store: store}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TargetName returns the filename the record would organize to, without
// touching the filesystem. Used for previews and dry runs.
func TargetName(rec record.Record, pattern naming.Pattern) string {
	return pattern.Format(rec)
}

// Organize moves sourcePath into targetDir under the pattern-derived name,
// disambiguating collisions with a numeric suffix, and persists a library
// entry. On any move failure the original file remains where it was.
func (o *Organizer) Organize(sourcePath string, rec record.Record, pattern naming.Pattern, targetDir string) (library.Entry, error) {
	if !rec.IsResolved() {
		return library.Entry{}, errors.New("record has no title; refusing to organize")
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return library.Entry{}, &Error{Kind: MoveFailed, Source: sourcePath, Target: targetDir, Err: err}
	}

	base := filepath.Join(targetDir, pattern.Format(rec))
	mu := o.lockFor(base)
	mu.Lock()
	target := base
	if target != sourcePath {
		target = disambiguate(base)
	}

	var err error
	if o.copy {
		err = copyVerify(sourcePath, target)
	} else if target != sourcePath {
		err = moveFile(sourcePath, target)
	}
	mu.Unlock()
	if err != nil {
		return library.Entry{}, &Error{Kind: MoveFailed, Source: sourcePath, Target: target, Err: err}
	}

	entry := library.Entry{
		ID:           uuid.NewString(),
		OriginalName: filepath.Base(sourcePath),
		Path:         target,
		Record:       rec,
		Citations:    citation.All(rec),
		ProcessedAt:  time.Now().UTC(),
	}

	if err := o.store.Add(entry); err != nil {
		// The move already happened; report it distinctly so the caller
		// can reconcile instead of treating this as a failed move.
		return entry, &Error{Kind: IndexWriteFailed, Source: sourcePath, Target: target, Err: err}
	}
	return entry, nil
}

// Reorganize runs the re-resolve flow: organize the file under its new
// record and supersede the old catalog entry.
func (o *Organizer) Reorganize(oldEntry library.Entry, rec record.Record, pattern naming.Pattern, targetDir string) (library.Entry, error) {
	entry, err := o.Organize(oldEntry.Path, rec, pattern, targetDir)
	if err != nil {
		return entry, err
	}
	if err := o.store.MarkSuperseded(oldEntry.ID, entry.ID); err != nil {
		return entry, &Error{Kind: IndexWriteFailed, Source: oldEntry.Path, Target: entry.Path, Err: err}
	}
	return entry, nil
}

func (o *Organizer) lockFor(target string) *sync.Mutex {
	mu, _ := o.nameLocks.LoadOrStore(target, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// disambiguate returns base if free, otherwise the first "name (n).ext"
// that is. Deterministic: the lowest free suffix wins.
func disambiguate(base string) string {
	if _, err := os.Stat(base); os.IsNotExist(err) {
		return base
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// moveFile renames when source and target share a volume and falls back
// to copy-verify-delete across volumes. A failed fallback leaves the
// original in place.
func moveFile(source, target string) error {
	if err := os.Rename(source, target); err == nil {
		return nil
	}
	if err := copyVerify(source, target); err != nil {
		return err
	}
	if err := os.Remove(source); err != nil {
		// Both copies exist; removing the duplicate target keeps the
		// move atomic from the caller's point of view.
		os.Remove(target)
		return fmt.Errorf("removing original after copy: %w", err)
	}
	return nil
}
