package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Default file names inside the library directory.
const (
	JSONLFile = "library.jsonl"
	IndexFile = "library.db"
)

// Store is the library of processed papers. The Organizer is its only
// writer; reads may come from any goroutine. All mutation goes through a
// single mutex, which is the single-writer contract.
type Store struct {
	mu        sync.Mutex
	jsonlPath string
	ix        *index
}

// Open opens (or creates) the library in dir and syncs the SQLite index
// to the JSONL contents.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating library directory: %w", err)
	}

	jsonlPath := filepath.Join(dir, JSONLFile)
	entries, err := readEntries(jsonlPath)
	if err != nil {
		return nil, err
	}

	ix, err := openIndex(filepath.Join(dir, IndexFile))
	if err != nil {
		return nil, err
	}
	if err := ix.rebuild(entries); err != nil {
		ix.close()
		return nil, fmt.Errorf("rebuilding index: %w", err)
	}

	return &Store{jsonlPath: jsonlPath, ix: ix}, nil
}

// Close releases the index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ix.close()
}

// Add persists a new entry. The JSONL append is the durable write; the
// index insert follows it so a crash between the two loses only the cache,
// which the next Open rebuilds.
func (s *Store) Add(e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := appendEntry(s.jsonlPath, e); err != nil {
		return err
	}
	if err := s.ix.insert(e); err != nil {
		return fmt.Errorf("updating index: %w", err)
	}
	return nil
}

// GetByPath looks up the entry whose organized file lives at path.
// Returns nil when no entry matches.
func (s *Store) GetByPath(path string) (*Entry, error) {
	return s.ix.getByPath(path)
}

// GetByID looks up an entry by its ID. Returns nil when no entry matches.
func (s *Store) GetByID(id string) (*Entry, error) {
	return s.ix.getByID(id)
}

// All returns every entry in insertion order.
func (s *Store) All() ([]Entry, error) {
	return readEntries(s.jsonlPath)
}

// Active returns the entries that have not been superseded.
func (s *Store) Active() ([]Entry, error) {
	entries, err := s.All()
	if err != nil {
		return nil, err
	}
	out := entries[:0]
	for _, e := range entries {
		if e.Active() {
			out = append(out, e)
		}
	}
	return out, nil
}

// Search runs a full-text query over titles, venues, and authors.
func (s *Store) Search(query string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.ix.search(query, limit)
}

// Count returns the number of entries, superseded included.
func (s *Store) Count() (int, error) {
	entries, err := s.All()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// MarkSuperseded flags the entry oldID as superseded by newID. This is
// the re-resolve contract: the replacement entry is Added first, then the
// old one is flagged; entries are never mutated beyond this flag.
func (s *Store) MarkSuperseded(oldID, newID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := readEntries(s.jsonlPath)
	if err != nil {
		return err
	}

	found := false
	for i := range entries {
		if entries[i].ID == oldID {
			entries[i].SupersededBy = newID
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("entry %s not found", oldID)
	}

	if err := writeEntries(s.jsonlPath, entries); err != nil {
		return err
	}
	return s.ix.markSuperseded(oldID, newID)
}

// Remove deletes an entry from the catalog. The organized file itself is
// untouched; removal is a catalog operation only.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := readEntries(s.jsonlPath)
	if err != nil {
		return err
	}

	kept := entries[:0]
	found := false
	for _, e := range entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return fmt.Errorf("entry %s not found", id)
	}

	if err := writeEntries(s.jsonlPath, kept); err != nil {
		return err
	}
	return s.ix.remove(id)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}
