// Package library persists the catalog of processed papers. The JSONL file
// is the durable source of truth; a SQLite index rebuilt from it serves
// point lookups and full-text search.
package library

import (
	"time"

	"github.com/biblioflow/biblioflow/internal/record"
)

// Entry is one processed paper. Entries are immutable after creation;
// a user-initiated re-resolve creates a new entry and marks the old one
// superseded rather than mutating it.
type Entry struct {
	ID           string        `json:"id"`
	OriginalName string        `json:"original_name"`
	Path         string        `json:"path"`
	Record       record.Record `json:"record"`

	// Citations caches the rendered citation strings by style name.
	Citations map[string]string `json:"citations,omitempty"`

	ProcessedAt  time.Time `json:"processed_at"`
	SupersededBy string    `json:"superseded_by,omitempty"`
}

// Active reports whether the entry is current (not superseded).
func (e Entry) Active() bool {
	return e.SupersededBy == ""
}
