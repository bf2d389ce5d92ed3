package citation

import (
	"fmt"
	"strings"

	"github.com/biblioflow/biblioflow/internal/record"
)

// RIS renders the tagged RIS format consumed by reference managers
// (Zotero, Mendeley, EndNote). Absent fields emit no tag line.
func RIS(rec record.Record) string {
	lines := []string{"TY  - JOUR"}

	lines = append(lines, "TI  - "+rec.Title)

	for _, a := range rec.Authors {
		name := a.Family
		if a.Given != "" {
			name = a.Family + ", " + a.Given
		}
		lines = append(lines, "AU  - "+name)
	}

	if rec.Year != nil {
		lines = append(lines, fmt.Sprintf("PY  - %d", *rec.Year))
	}
	if rec.Venue != "" {
		lines = append(lines, "JO  - "+rec.Venue)
	}
	if rec.DOI != "" {
		lines = append(lines, "DO  - "+rec.DOI)
	}
	if rec.Abstract != "" {
		lines = append(lines, "AB  - "+rec.Abstract)
	}

	lines = append(lines, "ER  - ")
	return strings.Join(lines, "\n")
}

// RISBatch renders multiple records separated by blank lines.
func RISBatch(recs []record.Record) string {
	entries := make([]string, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, RIS(rec))
	}
	return strings.Join(entries, "\n\n")
}
