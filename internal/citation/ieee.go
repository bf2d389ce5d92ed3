package citation

import (
	"fmt"
	"strings"

	"github.com/biblioflow/biblioflow/internal/record"
)

// IEEE renders an IEEE-style reference entry.
func IEEE(rec record.Record) string {
	var parts []string

	parts = append(parts, ieeeAuthors(rec.Authors))
	parts = append(parts, fmt.Sprintf("%q,", rec.Title))

	if rec.Venue != "" {
		parts = append(parts, "*"+rec.Venue+"*,")
	}

	year := "n.d."
	if rec.Year != nil {
		year = fmt.Sprintf("%d", *rec.Year)
	}
	parts = append(parts, year+".")

	return strings.Join(parts, " ")
}

func ieeeAuthors(authors []record.Author) string {
	switch len(authors) {
	case 0:
		return "Unknown,"
	case 1:
		return ieeeName(authors[0]) + ","
	case 2:
		return ieeeName(authors[0]) + " and " + ieeeName(authors[1]) + ","
	}

	names := make([]string, 0, len(authors)-1)
	for _, a := range authors[:len(authors)-1] {
		names = append(names, ieeeName(a))
	}
	return strings.Join(names, ", ") + ", and " + ieeeName(authors[len(authors)-1]) + ","
}

// ieeeName formats "G. M. Family".
func ieeeName(a record.Author) string {
	if a.Given == "" {
		return a.Family
	}
	return initials(a.Given) + " " + a.Family
}
