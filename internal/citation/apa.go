package citation

import (
	"fmt"
	"strings"

	"github.com/biblioflow/biblioflow/internal/record"
)

// apaMaxAuthors is the APA 7th edition author threshold: beyond 20
// authors, the list shows the first 19, an ellipsis, and the final author.
const apaMaxAuthors = 20

// APA7 renders an APA 7th edition reference entry.
func APA7(rec record.Record) string {
	var parts []string

	year := "(n.d.)"
	if rec.Year != nil {
		year = fmt.Sprintf("(%d)", *rec.Year)
	}

	parts = append(parts, fmt.Sprintf("%s %s. %s.", apaAuthors(rec.Authors), year, rec.Title))

	if rec.Venue != "" {
		parts = append(parts, "*"+rec.Venue+"*.")
	}
	if rec.DOI != "" {
		parts = append(parts, "https://doi.org/"+rec.DOI)
	}

	return strings.Join(parts, " ")
}

func apaAuthors(authors []record.Author) string {
	switch len(authors) {
	case 0:
		return "Unknown"
	case 1:
		return apaName(authors[0])
	case 2:
		return apaName(authors[0]) + ", & " + apaName(authors[1])
	}

	if len(authors) <= apaMaxAuthors {
		names := make([]string, 0, len(authors))
		for _, a := range authors[:len(authors)-1] {
			names = append(names, apaName(a))
		}
		return strings.Join(names, ", ") + ", & " + apaName(authors[len(authors)-1])
	}

	// 21+ authors: first 19, ellipsis, final author, no ampersand.
	names := make([]string, 0, 19)
	for _, a := range authors[:19] {
		names = append(names, apaName(a))
	}
	return strings.Join(names, ", ") + ", ... " + apaName(authors[len(authors)-1])
}

// apaName formats "Family, G. M."
func apaName(a record.Author) string {
	if a.Given == "" {
		return a.Family
	}
	return a.Family + ", " + initials(a.Given)
}
