package citation

import (
	"fmt"
	"strings"

	"github.com/biblioflow/biblioflow/internal/record"
)

// BibTeX renders the record as a BibTeX entry. Titles are double-braced to
// preserve capitalization; absent fields are omitted entirely rather than
// emitted as empty braces.
func BibTeX(rec record.Record) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("@%s{%s,\n", entryType(rec), Key(rec)))
	b.WriteString(fmt.Sprintf("  title = {{%s}},\n", escapeLatex(rec.Title)))

	if len(rec.Authors) > 0 {
		b.WriteString(fmt.Sprintf("  author = {%s},\n", bibtexAuthors(rec.Authors)))
	}
	if rec.Year != nil {
		b.WriteString(fmt.Sprintf("  year = {%d},\n", *rec.Year))
	}
	if rec.Venue != "" {
		field := "journal"
		if entryType(rec) == "inproceedings" {
			field = "booktitle"
		}
		b.WriteString(fmt.Sprintf("  %s = {%s},\n", field, escapeLatex(rec.Venue)))
	}
	if rec.DOI != "" {
		b.WriteString(fmt.Sprintf("  doi = {%s},\n", rec.DOI))
	}

	b.WriteString("}")
	return b.String()
}

// entryType picks the BibTeX entry type from the venue name.
func entryType(rec record.Record) string {
	venue := strings.ToLower(rec.Venue)
	if strings.Contains(venue, "proceedings") ||
		strings.Contains(venue, "conference") ||
		strings.Contains(venue, "workshop") ||
		strings.Contains(venue, "symposium") {
		return "inproceedings"
	}
	return "article"
}

// bibtexAuthors formats authors as "Family, Given and Family, Given".
func bibtexAuthors(authors []record.Author) string {
	parts := make([]string, 0, len(authors))
	for _, a := range authors {
		if a.Given != "" && a.Family != "" {
			parts = append(parts, a.Family+", "+a.Given)
		} else {
			parts = append(parts, a.FullName())
		}
	}
	return strings.Join(parts, " and ")
}

// escapeLatex escapes characters special to LaTeX. The & must come first
// so later escapes do not double up.
var latexReplacer = strings.NewReplacer(
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

func escapeLatex(s string) string {
	return latexReplacer.Replace(s)
}
