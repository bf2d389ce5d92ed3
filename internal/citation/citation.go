// Package citation renders bibliographic records as citation strings.
// All renderers are pure mappings from record fields to fixed templates;
// missing fields omit their template fragment.
package citation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/biblioflow/biblioflow/internal/record"
)

// Style identifies a citation format.
type Style string

const (
	StyleBibTeX Style = "bibtex"
	StyleAPA7   Style = "apa7"
	StyleIEEE   Style = "ieee"
	StyleRIS    Style = "ris"
)

// Styles lists the supported styles in display order.
var Styles = []Style{StyleBibTeX, StyleAPA7, StyleIEEE, StyleRIS}

// ParseStyle maps a user-supplied style name, accepting common aliases.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bibtex", "bib":
		return StyleBibTeX, nil
	case "apa7", "apa":
		return StyleAPA7, nil
	case "ieee":
		return StyleIEEE, nil
	case "ris":
		return StyleRIS, nil
	default:
		return "", fmt.Errorf("unknown citation style %q (valid: bibtex, apa7, ieee, ris)", s)
	}
}

// Format renders the record in the given style.
func Format(rec record.Record, style Style) (string, error) {
	switch style {
	case StyleBibTeX:
		return BibTeX(rec), nil
	case StyleAPA7:
		return APA7(rec), nil
	case StyleIEEE:
		return IEEE(rec), nil
	case StyleRIS:
		return RIS(rec), nil
	default:
		return "", fmt.Errorf("unknown citation style %q", style)
	}
}

// All renders the record in every style, keyed by style name. Used to
// cache citation strings on library entries.
func All(rec record.Record) map[string]string {
	out := make(map[string]string, len(Styles))
	for _, style := range Styles {
		s, _ := Format(rec, style)
		out[string(style)] = s
	}
	return out
}

var nonAlpha = regexp.MustCompile(`[^a-zA-Z]`)

// Key generates the citation key: first author's family name with
// non-letters stripped, followed by the year (0000 when unknown).
func Key(rec record.Record) string {
	author := nonAlpha.ReplaceAllString(rec.FirstAuthorFamily(), "")
	if author == "" {
		author = "Unknown"
	}
	year := "0000"
	if rec.Year != nil {
		year = fmt.Sprintf("%d", *rec.Year)
	}
	return author + year
}

// initials returns dotted initials for the given-name parts of a name,
// e.g. "John Maynard" -> "J. M."
func initials(given string) string {
	parts := strings.Fields(given)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		r := []rune(p)
		out = append(out, strings.ToUpper(string(r[0]))+".")
	}
	return strings.Join(out, " ")
}
