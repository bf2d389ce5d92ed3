// Package record defines the canonical bibliographic record produced by
// metadata resolution.
package record

import (
	"encoding/json"
	"strings"
)

// Confidence indicates how a record was matched to its document.
type Confidence string

const (
	// ConfidenceExact means the record came from an identifier-keyed lookup.
	ConfidenceExact Confidence = "exact"
	// ConfidenceFuzzy means the record came from a ranked text search.
	ConfidenceFuzzy Confidence = "fuzzy"
)

// Author is a single paper author.
type Author struct {
	Family string `json:"family"`
	Given  string `json:"given,omitempty"`
}

// Record is the canonical resolved metadata for a paper.
type Record struct {
	Title   string   `json:"title"`
	Authors []Author `json:"authors,omitempty"`

	// Year is nil when the source reported no publication year.
	Year *int `json:"year,omitempty"`

	Venue    string `json:"venue,omitempty"`
	DOI      string `json:"doi,omitempty"`
	Abstract string `json:"abstract,omitempty"`

	Confidence Confidence `json:"confidence"`

	// Raw is the source payload the record was mapped from, kept for
	// citation rendering and diagnostics.
	Raw json.RawMessage `json:"-"`
}

// IsResolved reports whether the record is usable as a resolution result.
// A record without a title is a lookup artifact, not a resolved record.
func (r Record) IsResolved() bool {
	return strings.TrimSpace(r.Title) != ""
}

// FirstAuthorFamily returns the family name of the first author, or
// "Unknown" when the author list is empty.
func (r Record) FirstAuthorFamily() string {
	if len(r.Authors) == 0 || r.Authors[0].Family == "" {
		return "Unknown"
	}
	return r.Authors[0].Family
}

// AuthorLabel returns the short author string used in filenames:
// one author's family name, "A & B" for two, "A et al." for three or more.
func (r Record) AuthorLabel() string {
	switch len(r.Authors) {
	case 0:
		return "Unknown"
	case 1:
		return r.FirstAuthorFamily()
	case 2:
		return r.Authors[0].Family + " & " + r.Authors[1].Family
	default:
		return r.FirstAuthorFamily() + " et al."
	}
}

// FullName returns "Given Family" with missing parts elided.
func (a Author) FullName() string {
	if a.Given == "" {
		return a.Family
	}
	if a.Family == "" {
		return a.Given
	}
	return a.Given + " " + a.Family
}
