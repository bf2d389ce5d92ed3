// Package extract finds candidate identifiers in raw PDF text.
package extract

import (
	"regexp"
	"strings"
)

// Kind classifies a candidate identifier.
type Kind int

const (
	// KindNone means nothing extractable was found.
	KindNone Kind = iota
	// KindDOI is a DOI-shaped token.
	KindDOI
	// KindTitleGuess is a heuristic title string.
	KindTitleGuess
)

func (k Kind) String() string {
	switch k {
	case KindDOI:
		return "doi"
	case KindTitleGuess:
		return "title-guess"
	default:
		return "none"
	}
}

// Candidate is the extractor's best-effort guess at an identifying token
// or title string for a document.
type Candidate struct {
	Kind  Kind
	Value string
}

// doiPattern matches DOIs: 10.NNNN/suffix with the registrant code being
// 4-9 digits and the suffix drawn from the DOI character class.
var doiPattern = regexp.MustCompile(`(?i)10\.\d{4,9}/[-._;()/:a-z0-9]+`)

// minTitleLen is the shortest line considered a plausible title.
const minTitleLen = 25

// ExtractCandidate scans a text window for a DOI and falls back to a title
// guess. The first DOI match in document order wins; front matter
// conventionally carries the canonical DOI before any references do.
func ExtractCandidate(text string) Candidate {
	if doi := FindDOI(text); doi != "" {
		return Candidate{Kind: KindDOI, Value: doi}
	}
	if title := GuessTitle(text); title != "" {
		return Candidate{Kind: KindTitleGuess, Value: title}
	}
	return Candidate{Kind: KindNone}
}

// FindDOI returns the first DOI-shaped token in the text, trimmed of
// trailing punctuation that is not part of the token, or "" if none.
func FindDOI(text string) string {
	match := doiPattern.FindString(text)
	if match == "" {
		return ""
	}
	return strings.TrimRight(match, ".,;:)")
}

// GuessTitle returns the longest line in the text that looks like a title:
// above the minimum length, not entirely numeric or whitespace, and not
// journal header boilerplate. Deterministic: on equal length the earlier
// line wins.
func GuessTitle(text string) string {
	var best string
	for _, line := range strings.Split(text, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if len(line) < minTitleLen {
			continue
		}
		if isNumericOnly(line) || isBoilerplate(line) {
			continue
		}
		if len(line) > len(best) {
			best = line
		}
	}
	return best
}

func isNumericOnly(line string) bool {
	for _, r := range line {
		switch {
		case r >= '0' && r <= '9':
		case r == ' ', r == '.', r == ',', r == '-', r == '/':
		default:
			return false
		}
	}
	return true
}

// isBoilerplate checks for journal header/footer lines that commonly outrun
// the real title in length.
func isBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "downloaded from") {
		return true
	}
	if strings.Contains(lower, "copyright") || strings.Contains(lower, "all rights reserved") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "this article is licensed") {
		return true
	}
	if strings.HasPrefix(lower, "received") && strings.Contains(lower, "accepted") {
		return true
	}
	return false
}
