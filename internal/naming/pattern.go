// Package naming derives filesystem names from bibliographic records using
// user-configurable token patterns.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/biblioflow/biblioflow/internal/record"
)

// Token names accepted in patterns.
const (
	TokenYear    = "year"
	TokenAuthor  = "author"
	TokenTitle   = "title"
	TokenJournal = "journal"
)

const (
	// maxTitleLen bounds the title token; longer titles are cut at a word
	// boundary with an ellipsis.
	maxTitleLen = 100

	// maxStemLen bounds the whole filename stem, excluding the extension.
	maxStemLen = 200
)

// segment is one piece of a parsed pattern: a literal or a token.
type segment struct {
	literal string
	token   string // empty for literals
}

// Pattern is a parsed naming pattern. Immutable after parsing.
type Pattern struct {
	source   string
	segments []segment
}

var tokenRe = regexp.MustCompile(`\{([a-z]+)\}`)

// ParsePattern parses a pattern like "[{year}] {author} - {title}.pdf".
// Unknown tokens are an error; a pattern with no tokens is an error too,
// since it would name every file identically.
func ParsePattern(s string) (Pattern, error) {
	p := Pattern{source: s}

	last := 0
	for _, loc := range tokenRe.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > last {
			p.segments = append(p.segments, segment{literal: s[last:loc[0]]})
		}
		name := s[loc[2]:loc[3]]
		switch name {
		case TokenYear, TokenAuthor, TokenTitle, TokenJournal:
			p.segments = append(p.segments, segment{token: name})
		default:
			return Pattern{}, fmt.Errorf("unknown token {%s} in pattern %q", name, s)
		}
		last = loc[1]
	}
	if last < len(s) {
		p.segments = append(p.segments, segment{literal: s[last:]})
	}

	if !p.hasToken() {
		return Pattern{}, fmt.Errorf("pattern %q contains no tokens", s)
	}
	return p, nil
}

// MustParse parses a pattern and panics on error. For built-in presets.
func MustParse(s string) Pattern {
	p, err := ParsePattern(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original pattern text.
func (p Pattern) String() string { return p.source }

func (p Pattern) hasToken() bool {
	for _, seg := range p.segments {
		if seg.token != "" {
			return true
		}
	}
	return false
}

// marker stands in for an empty token value during rendering so the
// cleanup pass can collapse its adjacent separators.
const marker = "\x00"

var (
	emptyBracketRe = regexp.MustCompile(`\[\s*\x00\s*\]|\(\s*\x00\s*\)|\{\s*\x00\s*\}`)
	markerTrailSep = regexp.MustCompile(`\x00\s*[-–_,:]+\s*`)
	markerLeadSep  = regexp.MustCompile(`\s*[-–_,:]+\s*\x00`)
	markerBare     = regexp.MustCompile(`\x00`)
	multiSpaceRe   = regexp.MustCompile(`\s+`)
	spaceBeforeDot = regexp.MustCompile(`\s+\.`)
)

// Format renders the record through the pattern. Missing optional fields
// render as empty segments with adjacent separators collapsed; reserved
// filesystem characters in field values are substituted. Pure and
// deterministic: the same record always yields the same name.
func (p Pattern) Format(rec record.Record) string {
	var b strings.Builder
	for _, seg := range p.segments {
		if seg.token == "" {
			b.WriteString(seg.literal)
			continue
		}
		v := tokenValue(seg.token, rec)
		if v == "" {
			b.WriteString(marker)
		} else {
			b.WriteString(Sanitize(v))
		}
	}

	out := b.String()
	out = emptyBracketRe.ReplaceAllString(out, "")
	out = markerTrailSep.ReplaceAllString(out, "")
	out = markerLeadSep.ReplaceAllString(out, "")
	out = markerBare.ReplaceAllString(out, "")
	out = multiSpaceRe.ReplaceAllString(out, " ")
	out = spaceBeforeDot.ReplaceAllString(out, ".")
	out = strings.Trim(out, " -_")

	return limitStem(out)
}

func tokenValue(token string, rec record.Record) string {
	switch token {
	case TokenYear:
		if rec.Year == nil {
			return ""
		}
		return strconv.Itoa(*rec.Year)
	case TokenAuthor:
		if len(rec.Authors) == 0 {
			return ""
		}
		return rec.AuthorLabel()
	case TokenTitle:
		return truncateWords(rec.Title, maxTitleLen)
	case TokenJournal:
		return rec.Venue
	default:
		return ""
	}
}

// reservedReplacer substitutes the characters reserved on common
// filesystems. Each gets a visually close safe equivalent; nothing is
// truncated.
var reservedReplacer = strings.NewReplacer(
	`\`, "-",
	"/", "-",
	":", "-",
	"*", "",
	"?", "",
	`"`, "'",
	"<", "(",
	">", ")",
	"|", "-",
)

// Sanitize makes a field value safe for use inside a filename.
func Sanitize(s string) string {
	s = reservedReplacer.Replace(s)
	s = multiSpaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// truncateWords cuts s at a word boundary at or below max runes, appending
// an ellipsis when anything was dropped.
func truncateWords(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := s[:max]
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "..."
}

// limitStem bounds the filename stem while preserving the extension.
func limitStem(name string) string {
	ext := ""
	if idx := strings.LastIndex(name, "."); idx > 0 {
		ext = name[idx:]
		name = name[:idx]
	}
	if len(name) > maxStemLen {
		name = strings.TrimSpace(truncateWords(name, maxStemLen))
	}
	return name + ext
}
