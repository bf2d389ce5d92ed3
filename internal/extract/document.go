package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// textWindowPages is how many leading pages are scanned for identifiers.
// DOIs and titles live in the front matter; later pages only add OCR noise.
const textWindowPages = 2

// Document is an opaque handle to a PDF plus the extracted text window used
// for identifier extraction. It is transient: callers discard it once
// resolution completes.
type Document struct {
	Path string

	// Window is the plain text of the first pages, joined with newlines.
	Window string

	// FirstPage is the plain text of page 1 only, used for title guessing.
	FirstPage string
}

// ReadDocument opens a PDF and extracts its text window.
func ReadDocument(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	maxPages := textWindowPages
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	var window strings.Builder
	var firstPage string
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page that fails text extraction is skipped, not fatal;
			// scanned pages without a text layer hit this constantly.
			continue
		}
		if i == 1 {
			firstPage = text
		}
		window.WriteString(text)
		window.WriteString("\n")
	}

	return &Document{
		Path:      path,
		Window:    window.String(),
		FirstPage: firstPage,
	}, nil
}

// Candidate runs identifier extraction: DOIs are searched across the whole
// text window, but the title heuristic only trusts page 1. A long line on a
// later page is body text, not a title.
func (d *Document) Candidate() Candidate {
	if doi := FindDOI(d.Window); doi != "" {
		return Candidate{Kind: KindDOI, Value: doi}
	}
	if title := GuessTitle(d.FirstPage); title != "" {
		return Candidate{Kind: KindTitleGuess, Value: title}
	}
	return Candidate{Kind: KindNone}
}

// TitleGuess derives a title guess from page 1, even when the window also
// contains a DOI. The resolver uses this to degrade from a failed DOI
// lookup to a text search.
func (d *Document) TitleGuess() string {
	return GuessTitle(d.FirstPage)
}
