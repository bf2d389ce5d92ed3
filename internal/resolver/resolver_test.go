package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/biblioflow/biblioflow/internal/extract"
	"github.com/biblioflow/biblioflow/internal/lookup"
	"github.com/biblioflow/biblioflow/internal/record"
)

type stubIdentifier struct {
	rec   record.Record
	err   error
	calls int
}

func (s *stubIdentifier) Lookup(ctx context.Context, doi string) (record.Record, error) {
	s.calls++
	return s.rec, s.err
}

type stubSearch struct {
	rec   record.Record
	err   error
	calls int
}

func (s *stubSearch) Search(ctx context.Context, query string) (record.Record, error) {
	s.calls++
	return s.rec, s.err
}

func intp(n int) *int { return &n }

// doiDoc has a DOI in its window and a usable title on page 1.
func doiDoc() *extract.Document {
	return &extract.Document{
		Path:      "/papers/resnet.pdf",
		Window:    "Deep Residual Learning for Image Recognition\ndoi:10.1109/CVPR.2016.90",
		FirstPage: "Deep Residual Learning for Image Recognition\nKaiming He",
	}
}

func TestResolveDOIExact(t *testing.T) {
	ident := &stubIdentifier{rec: record.Record{
		Title:      "Deep Residual Learning for Image Recognition",
		Year:       intp(2016),
		Confidence: record.ConfidenceExact,
	}}
	search := &stubSearch{}

	rec, err := New(ident, search).Resolve(context.Background(), doiDoc())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Confidence != record.ConfidenceExact {
		t.Errorf("confidence = %q, want exact", rec.Confidence)
	}
	if ident.calls != 1 {
		t.Errorf("identifier calls = %d, want 1", ident.calls)
	}
	if search.calls != 0 {
		t.Errorf("search calls = %d, want 0", search.calls)
	}
}

func TestResolveDOINotFoundFallsBackToTitle(t *testing.T) {
	ident := &stubIdentifier{err: fmt.Errorf("%w: no such work", lookup.ErrNotFound)}
	search := &stubSearch{rec: record.Record{
		Title:      "Deep Residual Learning for Image Recognition",
		Confidence: record.ConfidenceFuzzy,
	}}

	rec, err := New(ident, search).Resolve(context.Background(), doiDoc())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if rec.Confidence != record.ConfidenceFuzzy {
		t.Errorf("confidence = %q, want fuzzy", rec.Confidence)
	}
	if ident.calls != 1 || search.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", ident.calls, search.calls)
	}
}

func TestResolveDOIUnreachableNoFallback(t *testing.T) {
	ident := &stubIdentifier{err: fmt.Errorf("%w: connection refused", lookup.ErrUnreachable)}
	search := &stubSearch{}

	_, err := New(ident, search).Resolve(context.Background(), doiDoc())
	kind, ok := KindOf(err)
	if !ok || kind != NetworkFailure {
		t.Fatalf("kind = %v (ok=%v), want NetworkFailure", kind, ok)
	}
	if search.calls != 0 {
		t.Errorf("search called %d times after transport failure, want 0", search.calls)
	}
}

func TestResolveDOINotFoundNoTitle(t *testing.T) {
	doc := &extract.Document{
		Path:   "/papers/scan.pdf",
		Window: "doi:10.1000/missing",
	}
	ident := &stubIdentifier{err: fmt.Errorf("%w", lookup.ErrNotFound)}
	search := &stubSearch{}

	_, err := New(ident, search).Resolve(context.Background(), doc)
	kind, ok := KindOf(err)
	if !ok || kind != NoMatch {
		t.Fatalf("kind = %v (ok=%v), want NoMatch", kind, ok)
	}
	if search.calls != 0 {
		t.Errorf("search calls = %d, want 0 with no title guess", search.calls)
	}
}

func TestResolveDOIMalformedNoTitle(t *testing.T) {
	doc := &extract.Document{
		Path:   "/papers/scan.pdf",
		Window: "doi:10.1000/broken",
	}
	ident := &stubIdentifier{err: fmt.Errorf("%w: not json", lookup.ErrMalformed)}

	_, err := New(ident, &stubSearch{}).Resolve(context.Background(), doc)
	kind, ok := KindOf(err)
	if !ok || kind != BadResponse {
		t.Fatalf("kind = %v (ok=%v), want BadResponse", kind, ok)
	}
}

func TestResolveTitleOnly(t *testing.T) {
	doc := &extract.Document{
		Path:      "/papers/no-doi.pdf",
		Window:    "Attention Is All You Need And Then Some More Words",
		FirstPage: "Attention Is All You Need And Then Some More Words",
	}
	ident := &stubIdentifier{}
	search := &stubSearch{rec: record.Record{
		Title:      "Attention Is All You Need",
		Confidence: record.ConfidenceFuzzy,
	}}

	rec, err := New(ident, search).Resolve(context.Background(), doc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ident.calls != 0 {
		t.Errorf("identifier calls = %d, want 0", ident.calls)
	}
	if rec.Title != "Attention Is All You Need" {
		t.Errorf("title = %q", rec.Title)
	}
}

func TestResolveTitleSearchUnreachable(t *testing.T) {
	doc := &extract.Document{
		Path:      "/papers/no-doi.pdf",
		Window:    "Attention Is All You Need And Then Some More Words",
		FirstPage: "Attention Is All You Need And Then Some More Words",
	}
	search := &stubSearch{err: fmt.Errorf("%w: connection refused", lookup.ErrUnreachable)}

	_, err := New(&stubIdentifier{}, search).Resolve(context.Background(), doc)
	kind, ok := KindOf(err)
	if !ok || kind != NetworkFailure {
		t.Fatalf("kind = %v (ok=%v), want NetworkFailure", kind, ok)
	}
}

func TestResolveTitleSearchMalformed(t *testing.T) {
	doc := &extract.Document{
		Path:      "/papers/no-doi.pdf",
		Window:    "Attention Is All You Need And Then Some More Words",
		FirstPage: "Attention Is All You Need And Then Some More Words",
	}
	search := &stubSearch{err: fmt.Errorf("%w: not json", lookup.ErrMalformed)}

	_, err := New(&stubIdentifier{}, search).Resolve(context.Background(), doc)
	kind, ok := KindOf(err)
	if !ok || kind != BadResponse {
		t.Fatalf("kind = %v (ok=%v), want BadResponse", kind, ok)
	}
}

func TestResolveDegradedSearchUnreachable(t *testing.T) {
	// The DOI lookup answers not-found, so resolution degrades to a title
	// search, and that search hits a transport failure.
	ident := &stubIdentifier{err: fmt.Errorf("%w", lookup.ErrNotFound)}
	search := &stubSearch{err: fmt.Errorf("%w: timeout", lookup.ErrUnreachable)}

	_, err := New(ident, search).Resolve(context.Background(), doiDoc())
	kind, ok := KindOf(err)
	if !ok || kind != NetworkFailure {
		t.Fatalf("kind = %v (ok=%v), want NetworkFailure", kind, ok)
	}
	if ident.calls != 1 || search.calls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", ident.calls, search.calls)
	}
}

func TestResolveDegradedSearchMalformed(t *testing.T) {
	ident := &stubIdentifier{err: fmt.Errorf("%w", lookup.ErrNotFound)}
	search := &stubSearch{err: fmt.Errorf("%w: html body", lookup.ErrMalformed)}

	_, err := New(ident, search).Resolve(context.Background(), doiDoc())
	kind, ok := KindOf(err)
	if !ok || kind != BadResponse {
		t.Fatalf("kind = %v (ok=%v), want BadResponse", kind, ok)
	}
}

func TestResolveTitleSearchNoMatch(t *testing.T) {
	doc := &extract.Document{
		Path:      "/papers/obscure.pdf",
		Window:    "An Extremely Obscure Workshop Abstract From Nineteen Eighty",
		FirstPage: "An Extremely Obscure Workshop Abstract From Nineteen Eighty",
	}
	search := &stubSearch{err: fmt.Errorf("%w", lookup.ErrNotFound)}

	_, err := New(&stubIdentifier{}, search).Resolve(context.Background(), doc)
	kind, ok := KindOf(err)
	if !ok || kind != NoMatch {
		t.Fatalf("kind = %v (ok=%v), want NoMatch", kind, ok)
	}
}

func TestResolveNoIdentifier(t *testing.T) {
	doc := &extract.Document{Path: "/papers/blank.pdf", Window: "page 1\n"}
	ident := &stubIdentifier{}
	search := &stubSearch{}

	_, err := New(ident, search).Resolve(context.Background(), doc)
	kind, ok := KindOf(err)
	if !ok || kind != NoIdentifier {
		t.Fatalf("kind = %v (ok=%v), want NoIdentifier", kind, ok)
	}
	if ident.calls != 0 || search.calls != 0 {
		t.Errorf("calls = (%d, %d), want (0, 0)", ident.calls, search.calls)
	}

	var rerr *Error
	if !errors.As(err, &rerr) {
		t.Fatalf("error type = %T", err)
	}
	if rerr.Path != "/papers/blank.pdf" {
		t.Errorf("path = %q", rerr.Path)
	}
	if rerr.UserMessage() == "" {
		t.Error("empty user message")
	}
}

func TestKindOfForeignError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf matched a non-resolution error")
	}
	if _, ok := KindOf(nil); ok {
		t.Error("KindOf matched nil")
	}
}
