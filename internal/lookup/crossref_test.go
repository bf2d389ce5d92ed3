package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/biblioflow/biblioflow/internal/record"
)

const crossrefBody = `{
	"message": {
		"DOI": "10.1038/s41586-024-07051-4",
		"title": ["Example"],
		"container-title": ["Nature"],
		"author": [{"given": "L", "family": "Chen"}],
		"published-print": {"date-parts": [[2024, 2, 1]]}
	}
}`

func TestCrossrefLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/10.1038%2Fs41586-024-07051-4" && r.URL.Path != "/10.1038/s41586-024-07051-4" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(crossrefBody))
	}))
	defer srv.Close()

	c := NewCrossrefClient(WithCrossrefBaseURL(srv.URL))
	rec, err := c.Lookup(context.Background(), "10.1038/s41586-024-07051-4")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	if rec.Title != "Example" {
		t.Errorf("title = %q", rec.Title)
	}
	if rec.Venue != "Nature" {
		t.Errorf("venue = %q", rec.Venue)
	}
	if rec.Year == nil || *rec.Year != 2024 {
		t.Errorf("year = %v, want 2024", rec.Year)
	}
	if len(rec.Authors) != 1 || rec.Authors[0].Family != "Chen" || rec.Authors[0].Given != "L" {
		t.Errorf("authors = %+v", rec.Authors)
	}
	if rec.Confidence != record.ConfidenceExact {
		t.Errorf("confidence = %q, want exact", rec.Confidence)
	}
	if len(rec.Raw) == 0 {
		t.Error("raw payload not retained")
	}
}

func TestCrossrefLookupNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewCrossrefClient(WithCrossrefBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "10.9999/nothing")
	if !IsNotFound(err) {
		t.Errorf("expected not-found, got %v", err)
	}
	if IsUnreachable(err) {
		t.Error("not-found should not read as unreachable")
	}
}

func TestCrossrefLookupMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewCrossrefClient(WithCrossrefBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "10.1000/x")
	if !IsMalformed(err) {
		t.Errorf("expected malformed, got %v", err)
	}
}

func TestCrossrefLookupMissingTitle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"title": []}}`))
	}))
	defer srv.Close()

	c := NewCrossrefClient(WithCrossrefBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "10.1000/x")
	if !IsMalformed(err) {
		t.Errorf("titleless work should be malformed, got %v", err)
	}
}

func TestCrossrefLookupUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewCrossrefClient(WithCrossrefBaseURL(srv.URL))
	_, err := c.Lookup(context.Background(), "10.1000/x")
	if !IsUnreachable(err) {
		t.Errorf("expected unreachable, got %v", err)
	}
}

func TestCrossrefOnlineDateFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {
			"title": ["Preprint Only"],
			"published-online": {"date-parts": [[2021]]}
		}}`))
	}))
	defer srv.Close()

	c := NewCrossrefClient(WithCrossrefBaseURL(srv.URL))
	rec, err := c.Lookup(context.Background(), "10.1000/x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.Year == nil || *rec.Year != 2021 {
		t.Errorf("year = %v, want 2021", rec.Year)
	}
}

func TestCrossrefNoYear(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": {"title": ["Undated Work"]}}`))
	}))
	defer srv.Close()

	c := NewCrossrefClient(WithCrossrefBaseURL(srv.URL))
	rec, err := c.Lookup(context.Background(), "10.1000/x")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if rec.Year != nil {
		t.Errorf("year = %v, want nil", *rec.Year)
	}
}
