// Package resolver orchestrates identifier extraction and source lookups
// into a single canonical record per document.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/biblioflow/biblioflow/internal/extract"
	"github.com/biblioflow/biblioflow/internal/lookup"
	"github.com/biblioflow/biblioflow/internal/record"
)

// ErrorKind classifies terminal resolution outcomes.
type ErrorKind int

const (
	// NoIdentifier: nothing extractable from the document. A property of
	// the input, not a failure of the system.
	NoIdentifier ErrorKind = iota
	// NoMatch: the sources answered and nothing matched.
	NoMatch
	// NetworkFailure: a source was unreachable; the result is unknown.
	NetworkFailure
	// BadResponse: a source violated its wire contract.
	BadResponse
)

func (k ErrorKind) String() string {
	switch k {
	case NoIdentifier:
		return "no-identifier"
	case NoMatch:
		return "no-match"
	case NetworkFailure:
		return "network-failure"
	case BadResponse:
		return "bad-response"
	default:
		return "unknown"
	}
}

// Error is a typed resolution failure.
type Error struct {
	Kind ErrorKind
	Path string // document path, when known
	Err  error  // underlying cause, may be nil for NoIdentifier/NoMatch
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("resolving %s: %s", e.Path, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// UserMessage maps the error to an actionable message for display.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case NoIdentifier:
		return "no DOI or title found in this PDF; edit metadata manually"
	case NoMatch:
		return "no match found for this paper; edit metadata manually"
	case NetworkFailure:
		return "metadata source unreachable; check your connection and retry"
	case BadResponse:
		return "unexpected response from metadata source"
	default:
		return e.Error()
	}
}

// KindOf extracts the resolution error kind; ok is false for other errors.
func KindOf(err error) (ErrorKind, bool) {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind, true
	}
	return 0, false
}

// IdentifierClient looks up a record by DOI with exact confidence.
type IdentifierClient interface {
	Lookup(ctx context.Context, doi string) (record.Record, error)
}

// SearchClient looks up a record by free-text query with fuzzy confidence.
type SearchClient interface {
	Search(ctx context.Context, query string) (record.Record, error)
}

// Resolver drives the extractor and source clients under the fallback
// policy: DOI lookup first, degrading to title search when the DOI lookup
// answers not-found or malformed, and surfacing transport failures
// immediately without falling back.
type Resolver struct {
	identifier IdentifierClient
	search     SearchClient
	timeout    time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTimeout sets the per-lookup timeout. Exceeding it is treated as the
// source being unreachable.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) { r.timeout = d }
}

// New creates a Resolver over the two source clients.
func New(identifier IdentifierClient, search SearchClient, opts ...Option) *Resolver {
	r := &Resolver{
		identifier: identifier,
		search:     search,
		timeout:    lookup.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve produces exactly one canonical record for the document, or a
// typed *Error. Concurrent resolution of the same document is the caller's
// responsibility to prevent; nothing is deduplicated here.
func (r *Resolver) Resolve(ctx context.Context, doc *extract.Document) (record.Record, error) {
	candidate := doc.Candidate()

	switch candidate.Kind {
	case extract.KindDOI:
		rec, err := r.lookupDOI(ctx, candidate.Value)
		if err == nil {
			return rec, nil
		}
		if lookup.IsUnreachable(err) {
			// A transport failure says nothing about the identifier;
			// falling back would waste a request and mask the condition.
			return record.Record{}, &Error{Kind: NetworkFailure, Path: doc.Path, Err: err}
		}
		// NotFound or Malformed: degrade to a title search if one is
		// possible rather than aborting outright.
		if title := doc.TitleGuess(); title != "" {
			return r.searchTitle(ctx, doc.Path, title)
		}
		if lookup.IsNotFound(err) {
			return record.Record{}, &Error{Kind: NoMatch, Path: doc.Path, Err: err}
		}
		return record.Record{}, &Error{Kind: BadResponse, Path: doc.Path, Err: err}

	case extract.KindTitleGuess:
		return r.searchTitle(ctx, doc.Path, candidate.Value)

	default:
		return record.Record{}, &Error{Kind: NoIdentifier, Path: doc.Path}
	}
}

func (r *Resolver) lookupDOI(ctx context.Context, doi string) (record.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.identifier.Lookup(ctx, doi)
}

func (r *Resolver) searchTitle(ctx context.Context, path, title string) (record.Record, error) {
	tctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rec, err := r.search.Search(tctx, title)
	if err == nil {
		return rec, nil
	}

	switch {
	case lookup.IsNotFound(err):
		return record.Record{}, &Error{Kind: NoMatch, Path: path, Err: err}
	case lookup.IsUnreachable(err):
		return record.Record{}, &Error{Kind: NetworkFailure, Path: path, Err: err}
	default:
		return record.Record{}, &Error{Kind: BadResponse, Path: path, Err: err}
	}
}

// ResolvePath reads the document at path and resolves it.
func (r *Resolver) ResolvePath(ctx context.Context, path string) (record.Record, error) {
	doc, err := extract.ReadDocument(path)
	if err != nil {
		return record.Record{}, fmt.Errorf("reading document: %w", err)
	}
	return r.Resolve(ctx, doc)
}
