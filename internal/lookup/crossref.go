// Package lookup provides clients for the external bibliographic sources.
// Each client normalizes its source's response shape into a record.Record
// at the boundary; source-specific shapes never leak past this package.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/biblioflow/biblioflow/internal/record"
)

const (
	// CrossrefBaseURL is the Crossref REST API works endpoint base.
	CrossrefBaseURL = "https://api.crossref.org/works"

	// crossrefRateLimit follows the Crossref polite-pool guidance.
	crossrefRateLimit = 10.0

	// DefaultTimeout bounds a single lookup request.
	DefaultTimeout = 15 * time.Second
)

// CrossrefClient looks up works by DOI against the Crossref REST API.
type CrossrefClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// CrossrefOption configures a CrossrefClient.
type CrossrefOption func(*CrossrefClient)

// WithCrossrefBaseURL overrides the API base URL (for testing).
func WithCrossrefBaseURL(u string) CrossrefOption {
	return func(c *CrossrefClient) { c.baseURL = u }
}

// WithCrossrefHTTPClient sets a custom HTTP client.
func WithCrossrefHTTPClient(hc *http.Client) CrossrefOption {
	return func(c *CrossrefClient) { c.httpClient = hc }
}

// WithMailto sets the contact address sent with requests, which places the
// client in Crossref's polite pool.
func WithMailto(addr string) CrossrefOption {
	return func(c *CrossrefClient) { c.mailto = addr }
}

// NewCrossrefClient creates a Crossref works client.
func NewCrossrefClient(opts ...CrossrefOption) *CrossrefClient {
	c := &CrossrefClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(crossrefRateLimit), 1),
		baseURL:    CrossrefBaseURL,
	}

	if addr := os.Getenv("CROSSREF_MAILTO"); addr != "" {
		c.mailto = addr
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// crossrefWork is the subset of the Crossref message schema the mapper
// consumes. Absent fields stay zero-valued and map to unset record fields.
type crossrefWork struct {
	Message struct {
		Title          []string `json:"title"`
		ContainerTitle []string `json:"container-title"`
		Abstract       string   `json:"abstract"`
		DOI            string   `json:"DOI"`
		Author         []struct {
			Given  string `json:"given"`
			Family string `json:"family"`
		} `json:"author"`
		PublishedPrint struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"published-print"`
		PublishedOnline struct {
			DateParts [][]int `json:"date-parts"`
		} `json:"published-online"`
	} `json:"message"`
}

// Lookup fetches the work registered under the given DOI and maps it to a
// record with exact confidence. A 404 maps to ErrNotFound; transport
// failures map to ErrUnreachable; unparseable bodies map to ErrMalformed.
func (c *CrossrefClient) Lookup(ctx context.Context, doi string) (record.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return record.Record{}, fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL + "/" + url.PathEscape(doi)
	if c.mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return record.Record{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return record.Record{}, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return record.Record{}, fmt.Errorf("%w: reading body: %v", ErrUnreachable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return record.Record{}, fmt.Errorf("%w: DOI %s", ErrNotFound, doi)
	case resp.StatusCode == http.StatusTooManyRequests:
		return record.Record{}, fmt.Errorf("%w: crossref", ErrRateLimited)
	case resp.StatusCode >= 400:
		return record.Record{}, &APIError{
			Source:     "crossref",
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Payload:    body,
		}
	}

	var work crossrefWork
	if err := json.Unmarshal(body, &work); err != nil {
		return record.Record{}, fmt.Errorf("%w: parsing crossref response: %v", ErrMalformed, err)
	}

	rec := mapCrossrefWork(work, doi, body)
	if !rec.IsResolved() {
		return record.Record{}, fmt.Errorf("%w: crossref work has no title", ErrMalformed)
	}
	return rec, nil
}

// mapCrossrefWork normalizes a Crossref message into the canonical record.
func mapCrossrefWork(work crossrefWork, doi string, raw []byte) record.Record {
	msg := work.Message

	rec := record.Record{
		DOI:        doi,
		Abstract:   strings.TrimSpace(msg.Abstract),
		Confidence: record.ConfidenceExact,
		Raw:        json.RawMessage(raw),
	}
	if msg.DOI != "" {
		rec.DOI = msg.DOI
	}
	if len(msg.Title) > 0 {
		rec.Title = strings.TrimSpace(msg.Title[0])
	}
	if len(msg.ContainerTitle) > 0 {
		rec.Venue = msg.ContainerTitle[0]
	}

	for _, a := range msg.Author {
		if a.Family == "" && a.Given == "" {
			continue
		}
		rec.Authors = append(rec.Authors, record.Author{Family: a.Family, Given: a.Given})
	}

	// Print date takes precedence over online date, matching Crossref's
	// own display convention.
	if year, ok := firstDatePart(msg.PublishedPrint.DateParts); ok {
		rec.Year = &year
	} else if year, ok := firstDatePart(msg.PublishedOnline.DateParts); ok {
		rec.Year = &year
	}

	return rec
}

func firstDatePart(parts [][]int) (int, bool) {
	if len(parts) == 0 || len(parts[0]) == 0 {
		return 0, false
	}
	return parts[0][0], true
}
