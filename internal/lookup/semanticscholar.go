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

	"golang.org/x/time/rate"

	"github.com/biblioflow/biblioflow/internal/record"
)

const (
	// SemanticScholarBaseURL is the Academic Graph paper search endpoint.
	SemanticScholarBaseURL = "https://api.semanticscholar.org/graph/v1/paper/search"

	// s2RateLimit is 1 request per second for unauthenticated use.
	s2RateLimit = 1.0

	// s2SearchFields are the fields requested for search results.
	s2SearchFields = "title,authors,year,venue,externalIds,abstract"
)

// SemanticScholarClient searches papers by free-text query against the
// Semantic Scholar Academic Graph API.
type SemanticScholarClient struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	apiKey     string
}

// S2Option configures a SemanticScholarClient.
type S2Option func(*SemanticScholarClient)

// WithS2BaseURL overrides the API base URL (for testing).
func WithS2BaseURL(u string) S2Option {
	return func(c *SemanticScholarClient) { c.baseURL = u }
}

// WithS2HTTPClient sets a custom HTTP client.
func WithS2HTTPClient(hc *http.Client) S2Option {
	return func(c *SemanticScholarClient) { c.httpClient = hc }
}

// WithS2APIKey sets the API key for authenticated requests.
func WithS2APIKey(key string) S2Option {
	return func(c *SemanticScholarClient) { c.apiKey = key }
}

// NewSemanticScholarClient creates a paper search client.
func NewSemanticScholarClient(opts ...S2Option) *SemanticScholarClient {
	c := &SemanticScholarClient{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(s2RateLimit), 1),
		baseURL:    SemanticScholarBaseURL,
	}

	if key := os.Getenv("S2_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// s2SearchResponse is the subset of the paper search schema consumed here.
type s2SearchResponse struct {
	Total int `json:"total"`
	Data  []struct {
		PaperID string `json:"paperId"`
		Title   string `json:"title"`
		Year    *int   `json:"year"`
		Venue   string `json:"venue"`
		Authors []struct {
			Name string `json:"name"`
		} `json:"authors"`
		ExternalIDs struct {
			DOI string `json:"DOI"`
		} `json:"externalIds"`
		Abstract string `json:"abstract"`
	} `json:"data"`
}

// Search runs a free-text title query and maps the top-ranked result to a
// record with fuzzy confidence. The source's own ranking is trusted; only
// the first element is consumed. Zero results map to ErrNotFound.
func (c *SemanticScholarClient) Search(ctx context.Context, query string) (record.Record, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return record.Record{}, fmt.Errorf("rate limiter: %w", err)
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "1")
	params.Set("fields", s2SearchFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return record.Record{}, fmt.Errorf("creating request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

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
	case resp.StatusCode == http.StatusTooManyRequests:
		return record.Record{}, fmt.Errorf("%w: semantic scholar", ErrRateLimited)
	case resp.StatusCode >= 400:
		return record.Record{}, &APIError{
			Source:     "semanticscholar",
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Payload:    body,
		}
	}

	var search s2SearchResponse
	if err := json.Unmarshal(body, &search); err != nil {
		return record.Record{}, fmt.Errorf("%w: parsing search response: %v", ErrMalformed, err)
	}

	if len(search.Data) == 0 {
		return record.Record{}, fmt.Errorf("%w: query %q", ErrNotFound, query)
	}

	top := search.Data[0]
	rec := record.Record{
		Title:      strings.TrimSpace(top.Title),
		Year:       top.Year,
		Venue:      top.Venue,
		DOI:        top.ExternalIDs.DOI,
		Abstract:   strings.TrimSpace(top.Abstract),
		Confidence: record.ConfidenceFuzzy,
		Raw:        json.RawMessage(body),
	}
	for _, a := range top.Authors {
		given, family := SplitName(a.Name)
		if given == "" && family == "" {
			continue
		}
		rec.Authors = append(rec.Authors, record.Author{Family: family, Given: given})
	}

	if !rec.IsResolved() {
		return record.Record{}, fmt.Errorf("%w: top result has no title", ErrMalformed)
	}
	return rec, nil
}

// nameSuffixes are generational and professional suffixes kept with the
// family name when splitting a display name.
var nameSuffixes = map[string]bool{
	"jr": true, "jr.": true, "sr": true, "sr.": true,
	"ii": true, "iii": true, "iv": true,
}

// SplitName splits a "Given Family" display name. Multi-part surnames
// (van der Waals) split incorrectly; that limitation is inherited from the
// source, which reports display names only.
func SplitName(name string) (given, family string) {
	parts := strings.Fields(strings.TrimSpace(name))
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return "", parts[0]
	}

	last := strings.ToLower(parts[len(parts)-1])
	if nameSuffixes[last] && len(parts) > 2 {
		family = parts[len(parts)-2] + " " + parts[len(parts)-1]
		given = strings.Join(parts[:len(parts)-2], " ")
		return given, family
	}

	return strings.Join(parts[:len(parts)-1], " "), parts[len(parts)-1]
}
