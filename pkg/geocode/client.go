// Package geocode provides the batch locality geocoding client the
// geographic resolver falls back to when a county cannot be matched
// directly against the FIPS reference.
package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// DefaultBatchSize is how many localities go into one service call.
const DefaultBatchSize = 100

// LocalityInput is one (locality, state) pair to resolve.
type LocalityInput struct {
	Name  string `json:"locality_name"`
	State string `json:"state"`
}

// Result is the service's classification of one locality. A zero
// Result means not found.
type Result struct {
	LocalityName     string `json:"locality_name"`
	LocalityType     string `json:"locality_type"` // "city", "county", "town", or ""
	ContainingCounty string `json:"containing_county"`
}

// Found reports whether the service matched the locality at all.
func (r Result) Found() bool {
	return r.LocalityName != "" || r.ContainingCounty != ""
}

// Client geocodes batches of localities. Results align with inputs by
// index; misses are zero Results.
type Client interface {
	BatchLookup(ctx context.Context, batch []LocalityInput) ([]Result, error)
}

// Option configures the HTTP client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client (timeouts included).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for service calls.
func WithRateLimit(rps float64) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps))
	}
}

// WithAPIKey sets the service API key.
func WithAPIKey(key string) Option {
	return func(c *httpClient) {
		c.apiKey = key
	}
}

type httpClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates an HTTP geocoding client for the given batch
// endpoint.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// wire types for the batch endpoint.
type batchRequest struct {
	Country    string          `json:"country"`
	Localities []LocalityInput `json:"localities"`
}

type batchResponse struct {
	Results []wireResult `json:"results"`
}

type wireResult struct {
	LocalityName string `json:"locality_name"`
	LocalityType string `json:"locality_type"`
	County       string `json:"containing_county"`
}

// BatchLookup posts one batch to the service and classifies each
// response by specificity: a city/place match is "city", a county
// match is "county" and contains itself, anything else is "town" or
// left empty.
func (c *httpClient) BatchLookup(ctx context.Context, batch []LocalityInput) ([]Result, error) {
	if len(batch) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "geocode: rate limit")
	}

	payload, err := json.Marshal(batchRequest{Country: "US", Localities: batch})
	if err != nil {
		return nil, eris.Wrap(err, "geocode: marshal batch")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, eris.Wrap(err, "geocode: build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("geocode: service returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "geocode: read body")
	}

	var wire batchResponse
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, eris.Wrap(err, "geocode: parse response")
	}
	if len(wire.Results) != len(batch) {
		return nil, eris.Errorf("geocode: got %d results for %d inputs", len(wire.Results), len(batch))
	}

	out := make([]Result, len(batch))
	for i, w := range wire.Results {
		out[i] = classify(w)
	}
	return out, nil
}

// classify maps the service's admin types onto the canonical locality
// types.
func classify(w wireResult) Result {
	r := Result{
		LocalityName:     strings.TrimSpace(w.LocalityName),
		ContainingCounty: strings.TrimSpace(w.County),
	}
	switch strings.ToLower(strings.TrimSpace(w.LocalityType)) {
	case "city", "place", "locality":
		r.LocalityType = "city"
	case "county":
		r.LocalityType = "county"
		if r.ContainingCounty == "" {
			r.ContainingCounty = r.LocalityName
		}
	case "":
		if r.LocalityName == "" && r.ContainingCounty == "" {
			return Result{} // not found
		}
	default:
		r.LocalityType = "town"
	}
	return r
}
