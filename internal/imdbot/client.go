package imdbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinerate/internal/ratings"
	"cinerate/internal/services"
)

// DefaultBaseURL is the public lookup service endpoint.
const DefaultBaseURL = "https://search.imdbot.workers.dev"

const component = "imdbot"

// Entry is a single match as returned by the lookup service.
type Entry struct {
	IMDbID string `json:"#IMDB_ID"`
	URL    string `json:"#IMDB_URL"`
	Title  string `json:"#TITLE"`
	Year   Year   `json:"#YEAR"`
}

// Response models the lookup service search payload.
type Response struct {
	OK          bool    `json:"ok"`
	Description []Entry `json:"description"`
}

// Year accepts the release year as either a JSON number or a string.
type Year int

// UnmarshalJSON implements json.Unmarshaler.
func (y *Year) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*y = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" {
		*y = 0
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		// Non-numeric years ("2021-2023") are informational only.
		*y = 0
		return nil
	}
	*y = Year(value)
	return nil
}

// Client queries the lookup service for IMDb identifiers.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a lookup client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Search returns the first match for query, or nil when the service reports
// no matches. Transport, status, and payload failures are returned as errors.
func (c *Client) Search(ctx context.Context, query string) (*ratings.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, component, "search", "query must not be empty", nil)
	}
	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "search", "parse lookup url", err)
	}
	params := url.Values{}
	params.Set("q", query)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, component, "search", "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, component, "search", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrStatus, component, "search", fmt.Sprintf("lookup returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrDecode, component, "search", "decode lookup response", err)
	}
	if !payload.OK {
		return nil, services.Wrap(services.ErrDecode, component, "search", "lookup response not ok", nil)
	}
	if len(payload.Description) == 0 {
		return nil, nil
	}

	first := payload.Description[0]
	id := strings.TrimSpace(first.IMDbID)
	if id == "" {
		return nil, services.Wrap(services.ErrDecode, component, "search", "first match has no identifier", nil)
	}
	return &ratings.Match{
		IMDbID: id,
		URL:    strings.TrimSpace(first.URL),
		Title:  strings.TrimSpace(first.Title),
		Year:   int(first.Year),
	}, nil
}
