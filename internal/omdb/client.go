package omdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinerate/internal/ratings"
	"cinerate/internal/services"
)

// DefaultBaseURL is the public detail service endpoint.
const DefaultBaseURL = "https://www.omdbapi.com"

// DefaultAPIKey is the shared demo key the detail service accepts.
const DefaultAPIKey = "trilogy"

const component = "omdb"

// Response models the subset of the detail payload that carries ratings.
type Response struct {
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	IMDbID     string `json:"imdbID"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
	Response   string `json:"Response"`
	Error      string `json:"Error"`
}

// Client fetches rating details by IMDb identifier.
type Client struct {
	apiKey     string
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

// New creates a detail client. Empty arguments fall back to DefaultBaseURL
// and DefaultAPIKey.
func New(baseURL, apiKey string, opts ...Option) *Client {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		apiKey = DefaultAPIKey
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// FetchDetails returns the rating and vote count for imdbID. Fields the
// service reports as "N/A" come back nil. A payload with Response "False"
// yields services.ErrNotFound.
func (c *Client) FetchDetails(ctx context.Context, imdbID string) (*ratings.Details, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, services.Wrap(services.ErrValidation, component, "fetch details", "imdb id must not be empty", nil)
	}
	endpoint, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, component, "fetch details", "parse detail url", err)
	}
	params := url.Values{}
	params.Set("i", imdbID)
	params.Set("apikey", c.apiKey)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, component, "fetch details", "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrTransport, component, "fetch details", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrStatus, component, "fetch details", fmt.Sprintf("detail returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload Response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrDecode, component, "fetch details", "decode detail response", err)
	}
	if strings.EqualFold(strings.TrimSpace(payload.Response), "false") {
		message := strings.TrimSpace(payload.Error)
		if message == "" {
			message = "detail service reported no result"
		}
		return nil, services.Wrap(services.ErrNotFound, component, "fetch details", message, nil)
	}

	return &ratings.Details{
		Rating: ratings.Optional(payload.IMDbRating),
		Votes:  ratings.Optional(payload.IMDbVotes),
	}, nil
}
