package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// MessageTypeGetRatings is the only message type the rating API accepts.
const MessageTypeGetRatings = "GET_RATINGS"

// Message is the request envelope posted by the page-side collaborator.
type Message struct {
	Type       string `json:"type"`
	MovieTitle string `json:"movieTitle"`
}

// StatusResponse reports server state.
type StatusResponse struct {
	Running      bool   `json:"running"`
	CacheBackend string `json:"cache_backend"`
	CacheEntries int    `json:"cache_entries"`
}

// ErrorResponse is returned with non-2xx statuses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CacheEntry describes a cached rating in a transport-friendly format.
type CacheEntry struct {
	Key        string  `json:"key"`
	IMDbID     string  `json:"imdbId,omitempty"`
	IMDbURL    string  `json:"imdbUrl,omitempty"`
	IMDbRating *string `json:"imdbRating"`
	IMDbVotes  *string `json:"imdbVotes"`
	CachedAt   string  `json:"cachedAt"`
	AgeSeconds int64   `json:"ageSeconds"`
	Expired    bool    `json:"expired"`
	NoData     bool    `json:"noData"`
}
