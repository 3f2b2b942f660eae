package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
)

// Film is a canned lookup/detail answer keyed by the exact lookup query.
type Film struct {
	IMDbID string
	URL    string
	Title  string
	Year   int
	Rating string
	Votes  string
}

// Upstream fakes the lookup and detail services and counts calls.
type Upstream struct {
	lookup *httptest.Server
	detail *httptest.Server

	mu    sync.Mutex
	films map[string]Film
	byID  map[string]Film

	LookupCalls atomic.Int32
	DetailCalls atomic.Int32
}

// NewUpstream starts both fake services; they close with the test.
func NewUpstream(t testing.TB, films map[string]Film) *Upstream {
	t.Helper()
	u := &Upstream{
		films: make(map[string]Film),
		byID:  make(map[string]Film),
	}
	for query, film := range films {
		u.Add(query, film)
	}
	u.lookup = httptest.NewServer(http.HandlerFunc(u.serveLookup))
	u.detail = httptest.NewServer(http.HandlerFunc(u.serveDetail))
	t.Cleanup(u.lookup.Close)
	t.Cleanup(u.detail.Close)
	return u
}

// Add registers a film under a lookup query.
func (u *Upstream) Add(query string, film Film) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.films[query] = film
	u.byID[film.IMDbID] = film
}

// LookupURL is the base URL of the fake lookup service.
func (u *Upstream) LookupURL() string { return u.lookup.URL }

// DetailURL is the base URL of the fake detail service.
func (u *Upstream) DetailURL() string { return u.detail.URL }

func (u *Upstream) serveLookup(w http.ResponseWriter, r *http.Request) {
	u.LookupCalls.Add(1)
	u.mu.Lock()
	film, ok := u.films[r.URL.Query().Get("q")]
	u.mu.Unlock()

	entries := []map[string]any{}
	if ok {
		entry := map[string]any{"#IMDB_ID": film.IMDbID, "#TITLE": film.Title, "#YEAR": film.Year}
		if film.URL != "" {
			entry["#IMDB_URL"] = film.URL
		}
		entries = append(entries, entry)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "description": entries})
}

func (u *Upstream) serveDetail(w http.ResponseWriter, r *http.Request) {
	u.DetailCalls.Add(1)
	u.mu.Lock()
	film, ok := u.byID[r.URL.Query().Get("i")]
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		_ = json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Incorrect IMDb ID."})
		return
	}
	rating, votes := film.Rating, film.Votes
	if rating == "" {
		rating = "N/A"
	}
	if votes == "" {
		votes = "N/A"
	}
	_ = json.NewEncoder(w).Encode(map[string]string{
		"Title":      film.Title,
		"imdbID":     film.IMDbID,
		"imdbRating": rating,
		"imdbVotes":  votes,
		"Response":   "True",
	})
}
