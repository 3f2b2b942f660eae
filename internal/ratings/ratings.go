package ratings

import "strings"

// TitleURLPrefix is the canonical IMDb title page prefix used when the lookup
// service omits a URL.
const TitleURLPrefix = "https://www.imdb.com/title/"

// Result is the resolved rating for a movie. Nil pointer fields mean the
// detail service had no data. The JSON names are the collaborator contract.
type Result struct {
	IMDbID     string  `json:"imdbId"`
	IMDbURL    string  `json:"imdbUrl"`
	IMDbRating *string `json:"imdbRating"`
	IMDbVotes  *string `json:"imdbVotes"`
}

// HasRating reports whether a rating value is present.
func (r *Result) HasRating() bool {
	return r != nil && r.IMDbRating != nil
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	out := *r
	if r.IMDbRating != nil {
		v := *r.IMDbRating
		out.IMDbRating = &v
	}
	if r.IMDbVotes != nil {
		v := *r.IMDbVotes
		out.IMDbVotes = &v
	}
	return &out
}

// Match is the best candidate returned by the lookup service.
type Match struct {
	IMDbID string
	URL    string
	Title  string
	Year   int
}

// Details carries the rating and vote count for a known identifier.
type Details struct {
	Rating *string
	Votes  *string
}

// TitleURL synthesizes the canonical page URL for an IMDb identifier.
func TitleURL(imdbID string) string {
	return TitleURLPrefix + strings.TrimSpace(imdbID)
}

// Optional returns nil for empty values and the "N/A" sentinel, otherwise a
// pointer to the trimmed value.
func Optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "N/A") {
		return nil
	}
	return &value
}
