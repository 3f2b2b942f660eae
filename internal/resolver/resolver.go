package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"cinerate/internal/logging"
	"cinerate/internal/ratings"
	"cinerate/internal/services"
	"cinerate/internal/titles"
)

// Searcher maps a candidate query to the best external match.
type Searcher interface {
	Search(ctx context.Context, query string) (*ratings.Match, error)
}

// DetailFetcher retrieves rating details for an IMDb identifier.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, imdbID string) (*ratings.Details, error)
}

// Resolver walks title candidates through lookup, then fetches details for
// the first match.
type Resolver struct {
	search  Searcher
	details DetailFetcher
	logger  *slog.Logger
}

// New constructs a Resolver. A nil logger discards output.
func New(search Searcher, details DetailFetcher, logger *slog.Logger) *Resolver {
	return &Resolver{
		search:  search,
		details: details,
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}
}

// Resolve returns the rating for raw, or nil when no candidate matches.
// Lookup and detail failures never escape: a failed lookup counts as no match
// for that candidate and a failed detail fetch leaves rating and votes nil.
//
// settled reports whether the outcome is an answer from the services rather
// than the product of a failure. It is false when no candidate matched and at
// least one lookup failed, when a detail fetch failed for a reason other than
// an unknown id, or when ctx ended during resolution. Only settled outcomes
// are safe to cache.
func (r *Resolver) Resolve(ctx context.Context, raw string) (result *ratings.Result, settled bool) {
	logger := logging.WithContext(ctx, r.logger)

	candidates := titles.Candidates(raw)
	if len(candidates) == 0 {
		logger.Debug("no candidates for title", logging.String("raw_title", raw))
		return nil, true
	}

	var match *ratings.Match
	failures := 0
	for idx, candidate := range candidates {
		if ctx.Err() != nil {
			logger.Debug("resolution cancelled", logging.Int("attempt", idx+1), logging.Error(ctx.Err()))
			return nil, false
		}
		found, err := r.search.Search(ctx, candidate)
		if err != nil {
			failures++
			logging.WarnWithContext(logger, "lookup failed for candidate", "lookup_failed",
				logging.String("candidate", candidate),
				logging.Int("attempt", idx+1),
				logging.String(logging.FieldErrorKind, services.Kind(err)),
				logging.String(logging.FieldErrorHint, "check lookup service reachability"),
				logging.String(logging.FieldImpact, "trying next candidate"),
				logging.Error(err),
			)
			continue
		}
		if found == nil || strings.TrimSpace(found.IMDbID) == "" {
			logger.Debug("candidate returned no match",
				logging.String("candidate", candidate),
				logging.Int("attempt", idx+1),
			)
			continue
		}
		match = found
		logger.Info("title matched",
			logging.Args(append(logging.DecisionAttrs("candidate_match", candidate, "first candidate with a lookup match"),
				logging.String("imdb_id", found.IMDbID),
				logging.Int("attempt", idx+1),
			)...)...,
		)
		break
	}
	if match == nil {
		if failures > 0 || ctx.Err() != nil {
			logger.Info("no match found but lookups failed; outcome not final",
				logging.Int("candidates", len(candidates)),
				logging.Int("failed_lookups", failures),
			)
			return nil, false
		}
		logger.Info("no match for any candidate", logging.Int("candidates", len(candidates)))
		return nil, true
	}

	result = &ratings.Result{
		IMDbID:  match.IMDbID,
		IMDbURL: strings.TrimSpace(match.URL),
	}
	if result.IMDbURL == "" {
		result.IMDbURL = ratings.TitleURL(match.IMDbID)
	}

	details, err := r.details.FetchDetails(ctx, match.IMDbID)
	if err != nil {
		logging.WarnWithContext(logger, "detail fetch failed", "detail_failed",
			logging.String("imdb_id", match.IMDbID),
			logging.String(logging.FieldErrorKind, services.Kind(err)),
			logging.String(logging.FieldErrorHint, "check detail service key and reachability"),
			logging.String(logging.FieldImpact, "rating and votes shown as no data"),
			logging.Error(err),
		)
		return result, errors.Is(err, services.ErrNotFound) && ctx.Err() == nil
	}
	if details != nil {
		result.IMDbRating = details.Rating
		result.IMDbVotes = details.Votes
	}
	return result, ctx.Err() == nil
}
