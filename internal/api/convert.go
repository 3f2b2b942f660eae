package api

import (
	"cinerate/internal/ratingcache"
)

// FromCacheEntry converts a cache listing entry to its API representation.
func FromCacheEntry(entry ratingcache.Entry) CacheEntry {
	dto := CacheEntry{
		Key:        entry.Key,
		AgeSeconds: int64(entry.Age.Seconds()),
		Expired:    entry.Expired,
		NoData:     entry.Result == nil,
	}
	if !entry.CachedAt.IsZero() {
		dto.CachedAt = entry.CachedAt.UTC().Format(dateTimeFormat)
	}
	if entry.Result != nil {
		dto.IMDbID = entry.Result.IMDbID
		dto.IMDbURL = entry.Result.IMDbURL
		dto.IMDbRating = entry.Result.IMDbRating
		dto.IMDbVotes = entry.Result.IMDbVotes
	}
	return dto
}

// FromCacheEntries converts a listing, preserving order.
func FromCacheEntries(entries []ratingcache.Entry) []CacheEntry {
	out := make([]CacheEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromCacheEntry(entry))
	}
	return out
}
