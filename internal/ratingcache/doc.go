// Package ratingcache stores resolved ratings for three days.
//
// Cache applies the freshness policy (age >= TTL is a miss; EvictExpired
// deletes entries older than TTL) over a pluggable Store. MemoryStore serves
// tests, FileStore keeps a JSON document guarded by an advisory file lock, and
// SQLiteStore keeps one row per key using the pure-Go SQLite driver.
package ratingcache
