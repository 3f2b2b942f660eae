// Package api defines wire-format types for the local HTTP API and the CLI's
// JSON output.
//
// Message is the GET_RATINGS request envelope; the response body is the
// ratings.Result JSON itself (or null). StatusResponse backs /api/status.
// CacheEntry is the transport view of a cache listing row.
//
// DTOs keep the camelCase names the browser-side collaborator already reads.
// Timestamps use RFC3339 with milliseconds.
package api
