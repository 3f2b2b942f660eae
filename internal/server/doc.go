// Package server exposes the rating gateway over a local HTTP API.
//
// Routes:
//
//	POST /api/messages   {"type":"GET_RATINGS","movieTitle":"..."} -> result JSON or null
//	GET  /api/ratings    ?title=... -> result JSON or null
//	GET  /api/status     -> {running, cache_backend, cache_entries}
//
// Start takes an exclusive lock file in the data directory so only one server
// runs per data directory, then runs the expired-entry sweep once in the
// background while requests are already being served.
package server
