// Package services defines shared utilities consumed by the rating clients,
// the resolver, and the HTTP API.
//
// Key responsibilities:
//   - Context helpers that stamp correlation identifiers and the raw title
//     being resolved, for logging and tracing.
//   - Structured error markers plus the Wrap helper so transport, status,
//     decode, and storage failures can be classified with errors.Is.
//
// Use these helpers when wiring new lookups so failure handling and
// observability stay uniform across the request path.
package services
