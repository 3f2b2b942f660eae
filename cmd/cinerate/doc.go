// Package main hosts the cinerate CLI entrypoint and command graph.
//
// The Cobra command tree runs the rating API (serve), resolves titles
// directly (lookup, scan), explains normalization (normalize), maintains the
// rating cache, and scaffolds configuration. Configuration is resolved once
// per invocation; one-shot commands open the same cache and clients the
// server uses, so results written here are served by the API and vice versa.
//
// Keep this package thin: behaviour lives in internal packages and is only
// surfaced here.
package main
