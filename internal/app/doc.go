// Package app wires configuration into a running rating pipeline.
//
// OpenStack builds cache, clients, resolver, and gateway for one-shot CLI
// commands; Serve adds the HTTP server and blocks until shutdown.
package app
