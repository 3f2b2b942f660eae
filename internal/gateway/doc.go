// Package gateway is the single entry point for rating requests. It keys the
// cache by the primary normalized title and falls back to the resolver on a
// miss, caching whatever it returns.
package gateway
