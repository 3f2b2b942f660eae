// Package resolver turns a raw listing title into a rating result by trying
// normalized candidates against the lookup service in order and fetching
// details for the first match.
package resolver
