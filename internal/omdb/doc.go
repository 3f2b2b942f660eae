// Package omdb fetches IMDb rating and vote counts from the OMDb detail
// service.
package omdb
