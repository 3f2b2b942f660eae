// Package ratings holds the values exchanged between the lookup clients, the
// resolver, the cache, and collaborators.
//
// A nil *Result means "no data" for a title. Within a Result, nil rating or
// vote pointers mean the detail service reported them as unavailable.
package ratings
