// Package titles turns raw titles scraped from cinema listings into ordered
// search candidates.
//
// The primary candidate strips anniversary markers, language/subtitle/dub
// annotations, and a trailing release year, then case-folds; it doubles as the
// cache key. Later candidates drop the subtitle after a colon, trailing
// part/chapter/episode markers, and finally keep only the first three words.
package titles
