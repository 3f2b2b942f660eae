// Package imdbot is a minimal client for the free IMDb search proxy used to
// map a title to an IMDb identifier. Only the first match is consumed.
package imdbot
