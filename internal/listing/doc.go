// Package listing pulls raw movie titles out of cinema listing markup so the
// CLI can resolve a saved or live page in one go.
package listing
