package titles

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const shortTokenCount = 3

var (
	whitespacePattern  = regexp.MustCompile(`\s+`)
	anniversaryPattern = regexp.MustCompile(`(?i)\s*(?:-\s*)?\b\d+(?:st|nd|rd|th)\s+anniversary(?:\s+(?:edition|re-?release|screening))?\s*$`)
	// " - French Dubbed", " - English Subtitles", " - Hindi"
	languageDashPattern = regexp.MustCompile(`(?i)\s+-\s+(?:(?:english|french|spanish|german|italian|japanese|chinese|mandarin|cantonese|korean|hindi|tamil|telugu|malayalam|punjabi|arabic|russian|portuguese|maori)\b[^-]*|[^-]*\b(?:dubbed|dub|subtitled|subtitles|subs?)\b[^-]*)$`)
	// "[Eng Sub]", "(Dubbed)"
	languageBracketPattern = regexp.MustCompile(`(?i)\s*[(\[][^)\]]*\b(?:dubbed|dub|subtitled|subtitles|subs?|eng)\b[^)\]]*[)\]]\s*$`)
	trailingYearPattern    = regexp.MustCompile(`\s+\(?(\d{4})\)?$`)
	subtitlePattern        = regexp.MustCompile(`:.*$`)
	partMarkerPattern      = regexp.MustCompile(`(?i)\s+(?:part|pt|chapter|episode|ep|vol|volume)(?:\.?\s+(?:[ivxlc]+|one|two|three|four|five)|\.?\s*\d+)\b.*$`)
)

var folder = cases.Fold()

// Candidates returns the ordered search strings for a raw scraped title, most
// specific first. The first entry is the primary form used as the cache key.
// Every entry is distinct and non-empty; the list is empty only when raw has
// no visible content.
func Candidates(raw string) []string {
	primary := Primary(raw)
	if primary == "" {
		return nil
	}

	out := []string{primary}
	seen := map[string]struct{}{primary: {}}
	add := func(value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		if _, ok := seen[value]; ok {
			return
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}

	withoutSubtitle := strings.TrimSpace(subtitlePattern.ReplaceAllString(primary, ""))
	add(withoutSubtitle)

	base := withoutSubtitle
	if base == "" {
		base = primary
	}
	withoutPart := strings.TrimSpace(partMarkerPattern.ReplaceAllString(base, ""))
	add(withoutPart)

	if withoutPart == "" {
		withoutPart = base
	}
	add(firstTokens(withoutPart, shortTokenCount))

	return out
}

// Primary returns the most specific normalized form of raw: annotations,
// anniversary markers and trailing years stripped, case-folded, whitespace
// collapsed. Primary(Primary(x)) == Primary(x).
func Primary(raw string) string {
	value := raw
	for range 8 {
		next := primaryPass(value)
		if next == value {
			break
		}
		value = next
	}
	return value
}

func primaryPass(value string) string {
	value = collapse(norm.NFKC.String(value))
	if value == "" {
		return ""
	}
	value = collapse(folder.String(value))
	for {
		next := stripAnnotations(value)
		if next == value {
			return value
		}
		value = next
	}
}

// stripAnnotations applies one round of suffix rules. A rule that would leave
// nothing behind is skipped.
func stripAnnotations(value string) string {
	value = applyRule(value, func(s string) string { return anniversaryPattern.ReplaceAllString(s, "") })
	value = applyRule(value, func(s string) string { return languageDashPattern.ReplaceAllString(s, "") })
	value = applyRule(value, func(s string) string { return languageBracketPattern.ReplaceAllString(s, "") })
	value = applyRule(value, stripTrailingYear)
	return value
}

func applyRule(value string, rule func(string) string) string {
	next := collapse(rule(value))
	if next == "" {
		return value
	}
	return next
}

func stripTrailingYear(value string) string {
	matches := trailingYearPattern.FindStringSubmatch(value)
	if len(matches) != 2 {
		return value
	}
	year, err := strconv.Atoi(matches[1])
	if err != nil || year < 1888 || year > 2100 {
		return value
	}
	return trailingYearPattern.ReplaceAllString(value, "")
}

func firstTokens(value string, n int) string {
	fields := strings.Fields(value)
	if len(fields) > n {
		fields = fields[:n]
	}
	return strings.Join(fields, " ")
}

func collapse(value string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(value, " "))
}
