// Package location provides the free-text location normalizer and the
// geocoding client backing location suggestions.
package location

import (
	"strings"
	"unicode"
)

// Normalize turns a free-text location into a canonical search-query
// fragment: characters outside letters, digits, and whitespace are
// stripped, runs of whitespace collapse to a single space, and the result
// is trimmed.
//
// An empty return value means the input carried no searchable content;
// callers must not issue an upstream search in that case. Stripping happens
// before the fragment is interpolated into the upstream query string, so
// search-syntax characters (quotes, colons) can never leak through.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	lastSpace := true // leading whitespace collapses to nothing
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimRight(b.String(), " ")
}
