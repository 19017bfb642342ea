// Package query turns free-text queries into the token sets used for
// scoring: a stopword-filtered keyword list for lexical matching and a
// curated key-term list for boosting.
package query

import (
	"strings"
	"unicode"
)

// Normalize lowercases text, replaces every character outside the
// word/whitespace class with a space, and collapses whitespace runs.
// Total over strings; empty input yields the empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
