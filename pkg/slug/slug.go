// Package slug derives URL-safe identifiers from labels.
package slug

import (
	"strings"
	"unicode"
)

// Make lowercases a label and replaces every run of non-alphanumeric
// characters with a single hyphen. Empty input yields an empty slug.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevHyphen = false
		default:
			if !prevHyphen && b.Len() > 0 {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
