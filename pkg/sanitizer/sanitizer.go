// Package sanitizer normalizes user supplied strings before validation and
// storage.
package sanitizer

import (
	"strings"
	"unicode"
)

// Email trims surrounding whitespace and lower-cases the address, so that
// lookups and the unique index see one canonical form.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Text trims s, drops control characters and collapses runs of whitespace
// into a single space. Used for single-line fields such as names and titles.
func Text(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Multiline trims s and removes control characters other than newlines and tabs.
func Multiline(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
