package sanitizer

import (
	"strings"
	"unicode"
)

// SanitizeText trims surrounding space, collapses runs of whitespace into a
// single space and drops non-printable runes.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastWasSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				b.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		if !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(r)
		lastWasSpace = false
	}

	return strings.TrimSpace(b.String())
}

// SanitizeEmail lowercases and strips all whitespace. Addresses are compared
// verbatim elsewhere, so normalization has to happen before persistence.
func SanitizeEmail(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if unicode.IsSpace(r) || !unicode.IsPrint(r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}
