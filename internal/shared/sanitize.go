package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeEmail lowercases and trims an email address before lookup or
// storage, so the same mailbox never yields two accounts.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeName strips markup and control characters from a free-text name
// and canonicalizes it to Unicode NFC.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	depth := 0
	for _, r := range name {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth == 0 && !unicode.IsControl(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(norm.NFC.String(b.String()))
}
