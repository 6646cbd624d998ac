// Package phone turns sender identities into the canonical member key.
package phone

import "strings"

// Normalize strips a transport prefix such as "whatsapp:" and keeps only the
// digits, so "whatsapp:+56 9 1234 5678" becomes "56912345678".
//
// Member lookups compare normalized values for equality; partial matches are
// never used.
func Normalize(raw string) string {
	if i := strings.LastIndex(raw, ":"); i >= 0 {
		raw = raw[i+1:]
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Mask hides all but the last four digits for logging.
func Mask(normalized string) string {
	if len(normalized) <= 4 {
		return strings.Repeat("*", len(normalized))
	}
	return strings.Repeat("*", len(normalized)-4) + normalized[len(normalized)-4:]
}
