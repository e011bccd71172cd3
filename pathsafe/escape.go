// Package pathsafe maps arbitrary SQL identifiers to filename-safe strings.
package pathsafe

import (
	"strings"
	"unicode/utf8"
)

// Escape maps name to a string safe to use as a single path segment on any
// common filesystem. ASCII letters/digits, Hangul syllables, and `_ - .`
// pass through unchanged; every other code point becomes
// `$<lowercase-hex-of-its-utf8-bytes>$`. The mapping is injective: `$`
// itself is escaped like any other non-preserved rune, so no two distinct
// inputs can collide on the delimiter.
func Escape(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		if preserved(r) {
			b.WriteRune(r)
			continue
		}

		var buf [utf8.UTFMax]byte
		n := utf8.EncodeRune(buf[:], r)
		b.WriteByte('$')
		for _, c := range buf[:n] {
			b.WriteString(hexByte(c))
		}
		b.WriteByte('$')
	}

	return b.String()
}

func preserved(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	case r == '_' || r == '-' || r == '.':
		return true
	default:
		return false
	}
}

const hexDigits = "0123456789abcdef"

func hexByte(b byte) string {
	return string([]byte{hexDigits[b>>4], hexDigits[b&0xf]})
}
