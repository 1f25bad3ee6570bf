package utils

import (
	"strings"
	"unicode/utf8"
)

// NormalizeActorID trims surrounding whitespace and lowercases the id so
// " ABC123 " and "abc123" address the same actor
func NormalizeActorID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// FirstNonEmpty returns the first candidate that is not blank after
// normalization, already normalized
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if n := NormalizeActorID(c); n != "" {
			return n
		}
	}
	return ""
}

// TruncateBytes cuts s to at most max bytes without splitting a UTF-8 rune
func TruncateBytes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
