package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"unicode/utf8"
)

// highPunctuation matches a space followed by "high" punctuation.
var highPunctuation = regexp.MustCompile(` ([!$%:;?+\-])`)

// ReplacePunctuationSpace replaces a space placed before high punctuation
// (! $ % : ; ? + -) with a non-breaking space, as French typography expects.
func ReplacePunctuationSpace(s string) string {
	return highPunctuation.ReplaceAllString(s, "\u00a0$1")
}

// Hash computes a SHA-256 hex hash of a byte slice for change detection.
func Hash(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}

// Truncate shortens a string to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}
