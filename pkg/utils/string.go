package utils

import "unicode/utf8"

// Truncate cuts s to at most maxLen bytes and appends "...". The cut never
// splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
