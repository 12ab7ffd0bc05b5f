package utils

import "strings"

// ContainsAny checks if s contains any of the substrings (case-insensitive).
func ContainsAny(s string, substrings ...string) bool {
	sLower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(sLower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

// MaskToken hides all but the edges of a token so it can appear in logs.
// Tokens of 16 characters or fewer are hidden entirely.
func MaskToken(s string) string {
	if len(s) <= 16 {
		return "********"
	}
	return s[:4] + "********" + s[len(s)-4:]
}
