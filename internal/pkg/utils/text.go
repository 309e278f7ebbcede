package utils

import "unicode/utf8"

// Truncate shortens s to at most max characters without splitting a multi-byte rune.
// Column limits in MySQL count characters, not bytes.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
