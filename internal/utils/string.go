package utils

import "strings"

// FirstNonEmpty returns the first argument that is not an empty string.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ReplaceFirst replaces only the first occurrence of old.
func ReplaceFirst(s, old, new string) string {
	return strings.Replace(s, old, new, 1)
}

// TruncateRunes cuts s to at most limit runes and appends suffix when something was cut.
func TruncateRunes(s string, limit int, suffix string) string {
	if limit < 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + suffix
}
