package tools

import (
	"unicode/utf8"
)

// TruncateString shortens a string to the specified maximum length, adding ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return "..."[:maxLen]
	}

	return string([]rune(s)[:maxLen-3]) + "..."
}
