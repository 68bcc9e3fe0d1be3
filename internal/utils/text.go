// internal/utils/text.go
package utils

import (
	"strings"
	"unicode/utf8"
)

// CleanText collapses all runs of whitespace into single spaces.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// TruncateText shortens s to at most limit runes plus a trailing "...".
// When the last space falls inside the final fifth of the cut, the text is cut there
// so words are not split.
func TruncateText(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	cut := string(runes[:limit])
	if idx := strings.LastIndex(cut, " "); idx > 0 && utf8.RuneCountInString(cut[:idx]) > limit*4/5 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ") + "..."
}

// TruncateBytes shortens s so the result, including a trailing "...", fits in maxBytes.
// The cut never splits a UTF-8 sequence and prefers a word boundary like TruncateText.
func TruncateBytes(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	const ellipsis = "..."
	if maxBytes <= len(ellipsis) {
		return ""
	}

	end := maxBytes - len(ellipsis)
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	cut := s[:end]
	if idx := strings.LastIndex(cut, " "); idx > 0 && idx > len(cut)*4/5 {
		cut = cut[:idx]
	}
	cut = strings.TrimRight(cut, " ")
	if cut == "" {
		return ""
	}
	return cut + ellipsis
}
