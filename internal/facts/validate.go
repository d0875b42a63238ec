package facts

import (
	"strings"
	"unicode"
)

// maxFactChars caps a single fact's content. Long spans are truncated at a
// word boundary rather than rejected.
const maxFactChars = 2000

// truncateClean truncates a string to maxLen, cutting at the last word
// boundary to avoid mid-word breaks.
func truncateClean(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	truncated := s[:maxLen]
	if idx := strings.LastIndexFunc(truncated, unicode.IsSpace); idx > maxLen-200 {
		truncated = truncated[:idx]
	}
	return strings.TrimSpace(truncated)
}
