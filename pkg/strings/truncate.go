// Package strings shortens rule text for tabular output.
package strings

import (
	"strings"
)

// DefaultCellMaxLen is the widest a table cell gets before it is cut.
const DefaultCellMaxLen = 48

// MinTruncateLen leaves room for one character plus "...".
const MinTruncateLen = 4

// Truncate collapses all whitespace, newlines included, into single spaces
// and cuts the result to maxLen runes, marking the cut with "...". Values of
// maxLen below MinTruncateLen are raised to it.
func Truncate(s string, maxLen int) string {
	if maxLen < MinTruncateLen {
		maxLen = MinTruncateLen
	}

	s = strings.Join(strings.Fields(s), " ")

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// Lines renders multi-line text as a single cell, joining lines with " | ".
func Lines(text string, maxLen int) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return Truncate(strings.Join(lines, " | "), maxLen)
}
