// Package text holds small string helpers for log lines and stored messages.
package text

import "unicode/utf8"

const ellipsis = "..."

// Truncate cuts s to at most max bytes, never splitting a UTF-8 sequence,
// and marks the cut with an ellipsis. max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
