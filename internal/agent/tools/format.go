package tools

import (
	"strconv"
	"strings"
)

// wrapHidden delimits a detail section with braces. The chat frontend
// collapses brace-delimited blocks and shows only the surrounding summary.
func wrapHidden(s string) string {
	return "{" + s + "}"
}

// amount renders a monetary value without a forced decimal count.
func amount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// titleCase turns backend status codes like "not_fulfilled" into "Not Fulfilled".
func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// preview truncates long descriptions for list rendering.
func preview(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
