package ui

import (
	"strings"
	"unicode/utf8"
)

// MaskValue hides a secret value for display, keeping its last two characters
// when the value is long enough that doing so reveals little.
func MaskValue(value string) string {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0:
		return ""
	case n < 8:
		return strings.Repeat("*", n)
	default:
		runes := []rune(value)
		return strings.Repeat("*", n-2) + string(runes[n-2:])
	}
}
