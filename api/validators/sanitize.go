package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims input, drops control characters and cuts it to at
// most maxLen runes. A maxLen of zero leaves the length alone.
func SanitizeString(input string, maxLen int) string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(input))
	if maxLen > 0 {
		if runes := []rune(clean); len(runes) > maxLen {
			clean = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return clean
}
