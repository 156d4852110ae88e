package utils

import (
	"strings"
	"unicode"
)

// Slugify lower-cases s and joins its letter/digit runs with hyphens, the
// form WordPress uses for term slugs and we use for file names.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
