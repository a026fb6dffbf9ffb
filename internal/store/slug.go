package store

import (
	"strings"
	"unicode"
)

// Slug normalizes a topic for use as a storage key: lowercased, with runs
// of anything other than letters and digits collapsed into a single "-".
// "  Anxiety Check! " and "anxiety-check" share the slug "anxiety-check".
func Slug(topic string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(topic) {
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
