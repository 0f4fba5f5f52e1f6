package corpus

import "strings"

// NormalizeTitle reduces a free-text title to its dedup equality key:
// lower-cased with everything outside ASCII [a-z0-9] removed. Two titles
// differing only in case, whitespace, or punctuation collide to the same key.
// Total over all inputs; the empty string normalizes to the empty string.
func NormalizeTitle(title string) string {
	lowered := strings.ToLower(title)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
