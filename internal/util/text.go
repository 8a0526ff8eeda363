package util

// TruncateChars hard-truncates s to at most max runes. The cut is a plain
// prefix cut, not sentence-aware; it exists to bound generation cost, not to
// produce readable text.
func TruncateChars(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
