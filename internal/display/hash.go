package display

import "unicode/utf16"

// HashString is the browser-compatible 31-multiplier string hash: every UTF-16
// code unit folds in as hash*31 + unit, truncated to a signed 32-bit integer.
func HashString(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	return h
}

// paletteIndex maps s onto [0, n) using |HashString(s)| mod n.
func paletteIndex(s string, n int) int {
	if n <= 0 {
		return 0
	}
	h := int64(HashString(s))
	if h < 0 {
		h = -h
	}
	return int(h % int64(n))
}
