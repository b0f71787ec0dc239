package analyzer

import (
	"strings"
	"unicode/utf16"
)

// TextHash computes a 32-bit polynomial rolling hash (h = h*31 + code unit)
// of the lowercased, trimmed text. It is not cryptographic; collisions are
// rare and tolerated by callers, which only use it as a cache/dedup key.
func TextHash(text string) int32 {
	normalized := strings.TrimSpace(strings.ToLower(text))
	var hash int32
	for _, unit := range utf16.Encode([]rune(normalized)) {
		hash = hash*31 + int32(unit)
	}
	return hash
}
