package style

import (
	"strings"
	"unicode"
)

const importantSuffix = "!important"

// sanitizeValue strips everything that could end the declaration, close
// the block, open a comment or escape the stylesheet. A trailing
// !important is removed since the compiler adds its own.
func sanitizeValue(v string) string {
	v = strings.Map(func(r rune) rune {
		switch r {
		case '{', '}', ';', '<', '>', '\\', '"', '\'':
			return -1
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, v)

	for {
		next := strings.ReplaceAll(strings.ReplaceAll(v, "/*", ""), "*/", "")
		if next == v {
			break
		}
		v = next
	}

	v = strings.TrimSpace(v)
	for len(v) >= len(importantSuffix) && strings.EqualFold(v[len(v)-len(importantSuffix):], importantSuffix) {
		v = strings.TrimSpace(v[:len(v)-len(importantSuffix)])
	}
	return v
}

// sanitizeKey reduces a custom key to a valid custom property name body.
func sanitizeKey(k string) string {
	k = strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, k)
	return strings.TrimLeft(k, "-")
}
