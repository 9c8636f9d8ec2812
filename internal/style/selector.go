// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package style

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	selectorPrefix = `[data-component="`
	selectorSuffix = `"]`
)

// Selector returns the attribute selector matching component. The name is
// written as a CSS string: backslash and double quote are escaped with a
// backslash, control characters as a hex escape followed by a space.
func Selector(component string) string {
	var b strings.Builder
	b.Grow(len(selectorPrefix) + len(component) + len(selectorSuffix))
	b.WriteString(selectorPrefix)
	for _, r := range component {
		switch {
		case r == '\\' || r == '"':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			b.WriteByte('\\')
			b.WriteString(strconv.FormatInt(int64(r), 16))
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteString(selectorSuffix)
	return b.String()
}

// ParseSelector reads a selector produced by Selector from the start of s
// and returns the component name and the text after the selector.
func ParseSelector(s string) (component, rest string, ok bool) {
	if !strings.HasPrefix(s, selectorPrefix) {
		return "", s, false
	}
	i := len(selectorPrefix)

	var b strings.Builder
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch r {
		case '"':
			if !strings.HasPrefix(s[i:], selectorSuffix) {
				return "", s, false
			}
			return b.String(), s[i+len(selectorSuffix):], true
		case '\\':
			i += size
			if i >= len(s) {
				return "", s, false
			}
			n := hexPrefix(s[i:])
			if n == 0 {
				r, size = utf8.DecodeRuneInString(s[i:])
				b.WriteRune(r)
				i += size
				continue
			}
			code, _ := strconv.ParseInt(s[i:i+n], 16, 32)
			b.WriteRune(rune(code))
			i += n
			if i < len(s) && s[i] == ' ' {
				i++
			}
		default:
			b.WriteRune(r)
			i += size
		}
	}
	return "", s, false
}

// hexPrefix returns the length of the run of hex digits at the start of s,
// capped at six.
func hexPrefix(s string) int {
	n := 0
	for n < len(s) && n < 6 && isHex(s[n]) {
		n++
	}
	return n
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
