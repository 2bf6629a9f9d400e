package forum

import (
	"html"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// DecodeDisplayName normalizes a forum-stored display name into a comparable
// identity string. Numeric character references are resolved first, then any
// remaining named HTML entities.
func DecodeDisplayName(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return html.UnescapeString(decodeNumericRefs(s))
}

// decodeNumericRefs resolves &#NNNN; (decimal) and &#xNNNN; (hex) references.
// Forum storage encodes code points above U+FFFF as two adjacent surrogate
// references, which html.UnescapeString alone would turn into U+FFFD, so
// surrogate halves are combined here before the generic unescape runs.
func decodeNumericRefs(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		cp, next, ok := parseNumericRef(s, i)
		if !ok {
			b.WriteByte(s[i])
			i++
			continue
		}
		if utf16.IsSurrogate(cp) {
			if cp2, next2, ok2 := parseNumericRef(s, next); ok2 && utf16.IsSurrogate(cp2) {
				if r := utf16.DecodeRune(cp, cp2); r != unicode.ReplacementChar {
					b.WriteRune(r)
					i = next2
					continue
				}
			}
			// Lone surrogate half, not representable in UTF-8.
			b.WriteRune(unicode.ReplacementChar)
			i = next
			continue
		}
		b.WriteRune(cp)
		i = next
	}
	return b.String()
}

// parseNumericRef parses a numeric character reference beginning at offset i.
// It returns the code point, the offset just past the closing semicolon, and
// whether a well-formed reference was found.
func parseNumericRef(s string, i int) (rune, int, bool) {
	if i+3 >= len(s) || s[i] != '&' || s[i+1] != '#' {
		return 0, 0, false
	}
	j := i + 2
	base := 10
	if s[j] == 'x' || s[j] == 'X' {
		base = 16
		j++
	}
	start := j
	for j < len(s) && isDigit(s[j], base) {
		j++
	}
	if j == start || j >= len(s) || s[j] != ';' {
		return 0, 0, false
	}
	v, err := strconv.ParseInt(s[start:j], base, 32)
	if err != nil || v <= 0 || v > int64(unicode.MaxRune) {
		return 0, 0, false
	}
	return rune(v), j + 1, true
}

func isDigit(c byte, base int) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	if base == 16 {
		return (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
	}
	return false
}
