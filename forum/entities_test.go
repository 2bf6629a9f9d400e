package forum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeDisplayName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain name untouched",
			in:   "Bobby",
			want: "Bobby",
		},
		{
			name: "decimal reference",
			in:   "&#65;OD_Recruit",
			want: "AOD_Recruit",
		},
		{
			name: "hex reference",
			in:   "&#x41;lpha",
			want: "Alpha",
		},
		{
			name: "uppercase hex marker",
			in:   "&#X42;ravo",
			want: "Bravo",
		},
		{
			name: "named entity",
			in:   "Fish &amp; Chips",
			want: "Fish & Chips",
		},
		{
			name: "bmp symbol",
			in:   "Bob&#8482;",
			want: "Bob™",
		},
		{
			name: "surrogate pair combines to one code point",
			in:   "&#55357;&#56842;",
			want: "\U0001F60A",
		},
		{
			name: "surrogate pair embedded in name",
			in:   "Eve&#55357;&#56842;#4444",
			want: "Eve\U0001F60A#4444",
		},
		{
			name: "astral code point as single reference",
			in:   "&#128522;",
			want: "\U0001F60A",
		},
		{
			name: "lone high surrogate becomes replacement char",
			in:   "x&#55357;y",
			want: "x�y",
		},
		{
			name: "mixed numeric and named",
			in:   "&#66;ob &amp; &#x43;arl",
			want: "Bob & Carl",
		},
		{
			name: "empty reference left alone",
			in:   "a&#;b",
			want: "a&#;b",
		},
		{
			name: "ampersand without reference",
			in:   "AC&DC",
			want: "AC&DC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeDisplayName(tt.in))
		})
	}
}

func TestParseNumericRef(t *testing.T) {
	cp, next, ok := parseNumericRef("&#65;", 0)
	assert.True(t, ok)
	assert.Equal(t, 'A', cp)
	assert.Equal(t, 5, next)

	_, _, ok = parseNumericRef("&#65", 0) // unterminated
	assert.False(t, ok)

	_, _, ok = parseNumericRef("&65;", 0) // missing hash
	assert.False(t, ok)

	_, _, ok = parseNumericRef("&#x;", 0) // no digits
	assert.False(t, ok)

	_, _, ok = parseNumericRef("&#99999999;", 0) // beyond MaxRune
	assert.False(t, ok)
}
