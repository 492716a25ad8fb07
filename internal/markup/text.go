package markup

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Clean normalizes extracted text: canonical (NFC) composition, removal of
// zero-width characters, and trimming with internal whitespace runs collapsed
// to a single space. Symbols, ligatures and full-width letters are kept as
// written.
func Clean(s string) string {
	if s == "" {
		return ""
	}

	s = norm.NFC.String(s)

	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\ufeff', '\u200d', '\u200c':
			return -1
		}
		if unicode.IsSpace(r) || unicode.Is(unicode.Zs, r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}
