package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// stripDiacritics removes combining marks after NFD decomposition, so
// "Eletricidade São João" compares equal to "Eletricidade Sao Joao".
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeIdentifier canonicalizes a free-text identifier for fuzzy matching:
// diacritics stripped, everything that is not a letter or digit removed,
// lowercased. Never used for display.
func NormalizeIdentifier(text string) string {
	stripped := stripDiacritics(text)
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// normalizeKeyText canonicalizes one textual dedup key segment: whitespace
// collapsed to single spaces, diacritics stripped, lowercased. Punctuation is
// kept; key segments are compared, not matched fuzzily.
func normalizeKeyText(s string) string {
	collapsed := strings.Join(strings.Fields(s), " ")
	return strings.ToLower(stripDiacritics(collapsed))
}
