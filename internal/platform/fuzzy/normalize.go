package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize case-folds s, strips combining diacritics ("Acuña" becomes
// "acuna") and trims surrounding whitespace.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	// Transformers keep internal state, build a fresh chain per call.
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, s)
	if err != nil {
		folded = s
	}
	return cases.Fold().String(folded)
}

// Tokens splits a normalized string on whitespace.
func Tokens(s string) []string {
	return strings.Fields(s)
}
