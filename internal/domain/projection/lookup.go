package projection

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/riskibarqy/fantasy-roster/internal/platform/fuzzy"
)

var playerTagPattern = regexp.MustCompile(`\[player id=\d+\]|\[/player\]`)

// CleanName strips provider player tags, lower-cases and trims. Diacritics
// are kept, so "acuna" does not match "Acuña".
func CleanName(raw string) string {
	return lowerTrim(playerTagPattern.ReplaceAllString(raw, ""))
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Lookup finds the record for name. Tiers, first hit wins: exact cleaned
// name, candidate containing the search name, then at least two shared
// tokens with a candidate longer than three characters.
func Lookup(t *Table, name string) (Record, bool) {
	if t == nil || t.nameColumn == "" {
		return nil, false
	}
	search := lowerTrim(name)
	if search == "" {
		return nil, false
	}

	for i, clean := range t.cleaned {
		if clean == search {
			return t.Records[i], true
		}
	}
	for i, clean := range t.cleaned {
		if strings.Contains(clean, search) {
			return t.Records[i], true
		}
	}

	searchTokens := tokenSet(search)
	for i, clean := range t.cleaned {
		if utf8.RuneCountInString(clean) <= 3 {
			continue
		}
		shared := 0
		for token := range tokenSet(clean) {
			if _, ok := searchTokens[token]; ok {
				shared++
			}
		}
		if shared >= 2 {
			return t.Records[i], true
		}
	}
	return nil, false
}

func tokenSet(s string) map[string]struct{} {
	tokens := fuzzy.Tokens(s)
	set := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		set[tok] = struct{}{}
	}
	return set
}

// RecordName returns the cleaned player name of r, read from the first
// name column it carries.
func RecordName(r Record) (string, bool) {
	for _, col := range NameColumns {
		if raw, ok := r.String(col); ok {
			return CleanName(raw), true
		}
	}
	return "", false
}
