// Package fuzzy provides the string-similarity primitives used to match
// player names coming from different sources.
//
// All scores are integers on a 0-100 scale. Empty inputs always score 0.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/strutil/metrics"
)

// indel weighs a substitution as a deletion plus an insertion, so the
// distance between a and b is their total length minus twice the longest
// common subsequence.
var indel = &metrics.Levenshtein{InsertCost: 1, DeleteCost: 1, ReplaceCost: 2, CaseSensitive: true}

// Ratio is the whole-string similarity of a and b: (T-D)/T scaled to 100,
// where T is the total rune count and D the indel distance.
func Ratio(a, b string) int {
	la, lb := len([]rune(a)), len([]rune(b))
	if la == 0 || lb == 0 {
		return 0
	}
	total := la + lb
	return int(float64(100*(total-indel.Distance(a, b)))/float64(total) + 0.5)
}

// PartialRatio is the best Ratio between the shorter string and any
// substring of the longer one with the same length.
func PartialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	short := string(shorter)
	best := 0
	for start := 0; start+len(shorter) <= len(longer); start++ {
		score := Ratio(short, string(longer[start:start+len(shorter)]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// TokenSortRatio compares a and b after reducing both to their
// alphanumeric tokens sorted alphabetically, so "Abbott, Andrew" and
// "Andrew Abbott" are identical.
func TokenSortRatio(a, b string) int {
	sa := sortedTokens(a)
	sb := sortedTokens(b)
	if sa == "" || sb == "" {
		return 0
	}
	return Ratio(sa, sb)
}

// Score is the maximum of Ratio, PartialRatio and TokenSortRatio computed
// on the normalized forms of a and b.
func Score(a, b string) int {
	na, nb := Normalize(a), Normalize(b)
	best := Ratio(na, nb)
	if partial := PartialRatio(na, nb); partial > best {
		best = partial
	}
	if tokens := TokenSortRatio(na, nb); tokens > best {
		best = tokens
	}
	return best
}

func sortedTokens(s string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)

	tokens := strings.Fields(cleaned)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}
