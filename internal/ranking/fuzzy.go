package ranking

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adrg/strutil/metrics"
)

// indel is Levenshtein with substitution priced as delete+insert, i.e. the Indel distance.
var indel = &metrics.Levenshtein{
	CaseSensitive: true,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   2,
}

// Ratio returns the normalized Indel similarity of a and b in [0,100].
func Ratio(a, b string) float64 {
	total := utf8.RuneCountInString(a) + utf8.RuneCountInString(b)
	if total == 0 {
		return 100
	}
	dist := indel.Distance(a, b)
	return 100 * (1 - float64(dist)/float64(total))
}

// TokenSetRatio compares the word sets of a and b, ignoring order and repetition.
// Shared words are compared against each side's remainder and the best ratio wins.
// A side with no words scores 0; a full containment of one word set in the other scores 100.
func TokenSetRatio(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var common, onlyA, onlyB []string
	for tok := range tokensA {
		if tokensB[tok] {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tokensB {
		if !tokensA[tok] {
			onlyB = append(onlyB, tok)
		}
	}

	if len(common) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	sect := strings.Join(common, " ")
	combinedA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	best := Ratio(combinedA, combinedB)
	if sect != "" {
		best = max(best, Ratio(sect, combinedA), Ratio(sect, combinedB))
	}
	return best
}

func tokenSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
