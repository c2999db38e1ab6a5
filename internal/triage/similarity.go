package triage

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// FuzzyThreshold is the inclusive similarity a token needs to count as a
// misspelling of a synonym.
const FuzzyThreshold = 0.84

// Similarity returns the Ratcliff/Obershelp ratio 2*M/T of two words, where M
// is the number of characters in matching blocks and T the combined length.
// An empty operand scores 0.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

func fuzzyAny(tokens TokenSet, target string) bool {
	for t := range tokens {
		if Similarity(t, target) >= FuzzyThreshold {
			return true
		}
	}
	return false
}
