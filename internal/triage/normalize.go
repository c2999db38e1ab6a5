package triage

import "strings"

// TokenSet is the unordered set of normalized words found in a message.
type TokenSet map[string]struct{}

func (t TokenSet) Has(token string) bool {
	_, ok := t[token]
	return ok
}

// Normalize lowercases text, turns every rune outside [a-z0-9] into a space
// and collapses runs of spaces.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	space := true
	for _, r := range strings.ToLower(text) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// Tokens normalizes text and splits it into a token set. Empty or
// punctuation-only input yields an empty set.
func Tokens(text string) TokenSet {
	fields := strings.Fields(Normalize(text))
	tokens := make(TokenSet, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}
