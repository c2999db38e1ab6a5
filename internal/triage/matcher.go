package triage

import "strings"

// Canonical symptom names.
const (
	SymptomFever               = "fever"
	SymptomCough               = "cough"
	SymptomFatigue             = "fatigue"
	SymptomHeadache            = "headache"
	SymptomBreathingDifficulty = "breathing_difficulty"
	SymptomChestPain           = "chest_pain"
	SymptomSoreThroat          = "sore_throat"
	SymptomNausea              = "nausea"
	SymptomVomiting            = "vomiting"
	SymptomDiarrhea            = "diarrhea"
	SymptomBodyAches           = "body_aches"
	SymptomDizziness           = "dizziness"
)

// Phrase maps a multi-word expression to a canonical symptom. Every content
// word must appear in the message; order and adjacency are not checked.
type Phrase struct {
	Symptom string
	Text    string
}

// functionWords are dropped from phrases before matching.
var functionWords = map[string]struct{}{
	"of": {}, "the": {}, "a": {}, "an": {}, "in": {}, "on": {}, "my": {},
}

type compiledPhrase struct {
	symptom string
	words   []string
}

// Matcher maps token sets onto a fixed canonical vocabulary. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	synonyms map[string][]string
	phrases  []compiledPhrase
}

// NewMatcher copies the vocabulary and phrase table into a Matcher.
func NewMatcher(synonyms map[string][]string, phrases []Phrase) *Matcher {
	m := &Matcher{synonyms: make(map[string][]string, len(synonyms))}
	for canonical, variants := range synonyms {
		m.synonyms[canonical] = append([]string(nil), variants...)
	}
	for _, p := range phrases {
		var words []string
		for _, w := range strings.Fields(Normalize(p.Text)) {
			if _, skip := functionWords[w]; !skip {
				words = append(words, w)
			}
		}
		if len(words) == 0 {
			continue
		}
		m.phrases = append(m.phrases, compiledPhrase{symptom: p.Symptom, words: words})
	}
	return m
}

// Match returns the canonical symptoms judged present in tokens.
func (m *Matcher) Match(tokens TokenSet) SymptomSet {
	matched := make(SymptomSet)
	if len(tokens) == 0 {
		return matched
	}

	for canonical, variants := range m.synonyms {
		if anyExact(tokens, variants) || anyFuzzy(tokens, variants) {
			matched.Add(canonical)
		}
	}

	for _, p := range m.phrases {
		if matched.Has(p.symptom) {
			continue
		}
		if containsWords(tokens, p.words) {
			matched.Add(p.symptom)
		}
	}
	return matched
}

// Extract normalizes message and matches it.
func (m *Matcher) Extract(message string) SymptomSet {
	return m.Match(Tokens(message))
}

func anyExact(tokens TokenSet, variants []string) bool {
	for _, v := range variants {
		if tokens.Has(v) {
			return true
		}
	}
	return false
}

func anyFuzzy(tokens TokenSet, variants []string) bool {
	for _, v := range variants {
		if fuzzyAny(tokens, v) {
			return true
		}
	}
	return false
}

func containsWords(tokens TokenSet, words []string) bool {
	for _, w := range words {
		if !tokens.Has(w) && !fuzzyAny(tokens, w) {
			return false
		}
	}
	return true
}
