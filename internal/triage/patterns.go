package triage

import "math"

// Condition is a named symptom pattern with self-care advice.
type Condition struct {
	Name     string
	Symptoms []string
	Advice   string
}

// PatternMatch is the best condition pattern for a set of symptoms. It is
// informational and never changes the score.
type PatternMatch struct {
	Condition  string  `json:"condition"`
	Confidence float64 `json:"confidence"`
	Advice     string  `json:"advice"`
}

const maxPatternConfidence = 0.95

func defaultConditions() []Condition {
	return []Condition{
		{
			Name:     "Flu-like illness",
			Symptoms: []string{SymptomFever, SymptomHeadache, SymptomBodyAches, SymptomFatigue, SymptomCough, SymptomSoreThroat},
			Advice: "Your symptoms fit a flu-like pattern. Rest, hydrate, and monitor your temperature. " +
				"Consider acetaminophen/paracetamol for fever if safe for you.",
		},
		{
			Name:     "Migraine / primary headache",
			Symptoms: []string{SymptomHeadache, SymptomNausea, SymptomFatigue, SymptomDizziness},
			Advice: "This may be consistent with a migraine or primary headache. Hydrate, rest in a dark room, " +
				"and consider your usual headache medication if appropriate.",
		},
		{
			Name:     "Gastroenteritis / food-related illness",
			Symptoms: []string{SymptomNausea, SymptomVomiting, SymptomDiarrhea, SymptomFever},
			Advice: "This pattern can be consistent with gastroenteritis. Focus on hydration (oral rehydration), " +
				"eat light foods, and monitor for dehydration.",
		},
		{
			Name:     "Dehydration / heat stress",
			Symptoms: []string{SymptomDizziness, SymptomFatigue, SymptomHeadache},
			Advice: "This may suggest dehydration or heat stress. Drink water/rehydration fluids and rest. " +
				"If symptoms persist or worsen, seek medical advice.",
		},
	}
}

// MatchPattern returns the condition with the highest overlap ratio, or nil
// when nothing overlaps. Ties keep the earlier condition.
func MatchPattern(conditions []Condition, matched SymptomSet) *PatternMatch {
	if len(matched) == 0 {
		return nil
	}

	var best *Condition
	bestScore := 0.0
	for i := range conditions {
		c := &conditions[i]
		if len(c.Symptoms) == 0 {
			continue
		}
		overlap := 0
		for _, s := range c.Symptoms {
			if matched.Has(s) {
				overlap++
			}
		}
		score := float64(overlap) / float64(len(c.Symptoms))
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == nil {
		return nil
	}
	return &PatternMatch{
		Condition:  best.Name,
		Confidence: math.Min(maxPatternConfidence, math.Sqrt(bestScore)),
		Advice:     best.Advice,
	}
}
