package triage

const recommendCritical = "Critical risk detected. Activate emergency workflow and seek immediate medical evaluation. " +
	"If symptoms are severe or rapidly worsening, call local emergency services."

const recommendMedium = "Moderate risk detected. Monitor closely and consider evaluation by a clinician, especially " +
	"if symptoms persist beyond 24–48 hours or worsen."

const recommendFeverAndHeadache = "Fever with headache can occur with viral illness. Seek urgent care if stiff neck, confusion, " +
	"rash, or severe/worsening headache occurs."

const (
	recommendDescribe = "Describe your main symptoms (for example: fever + cough + fatigue) and how long they have lasted."
	recommendViral    = "Symptoms may fit a viral respiratory illness. Rest, hydrate, and monitor temperature."
	recommendGeneric  = "Monitor symptoms, rest, hydrate, and seek care if symptoms worsen."
)

// BuildRecommendation picks guidance by priority: risk level first, then the
// symptom combination.
func BuildRecommendation(level RiskLevel, matched SymptomSet) string {
	switch {
	case level == RiskCritical:
		return recommendCritical
	case level == RiskMedium:
		return recommendMedium
	case len(matched) == 0:
		return recommendDescribe
	case matched.HasAll(SymptomFever, SymptomCough, SymptomFatigue):
		return recommendViral
	case matched.HasAll(SymptomFever, SymptomHeadache):
		return recommendFeverAndHeadache
	default:
		return recommendGeneric
	}
}
