// Package triage turns a free-text symptom description and a vitals sample
// into a risk score, a risk level and guidance.
//
// Everything in this package is pure: no I/O, no clock, no shared mutable
// state. Engines may be shared between goroutines.
package triage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownProfile is returned by ParseProfile for unrecognised names.
var ErrUnknownProfile = errors.New("unknown triage profile")

// Profile selects a vocabulary and rubric pair.
type Profile string

const (
	ProfileHospital Profile = "hospital"
	ProfileBasic    Profile = "basic"
)

func ParseProfile(name string) (Profile, error) {
	switch p := Profile(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return ProfileHospital, nil
	case ProfileHospital, ProfileBasic:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
}

// Result is the outcome of one triage assessment. It has no identity and is
// recomputed for every request.
type Result struct {
	MatchedSymptoms SymptomSet    `json:"matched_symptoms"`
	RiskScore       int           `json:"risk_score"`
	RiskLevel       RiskLevel     `json:"risk_level"`
	Recommendation  string        `json:"recommendation"`
	HospitalNeeded  bool          `json:"hospital_needed"`
	EmergencyMode   bool          `json:"emergency_mode"`
	RedFlags        []string      `json:"red_flags"`
	Pattern         *PatternMatch `json:"pattern,omitempty"`
}

// Engine bundles a matcher, a rubric and the condition patterns.
type Engine struct {
	matcher    *Matcher
	rubric     Rubric
	conditions []Condition
}

// NewEngine builds the engine for a profile. Unknown profiles fall back to
// the hospital profile; use ParseProfile to validate user input first.
func NewEngine(profile Profile) *Engine {
	if profile == ProfileBasic {
		return NewCustomEngine(NewMatcher(basicSynonyms, basicPhrases), BasicRubric(), defaultConditions())
	}
	return NewCustomEngine(NewMatcher(hospitalSynonyms, hospitalPhrases), HospitalRubric(), defaultConditions())
}

func NewCustomEngine(matcher *Matcher, rubric Rubric, conditions []Condition) *Engine {
	return &Engine{matcher: matcher, rubric: rubric, conditions: conditions}
}

// ExtractSymptoms returns the canonical symptoms found in message. It never
// fails; empty or garbage input gives an empty set.
func (e *Engine) ExtractSymptoms(message string) SymptomSet {
	return e.matcher.Extract(message)
}

// ScoreAndClassify scores already-validated vitals and matched symptoms.
func (e *Engine) ScoreAndClassify(vitals VitalsSample, matched SymptomSet) Result {
	if matched == nil {
		matched = make(SymptomSet)
	}
	score, flags := e.rubric.Score(vitals, matched)
	level := e.rubric.Level(score)
	emergency := score >= e.rubric.CriticalScore
	if emergency && len(flags) == 0 {
		flags = append(flags, CriticalFallbackFlag)
	}
	return Result{
		MatchedSymptoms: matched,
		RiskScore:       score,
		RiskLevel:       level,
		Recommendation:  BuildRecommendation(level, matched),
		HospitalNeeded:  level == RiskMedium || level == RiskCritical,
		EmergencyMode:   emergency,
		RedFlags:        flags,
		Pattern:         MatchPattern(e.conditions, matched),
	}
}

// Assess runs extraction and scoring in one step.
func (e *Engine) Assess(message string, vitals VitalsSample) Result {
	return e.ScoreAndClassify(vitals, e.ExtractSymptoms(message))
}

var defaultEngine = NewEngine(ProfileHospital)

// ExtractSymptoms uses the hospital profile.
func ExtractSymptoms(message string) SymptomSet {
	return defaultEngine.ExtractSymptoms(message)
}

// ScoreAndClassify uses the hospital profile.
func ScoreAndClassify(vitals VitalsSample, matched SymptomSet) Result {
	return defaultEngine.ScoreAndClassify(vitals, matched)
}
