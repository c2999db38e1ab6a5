package triage

// RiskLevel is the coarse classification derived from a risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskCritical RiskLevel = "Critical"
)

// Vital names a field of VitalsSample a rule can test.
type Vital string

const (
	VitalPulse       Vital = "pulse_bpm"
	VitalTemperature Vital = "temperature_c"
	VitalOxygen      Vital = "oxygen_percent"
	VitalAirQuality  Vital = "air_quality_ppm"
)

// VitalsSample is one reading of the simulated sensors.
type VitalsSample struct {
	PulseBPM      float64 `json:"pulse_bpm"`
	TemperatureC  float64 `json:"temperature_c"`
	OxygenPercent float64 `json:"oxygen_percent"`
	AirQualityPPM float64 `json:"air_quality_ppm"`
}

// Value returns the field named by vital.
func (v VitalsSample) Value(vital Vital) (float64, bool) {
	switch vital {
	case VitalPulse:
		return v.PulseBPM, true
	case VitalTemperature:
		return v.TemperatureC, true
	case VitalOxygen:
		return v.OxygenPercent, true
	case VitalAirQuality:
		return v.AirQualityPPM, true
	default:
		return 0, false
	}
}

// Rule awards Points and raises Flag when its condition holds. A rule with a
// Vital fires when that vital is strictly above Above; a rule with Symptoms
// fires when all of them were matched. When both are set both must hold.
type Rule struct {
	Vital    Vital
	Above    float64
	Symptoms []string
	Points   int
	Flag     string
}

func (r Rule) applies(vitals VitalsSample, matched SymptomSet) bool {
	if r.Vital == "" && len(r.Symptoms) == 0 {
		return false
	}
	if r.Vital != "" {
		value, ok := vitals.Value(r.Vital)
		if !ok || !(value > r.Above) {
			return false
		}
	}
	if len(r.Symptoms) > 0 && !matched.HasAll(r.Symptoms...) {
		return false
	}
	return true
}

// Rubric is an additive, order-preserving scoring table.
type Rubric struct {
	Rules         []Rule
	MediumScore   int
	CriticalScore int
}

// CriticalFallbackFlag is raised when a critical score is reached without any
// rule contributing a flag of its own.
const CriticalFallbackFlag = "Critical risk score reached."

// HospitalRubric is the default rubric used for triage.
func HospitalRubric() Rubric {
	return Rubric{
		Rules: []Rule{
			{Vital: VitalPulse, Above: 110, Points: 2, Flag: "High pulse detected (>110 BPM)."},
			{Vital: VitalTemperature, Above: 38, Points: 2, Flag: "Fever detected (>38°C)."},
			{Symptoms: []string{SymptomChestPain}, Points: 4, Flag: "Chest pain reported."},
			{Symptoms: []string{SymptomBreathingDifficulty}, Points: 5, Flag: "Breathing difficulty reported."},
		},
		MediumScore:   3,
		CriticalScore: 6,
	}
}

// BasicRubric scores the outpatient profile, which flags respiratory distress
// and fluid loss instead of chest pain.
func BasicRubric() Rubric {
	return Rubric{
		Rules: []Rule{
			{Vital: VitalPulse, Above: 110, Points: 2, Flag: "High pulse detected (>110 BPM)."},
			{Vital: VitalTemperature, Above: 38, Points: 2, Flag: "Fever detected (>38°C)."},
			{Symptoms: []string{SymptomBreathingDifficulty}, Points: 5, Flag: "Shortness of breath can be urgent. Consider emergency care if severe."},
			{Symptoms: []string{SymptomVomiting, SymptomDiarrhea}, Points: 3, Flag: "Persistent vomiting/diarrhea can cause dehydration. Seek care if unable to keep fluids down."},
		},
		MediumScore:   3,
		CriticalScore: 6,
	}
}

// Score sums the points of every rule that fires and collects their flags in
// rule order. The score never goes below zero.
func (r Rubric) Score(vitals VitalsSample, matched SymptomSet) (int, []string) {
	score := 0
	flags := []string{}
	for _, rule := range r.Rules {
		if !rule.applies(vitals, matched) {
			continue
		}
		score += rule.Points
		if rule.Flag != "" {
			flags = append(flags, rule.Flag)
		}
	}
	if score < 0 {
		score = 0
	}
	return score, flags
}

// Level maps a score onto a RiskLevel.
func (r Rubric) Level(score int) RiskLevel {
	switch {
	case score >= r.CriticalScore:
		return RiskCritical
	case score >= r.MediumScore:
		return RiskMedium
	default:
		return RiskLow
	}
}
