package consultation

import (
	"time"

	"mindbot-vr/internal/hospital"
	"mindbot-vr/internal/triage"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type SOSTrigger string

const (
	TriggerManual SOSTrigger = "manual"
	TriggerAuto   SOSTrigger = "auto"
)

// MaxSessionIDLength bounds client-supplied session ids.
const MaxSessionIDLength = 64

type Message struct {
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type VitalsRecord struct {
	triage.VitalsSample
	CreatedAt time.Time `json:"created_at"`
}

// SymptomEvent is one assessed user message.
type SymptomEvent struct {
	SessionID       string            `json:"session_id"`
	RawMessage      string            `json:"raw_message"`
	MatchedSymptoms triage.SymptomSet `json:"matched_symptoms"`
	RiskScore       int               `json:"risk_score"`
	RiskLevel       triage.RiskLevel  `json:"risk_level"`
	Recommendation  string            `json:"recommendation"`
	HospitalNeeded  bool              `json:"hospital_needed"`
	EmergencyMode   bool              `json:"emergency_mode"`
	CreatedAt       time.Time         `json:"created_at"`
}

// SOSEvent records an emergency activation and the hospital it was routed to.
type SOSEvent struct {
	SessionID     string     `json:"session_id"`
	Trigger       SOSTrigger `json:"trigger"`
	Lat           float64    `json:"lat"`
	Lng           float64    `json:"lng"`
	HospitalID    string     `json:"hospital_id"`
	HospitalName  string     `json:"hospital_name"`
	HospitalPhone string     `json:"hospital_phone"`
	DistanceKm    float64    `json:"distance_km"`
	ETAMinutes    int        `json:"eta_minutes"`
	CreatedAt     time.Time  `json:"created_at"`
}

func newSOSEvent(sessionID string, trigger SOSTrigger, at hospital.Point, h hospital.Match) SOSEvent {
	return SOSEvent{
		SessionID:     sessionID,
		Trigger:       trigger,
		Lat:           at.Lat,
		Lng:           at.Lng,
		HospitalID:    h.ID,
		HospitalName:  h.Name,
		HospitalPhone: h.Phone,
		DistanceKm:    h.DistanceKm,
		ETAMinutes:    h.ETAMinutes,
	}
}

// Risk is the public subset of a triage result.
type Risk struct {
	RiskLevel      triage.RiskLevel `json:"risk_level"`
	RiskScore      int              `json:"risk_score"`
	Recommendation string           `json:"recommendation"`
	HospitalNeeded bool             `json:"hospital_needed"`
	EmergencyMode  bool             `json:"emergency_mode"`
}

func riskOf(r triage.Result) Risk {
	return Risk{
		RiskLevel:      r.RiskLevel,
		RiskScore:      r.RiskScore,
		Recommendation: r.Recommendation,
		HospitalNeeded: r.HospitalNeeded,
		EmergencyMode:  r.EmergencyMode,
	}
}

type Stats struct {
	TotalSessions    int64   `json:"total_users"`
	Emergencies      int64   `json:"emergencies"`
	AverageRiskScore float64 `json:"average_risk_score"`
}

// ReportData is everything a session report shows, newest first.
type ReportData struct {
	SessionID   string         `json:"session_id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Risk        Risk           `json:"risk"`
	Vitals      []VitalsRecord `json:"vitals"`
	Symptoms    []SymptomEvent `json:"symptoms"`
	SOSEvents   []SOSEvent     `json:"sos_events"`
	Analysis    []Message      `json:"analysis"`
}
