// Package report renders session summaries as PDF and delivers SOS alerts.
package report

import (
	"fmt"
	"strings"
	"time"

	"mindbot-vr/internal/consultation"
)

type blockKind int

const (
	blockTitle blockKind = iota
	blockHeading
	blockText
	blockFootnote
)

// block is one paragraph of the report before it is laid out on a page.
type block struct {
	kind blockKind
	text string
}

const (
	reportTitle      = "MindBot VR - Hospital Triage Report"
	noSOSLine        = "No SOS activations recorded."
	reportDisclaimer = "Medical disclaimer: This system provides triage guidance and risk stratification only. " +
		"It is not a diagnosis. Clinical judgment and local protocols must be followed."
	timeLayout = "2006-01-02 15:04:05"
)

// FileName is the download name of a session report. Characters outside
// [A-Za-z0-9_-] are replaced so the name is safe in headers and on disk.
func FileName(sessionID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, sessionID)
	if safe == "" {
		safe = "session"
	}
	return fmt.Sprintf("mindbot_vr_hospital_report_%s.pdf", safe)
}

func buildDocument(data *consultation.ReportData) []block {
	doc := []block{
		{blockTitle, reportTitle},
		{blockText, "Generated: " + data.GeneratedAt.Format(timeLayout)},
		{blockText, "Session: " + data.SessionID},

		{blockHeading, "Patient Summary"},
		{blockText, fmt.Sprintf("Risk Level: %s  |  Risk Score: %d", data.Risk.RiskLevel, data.Risk.RiskScore)},
		{blockText, "Recommendation: " + data.Risk.Recommendation},

		{blockHeading, "Vital Readings (latest 20)"},
	}
	for _, v := range data.Vitals {
		doc = append(doc, block{blockText, fmt.Sprintf(
			"%s  |  Pulse %.1f BPM  |  Temp %.1f °C  |  O₂ %.1f%%  |  Air %.0f ppm",
			stamp(v.CreatedAt), v.PulseBPM, v.TemperatureC, v.OxygenPercent, v.AirQualityPPM)})
	}

	doc = append(doc, block{blockHeading, "Symptom History (latest 20)"})
	for _, s := range data.Symptoms {
		symptoms := "none"
		if len(s.MatchedSymptoms) > 0 {
			symptoms = strings.Join(s.MatchedSymptoms.Sorted(), ", ")
		}
		doc = append(doc, block{blockText, fmt.Sprintf(
			"%s  |  Score %d (%s)  |  Symptoms: %s", stamp(s.CreatedAt), s.RiskScore, s.RiskLevel, symptoms)})
	}

	doc = append(doc, block{blockHeading, "Emergency Actions"})
	if len(data.SOSEvents) == 0 {
		doc = append(doc, block{blockText, noSOSLine})
	}
	for _, e := range data.SOSEvents {
		doc = append(doc, block{blockText, fmt.Sprintf(
			"%s  |  Trigger: %s  |  %s  |  %.2f km  |  ETA %d min",
			stamp(e.CreatedAt), e.Trigger, e.HospitalName, e.DistanceKm, e.ETAMinutes)})
	}

	doc = append(doc, block{blockHeading, "AI Analysis (latest 10)"})
	for _, m := range data.Analysis {
		doc = append(doc, block{blockText, fmt.Sprintf("[%s] %s", stamp(m.CreatedAt), m.Content)})
	}

	return append(doc, block{blockFootnote, reportDisclaimer})
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}
