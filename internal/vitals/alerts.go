package vitals

import "mindbot-vr/internal/triage"

const (
	AlertHighPulse = "Pulse is high (> 110 BPM)."
	AlertFever     = "Fever alert: temperature is above 38°C."
)

// Alerts lists the warnings shown next to a reading. The thresholds mirror
// the hospital rubric.
func Alerts(s triage.VitalsSample) []string {
	alerts := []string{}
	if s.PulseBPM > 110 {
		alerts = append(alerts, AlertHighPulse)
	}
	if s.TemperatureC > 38 {
		alerts = append(alerts, AlertFever)
	}
	return alerts
}
