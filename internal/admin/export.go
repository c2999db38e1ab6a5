package admin

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"mindbot-vr/internal/consultation"
)

// DefaultExportLimit is how many of the latest symptom events an export holds.
const DefaultExportLimit = 500

const exportFileName = "mindbot_vr_export.csv"

var exportCSVHeaders = []string{
	"session_id",
	"raw_message",
	"matched_symptoms_json",
	"risk_score",
	"risk_level",
	"hospital_needed",
	"emergency_mode",
	"created_at",
}

// WriteCSV writes events as CSV with a header row.
func WriteCSV(w io.Writer, events []consultation.SymptomEvent) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportCSVHeaders); err != nil {
		return err
	}
	for _, e := range events {
		symptoms, err := json.Marshal(e.MatchedSymptoms)
		if err != nil {
			return err
		}
		if err := writer.Write([]string{
			e.SessionID,
			e.RawMessage,
			string(symptoms),
			strconv.Itoa(e.RiskScore),
			string(e.RiskLevel),
			strconv.FormatBool(e.HospitalNeeded),
			strconv.FormatBool(e.EmergencyMode),
			e.CreatedAt.UTC().Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
