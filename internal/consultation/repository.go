package consultation

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"mindbot-vr/internal/triage"
)

type Repository interface {
	EnsureSession(ctx context.Context, id string) error
	AddMessage(ctx context.Context, sessionID string, role Role, content string) error
	AddVitals(ctx context.Context, sessionID string, v triage.VitalsSample) error
	AddSymptomEvent(ctx context.Context, e SymptomEvent) error
	AddSOSEvent(ctx context.Context, e SOSEvent) error

	RecentVitals(ctx context.Context, sessionID string, limit int) ([]VitalsRecord, error)
	RecentSymptomEvents(ctx context.Context, sessionID string, limit int) ([]SymptomEvent, error)
	RecentSOSEvents(ctx context.Context, sessionID string, limit int) ([]SOSEvent, error)
	RecentMessages(ctx context.Context, sessionID string, role Role, limit int) ([]Message, error)

	Stats(ctx context.Context) (Stats, error)
	ExportSymptomEvents(ctx context.Context, limit int) ([]SymptomEvent, error)
	Ping(ctx context.Context) error
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) EnsureSession(ctx context.Context, id string) error {
	query := `INSERT INTO sessions (id, created_at) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("ensure session: %w", err)
	}
	return nil
}

func (r *postgresRepo) AddMessage(ctx context.Context, sessionID string, role Role, content string) error {
	query := `INSERT INTO messages (session_id, role, content, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.ExecContext(ctx, query, sessionID, role, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *postgresRepo) AddVitals(ctx context.Context, sessionID string, v triage.VitalsSample) error {
	query := `
		INSERT INTO vitals (session_id, pulse_bpm, temperature_c, oxygen_percent, air_quality_ppm, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		sessionID, v.PulseBPM, v.TemperatureC, v.OxygenPercent, v.AirQualityPPM, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert vitals: %w", err)
	}
	return nil
}

func (r *postgresRepo) AddSymptomEvent(ctx context.Context, e SymptomEvent) error {
	matchedJSON, err := json.Marshal(e.MatchedSymptoms)
	if err != nil {
		return err
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO symptom_events
			(session_id, raw_message, matched_symptoms, risk_score, risk_level, recommendation, hospital_needed, emergency_mode, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.SessionID, e.RawMessage, string(matchedJSON), e.RiskScore, e.RiskLevel, e.Recommendation,
		e.HospitalNeeded, e.EmergencyMode, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert symptom event: %w", err)
	}
	return nil
}

func (r *postgresRepo) AddSOSEvent(ctx context.Context, e SOSEvent) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO sos_events
			(session_id, trigger, lat, lng, hospital_id, hospital_name, hospital_phone, distance_km, eta_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.SessionID, e.Trigger, e.Lat, e.Lng, e.HospitalID, e.HospitalName, e.HospitalPhone,
		e.DistanceKm, e.ETAMinutes, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sos event: %w", err)
	}
	return nil
}

func (r *postgresRepo) RecentVitals(ctx context.Context, sessionID string, limit int) ([]VitalsRecord, error) {
	query := `
		SELECT pulse_bpm, temperature_c, oxygen_percent, air_quality_ppm, created_at
		FROM vitals WHERE session_id = $1
		ORDER BY id DESC LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query vitals: %w", err)
	}
	defer rows.Close()

	out := []VitalsRecord{}
	for rows.Next() {
		var v VitalsRecord
		if err := rows.Scan(&v.PulseBPM, &v.TemperatureC, &v.OxygenPercent, &v.AirQualityPPM, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *postgresRepo) RecentSymptomEvents(ctx context.Context, sessionID string, limit int) ([]SymptomEvent, error) {
	query := `
		SELECT session_id, raw_message, matched_symptoms, risk_score, risk_level, recommendation,
			hospital_needed, emergency_mode, created_at
		FROM symptom_events WHERE session_id = $1
		ORDER BY id DESC LIMIT $2
	`
	return r.querySymptomEvents(ctx, query, sessionID, limit)
}

func (r *postgresRepo) ExportSymptomEvents(ctx context.Context, limit int) ([]SymptomEvent, error) {
	query := `
		SELECT session_id, raw_message, matched_symptoms, risk_score, risk_level, recommendation,
			hospital_needed, emergency_mode, created_at
		FROM symptom_events
		ORDER BY id DESC LIMIT $1
	`
	return r.querySymptomEvents(ctx, query, limit)
}

func (r *postgresRepo) querySymptomEvents(ctx context.Context, query string, args ...any) ([]SymptomEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query symptom events: %w", err)
	}
	defer rows.Close()

	out := []SymptomEvent{}
	for rows.Next() {
		var e SymptomEvent
		var matchedJSON []byte
		err := rows.Scan(&e.SessionID, &e.RawMessage, &matchedJSON, &e.RiskScore, &e.RiskLevel,
			&e.Recommendation, &e.HospitalNeeded, &e.EmergencyMode, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		e.MatchedSymptoms = triage.NewSymptomSet()
		if len(matchedJSON) > 0 {
			if err := json.Unmarshal(matchedJSON, &e.MatchedSymptoms); err != nil {
				return nil, fmt.Errorf("failed to unmarshal matched symptoms: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *postgresRepo) RecentSOSEvents(ctx context.Context, sessionID string, limit int) ([]SOSEvent, error) {
	query := `
		SELECT session_id, trigger, lat, lng, hospital_id, hospital_name, hospital_phone, distance_km, eta_minutes, created_at
		FROM sos_events WHERE session_id = $1
		ORDER BY id DESC LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query sos events: %w", err)
	}
	defer rows.Close()

	out := []SOSEvent{}
	for rows.Next() {
		var e SOSEvent
		err := rows.Scan(&e.SessionID, &e.Trigger, &e.Lat, &e.Lng, &e.HospitalID, &e.HospitalName,
			&e.HospitalPhone, &e.DistanceKm, &e.ETAMinutes, &e.CreatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *postgresRepo) RecentMessages(ctx context.Context, sessionID string, role Role, limit int) ([]Message, error) {
	query := `
		SELECT session_id, role, content, created_at
		FROM messages WHERE session_id = $1 AND role = $2
		ORDER BY id DESC LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, sessionID, role, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	out := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Stats(ctx context.Context) (Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM sessions),
			(SELECT COUNT(*) FROM sos_events),
			(SELECT COALESCE(AVG(risk_score), 0) FROM symptom_events)
	`
	var s Stats
	if err := r.db.QueryRowContext(ctx, query).Scan(&s.TotalSessions, &s.Emergencies, &s.AverageRiskScore); err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}

func (r *postgresRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
