package consultation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"mindbot-vr/internal/hospital"
	"mindbot-vr/internal/triage"
	"mindbot-vr/internal/vitals"
)

var ErrInvalidSessionID = errors.New("invalid session id")

const (
	promptReply = "Describe symptoms (example: fever + cough + fatigue) and duration."
	disclaimer  = "Medical disclaimer: This is triage guidance, not a diagnosis. Follow local protocols."

	reportHistoryLimit  = 20
	reportAnalysisLimit = 10
	notifyTimeout       = 30 * time.Second
)

// GuidanceClient supplies optional free-text advice from a language model.
type GuidanceClient interface {
	Guidance(ctx context.Context, message string) (string, error)
}

// Notifier delivers SOS alerts to staff. report may be nil when it could not
// be assembled.
type Notifier interface {
	NotifySOS(ctx context.Context, event SOSEvent, report *ReportData) error
}

type VitalsSource interface {
	Sample(sessionID string) triage.VitalsSample
}

type HospitalDirectory interface {
	All() []hospital.Hospital
	Nearest(p hospital.Point) hospital.Match
}

type Service interface {
	EnsureSession(ctx context.Context, id string) (string, error)
	Ask(ctx context.Context, in AskInput) (*AskResult, error)
	Vitals(ctx context.Context, sessionID string) (*VitalsResult, error)
	SOS(ctx context.Context, sessionID string, at hospital.Point) (*SOSResult, error)
	Report(ctx context.Context, sessionID string) (*ReportData, error)
	Hospitals() []hospital.Hospital
	Ready(ctx context.Context) error
	// Wait blocks until background notifications have finished.
	Wait()
}

type AskInput struct {
	SessionID string
	Message   string
	Location  hospital.Point
}

type AutoEmergency struct {
	Enabled         bool            `json:"enabled"`
	NearestHospital *hospital.Match `json:"nearest_hospital"`
}

type AskResult struct {
	SessionID     string               `json:"session_id"`
	Reply         string               `json:"reply"`
	Vitals        *triage.VitalsSample `json:"vitals,omitempty"`
	Alerts        []string             `json:"alerts,omitempty"`
	Risk          Risk                 `json:"risk"`
	Triage        *triage.Result       `json:"triage,omitempty"`
	AutoEmergency *AutoEmergency       `json:"auto_emergency,omitempty"`
}

type VitalsResult struct {
	SessionID string              `json:"session_id"`
	Vitals    triage.VitalsSample `json:"vitals"`
	Alerts    []string            `json:"alerts"`
	Risk      Risk                `json:"risk"`
	Timestamp float64             `json:"ts"`
}

type SOSResult struct {
	SessionID       string         `json:"session_id"`
	NearestHospital hospital.Match `json:"nearest_hospital"`
	InputLocation   hospital.Point `json:"input_location"`
}

type Dependencies struct {
	Repo      Repository
	Engine    *triage.Engine
	Vitals    VitalsSource
	Hospitals HospitalDirectory
	// Guidance and Notifier are optional.
	Guidance GuidanceClient
	Notifier Notifier
	Logger   zerolog.Logger
}

type service struct {
	repo      Repository
	engine    *triage.Engine
	vitals    VitalsSource
	hospitals HospitalDirectory
	guidance  GuidanceClient
	notifier  Notifier
	log       zerolog.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

func NewService(deps Dependencies) Service {
	engine := deps.Engine
	if engine == nil {
		engine = triage.NewEngine(triage.ProfileHospital)
	}
	return &service{
		repo:      deps.Repo,
		engine:    engine,
		vitals:    deps.Vitals,
		hospitals: deps.Hospitals,
		guidance:  deps.Guidance,
		notifier:  deps.Notifier,
		log:       deps.Logger,
		now:       time.Now,
	}
}

// EnsureSession returns a usable session id, generating one when id is
// blank, and makes sure the session row exists.
func (s *service) EnsureSession(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	if len(id) > MaxSessionIDLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidSessionID, MaxSessionIDLength)
	}
	if err := s.repo.EnsureSession(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *service) sampleVitals(ctx context.Context, sessionID string) (triage.VitalsSample, error) {
	sample := s.vitals.Sample(sessionID)
	if err := s.repo.AddVitals(ctx, sessionID, sample); err != nil {
		return triage.VitalsSample{}, err
	}
	return sample, nil
}

// Ask runs one triage turn for a patient message.
func (s *service) Ask(ctx context.Context, in AskInput) (*AskResult, error) {
	sessionID, err := s.EnsureSession(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}
	message := SanitizeText(in.Message)

	if message == "" {
		sample, err := s.sampleVitals(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		result := s.engine.Assess("", sample)
		return &AskResult{SessionID: sessionID, Reply: promptReply, Risk: riskOf(result)}, nil
	}

	if err := s.repo.AddMessage(ctx, sessionID, RoleUser, message); err != nil {
		return nil, err
	}
	sample, err := s.sampleVitals(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result := s.engine.Assess(message, sample)

	event := SymptomEvent{
		SessionID:       sessionID,
		RawMessage:      message,
		MatchedSymptoms: result.MatchedSymptoms,
		RiskScore:       result.RiskScore,
		RiskLevel:       result.RiskLevel,
		Recommendation:  result.Recommendation,
		HospitalNeeded:  result.HospitalNeeded,
		EmergencyMode:   result.EmergencyMode,
	}
	if err := s.repo.AddSymptomEvent(ctx, event); err != nil {
		return nil, err
	}

	reply := buildReply(result, s.fetchGuidance(ctx, sessionID, message))

	auto := &AutoEmergency{Enabled: result.EmergencyMode}
	var sos *SOSEvent
	if result.EmergencyMode {
		nearest := s.hospitals.Nearest(in.Location)
		e := newSOSEvent(sessionID, TriggerAuto, in.Location, nearest)
		if err := s.repo.AddSOSEvent(ctx, e); err != nil {
			return nil, err
		}
		auto.NearestHospital = &nearest
		sos = &e
	}

	if err := s.repo.AddMessage(ctx, sessionID, RoleAssistant, reply); err != nil {
		return nil, err
	}
	if sos != nil {
		s.notify(*sos)
	}

	return &AskResult{
		SessionID:     sessionID,
		Reply:         reply,
		Vitals:        &sample,
		Alerts:        vitals.Alerts(sample),
		Risk:          riskOf(result),
		Triage:        &result,
		AutoEmergency: auto,
	}, nil
}

func (s *service) fetchGuidance(ctx context.Context, sessionID, message string) string {
	if s.guidance == nil {
		return ""
	}
	text, err := s.guidance.Guidance(ctx, message)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", sessionID).Msg("llm guidance unavailable")
		return ""
	}
	return text
}

func buildReply(result triage.Result, guidance string) string {
	lines := []string{fmt.Sprintf("Risk level: %s (score %d)", result.RiskLevel, result.RiskScore)}
	if len(result.MatchedSymptoms) > 0 {
		lines = append(lines, "Detected symptoms: "+strings.Join(result.MatchedSymptoms.Sorted(), ", "))
	}
	if len(result.RedFlags) > 0 {
		lines = append(lines, "Clinical red flags:")
		for _, flag := range result.RedFlags {
			lines = append(lines, "- "+flag)
		}
	}
	lines = append(lines, result.Recommendation)
	if p := result.Pattern; p != nil {
		lines = append(lines, fmt.Sprintf("Possible pattern: %s (confidence %.0f%%). %s", p.Condition, p.Confidence*100, p.Advice))
	}
	lines = append(lines, "", disclaimer)
	if guidance != "" {
		lines = append(lines, "", "Additional AI guidance:", guidance)
	}
	return strings.Join(lines, "\n")
}

func (s *service) Vitals(ctx context.Context, sessionID string) (*VitalsResult, error) {
	sessionID, err := s.EnsureSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sample, err := s.sampleVitals(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	return &VitalsResult{
		SessionID: sessionID,
		Vitals:    sample,
		Alerts:    vitals.Alerts(sample),
		Risk:      riskOf(s.engine.Assess("", sample)),
		Timestamp: float64(now.UnixNano()) / 1e9,
	}, nil
}

func (s *service) SOS(ctx context.Context, sessionID string, at hospital.Point) (*SOSResult, error) {
	sessionID, err := s.EnsureSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	nearest := s.hospitals.Nearest(at)
	event := newSOSEvent(sessionID, TriggerManual, at, nearest)
	if err := s.repo.AddSOSEvent(ctx, event); err != nil {
		return nil, err
	}
	s.notify(event)

	return &SOSResult{SessionID: sessionID, NearestHospital: nearest, InputLocation: at}, nil
}

func (s *service) Report(ctx context.Context, sessionID string) (*ReportData, error) {
	sessionID, err := s.EnsureSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.collectReport(ctx, sessionID)
}

func (s *service) collectReport(ctx context.Context, sessionID string) (*ReportData, error) {
	vitalsRows, err := s.repo.RecentVitals(ctx, sessionID, reportHistoryLimit)
	if err != nil {
		return nil, err
	}
	symptoms, err := s.repo.RecentSymptomEvents(ctx, sessionID, reportHistoryLimit)
	if err != nil {
		return nil, err
	}
	sosEvents, err := s.repo.RecentSOSEvents(ctx, sessionID, reportHistoryLimit)
	if err != nil {
		return nil, err
	}
	analysis, err := s.repo.RecentMessages(ctx, sessionID, RoleAssistant, reportAnalysisLimit)
	if err != nil {
		return nil, err
	}

	risk := Risk{RiskLevel: triage.RiskLow}
	if len(symptoms) > 0 {
		latest := symptoms[0]
		risk = Risk{
			RiskLevel:      latest.RiskLevel,
			RiskScore:      latest.RiskScore,
			Recommendation: latest.Recommendation,
			HospitalNeeded: latest.HospitalNeeded,
			EmergencyMode:  latest.EmergencyMode,
		}
	}

	return &ReportData{
		SessionID:   sessionID,
		GeneratedAt: s.now(),
		Risk:        risk,
		Vitals:      vitalsRows,
		Symptoms:    symptoms,
		SOSEvents:   sosEvents,
		Analysis:    analysis,
	}, nil
}

func (s *service) Hospitals() []hospital.Hospital {
	return s.hospitals.All()
}

func (s *service) Ready(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// notify hands the SOS to the notifier in the background. Failures are
// logged and never reach the caller.
func (s *service) notify(event SOSEvent) {
	if s.notifier == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		report, err := s.collectReport(ctx, event.SessionID)
		if err != nil {
			s.log.Warn().Err(err).Str("session_id", event.SessionID).Msg("could not assemble sos report")
			report = nil
		}
		if err := s.notifier.NotifySOS(ctx, event, report); err != nil {
			s.log.Warn().Err(err).Str("session_id", event.SessionID).Msg("sos notification failed")
			return
		}
		s.log.Info().Str("session_id", event.SessionID).Str("trigger", string(event.Trigger)).Msg("sos notification sent")
	}()
}

func (s *service) Wait() {
	s.wg.Wait()
}
