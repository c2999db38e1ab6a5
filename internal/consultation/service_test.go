package consultation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mindbot-vr/internal/hospital"
	"mindbot-vr/internal/triage"
)

var (
	calm    = triage.VitalsSample{PulseBPM: 80, TemperatureC: 36.8, OxygenPercent: 98, AirQualityPPM: 600}
	febrile = triage.VitalsSample{PulseBPM: 118, TemperatureC: 38.6, OxygenPercent: 96, AirQualityPPM: 700}
)

func newTestService(repo *memoryRepo, sample triage.VitalsSample, guidance GuidanceClient, notifier Notifier) Service {
	return NewService(Dependencies{
		Repo:      repo,
		Vitals:    fixedVitals{sample: sample},
		Hospitals: testDirectory(),
		Guidance:  guidance,
		Notifier:  notifier,
		Logger:    zerolog.Nop(),
	})
}

func TestEnsureSession(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, calm, nil, nil)
	ctx := context.Background()

	id, err := svc.EnsureSession(ctx, "  abc  ")
	if err != nil || id != "abc" {
		t.Fatalf("EnsureSession() = %q, %v; want abc", id, err)
	}

	generated, err := svc.EnsureSession(ctx, "")
	if err != nil {
		t.Fatalf("EnsureSession(empty) unexpected error: %v", err)
	}
	if len(generated) != 32 || strings.Contains(generated, "-") {
		t.Fatalf("generated id = %q, want 32 hex chars", generated)
	}
	if !repo.sessions[generated] {
		t.Fatal("generated session was not stored")
	}

	if _, err := svc.EnsureSession(ctx, strings.Repeat("x", MaxSessionIDLength+1)); !errors.Is(err, ErrInvalidSessionID) {
		t.Fatalf("EnsureSession(long) error = %v, want ErrInvalidSessionID", err)
	}
}

func TestAskEmptyMessagePromptsWithoutStoringMessages(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, calm, nil, nil)

	res, err := svc.Ask(context.Background(), AskInput{SessionID: "s1", Message: "  \x00\x01  "})
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	if res.Reply != promptReply {
		t.Fatalf("Reply = %q, want prompt", res.Reply)
	}
	if res.Risk.RiskLevel != triage.RiskLow || res.Triage != nil || res.AutoEmergency != nil {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(repo.messages) != 0 || len(repo.symptoms) != 0 {
		t.Fatalf("stored %d messages and %d events, want none", len(repo.messages), len(repo.symptoms))
	}
	if len(repo.vitals["s1"]) != 1 {
		t.Fatalf("stored %d vitals, want 1", len(repo.vitals["s1"]))
	}
}

func TestAskLowRisk(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, calm, nil, notifier)

	res, err := svc.Ask(context.Background(), AskInput{SessionID: "s1", Message: "I have a fever and a bad cough and feel tired", Location: hospital.DefaultCenter})
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	svc.Wait()

	if res.Risk.RiskLevel != triage.RiskLow || res.AutoEmergency.Enabled || res.AutoEmergency.NearestHospital != nil {
		t.Fatalf("unexpected risk: %+v %+v", res.Risk, res.AutoEmergency)
	}
	if !strings.HasPrefix(res.Reply, "Risk level: Low (score 0)\nDetected symptoms: cough, fatigue, fever\n") {
		t.Fatalf("Reply = %q", res.Reply)
	}
	if !strings.Contains(res.Reply, disclaimer) {
		t.Fatalf("Reply missing disclaimer: %q", res.Reply)
	}
	if strings.Contains(res.Reply, "Additional AI guidance") {
		t.Fatalf("Reply has guidance without a client: %q", res.Reply)
	}

	msgs := repo.messagesFor("s1")
	if len(msgs) != 2 || msgs[0].Role != RoleUser || msgs[1].Role != RoleAssistant || msgs[1].Content != res.Reply {
		t.Fatalf("messages = %+v", msgs)
	}
	if len(repo.symptoms) != 1 || repo.symptoms[0].RiskScore != 0 {
		t.Fatalf("symptom events = %+v", repo.symptoms)
	}
	if len(repo.sos) != 0 || len(notifier.events) != 0 {
		t.Fatal("low risk must not raise an SOS")
	}
}

func TestAskEmergencyRaisesAutoSOS(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, febrile, nil, notifier)

	res, err := svc.Ask(context.Background(), AskInput{
		SessionID: "s2",
		Message:   "chest pain and shortness of breath",
		Location:  hospital.Point{Lat: 29.07, Lng: 31.1},
	})
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	svc.Wait()

	if res.Risk.RiskScore != 13 || !res.Risk.EmergencyMode {
		t.Fatalf("Risk = %+v, want score 13 emergency", res.Risk)
	}
	if !res.AutoEmergency.Enabled || res.AutoEmergency.NearestHospital == nil || res.AutoEmergency.NearestHospital.ID != "near" {
		t.Fatalf("AutoEmergency = %+v", res.AutoEmergency)
	}
	if len(res.Alerts) != 2 {
		t.Fatalf("Alerts = %v, want pulse and fever", res.Alerts)
	}
	for _, want := range []string{"Clinical red flags:", "- Chest pain reported.", "- Breathing difficulty reported."} {
		if !strings.Contains(res.Reply, want) {
			t.Fatalf("Reply missing %q: %q", want, res.Reply)
		}
	}

	if len(repo.sos) != 1 || repo.sos[0].Trigger != TriggerAuto || repo.sos[0].HospitalID != "near" {
		t.Fatalf("sos events = %+v", repo.sos)
	}
	if len(notifier.events) != 1 || notifier.events[0].Trigger != TriggerAuto {
		t.Fatalf("notified = %+v", notifier.events)
	}
	report := notifier.reports[0]
	if report == nil || report.Risk.RiskLevel != triage.RiskCritical || len(report.Analysis) != 1 {
		t.Fatalf("notification report = %+v", report)
	}
}

func TestAskNotifierFailureDoesNotFailRequest(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{err: errors.New("telegram down")}
	svc := newTestService(repo, febrile, nil, notifier)

	if _, err := svc.Ask(context.Background(), AskInput{SessionID: "s", Message: "chest pain"}); err != nil {
		t.Fatalf("Ask() error = %v, want nil", err)
	}
	svc.Wait()
	if len(notifier.events) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(notifier.events))
	}
}

func TestAskAppendsGuidance(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, calm, stubGuidance{text: "Drink water."}, nil)

	res, err := svc.Ask(context.Background(), AskInput{SessionID: "g", Message: "headache"})
	if err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}
	if !strings.HasSuffix(res.Reply, "\n\nAdditional AI guidance:\nDrink water.") {
		t.Fatalf("Reply = %q", res.Reply)
	}
}

func TestAskGuidanceFailureIsIgnored(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, calm, stubGuidance{err: errors.New("timeout")}, nil)

	res, err := svc.Ask(context.Background(), AskInput{SessionID: "g", Message: "headache"})
	if err != nil {
		t.Fatalf("Ask() error = %v, want nil", err)
	}
	if strings.Contains(res.Reply, "Additional AI guidance") {
		t.Fatalf("Reply = %q, want no guidance section", res.Reply)
	}
}

func TestAskStoreFailureIsFatal(t *testing.T) {
	repo := newMemoryRepo()
	repo.failOn = "AddSymptomEvent"
	svc := newTestService(repo, calm, nil, nil)

	if _, err := svc.Ask(context.Background(), AskInput{SessionID: "x", Message: "cough"}); !errors.Is(err, errStore) {
		t.Fatalf("Ask() error = %v, want store error", err)
	}
}

func TestVitals(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, febrile, nil, nil)

	res, err := svc.Vitals(context.Background(), "v")
	if err != nil {
		t.Fatalf("Vitals() unexpected error: %v", err)
	}
	if res.Vitals != febrile || len(res.Alerts) != 2 {
		t.Fatalf("Vitals() = %+v", res)
	}
	if res.Risk.RiskScore != 4 || res.Risk.RiskLevel != triage.RiskMedium || !res.Risk.HospitalNeeded {
		t.Fatalf("Risk = %+v, want Medium 4", res.Risk)
	}
	if res.Timestamp <= 0 {
		t.Fatalf("Timestamp = %v", res.Timestamp)
	}
	if len(repo.vitals["v"]) != 1 {
		t.Fatal("vitals not persisted")
	}
}

func TestSOS(t *testing.T) {
	repo := newMemoryRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(repo, calm, nil, notifier)

	at := hospital.Point{Lat: 28.81, Lng: 30.91}
	res, err := svc.SOS(context.Background(), "", at)
	if err != nil {
		t.Fatalf("SOS() unexpected error: %v", err)
	}
	svc.Wait()

	if res.SessionID == "" || res.NearestHospital.ID != "far" || res.InputLocation != at {
		t.Fatalf("SOS() = %+v", res)
	}
	if res.NearestHospital.ETAMinutes < 1 {
		t.Fatalf("ETAMinutes = %d", res.NearestHospital.ETAMinutes)
	}
	if len(repo.sos) != 1 || repo.sos[0].Trigger != TriggerManual || repo.sos[0].Lat != at.Lat {
		t.Fatalf("sos events = %+v", repo.sos)
	}
	if len(notifier.events) != 1 {
		t.Fatalf("notified %d times, want 1", len(notifier.events))
	}
}

func TestReport(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, calm, nil, nil)
	ctx := context.Background()

	empty, err := svc.Report(ctx, "r")
	if err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}
	if empty.Risk.RiskLevel != triage.RiskLow || empty.Risk.RiskScore != 0 || len(empty.SOSEvents) != 0 {
		t.Fatalf("empty report = %+v", empty)
	}

	for i := 0; i < 25; i++ {
		if _, err := svc.Ask(ctx, AskInput{SessionID: "r", Message: "cough"}); err != nil {
			t.Fatalf("Ask() unexpected error: %v", err)
		}
	}
	if _, err := svc.Ask(ctx, AskInput{SessionID: "r", Message: "chest pain"}); err != nil {
		t.Fatalf("Ask() unexpected error: %v", err)
	}

	data, err := svc.Report(ctx, "r")
	if err != nil {
		t.Fatalf("Report() unexpected error: %v", err)
	}
	if len(data.Vitals) != reportHistoryLimit || len(data.Symptoms) != reportHistoryLimit || len(data.Analysis) != reportAnalysisLimit {
		t.Fatalf("report sizes: vitals=%d symptoms=%d analysis=%d", len(data.Vitals), len(data.Symptoms), len(data.Analysis))
	}
	if data.Risk.RiskScore != 4 || data.Risk.RiskLevel != triage.RiskMedium {
		t.Fatalf("latest risk = %+v, want the chest pain turn", data.Risk)
	}
}

func TestReady(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo, calm, nil, nil)
	if err := svc.Ready(context.Background()); err != nil {
		t.Fatalf("Ready() = %v", err)
	}
	repo.failOn = "Ping"
	if err := svc.Ready(context.Background()); err == nil {
		t.Fatal("Ready() expected error")
	}
}
