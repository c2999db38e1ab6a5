package consultation

import (
	"context"
	"errors"
	"sync"
	"time"

	"mindbot-vr/internal/hospital"
	"mindbot-vr/internal/triage"
)

type memoryRepo struct {
	mu       sync.Mutex
	sessions map[string]bool
	messages []Message
	vitals   map[string][]VitalsRecord
	symptoms []SymptomEvent
	sos      []SOSEvent
	failOn   string
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{sessions: map[string]bool{}, vitals: map[string][]VitalsRecord{}}
}

var errStore = errors.New("store unavailable")

func (m *memoryRepo) check(op string) error {
	if m.failOn == op {
		return errStore
	}
	return nil
}

func (m *memoryRepo) EnsureSession(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("EnsureSession"); err != nil {
		return err
	}
	m.sessions[id] = true
	return nil
}

func (m *memoryRepo) AddMessage(ctx context.Context, sessionID string, role Role, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("AddMessage"); err != nil {
		return err
	}
	m.messages = append(m.messages, Message{SessionID: sessionID, Role: role, Content: content, CreatedAt: time.Now()})
	return nil
}

func (m *memoryRepo) AddVitals(ctx context.Context, sessionID string, v triage.VitalsSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("AddVitals"); err != nil {
		return err
	}
	m.vitals[sessionID] = append(m.vitals[sessionID], VitalsRecord{VitalsSample: v, CreatedAt: time.Now()})
	return nil
}

func (m *memoryRepo) AddSymptomEvent(ctx context.Context, e SymptomEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("AddSymptomEvent"); err != nil {
		return err
	}
	m.symptoms = append(m.symptoms, e)
	return nil
}

func (m *memoryRepo) AddSOSEvent(ctx context.Context, e SOSEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("AddSOSEvent"); err != nil {
		return err
	}
	m.sos = append(m.sos, e)
	return nil
}

func (m *memoryRepo) RecentVitals(ctx context.Context, sessionID string, limit int) ([]VitalsRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newestFirst(m.vitals[sessionID], limit, func(VitalsRecord) bool { return true }), nil
}

func (m *memoryRepo) RecentSymptomEvents(ctx context.Context, sessionID string, limit int) ([]SymptomEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newestFirst(m.symptoms, limit, func(e SymptomEvent) bool { return e.SessionID == sessionID }), nil
}

func (m *memoryRepo) RecentSOSEvents(ctx context.Context, sessionID string, limit int) ([]SOSEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newestFirst(m.sos, limit, func(e SOSEvent) bool { return e.SessionID == sessionID }), nil
}

func (m *memoryRepo) RecentMessages(ctx context.Context, sessionID string, role Role, limit int) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newestFirst(m.messages, limit, func(msg Message) bool { return msg.SessionID == sessionID && msg.Role == role }), nil
}

func (m *memoryRepo) Stats(ctx context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := Stats{TotalSessions: int64(len(m.sessions)), Emergencies: int64(len(m.sos))}
	if len(m.symptoms) > 0 {
		total := 0
		for _, e := range m.symptoms {
			total += e.RiskScore
		}
		s.AverageRiskScore = float64(total) / float64(len(m.symptoms))
	}
	return s, nil
}

func (m *memoryRepo) ExportSymptomEvents(ctx context.Context, limit int) ([]SymptomEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return newestFirst(m.symptoms, limit, func(SymptomEvent) bool { return true }), nil
}

func (m *memoryRepo) Ping(ctx context.Context) error {
	return m.check("Ping")
}

func (m *memoryRepo) messagesFor(sessionID string) []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Message
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	return out
}

func newestFirst[T any](items []T, limit int, keep func(T) bool) []T {
	out := []T{}
	for i := len(items) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(items[i]) {
			out = append(out, items[i])
		}
	}
	return out
}

// fixedVitals always reports the same reading.
type fixedVitals struct {
	sample triage.VitalsSample
}

func (f fixedVitals) Sample(string) triage.VitalsSample { return f.sample }

type stubGuidance struct {
	text string
	err  error
}

func (s stubGuidance) Guidance(context.Context, string) (string, error) { return s.text, s.err }

type recordingNotifier struct {
	mu      sync.Mutex
	events  []SOSEvent
	reports []*ReportData
	err     error
}

func (n *recordingNotifier) NotifySOS(ctx context.Context, event SOSEvent, report *ReportData) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	n.reports = append(n.reports, report)
	return n.err
}

func testDirectory() *hospital.Directory {
	dir, err := hospital.Parse([]byte(`
hospitals:
  - {id: near, name: Near Hospital, lat: 29.07, lng: 31.10, phone: "123"}
  - {id: far, name: Far Hospital, lat: 28.80, lng: 30.90, phone: "123"}
`))
	if err != nil {
		panic(err)
	}
	return dir
}
