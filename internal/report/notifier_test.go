package report

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"mindbot-vr/internal/consultation"
)

type sentDocument struct {
	chatID   int64
	data     []byte
	fileName string
}

type fakeTelegram struct {
	messages  []string
	documents []sentDocument
	msgErr    error
	docErr    error
}

func (f *fakeTelegram) SendMessage(_ context.Context, chatID int64, text string) error {
	if f.msgErr != nil {
		return f.msgErr
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeTelegram) SendDocument(_ context.Context, chatID int64, data []byte, fileName string) error {
	if f.docErr != nil {
		return f.docErr
	}
	f.documents = append(f.documents, sentDocument{chatID, data, fileName})
	return nil
}

var sosEvent = consultation.SOSEvent{
	SessionID:     "abc123",
	Trigger:       consultation.TriggerManual,
	Lat:           29.0661,
	Lng:           31.0994,
	HospitalName:  "Beni Suef General Hospital",
	HospitalPhone: "123",
	DistanceKm:    0.8,
	ETAMinutes:    1,
}

func TestNewNotifierDisabled(t *testing.T) {
	if n := NewNotifier(nil, 42, nil, zerolog.Nop()); n != nil {
		t.Fatal("notifier without telegram client should be nil")
	}
	if n := NewNotifier(&fakeTelegram{}, 0, nil, zerolog.Nop()); n != nil {
		t.Fatal("notifier without chat id should be nil")
	}
}

func TestNotifySOSSendsAlertAndReport(t *testing.T) {
	tg := &fakeTelegram{}
	renderer := &stubRenderer{pdf: []byte("%PDF")}
	n := NewNotifier(tg, 42, renderer, zerolog.Nop())

	if err := n.NotifySOS(context.Background(), sosEvent, sampleReport()); err != nil {
		t.Fatalf("NotifySOS: %v", err)
	}
	if len(tg.messages) != 1 || !strings.Contains(tg.messages[0], "Beni Suef General Hospital (123)") {
		t.Fatalf("messages = %q", tg.messages)
	}
	if len(tg.documents) != 1 {
		t.Fatalf("documents = %d, want 1", len(tg.documents))
	}
	doc := tg.documents[0]
	if doc.chatID != 42 || doc.fileName != "mindbot_vr_hospital_report_abc123.pdf" || string(doc.data) != "%PDF" {
		t.Fatalf("document = %+v", doc)
	}
}

func TestNotifySOSWithoutPDF(t *testing.T) {
	tests := []struct {
		name     string
		report   *consultation.ReportData
		renderer *stubRenderer
		calls    int
	}{
		{name: "no report data", report: nil, renderer: &stubRenderer{pdf: []byte("%PDF")}, calls: 0},
		{name: "render fails", report: sampleReport(), renderer: &stubRenderer{err: ErrFontUnavailable}, calls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := &fakeTelegram{}
			n := NewNotifier(tg, 42, tt.renderer, zerolog.Nop())
			if err := n.NotifySOS(context.Background(), sosEvent, tt.report); err != nil {
				t.Fatalf("NotifySOS: %v", err)
			}
			if len(tg.messages) != 1 || len(tg.documents) != 0 {
				t.Fatalf("messages = %d, documents = %d", len(tg.messages), len(tg.documents))
			}
			if tt.renderer.calls != tt.calls {
				t.Fatalf("render calls = %d, want %d", tt.renderer.calls, tt.calls)
			}
		})
	}
}

func TestNotifySOSPropagatesSendErrors(t *testing.T) {
	sendErr := errors.New("telegram down")

	n := NewNotifier(&fakeTelegram{msgErr: sendErr}, 42, &stubRenderer{pdf: []byte("%PDF")}, zerolog.Nop())
	if err := n.NotifySOS(context.Background(), sosEvent, sampleReport()); !errors.Is(err, sendErr) {
		t.Fatalf("alert err = %v, want %v", err, sendErr)
	}

	n = NewNotifier(&fakeTelegram{docErr: sendErr}, 42, &stubRenderer{pdf: []byte("%PDF")}, zerolog.Nop())
	if err := n.NotifySOS(context.Background(), sosEvent, sampleReport()); !errors.Is(err, sendErr) {
		t.Fatalf("document err = %v, want %v", err, sendErr)
	}
}

func TestAlertText(t *testing.T) {
	auto := sosEvent
	auto.Trigger = consultation.TriggerAuto

	text := AlertText(auto, sampleReport())
	for _, want := range []string{
		"automatic emergency",
		"Session: abc123",
		"Location: 29.06610, 31.09940",
		"Distance: 0.80 km, ETA 1 min",
		"Latest risk: Critical (score 9)",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("alert text missing %q:\n%s", want, text)
		}
	}

	if text := AlertText(sosEvent, nil); strings.Contains(text, "Latest risk") {
		t.Fatalf("alert without report mentions risk:\n%s", text)
	}
}
