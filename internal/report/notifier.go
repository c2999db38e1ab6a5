package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"mindbot-vr/internal/consultation"
)

type TelegramSender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendDocument(ctx context.Context, chatID int64, fileData []byte, fileName string) error
}

// Notifier pushes SOS alerts to the on-call staff chat.
type Notifier struct {
	tg       TelegramSender
	chatID   int64
	renderer PDFRenderer
	log      zerolog.Logger
}

// NewNotifier returns nil when tg is nil or chatID is zero, which disables
// notifications.
func NewNotifier(tg TelegramSender, chatID int64, renderer PDFRenderer, log zerolog.Logger) *Notifier {
	if tg == nil || chatID == 0 {
		return nil
	}
	return &Notifier{tg: tg, chatID: chatID, renderer: renderer, log: log}
}

// NotifySOS sends the alert text and then, when report is present and
// renders, the PDF. A failed PDF does not fail the alert.
func (n *Notifier) NotifySOS(ctx context.Context, event consultation.SOSEvent, report *consultation.ReportData) error {
	if err := n.tg.SendMessage(ctx, n.chatID, AlertText(event, report)); err != nil {
		return fmt.Errorf("send sos alert: %w", err)
	}
	if report == nil || n.renderer == nil {
		return nil
	}

	pdf, err := n.renderer.Render(report)
	if err != nil {
		n.log.Warn().Err(err).Str("session_id", event.SessionID).Msg("sos report not attached")
		return nil
	}
	if err := n.tg.SendDocument(ctx, n.chatID, pdf, FileName(event.SessionID)); err != nil {
		return fmt.Errorf("send sos report: %w", err)
	}
	return nil
}

// AlertText is the plain-text Telegram alert for an SOS event.
func AlertText(event consultation.SOSEvent, report *consultation.ReportData) string {
	title := "🚨 MindBot VR SOS"
	if event.Trigger == consultation.TriggerAuto {
		title = "🚨 MindBot VR automatic emergency"
	}
	lines := []string{
		title,
		"Session: " + event.SessionID,
		fmt.Sprintf("Location: %.5f, %.5f", event.Lat, event.Lng),
		fmt.Sprintf("Nearest hospital: %s (%s)", event.HospitalName, event.HospitalPhone),
		fmt.Sprintf("Distance: %.2f km, ETA %d min", event.DistanceKm, event.ETAMinutes),
	}
	if report != nil && report.Risk.RiskLevel != "" {
		lines = append(lines, fmt.Sprintf("Latest risk: %s (score %d)", report.Risk.RiskLevel, report.Risk.RiskScore))
	}
	return strings.Join(lines, "\n")
}
