package report

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mindbot-vr/internal/consultation"
)

type ReportSource interface {
	Report(ctx context.Context, sessionID string) (*consultation.ReportData, error)
}

type PDFRenderer interface {
	Render(data *consultation.ReportData) ([]byte, error)
}

type Handler struct {
	source   ReportSource
	renderer PDFRenderer
	log      zerolog.Logger
}

func NewHandler(source ReportSource, renderer PDFRenderer, log zerolog.Logger) *Handler {
	return &Handler{source: source, renderer: renderer, log: log}
}

// Download serves the session report as a PDF attachment.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	data, err := h.source.Report(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		if errors.Is(err, consultation.ErrInvalidSessionID) {
			consultation.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("failed to load report data")
		consultation.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	pdf, err := h.renderer.Render(data)
	if err != nil {
		if errors.Is(err, ErrFontUnavailable) {
			h.log.Warn().Err(err).Msg("report rendering unavailable")
			consultation.WriteError(w, http.StatusServiceUnavailable, "report rendering unavailable")
			return
		}
		h.log.Error().Err(err).Str("session_id", data.SessionID).Msg("failed to render report")
		consultation.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, FileName(data.SessionID)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/api/report", h.Download)
}
