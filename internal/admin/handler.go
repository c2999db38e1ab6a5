// Package admin serves operator statistics and data exports behind a shared token.
package admin

import (
	"bytes"
	"context"
	"crypto/subtle"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mindbot-vr/internal/consultation"
)

const TokenHeader = "X-Admin-Token"

type Store interface {
	Stats(ctx context.Context) (consultation.Stats, error)
	ExportSymptomEvents(ctx context.Context, limit int) ([]consultation.SymptomEvent, error)
}

type Handler struct {
	store Store
	token string
	log   zerolog.Logger
}

// NewHandler builds the admin API. With an empty token every request is
// rejected.
func NewHandler(store Store, token string, log zerolog.Logger) *Handler {
	return &Handler{store: store, token: strings.TrimSpace(token), log: log}
}

func (h *Handler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	given := strings.TrimSpace(r.Header.Get(TokenHeader))
	return subtle.ConstantTimeCompare([]byte(h.token), []byte(given)) == 1
}

// RequireToken rejects requests without the admin token.
func (h *Handler) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			consultation.WriteError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load admin stats")
		consultation.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	stats.AverageRiskScore = math.Round(stats.AverageRiskScore*100) / 100
	consultation.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.ExportSymptomEvents(r.Context(), DefaultExportLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to fetch export rows")
		consultation.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}

	var output bytes.Buffer
	if err := WriteCSV(&output, events); err != nil {
		h.log.Error().Err(err).Msg("failed to build export")
		consultation.WriteError(w, http.StatusInternalServerError, "failed to build export")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exportFileName))
	w.WriteHeader(http.StatusOK)
	w.Write(output.Bytes())
}

func RegisterRoutes(r chi.Router, h *Handler) {
	r.Group(func(r chi.Router) {
		r.Use(h.RequireToken)
		r.Get("/api/admin/stats", h.Stats)
		r.Get("/api/admin/export", h.Export)
	})
}
