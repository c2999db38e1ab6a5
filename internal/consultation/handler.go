package consultation

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mindbot-vr/internal/hospital"
)

type Handler struct {
	svc Service
	log zerolog.Logger
}

func NewHandler(svc Service, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// coordinate accepts a JSON number or numeric string. Anything else leaves
// it unset so the caller falls back to the default location.
type coordinate struct {
	value float64
	set   bool
}

func (c *coordinate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		c.value, c.set = n, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			c.value, c.set = n, true
		}
	}
	return nil
}

func location(lat, lng coordinate) hospital.Point {
	if !lat.set || !lng.set {
		return hospital.DefaultCenter
	}
	return hospital.ParsePoint(&lat.value, &lng.value)
}

type AskRequest struct {
	SessionID string     `json:"session_id"`
	Message   string     `json:"message"`
	Lat       coordinate `json:"lat"`
	Lng       coordinate `json:"lng"`
}

type SOSRequest struct {
	SessionID string     `json:"session_id"`
	Lat       coordinate `json:"lat"`
	Lng       coordinate `json:"lng"`
}

func (h *Handler) Hospitals(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{"hospitals": h.svc.Hospitals()})
}

func (h *Handler) Vitals(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Vitals(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) AskAI(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeOptional(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.svc.Ask(r.Context(), AskInput{
		SessionID: req.SessionID,
		Message:   req.Message,
		Location:  location(req.Lat, req.Lng),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) SOS(w http.ResponseWriter, r *http.Request) {
	var req SOSRequest
	if err := decodeOptional(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.svc.SOS(r.Context(), req.SessionID, location(req.Lat, req.Lng))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, ErrInvalidSessionID), errors.Is(err, errBadBody):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &maxBytes):
		WriteError(w, http.StatusRequestEntityTooLarge, "request body too large")
	default:
		h.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, "internal error")
	}
}

var errBadBody = errors.New("invalid request body")

// decodeOptional decodes a JSON body into v. An empty body leaves v zeroed.
func decodeOptional(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	var maxBytes *http.MaxBytesError
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	case errors.As(err, &maxBytes):
		return err
	default:
		return errBadBody
	}
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"error": msg})
}

// RegisterRoutes mounts the patient-facing API. The bare /ask_ai and /sos
// paths are kept for older clients.
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/api/hospitals", h.Hospitals)
	r.Get("/api/vitals", h.Vitals)
	r.Post("/api/ask_ai", h.AskAI)
	r.Post("/api/sos", h.SOS)
	r.Post("/ask_ai", h.AskAI)
	r.Post("/sos", h.SOS)
}
