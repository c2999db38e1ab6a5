package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"mindbot-vr/internal/admin"
	"mindbot-vr/internal/config"
	"mindbot-vr/internal/consultation"
	"mindbot-vr/internal/platform/middleware"
	"mindbot-vr/internal/report"
)

type routerDeps struct {
	cfg          *config.Config
	log          zerolog.Logger
	consultation *consultation.Handler
	report       *report.Handler
	admin        *admin.Handler
	ready        func(ctx context.Context) error
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(d.log))
	r.Use(middleware.Recoverer(d.log))
	r.Use(middleware.SecurityHeaders(d.cfg.MapsEnabled))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: d.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", admin.TokenHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(middleware.LimitBody(d.cfg.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		consultation.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := d.ready(ctx); err != nil {
			d.log.Warn().Err(err).Msg("readiness check failed")
			consultation.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "db": "down"})
			return
		}
		consultation.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "db": "up"})
	})

	consultation.RegisterRoutes(r, d.consultation)
	report.RegisterRoutes(r, d.report)
	admin.RegisterRoutes(r, d.admin)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		consultation.WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		consultation.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}
