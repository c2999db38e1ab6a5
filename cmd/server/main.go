package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mindbot-vr/internal/admin"
	"mindbot-vr/internal/agent"
	"mindbot-vr/internal/config"
	"mindbot-vr/internal/consultation"
	"mindbot-vr/internal/hospital"
	"mindbot-vr/internal/platform/database"
	"mindbot-vr/internal/platform/telegram"
	"mindbot-vr/internal/report"
	"mindbot-vr/internal/triage"
	"mindbot-vr/internal/vitals"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "MindBot VR triage API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			return database.MigrateUp(cfg.DatabaseURL, logger)
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Revert all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			return database.MigrateDown(cfg.DatabaseURL, logger)
		},
	}

	cmd.AddCommand(upCmd, downCmd)
	return cmd
}

func exportCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the latest symptom events as CSV to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 1 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}
			cfg, logger, err := bootstrap()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBConnectRetries, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			events, err := consultation.NewRepository(db).ExportSymptomEvents(ctx, limit)
			if err != nil {
				return err
			}
			return admin.WriteCSV(cmd.OutOrStdout(), events)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", admin.DefaultExportLimit, "number of most recent events to export")
	return cmd
}

func bootstrap() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	return cfg, newLogger(cfg.LogLevel, cfg.LogFormat), nil
}

func newLogger(level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Infrastructure
	db, err := database.Open(ctx, cfg.DatabaseURL, cfg.DBConnectRetries, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.MigrateUp(cfg.DatabaseURL, logger); err != nil {
		return err
	}

	directory, err := loadDirectory(cfg.HospitalsFile)
	if err != nil {
		return err
	}

	// 2. Clients
	guidance, err := agent.NewGuidanceClient(cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm guidance: %w", err)
	}
	if guidance == nil {
		logger.Info().Msg("LLM guidance disabled")
	}

	renderer := report.NewRenderer(cfg.PDFFontPath, cfg.ReportsDir, logger)

	var notifier consultation.Notifier
	if cfg.TelegramEnabled() {
		tg := telegram.NewClient(cfg.TelegramBotToken)
		notifier = report.NewNotifier(tg, cfg.TelegramChatID, renderer, logger)
	} else {
		logger.Warn().Msg("TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID not set, SOS alerts will not be delivered")
	}

	// 3. Services
	repo := consultation.NewRepository(db)
	svc := consultation.NewService(consultation.Dependencies{
		Repo:      repo,
		Engine:    triage.NewEngine(cfg.TriageProfile),
		Vitals:    vitals.NewStore(vitals.NewSimulator(vitals.DefaultConfig(), nil), cfg.VitalsMaxSessions),
		Hospitals: directory,
		Guidance:  guidance,
		Notifier:  notifier,
		Logger:    logger,
	})

	// 4. Router
	router := newRouter(routerDeps{
		cfg:          cfg,
		log:          logger,
		consultation: consultation.NewHandler(svc, logger),
		report:       report.NewHandler(svc, renderer, logger),
		admin:        admin.NewHandler(repo, cfg.AdminToken, logger),
		ready:        svc.Ready,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Str("profile", string(cfg.TriageProfile)).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}
	svc.Wait()
	logger.Info().Msg("server stopped")
	return nil
}

func loadDirectory(path string) (*hospital.Directory, error) {
	if path == "" {
		return hospital.Default()
	}
	dir, err := hospital.Load(path)
	if err != nil {
		return nil, fmt.Errorf("hospitals file: %w", err)
	}
	return dir, nil
}
