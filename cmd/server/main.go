package main

import (
	"context"
	"crypto/rand"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"llavedesol/internal/adapters/backend"
	emailPkg "llavedesol/internal/adapters/email"
	web "llavedesol/internal/adapters/http"
	"llavedesol/internal/adapters/http/middleware"
	"llavedesol/internal/adapters/http/perf"
	"llavedesol/internal/adapters/realtime"
	"llavedesol/internal/adapters/storage"
	hiddenStore "llavedesol/internal/adapters/storage/hidden"
	sessionStore "llavedesol/internal/adapters/storage/session"
	"llavedesol/internal/application/orchestrators"
	"llavedesol/internal/config"
	"llavedesol/internal/domain/calendar"
	"llavedesol/internal/logging"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load(envOrDefault("LLAVE_CONFIG", "portal.yaml"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("invalid environment: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Performance instrumentation: the collector feeds /admin/rendimiento
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	sessionSecret := cfg.Auth.SessionSecret
	if sessionSecret == "" {
		sessionSecret = rand.Text()
		slog.Warn("config_default", "field", "auth.session_secret", "note", "random secret, sessions end on restart")
	}
	sessions, err := sessionStore.NewSQLiteStore(ctx, timedDB, sessionSecret)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}

	csrfKey := []byte(cfg.Auth.CSRFKey)
	if len(csrfKey) == 0 {
		csrfKey = make([]byte, 32)
		if _, err := rand.Read(csrfKey); err != nil {
			log.Fatalf("failed to generate csrf key: %v", err)
		}
		slog.Warn("config_default", "field", "auth.csrf_key", "note", "random key, open forms fail after restart")
	}

	var sender emailPkg.Sender
	if cfg.Email.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.Email.ResendKey, cfg.Email.From, cfg.Email.ReplyTo)
		slog.Info("email_sender", "provider", "resend", "from", cfg.Email.From)
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			slog.Warn("email_sender", "provider", "noop", "note", "LLAVE_RESEND_KEY is not set, email delivery is disabled")
		} else {
			slog.Info("email_sender", "provider", "noop")
		}
	}

	var demo *calendar.DemoStore
	if cfg.DemoCalendar {
		demo = calendar.NewDemoStore(nil)
		slog.Info("calendar_demo", "enabled", true)
	}

	// Expired sessions are purged in the background
	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.PurgeSchedule, func() {
		// failures are logged by the orchestrator; the next run retries
		_, _ = orchestrators.ExecutePurgeSessions(ctx, orchestrators.PurgeSessionsDeps{Sessions: sessions, Now: time.Now})
	})
	if err != nil {
		log.Fatalf("invalid purge schedule %q: %v", cfg.PurgeSchedule, err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	handler := web.NewMux(ctx, web.Deps{
		Sessions:       sessions,
		Hidden:         hiddenStore.NewSQLiteStore(timedDB),
		Backend:        backend.NewClient(backend.Config{BaseURL: cfg.APIURL, Timeout: cfg.APITimeout}, collector),
		Hub:            realtime.NewHub(),
		Perf:           collector,
		Email:          sender,
		Inbox:          cfg.Email.Inbox,
		Demo:           demo,
		Ping:           timedDB.Ping,
		CSRFKey:        csrfKey,
		Secure:         cfg.IsProduction(),
		TrustedOrigins: cfg.TrustedOrigins,
		Host:           cfg.Host,
		SlowRequest:    middleware.DefaultSlowRequest,
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown_failed", "error", err)
		}
	}()

	schema, _ := storage.SchemaVersion(db)
	slog.Info("server_start", "version", version, "addr", cfg.Listen, "env", cfg.Env,
		"api", cfg.APIURL, "schema", schema, "demo_calendar", cfg.DemoCalendar)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	slog.Info("server_stopped")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
