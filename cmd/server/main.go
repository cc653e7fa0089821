package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"

	gdprhandler "fooddrop/internal/gdpr/handler"
	gdprservice "fooddrop/internal/gdpr/service"
	gdprstore "fooddrop/internal/gdpr/store"
	"fooddrop/internal/identity"
	"fooddrop/internal/monitor"
	"fooddrop/internal/platform/config"
	"fooddrop/internal/platform/errtrack"
	"fooddrop/internal/platform/httpserver"
	"fooddrop/internal/platform/logger"
	"fooddrop/internal/platform/metrics"
	"fooddrop/internal/platform/postgres"
	redisclient "fooddrop/internal/platform/redis"
	profilehandler "fooddrop/internal/profile/handler"
	profileservice "fooddrop/internal/profile/service"
	profilestore "fooddrop/internal/profile/store"
	ratelimitmodels "fooddrop/internal/ratelimit/models"
	"fooddrop/pkg/platform/middleware/device"
	"fooddrop/pkg/platform/middleware/metadata"
	request "fooddrop/pkg/platform/middleware/request"
	"fooddrop/pkg/platform/middleware/requesttime"
)

const (
	flushTimeout    = 2 * time.Second
	auditDrainLimit = 5 * time.Second
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracker, err := errtrack.New(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("init error tracking: %w", err)
	}
	defer tracker.Flush(flushTimeout)

	var extra []slog.Handler
	if tracker != nil {
		extra = append(extra, tracker.Handler(slog.LevelError))
	}
	log := logger.New(cfg.Log, extra...)
	slog.SetDefault(log)

	m := metrics.New()

	docs, closeDocs, err := postgres.OpenDocstore(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer closeDocs()

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rc != nil {
		defer rc.Close()
	}

	auditor, records, closeAudit, err := buildAudit(ctx, cfg, docs, rc, m, tracker, log)
	if err != nil {
		return err
	}
	defer closeAudit()

	mon := monitor.New(
		monitor.WithLogger(log),
		monitor.WithReporter(monitor.NewAuditReporter(auditor)),
		monitor.WithThresholds(cfg.Monitor.WarnThreshold, cfg.Monitor.ErrorThreshold),
		monitor.WithBufferSize(cfg.Monitor.BufferSize),
		monitor.WithTracer(otel.Tracer("fooddrop/monitor")),
		monitor.WithRegisterer(m.Registry),
	)
	go mon.Run(ctx, cfg.Monitor.PruneInterval, cfg.Monitor.MaxAge)

	profiles := profileservice.New(profilestore.New(docs, mon), auditor, profileservice.WithLogger(log))
	gdpr := gdprservice.New(gdprstore.New(docs, mon), profiles, records, auditor, gdprservice.WithLogger(log))
	sessions := identity.NewListener(profiles, auditor, identity.WithListenerLogger(log))
	verifier := identity.NewVerifier(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.JWTAudience)

	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Recovery(log))
	r.Use(request.Logger(log))
	r.Use(metadata.ClientMetadata)
	r.Use(device.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(m.LatencyMiddleware)

	r.Handle("/metrics", m.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if rc != nil {
			if err := rc.Health(req.Context()); err != nil {
				log.WarnContext(req.Context(), "health check failed", "dependency", "redis", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	limiter := newRateLimiter(cfg.RateLimit, rc, auditor, log)
	r.Route("/v1", func(r chi.Router) {
		profilehandler.New(profiles, sessions, verifier, log,
			profilehandler.WithWriteLimit(limiter.RateLimitAuthenticated(ratelimitmodels.ClassWrite)),
		).Register(r)
		gdprhandler.New(gdpr, verifier, cfg.Server.AdminToken, log,
			gdprhandler.WithSensitiveLimit(limiter.RateLimitAuthenticated(ratelimitmodels.ClassSensitive)),
		).Register(r)
	})

	srv := httpserver.New(cfg.Server.Addr, r)
	log.InfoContext(ctx, "starting fooddrop", "addr", cfg.Server.Addr)
	return httpserver.Run(ctx, srv, cfg.Server.ShutdownTimeout, log)
}
