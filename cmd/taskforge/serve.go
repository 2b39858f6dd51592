package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	tfhttp "github.com/Strob0t/TaskForge/internal/adapter/http"
	tfmcp "github.com/Strob0t/TaskForge/internal/adapter/mcp"
	tfnats "github.com/Strob0t/TaskForge/internal/adapter/nats"
	"github.com/Strob0t/TaskForge/internal/adapter/natskv"
	tfotel "github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/adapter/postgres"
	"github.com/Strob0t/TaskForge/internal/adapter/ristretto"
	"github.com/Strob0t/TaskForge/internal/adapter/tiered"
	"github.com/Strob0t/TaskForge/internal/adapter/ws"
	"github.com/Strob0t/TaskForge/internal/config"
	"github.com/Strob0t/TaskForge/internal/logger"
	"github.com/Strob0t/TaskForge/internal/middleware"
	"github.com/Strob0t/TaskForge/internal/port/cache"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
	"github.com/Strob0t/TaskForge/internal/resilience"
	"github.com/Strob0t/TaskForge/internal/service"
)

const (
	idempotencyBucket = "TASKFORGE_IDEMPOTENCY"
	l1BackfillTTL     = 5 * time.Minute
	rateLimitIdle     = 10 * time.Minute
)

func serveCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, WebSocket and MCP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	log, closeLog := logger.New(cfg.Logging)
	slog.SetDefault(log)
	defer closeLog.Close()

	slog.Info("config loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"pg_max_conns", cfg.Postgres.MaxConns,
		"nats_enabled", cfg.NATS.URL != "",
		"strict_transitions", cfg.Tasks.StrictTransitions,
	)

	// --- Observability ---

	shutdownOTEL, err := tfotel.Init(ctx, cfg.OTEL)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		if err := shutdownOTEL(context.Background()); err != nil {
			slog.Error("otel shutdown failed", "error", err)
		}
	}()

	metrics, err := tfotel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Infrastructure ---

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	slog.Info("postgres connected")

	if err := postgres.RunMigrations(ctx, cfg.Postgres.DSN); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	slog.Info("migrations applied")

	store := postgres.NewStore(pool)
	probes := map[string]tfhttp.Probe{"postgres": store.Ping}

	l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB << 20)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	defer l1.Close()
	var idempotencyCache cache.Cache = l1

	var queue messagequeue.Queue
	if cfg.NATS.URL != "" {
		q, err := tfnats.Connect(ctx, cfg.NATS)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer func() {
			if err := q.Drain(); err != nil {
				slog.Error("nats drain failed", "error", err)
			}
		}()
		queue = q
		probes["nats"] = func(context.Context) error {
			if !q.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}

		kv, err := q.KeyValue(ctx, idempotencyBucket, cfg.Cache.IdempotencyTTL)
		if err != nil {
			return fmt.Errorf("idempotency bucket: %w", err)
		}
		idempotencyCache = tiered.New(l1, natskv.New(kv), l1BackfillTTL)
	} else {
		slog.Warn("nats disabled, change events are only broadcast over websocket")
	}

	// --- Services ---

	hub := ws.NewHub(cfg.Server.CORSOrigin)
	breaker := resilience.NewBreaker("nats-publish", cfg.Breaker.MaxFailures, cfg.Breaker.Timeout)

	events := service.NewEventPublisher(hub, queue, breaker)
	events.SetMetrics(metrics)

	taskSvc := service.NewTaskService(store, store, events)
	taskSvc.SetMetrics(metrics)
	taskSvc.SetStrictTransitions(cfg.Tasks.StrictTransitions)

	workflowSvc := service.NewWorkflowService(store, events)
	workflowSvc.SetMetrics(metrics)

	// --- HTTP ---

	handlers := &tfhttp.Handlers{
		Tasks:     taskSvc,
		Workflows: workflowSvc,
		Probes:    probes,
	}

	var mutating []func(http.Handler) http.Handler
	if cfg.Server.WriteRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.Server.WriteRateLimit, cfg.Server.WriteRateBurst)
		limiter.StartCleanup(ctx, time.Minute, rateLimitIdle)
		mutating = append(mutating, limiter.Handler)
	}
	mutating = append(mutating, middleware.Idempotency(idempotencyCache, cfg.Cache.IdempotencyTTL))

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(tfhttp.Logger)
	r.Use(chimw.Recoverer)
	r.Use(tfhttp.CORS(cfg.Server.CORSOrigin))
	r.Use(tfhttp.SecurityHeaders)
	r.Use(tfotel.HTTPMiddleware(cfg.OTEL.ServiceName))

	// Long-lived endpoints stay outside the request timeout.
	r.Get("/ws", hub.HandleWS)
	if cfg.MCP.Enabled {
		mcpServer := tfmcp.NewServer(
			tfmcp.ServerConfig{Name: cfg.MCP.Name, Version: cfg.MCP.Version},
			tfmcp.ServerDeps{Tasks: taskSvc, Workflows: workflowSvc},
		)
		r.Handle("/mcp", mcpServer.Handler())
		slog.Info("mcp server mounted", "path", "/mcp")
	}

	r.Group(func(r chi.Router) {
		r.Use(chimw.Timeout(cfg.Server.RequestTimeout))
		tfhttp.MountRoutes(r, handlers, mutating...)
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
