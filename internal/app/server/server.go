package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"orgaudit/internal/domain/activity"
	"orgaudit/internal/domain/auth"
	"orgaudit/internal/domain/org"
	"orgaudit/internal/platform/cache"
	"orgaudit/internal/platform/config"
	cryptoutil "orgaudit/internal/platform/crypto"
	"orgaudit/internal/platform/db"
	"orgaudit/internal/platform/email"
	"orgaudit/internal/platform/jobs"
	"orgaudit/internal/platform/metrics"
	"orgaudit/internal/transport/http/api"
	audithandler "orgaudit/internal/transport/http/handlers/audit"
	authhandler "orgaudit/internal/transport/http/handlers/auth"
	tenanthandler "orgaudit/internal/transport/http/handlers/tenant"
	"orgaudit/internal/transport/http/middleware"
)

const (
	memoryCacheEntries = 256
	shutdownTimeout    = 10 * time.Second
)

type App struct {
	Config  config.Config
	DB      *db.Pool
	Router  http.Handler
	Metrics *metrics.Collector
	Jobs    *jobs.Service
	Org     *org.Service

	redis      *cache.Redis
	stopWorker context.CancelFunc
}

// New connects to Postgres, prepares the schema and builds the router. The
// returned App owns the pool and the background audit worker until Close.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	app := &App{Config: cfg, DB: pool}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			app.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			app.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	cipher, err := cryptoutil.NewSalaryCipher(cfg.DataEncryptionKey)
	if err != nil {
		app.Close()
		return nil, err
	}

	if cfg.MetricsEnabled {
		app.Metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	} else {
		app.Metrics = metrics.New()
	}

	auditCache, err := app.buildCache(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Org = org.NewService(org.NewStore(pool, cipher), app.Metrics)
	authService := auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL)

	app.Jobs = jobs.New(jobs.NewStore(pool), app.Org, cfg.Policy, cfg.AuditInterval)
	if notifier := email.NewAuditNotifier(email.New(cfg), cfg.EmailFrom, cfg.AuditNotifyTo); notifier != nil {
		app.Jobs.Notifier = notifier
	}
	workerCtx, stop := context.WithCancel(context.Background())
	app.stopWorker = stop
	app.Jobs.Start(workerCtx)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(app.Metrics))
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", app.handleReady)
	router.Handle("/metrics", app.Metrics.Handler())

	var limitOpts []middleware.RateLimitOption
	if app.redis != nil {
		limitOpts = append(limitOpts, middleware.WithCounter(app.redis))
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, limitOpts...))
		r.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute, limitOpts...))

		authHandler := authhandler.NewHandler(authService)
		r.Post("/auth/token", authHandler.HandleToken)

		r.With(middleware.RequirePermission(auth.PermMetricsRead, authService)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, app.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})

		auditHandler := audithandler.NewHandler(cfg.Policy, auditCache, app.Metrics, authService)
		auditHandler.RegisterRoutes(r)

		tenantHandler := tenanthandler.NewHandler(app.Org, app.Jobs, activity.New(pool), cfg.Policy, authService, jobs.JobRequestedAudit)
		tenantHandler.RegisterRoutes(r)
	})

	app.Router = router
	return app, nil
}

func (a *App) buildCache(ctx context.Context) (cache.Cache, error) {
	if a.Config.CacheTTL <= 0 {
		return nil, nil
	}
	if a.Config.RedisAddr == "" {
		return cache.NewMemory(a.Config.CacheTTL, memoryCacheEntries), nil
	}
	redisCache, err := cache.NewRedis(ctx, a.Config.RedisAddr, a.Config.RedisPassword, a.Config.RedisDB, a.Config.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	a.redis = redisCache
	return redisCache, nil
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := a.DB.Ping(ctx); err != nil {
		http.Error(w, "db not ready", http.StatusServiceUnavailable)
		return
	}
	if a.redis != nil {
		if err := a.redis.Ping(ctx); err != nil {
			http.Error(w, "cache not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (a *App) Close() {
	if a.stopWorker != nil {
		a.stopWorker()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("redis close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests.
func Run(ctx context.Context, cfg config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("orgaudit server listening", "addr", cfg.Addr, "env", cfg.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	slog.Info("orgaudit server shutting down")
	return srv.Shutdown(shutdownCtx)
}
