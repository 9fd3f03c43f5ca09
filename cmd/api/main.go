// Package main is the entrypoint for the LedgerLite API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/ledgerlite/ledgerlite/internal/config"
	"github.com/ledgerlite/ledgerlite/internal/events"
	"github.com/ledgerlite/ledgerlite/internal/handler"
	"github.com/ledgerlite/ledgerlite/internal/kvstore"
	"github.com/ledgerlite/ledgerlite/internal/metrics"
	"github.com/ledgerlite/ledgerlite/internal/middleware"
	"github.com/ledgerlite/ledgerlite/internal/repository"
	"github.com/ledgerlite/ledgerlite/internal/server"
	"github.com/ledgerlite/ledgerlite/internal/service"
)

func main() {
	ctx := context.Background()

	// A missing .env file is fine; the environment wins either way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open store",
			slog.String("backend", cfg.StoreBackend),
			slog.String("error", sanitizeError(err, cfg.RedisURL, cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("store ready", "backend", cfg.StoreBackend)

	recorder := metrics.NewInMemory()
	bus := events.NewBus(logger, recorder)
	repo := repository.New(store, bus, cfg.DefaultBudget)

	notifier := service.NewNotifier(repo, logger, recorder)
	sessionService := service.NewSessionService(repo, notifier, logger, recorder)
	expenseService := service.NewExpenseService(repo, notifier, logger, recorder)
	adminService := service.NewAdminService(repo, bus, notifier, logger, recorder)

	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo)
	authHandler := handler.NewAuthHandler(sessionService, logger)
	expenseHandler := handler.NewExpenseHandler(expenseService, logger)
	notificationHandler := handler.NewNotificationHandler(notifier, logger)
	adminHandler := handler.NewAdminHandler(adminService, logger)
	metricsHandler := handler.NewMetricsHandler(recorder)

	r := setupRouter(routerDeps{
		base:          h,
		health:        healthHandler,
		auth:          authHandler,
		expenses:      expenseHandler,
		notifications: notificationHandler,
		admin:         adminHandler,
		metrics:       metricsHandler,
		repo:          repo,
		store:         store,
		cfg:           cfg,
		logger:        logger,
	})

	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)
	srv.OnShutdown("admin service", func(ctx context.Context) error {
		adminService.Close()
		return nil
	})
	srv.OnShutdown("store", func(ctx context.Context) error {
		return store.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"backend", cfg.StoreBackend,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore selects the key-value backend from configuration.
func openStore(ctx context.Context, cfg *config.Config) (kvstore.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		return kvstore.NewRedis(ctx, cfg.RedisURL)
	case config.BackendPostgres:
		return kvstore.NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return kvstore.NewMemory(), nil
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	base          *handler.Handler
	health        *handler.HealthHandler
	auth          *handler.AuthHandler
	expenses      *handler.ExpenseHandler
	notifications *handler.NotificationHandler
	admin         *handler.AdminHandler
	metrics       *handler.MetricsHandler
	repo          *repository.Repository
	store         kvstore.Store
	cfg           *config.Config
	logger        *slog.Logger
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(deps routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Recoverer(deps.logger))

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = deps.cfg.IsDevelopment()
	r.Use(middleware.Security(securityCfg))
	r.Use(middleware.MaxBodySize(deps.cfg.MaxRequestBodySize))

	if origins := deps.cfg.GetCORSAllowedOrigins(); len(origins) > 0 {
		corsCfg := middleware.DefaultCORSConfig()
		corsCfg.AllowedOrigins = origins
		r.Use(middleware.CORS(corsCfg))
	}

	// Health endpoints (no auth required)
	r.Get("/healthz", deps.health.Healthz)
	r.Get("/readyz", deps.health.Readyz)

	// Root info endpoint
	r.Get("/", deps.base.Hello)

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  deps.logger,
		Store:   deps.store,
		Enabled: deps.cfg.AuthRateLimitEnabled,
		Max:     deps.cfg.AuthRateLimitMax,
		Window:  deps.cfg.AuthRateLimitWindow,
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints; registration and login are rate limited.
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.RateLimitAuth(rateLimitCfg)).Post("/register", deps.auth.Register)
			r.With(middleware.RateLimitAuth(rateLimitCfg)).Post("/login", deps.auth.Login)
			r.Post("/logout", deps.auth.Logout)
		})
		r.Get("/session", deps.auth.Session)

		// Routes requiring an active session
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.repo, deps.logger))

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", deps.expenses.List)
				r.Post("/", deps.expenses.Create)
				r.Get("/export", deps.expenses.Export)
				r.Put("/{id}", deps.expenses.Update)
				r.Delete("/{id}", deps.expenses.Delete)
			})
			r.Get("/budget", deps.expenses.GetBudget)
			r.Put("/budget", deps.expenses.SetBudget)
			r.Get("/summary", deps.expenses.Summary)
			r.Get("/notifications/pending", deps.notifications.Pending)

			// Admin-only routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(deps.logger))

				r.Get("/users", deps.admin.Users)
				r.Delete("/users/{id}", deps.admin.DeleteUser)
				r.Post("/users/{id}/alert", deps.admin.SendAlert)
				r.Get("/expenses", deps.admin.AllExpenses)
				r.Delete("/users/{userId}/expenses/{expenseId}", deps.admin.DeleteExpense)
				r.Get("/overview", deps.admin.Overview)
				r.Get("/over-budget", deps.admin.OverBudget)
				r.Get("/metrics", deps.metrics.Metrics)
			})
		})
	})

	// 404 and 405 handlers
	r.NotFound(deps.base.NotFound)
	r.MethodNotAllowed(deps.base.MethodNotAllowed)

	return r
}

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return msg
}
