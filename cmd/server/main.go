package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/forgo/manifestor/api/internal/config"
	"github.com/forgo/manifestor/api/internal/database"
	"github.com/forgo/manifestor/api/internal/handler"
	"github.com/forgo/manifestor/api/internal/jobs"
	"github.com/forgo/manifestor/api/internal/middleware"
	"github.com/forgo/manifestor/api/internal/preference"
	"github.com/forgo/manifestor/api/internal/repository"
	"github.com/forgo/manifestor/api/internal/service"
	"github.com/forgo/manifestor/api/pkg/jwt"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// A .env file is optional; real deployments set the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env", slog.String("error", err.Error()))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Document store
	db := database.NewSurrealDB(database.Config{
		Scheme:    cfg.Database.Scheme,
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("endpoint", db.Endpoint()),
		slog.String("namespace", cfg.Database.Namespace),
		slog.String("database", cfg.Database.Database),
	)

	if err := database.ApplySchema(ctx, db); err != nil {
		slog.Error("failed to apply schema", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Local preference store
	prefs, err := preference.Open(ctx, cfg.Preferences.Path)
	if err != nil {
		slog.Error("failed to open preference store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = prefs.Close() }()

	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Repositories
	dreamRepo := repository.NewDreamRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	erasureRepo := repository.NewErasureRepository(db)

	// Services
	eventHub := service.NewEventHub()
	defer eventHub.Close()

	authService := service.NewAuthService(service.AuthServiceConfig{
		AccountRepo:  accountRepo,
		SessionRepo:  sessionRepo,
		Tokens:       jwtService,
		ReauthWindow: cfg.Auth.ReauthWindow,
	})
	erasureService := service.NewErasureService(service.ErasureServiceConfig{
		Store:       erasureRepo,
		Preferences: prefs,
	})
	lifecycle := service.NewAccountLifecycleCoordinator(service.AccountLifecycleConfig{
		Eraser:   erasureService,
		Identity: authService,
	})
	dreamService := service.NewDreamService(service.DreamServiceConfig{
		DreamRepo: dreamRepo,
		Events:    eventHub,
		Writes:    lifecycle,
	})
	profileService := service.NewProfileService(service.ProfileServiceConfig{
		ProfileRepo: profileRepo,
		Identity:    authService,
		Writes:      lifecycle,
	})
	preferenceService := service.NewPreferenceService(prefs, lifecycle)
	dashboardService := service.NewDashboardService(service.DashboardServiceConfig{
		Dreams:   dreamService,
		Location: cfg.ReminderLocation(),
	})

	// Sign-ins upsert the profile and reset a half-finished deletion;
	// every transition reaches open streams
	unsubscribeLifecycle := authService.Subscribe(lifecycle.OnAuthStateChange)
	defer unsubscribeLifecycle()
	unsubscribeProfile := authService.Subscribe(profileService.OnAuthStateChange)
	defer unsubscribeProfile()
	unsubscribeEvents := authService.Subscribe(eventHub.OnAuthStateChange)
	defer unsubscribeEvents()

	// Background jobs
	sessionCleanup := jobs.NewSessionCleanup(sessionRepo, cfg.Auth.SessionCleanup)
	sessionCleanup.Start()
	defer sessionCleanup.Stop()

	if cfg.Reminder.Enabled {
		reminders := jobs.NewReminderDispatcher(jobs.ReminderDispatcherConfig{
			Owners:   prefs,
			Sender:   eventHub,
			Location: cfg.ReminderLocation(),
		})
		reminders.Start()
		defer reminders.Stop()
	}

	// Middleware state
	authLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.Auth.SignInRateLimit,
		Window: time.Minute,
		Burst:  max(cfg.Auth.SignInRateLimit/2, 1),
	})
	defer authLimiter.Stop()
	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{})
	defer idempotencyStore.Stop()

	mux := http.NewServeMux()
	routes := &handler.Routes{
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"surrealdb":   db,
			"preferences": prefs,
		}),
		Auth:        handler.NewAuthHandler(authService),
		Dreams:      handler.NewDreamHandler(dreamService),
		Profile:     handler.NewProfileHandler(profileService),
		Preference:  handler.NewPreferenceHandler(preferenceService),
		Dashboard:   handler.NewDashboardHandler(dashboardService, nil),
		Account:     handler.NewAccountHandler(lifecycle, erasureService),
		Events:      handler.NewEventsHandler(eventHub),
		RequireAuth: middleware.Auth(authService, handler.WriteServiceError),
		AuthLimit:   middleware.RateLimit(authLimiter),
		Idempotent:  middleware.Idempotency(idempotencyStore),
	}
	routes.Register(mux)

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Streams end before Shutdown waits on them
	eventHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
