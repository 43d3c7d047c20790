package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gymnica/clubapi/internal/auth"
	"github.com/gymnica/clubapi/internal/config"
	"github.com/gymnica/clubapi/internal/database"
	"github.com/gymnica/clubapi/internal/guard"
	"github.com/gymnica/clubapi/internal/handlers"
	middlewareCustom "github.com/gymnica/clubapi/internal/middleware"
	"github.com/gymnica/clubapi/internal/repositories"
	"github.com/gymnica/clubapi/internal/routes"
	"github.com/gymnica/clubapi/internal/services"
	"github.com/gymnica/clubapi/internal/storage"
	pkghttp "github.com/gymnica/clubapi/pkg/http"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// Initialize database
	db, err := database.NewConnection(&cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	// Initialize repositories
	memberRepo := repositories.NewMemberRepository(db)
	attemptRepo := repositories.NewAttemptRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	totalsRepo := repositories.NewTotalsRepository(db)

	// Login lockout guard
	loginGuard := guard.New(attemptRepo, guard.Config{
		MaxFailedAttempts: cfg.Auth.MaxFailedAttempts,
		LockoutWindow:     cfg.Auth.LockoutWindow,
	}, guard.SystemClock(), logger)

	// Initialize token manager
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.SessionExpiry)

	// AWS SES email service
	emailService, err := services.NewAWSSESEmailService(cfg.Email.AWSRegion, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Error("failed to initialize email service", slog.Any("error", err))
		os.Exit(1)
	}
	notifier := services.NewNotifier(emailService, logger)

	// Attachment storage for member training sheets
	attachmentStore, err := storage.NewAttachmentStore(cfg.Uploads.Dir)
	if err != nil {
		logger.Error("failed to initialize attachment storage", slog.Any("error", err))
		os.Exit(1)
	}

	horizon := services.HorizonConfig{
		StartMonth: cfg.Courses.HorizonStartMonth,
		StartYear:  cfg.Courses.HorizonStartYear,
		YearsAhead: cfg.Courses.HorizonYearsAhead,
	}

	// Initialize services
	authService := services.NewAuthService(memberRepo, loginGuard, tokenManager, services.AdminCredentials{
		Username: cfg.Auth.AdminUsername,
		Password: cfg.Auth.AdminPassword,
	}, logger)
	memberService := services.NewMemberService(db, memberRepo, enrollmentRepo, horizon, cfg.Courses.DefaultCourse, logger)
	rosterService := services.NewRosterService(db, enrollmentRepo, memberRepo, horizon, logger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{}
	authHandler := handlers.NewAuthHandler(authService, memberService, ipConfig)
	memberHandler := handlers.NewMemberHandler(memberService, attachmentStore)
	adminHandler := handlers.NewAdminHandler(memberService, memberRepo, attachmentStore, totalsRepo, notifier, horizon.Baseline())
	rosterHandler := handlers.NewRosterHandler(rosterService, horizon.Baseline())

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.RequestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, memberHandler, adminHandler, rosterHandler, tokenManager)

	// Health check with database
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.HealthCheck(ctx); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unhealthy","database":"down"}`))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","database":"up"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
