package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/userdesk/userdesk/application/port/inbound"
	"github.com/userdesk/userdesk/application/usecase/auth"
	"github.com/userdesk/userdesk/application/usecase/user_management"
	"github.com/userdesk/userdesk/domain/entity"
	"github.com/userdesk/userdesk/infrastructure/config"
	"github.com/userdesk/userdesk/infrastructure/http/handler"
	"github.com/userdesk/userdesk/infrastructure/http/middleware"
	"github.com/userdesk/userdesk/infrastructure/persistence/postgres"
	"github.com/userdesk/userdesk/infrastructure/service/jwt"
	"github.com/userdesk/userdesk/infrastructure/service/logger"
	"github.com/userdesk/userdesk/infrastructure/service/password"
	"github.com/userdesk/userdesk/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "userdesk",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	// Connect to database
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	structuredLogger.Info(ctx, "Database connection established", map[string]interface{}{})

	// Initialize rate limiting service (Redis-backed or noop based on config)
	var rateLimitService inbound.RateLimitService
	{
		rlConfig := ratelimit.RateLimitConfig{
			Enabled:       cfg.RateLimitEnabled,
			RedisURL:      cfg.RedisURL,
			IPAttempts:    cfg.RateLimitIPAttempts,
			IPWindow:      cfg.RateLimitIPWindow,
			BlockDuration: cfg.RateLimitBlockDuration,
		}
		rs, err := ratelimit.NewRateLimitService(rlConfig, logrus.New())
		if err != nil {
			structuredLogger.Error(ctx, "Failed to initialize rate limit service", err, map[string]interface{}{
				"redis_url": cfg.RedisURL,
			})
		} else {
			rateLimitService = rs
			structuredLogger.Info(ctx, "Rate limiting service initialized", map[string]interface{}{
				"enabled": cfg.RateLimitEnabled,
			})
		}
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	pageConfigRepo := postgres.NewPageConfigRepository(db)
	permissionRepo := postgres.NewPermissionRepository(db)
	tokenRepo := postgres.NewTokenRepository(db)
	txManager := postgres.NewTxManager(db)

	// Initialize services
	tokenService, err := jwt.NewJWTService(cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to initialize JWT service: %v", err)
	}
	passwordService := password.NewBcryptPasswordService(10)

	// Initialize use cases
	authUseCase := auth.NewAuthUseCase(
		userRepo,
		tokenRepo,
		tokenService,
		passwordService,
		rateLimitService,
		structuredLogger,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	guard := user_management.NewAccessGuard(permissionRepo, cfg.GuardPage)
	userManagementUseCase := user_management.NewService(
		userRepo,
		pageConfigRepo,
		permissionRepo,
		guard,
		passwordService,
		txManager,
	)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, tokenRepo)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUseCase)
	userHandler := handler.NewUserHandler(userManagementUseCase)

	// Setup routes
	router := mux.NewRouter()
	router.Handle("/api/login", rateLimitMiddleware.RateLimit(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	router.Handle("/api/refresh", rateLimitMiddleware.RateLimit(authMiddleware.RequireScope(entity.ScopeRefresh, authHandler.Refresh))).Methods(http.MethodPost)
	router.HandleFunc("/api/logout", authMiddleware.RequireAuth(authHandler.Logout)).Methods(http.MethodPost)
	router.HandleFunc("/api/user", authMiddleware.RequireAuth(authHandler.Me)).Methods(http.MethodGet)

	userHandler.RegisterRoutes(router, authMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"healthy"}`)
	})

	// Compose middleware: CorrelationID then CORS (if enabled)
	var root http.Handler = middleware.CorrelationIDMiddleware(router)
	if cfg.CORSEnabled && len(cfg.CORSAllowedOrigins) > 0 {
		root = middleware.CORSMiddleware(root, cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials)
	}
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Info(ctx, "Starting server", map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{})
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	structuredLogger.Info(ctx, "Shutting down server...", map[string]interface{}{})

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, map[string]interface{}{})
	}
	structuredLogger.Info(ctx, "Server exited", map[string]interface{}{})
}
