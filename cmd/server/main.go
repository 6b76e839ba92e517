package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	_ "github.com/lib/pq"

	"github.com/whytehoux-projecty/MIS/internal/api"
	"github.com/whytehoux-projecty/MIS/internal/config"
	"github.com/whytehoux-projecty/MIS/internal/logger"
	"github.com/whytehoux-projecty/MIS/internal/repository/postgres"
	"github.com/whytehoux-projecty/MIS/internal/security"
	"github.com/whytehoux-projecty/MIS/internal/service"
	"github.com/whytehoux-projecty/MIS/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Membership Intake Server...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret)

	// Initialize Redis (optional; rate limiting degrades to pass-through)
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Redis unavailable, rate limiting disabled", "addr", cfg.Redis.Addr, "error", err)
			rdb = nil
		} else {
			logger.Info("Redis connection established", "addr", cfg.Redis.Addr)
		}
		cancel()
	}

	// Initialize File Storage
	fileStore, err := storage.NewLocalFileStore(cfg.Storage.UploadDir)
	if err != nil {
		logger.Error("Failed to initialize file storage", "error", err)
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	// Initialize Services
	emailSvc := service.NewEmailService(cfg.SendGrid)
	interestSvc := service.NewInterestService(store.InterestRequests)
	invitationSvc := service.NewInvitationService(store.Invitations, cfg.Invitation)
	approverSvc := service.NewApproverService(
		store.InterestRequests,
		store.Invitations,
		store.Members,
		invitationSvc,
		emailSvc,
	)
	sessionSvc := service.NewSessionService(
		tokenManager,
		store.Logins,
		time.Duration(cfg.JWT.SessionExpiryMinutes)*time.Minute,
	)
	qrLoginSvc := service.NewQRLoginService(
		store.QRSessions,
		store.Members,
		store.Services,
		sessionSvc,
		cfg.QR,
	)

	// Build the router
	router := api.NewRouter(api.RouterDeps{
		Interests:     interestSvc,
		Invitations:   invitationSvc,
		Approver:      approverSvc,
		QRLogin:       qrLoginSvc,
		Sessions:      sessionSvc,
		Files:         fileStore,
		Tokens:        tokenManager,
		Redis:         rdb,
		MaxFileSizeMB: cfg.Storage.MaxFileSize,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
