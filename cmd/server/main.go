package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "duedesk-backend/internal/api/http"
	"duedesk-backend/internal/config"
	"duedesk-backend/internal/gateway"
	"duedesk-backend/internal/logger"
	"duedesk-backend/internal/repository/postgres"
	"duedesk-backend/internal/security"
	"duedesk-backend/internal/service"

	_ "github.com/lib/pq"
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
	logger.Info("Starting DueDesk Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)
	logger.Info("SMTP configuration", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)

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

	// Apply schema migrations
	if err := postgres.Migrate(context.Background(), db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		log.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Database schema up to date")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Hour)

	// Initialize Payment Gateway Simulator
	gw := gateway.NewSimulator(gateway.Config{
		CardDelay:   cfg.Gateway.CardDelay(),
		UPIDelay:    cfg.Gateway.UPIDelay(),
		SuccessRate: cfg.Gateway.SuccessRate,
	}, nil)

	// Initialize Email Service
	emailSvc := service.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.User,
		cfg.SMTP.Password,
		cfg.SMTP.From,
	)

	// Initialize Services
	customerSvc := service.NewCustomerService(store)
	paymentSvc := service.NewPaymentService(store, gw)
	ledgerSvc := service.NewLedgerService(store)
	reminderSvc := service.NewReminderService(store, emailSvc)
	authSvc := service.NewAuthService(store, tokenManager)

	// Seed the bootstrap admin account on first run
	if err := authSvc.EnsureDefaultAdmin(context.Background()); err != nil {
		logger.Error("Failed to ensure default admin account", "error", err)
		log.Fatalf("Failed to ensure default admin account: %v", err)
	}

	// Set up HTTP server
	router := httpapi.NewRouter(httpapi.Services{
		Customers: customerSvc,
		Payments:  paymentSvc,
		Ledger:    ledgerSvc,
		Reminders: reminderSvc,
		Auth:      authSvc,
		Tokens:    tokenManager,
		DB:        db,
	})

	srv := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		// Gateway settlements hold the response open for the card delay.
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
	logger.Info("Server stopped")
}
