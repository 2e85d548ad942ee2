package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/ybenmoussa/signup-monitor/internal/accounts"
	"github.com/ybenmoussa/signup-monitor/internal/api"
	"github.com/ybenmoussa/signup-monitor/internal/config"
	"github.com/ybenmoussa/signup-monitor/internal/db"
	"github.com/ybenmoussa/signup-monitor/internal/progress"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})
	logger.SetOutput(os.Stdout)

	// Load configuration with defaults
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	if cfg.DBConnectionString == "" {
		logger.Fatal("Missing required configuration (DB_CONNECTION_STRING must be set)")
	}

	// Initialize database
	store, err := db.NewPostgresStore(cfg.DBConnectionString)
	if err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations with retry logic
	if err := retry(3, 5*time.Second, func() error {
		return store.Migrate()
	}); err != nil {
		logger.Fatalf("Failed to run migrations after retries: %v", err)
	}

	// Initialize services
	clock := clockwork.NewRealClock()
	progressService := progress.NewService(store, clock, progress.Config{
		EnforceGates: cfg.EnforceStepGates,
	}, logger)
	generator := accounts.NewGenerator(rand.New(rand.NewSource(time.Now().UnixNano())))
	accountService := accounts.NewService(store, generator, logger)

	// Setup router with middleware
	handler := api.NewHandler(progressService, accountService, clock, cfg.TickInterval, logger)
	router := api.SetupRouter(handler)
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(router)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	// Scheduled purge of suspended accounts
	var scheduler *cron.Cron
	if cfg.PurgeSchedule != "" {
		scheduler = cron.New()
		_, err := scheduler.AddFunc(cfg.PurgeSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			count, err := accountService.PurgeSuspended(ctx)
			if err != nil {
				logger.Errorf("Scheduled purge failed: %v", err)
				return
			}
			logger.Infof("Scheduled purge removed %d suspended accounts", count)
		})
		if err != nil {
			logger.Fatalf("Invalid purge schedule %q: %v", cfg.PurgeSchedule, err)
		}
		scheduler.Start()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server exited properly")
}

// retry retries a function up to a certain number of attempts with a delay between attempts
func retry(attempts int, sleep time.Duration, fn func() error) error {
	if err := fn(); err != nil {
		if attempts--; attempts > 0 {
			time.Sleep(sleep)
			return retry(attempts, sleep, fn)
		}
		return err
	}
	return nil
}
