package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/fraud-service/internal/config"
	"github.com/Dan9191/fraud-service/internal/handler"
	"github.com/Dan9191/fraud-service/internal/metrics"
	"github.com/Dan9191/fraud-service/internal/repository"
	"github.com/Dan9191/fraud-service/internal/scheduler"
	"github.com/Dan9191/fraud-service/internal/scoring"
	"github.com/Dan9191/fraud-service/internal/service"
	"github.com/Dan9191/fraud-service/internal/utils/email"
	"github.com/Dan9191/fraud-service/migrations"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// run owns every deferred cleanup, so Fatal only fires once they are done
	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	// Load model artifacts
	model, err := scoring.Load(cfg.ModelPath, cfg.EncodersPath)
	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"model":    cfg.ModelPath,
		"encoders": cfg.EncodersPath,
	}).Info("Model loaded")

	// Initialize storage
	var repo service.Store
	if cfg.DBConn != "" {
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		if cfg.AutoMigrate {
			if err := migrations.Run(ctx, db, "up"); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info("Database migrations applied")
		}
		go metrics.StartDBStatsCollector(ctx, db, 15*time.Second)
		repo = repository.NewRepository(db)
	} else {
		logger.Warn("DB_CONN not set, predictions are kept in memory")
		repo = repository.NewMemoryRepository()
	}

	// Initialize layers
	var opts []service.Option
	var sender *email.Sender
	if cfg.MailEnabled() {
		sender = email.NewSender(cfg, logger)
		opts = append(opts, service.WithNotifier(sender))
	}
	svc := service.NewService(repo, model, logger, cfg, opts...)
	h := handler.NewHandler(svc, logger)

	if cfg.DigestSchedule != "" {
		var digestSender scheduler.DigestSender
		if sender != nil {
			digestSender = sender
		}
		digest := scheduler.NewDigest(svc, digestSender, logger)
		if err := digest.Schedule(cfg.DigestSchedule); err != nil {
			return err
		}
		digest.Start()
		defer digest.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler.NewRouter(h, cfg, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return serve(ctx, server, logger)
}

// serve runs server until ctx is done, then shuts it down gracefully.
// A listener failure is returned instead of exiting the process.
func serve(ctx context.Context, server *http.Server, logger *logrus.Logger) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
