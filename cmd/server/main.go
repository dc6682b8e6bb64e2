package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexidrill/lexidrill/internal/api"
	"github.com/lexidrill/lexidrill/internal/config"
	"github.com/lexidrill/lexidrill/internal/db"
	"github.com/lexidrill/lexidrill/internal/importer"
	"github.com/lexidrill/lexidrill/internal/logger"
	"github.com/lexidrill/lexidrill/internal/repository/sqlite"
	"github.com/lexidrill/lexidrill/internal/services"
	"github.com/lexidrill/lexidrill/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("LexiDrill Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("session_size=%d", cfg.SessionSize)
	log.Debug("session_timeout_minutes=%d", cfg.SessionTimeoutMinutes)
	log.Debug("persist_worker_count=%d", cfg.PersistWorkerCount)
	log.Debug("persist_queue_size=%d", cfg.PersistQueueSize)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	topicRepo := sqlite.NewTopicRepository(database.DB)
	wordRepo := sqlite.NewWordRepository(database.DB)
	adminRepo := sqlite.NewAdminRepository(database.DB)

	// Persistence worker pool
	persistPool := worker.NewPool(cfg.PersistWorkerCount, cfg.PersistQueueSize)

	// Initialize services
	vocabService := services.NewVocabService(topicRepo, wordRepo)
	reviewService := services.NewReviewService(wordRepo, persistPool, cfg.SessionSize,
		time.Duration(cfg.SessionTimeoutMinutes)*time.Minute)
	snapshotService := services.NewSnapshotService(topicRepo, wordRepo, adminRepo)

	srv := &api.Server{
		VocabService:    vocabService,
		ReviewService:   reviewService,
		SnapshotService: snapshotService,
		Importer:        importer.New(topicRepo, wordRepo),
	}

	ctx, cancel := context.WithCancel(context.Background())
	persistPool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping persistence pool")
	cancel()
	persistPool.Stop()

	log.Info("===========================================")
	log.Info("LexiDrill Server Stopped")
	log.Info("===========================================")
}
