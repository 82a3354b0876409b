package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/fixora/projectledger/internal/adapter/http"
	"github.com/fixora/projectledger/internal/app"
	"github.com/fixora/projectledger/internal/config"
	"github.com/fixora/projectledger/internal/logger"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	structuredLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "project-ledger",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env":       cfg.Server.Environment,
		"db_driver": cfg.Database.Driver,
	})

	// Open the store, migrate and wire the coordinator
	application, err := app.New(ctx, cfg, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize application", err, map[string]interface{}{
			"db_driver": cfg.Database.Driver,
		})
		os.Exit(1)
	}
	defer application.Close()
	structuredLogger.Info(ctx, "Database connection established", map[string]interface{}{
		"db_driver": cfg.Database.Driver,
	})

	// Refuse to start when the numbering config no longer matches issued counters
	if err := application.Coordinator.Allocator().CheckCounters(ctx); err != nil {
		structuredLogger.Error(ctx, "Sequence configuration rejected", err, map[string]interface{}{
			"sequence_config": cfg.Engine.SequenceConfigFile,
		})
		application.Close()
		os.Exit(1)
	}

	origins := cfg.CORS.AllowedOrigins
	if !cfg.CORS.Enabled {
		origins = nil
	}
	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Addr:            cfg.Address(),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		CORSOrigins:     origins,
		CORSCredentials: cfg.CORS.AllowCredentials,
	}, application.Coordinator, structuredLogger)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Error(ctx, "Server failed to start", err, map[string]interface{}{
				"addr": cfg.Address(),
			})
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, map[string]interface{}{})
	}
	structuredLogger.Info(ctx, "Server exited", map[string]interface{}{})
}
