package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/narwhalmedia/phimdash/internal/config"
	"github.com/narwhalmedia/phimdash/internal/container"
	"github.com/narwhalmedia/phimdash/internal/logger"
	"github.com/narwhalmedia/phimdash/pkg/database"
)

const serviceName = "phimdash-admin"

// healthInterval is how often the gRPC health status is refreshed.
const healthInterval = 15 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// Initialize logger
	log, err := logger.FromConfig(cfg)
	if err != nil {
		panic(fmt.Sprintf("failed to create logger: %v", err))
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service",
		zap.String("environment", cfg.Server.Environment),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("broker", cfg.Events.Broker),
		zap.String("storage", cfg.Storage.Type),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize service container with all dependencies
	admin, cleanup, err := container.InitializeAdmin(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize service", zap.Error(err))
	}
	defer cleanup()

	if err := database.RunMigrations(admin.DB, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Background workers stop with ctx
	go admin.Health.Run(ctx, healthInterval)
	if cfg.Trash.SweepEnabled {
		log.Info("trash sweeper enabled",
			zap.Duration("interval", cfg.Trash.SweepInterval),
			zap.Duration("retention", admin.Trash.Retention()),
		)
		go admin.Trash.Run(ctx, cfg.Trash.SweepInterval)
	}

	// Start gRPC server
	grpcLis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Server.GRPCPort))
	if err != nil {
		log.Fatal("failed to listen on gRPC port", zap.Error(err))
	}
	go func() {
		log.Info("starting gRPC server", zap.Int("port", cfg.Server.GRPCPort))
		if err := admin.GRPCServer.Serve(grpcLis); err != nil {
			log.Error("gRPC server stopped", zap.Error(err))
			stop()
		}
	}()

	// Start HTTP server
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.HTTPPort),
		Handler:           admin.Handler.Router(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	go func() {
		log.Info("starting HTTP server", zap.Int("port", cfg.Server.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down service")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTime)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	}

	stopped := make(chan struct{})
	go func() {
		admin.GRPCServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		log.Warn("shutdown timeout exceeded, forcing stop")
		admin.GRPCServer.Stop()
	case <-stopped:
		log.Info("gRPC server stopped gracefully")
	}

	log.Info("service shutdown complete")
}
