package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tripwise/internal/pkg/config"
	"tripwise/internal/server"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file, using environment variables")
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize observability (tracer provider, Prometheus /metrics endpoint)
	obsShutdown, err := server.InitObservability("tripwise", ":"+cfg.Observability.MetricsPort, cfg.Observability.OTLPEndpoint, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := obsShutdown(shutdownCtx); err != nil {
			logger.Error("Observability shutdown error", zap.Error(err))
		}
	}()

	// Create server
	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	// Setup router
	router, err := server.SetupRouter(srv.GetDBPool(), cfg, logger)
	if err != nil {
		return err
	}
	srv.SetRouter(router)

	// Start pprof server (on separate port, not exposed publicly)
	server.StartPprofServer(":6060")

	// Create HTTP server
	httpServer := srv.HTTPServer()

	// Setup graceful shutdown
	done := make(chan bool, 1)
	go server.GracefulShutdown(httpServer, logger, done)

	// Start server
	logger.Info("Server starting", zap.String("port", cfg.ServerPort))
	if err := httpServer.ListenAndServe(); err != nil {
		logger.Error("Server error", zap.Error(err))
	}

	// Wait for graceful shutdown to complete
	<-done
	logger.Info("Graceful shutdown complete")

	return nil
}
