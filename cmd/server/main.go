package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/config"
	"github.com/NeuralTrust/DisasterGate/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/DisasterGate/pkg/infra/logger"
	"github.com/NeuralTrust/DisasterGate/pkg/server"
	"github.com/NeuralTrust/DisasterGate/pkg/server/router"
	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.String("config", "./config", "directory holding config.yaml")
	pflag.Parse()

	if envFile, err := config.LoadEnv(); err != nil {
		log.Printf("no %s file found, using system environment variables", envFile)
	}

	logger, err := infraLogger.NewLogger("server")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container, err := dependency_container.NewContainer(ctx, dependency_container.ContainerDI{
		Config: cfg,
		Logger: logger.Logger,
	})
	if err != nil {
		logger.Fatalf("Failed to build dependencies: %v", err)
	}
	defer container.Close()

	if cfg.Server.LoadOnStartup {
		// A failed load is retried on the first request.
		if err := container.Predictor.Load(ctx); err != nil {
			logger.WithError(err).Warn("model not loaded at startup")
		}
	}

	srv := server.NewPredictionServer(server.PredictionServerDI{
		Config: cfg,
		Logger: logger.Logger,
		Routers: []router.ServerRouter{
			router.NewPredictionRouter(container.MiddlewareTransport, container.HandlerTransport),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.WithError(err).Error("server failed")
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("error shutting down server")
	}
	logger.Info("server gracefully stopped")
}
