package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/NeuralTrust/DisasterGate/pkg/app/dataset"
	"github.com/NeuralTrust/DisasterGate/pkg/app/training"
	"github.com/NeuralTrust/DisasterGate/pkg/config"
	"github.com/NeuralTrust/DisasterGate/pkg/dependency_container"
	infraLogger "github.com/NeuralTrust/DisasterGate/pkg/infra/logger"
	"github.com/spf13/pflag"
)

func main() {
	configDir := pflag.String("config", "./config", "directory holding config.yaml")
	datasetPath := pflag.String("dataset", "", "training CSV, overrides training.dataset_path")
	pflag.Parse()

	if envFile, err := config.LoadEnv(); err != nil {
		log.Printf("no %s file found, using system environment variables", envFile)
	}

	logger, err := infraLogger.NewLogger("trainer")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Close()

	cfg, err := config.Load(*configDir)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if *datasetPath != "" {
		cfg.Training.DatasetPath = *datasetPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry, err := dependency_container.BuildArtifactRegistry(ctx, cfg, logger.Logger)
	if err != nil {
		logger.Fatalf("Failed to initialize artifact stores: %v", err)
	}

	normalizer, err := cfg.Text.Normalizer()
	if err != nil {
		logger.Fatalf("Failed to build text normalizer: %v", err)
	}

	trainer := training.NewTrainer(logger.Logger, registry)
	loc, err := trainer.Run(ctx, training.Options{
		Target:      cfg.Model.Locator(),
		DatasetPath: cfg.Training.DatasetPath,
		Load: dataset.LoadOptions{
			Retries:    cfg.Training.Retries,
			RetryDelay: cfg.Training.RetryDelay,
			Normalizer: normalizer,
		},
		Classifier: cfg.Training.Classifier,
	})
	if err != nil {
		logger.WithError(err).Error("training failed")
		logger.Close()
		os.Exit(1)
	}

	meta, err := training.ReadMeta(ctx, registry, loc)
	if err != nil {
		logger.WithError(err).Error("published run metadata is unreadable")
		logger.Close()
		os.Exit(1)
	}

	fmt.Printf("model published at %s\n", meta.ArtifactURI)
	fmt.Printf("samples=%d skipped=%d vocabulary=%d train_accuracy=%.4f\n",
		meta.Metrics.Samples, meta.Metrics.Skipped, meta.Metrics.VocabularySize, meta.Metrics.TrainAccuracy)
	fmt.Printf("MODEL_RUN_ID=%s\n", loc.Run)
}
