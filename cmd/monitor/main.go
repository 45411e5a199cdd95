package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/app/dataset"
	"github.com/NeuralTrust/DisasterGate/pkg/app/monitoring"
	"github.com/NeuralTrust/DisasterGate/pkg/app/prediction"
	"github.com/NeuralTrust/DisasterGate/pkg/app/training"
	"github.com/NeuralTrust/DisasterGate/pkg/config"
	"github.com/NeuralTrust/DisasterGate/pkg/dependency_container"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/database"
	infraLogger "github.com/NeuralTrust/DisasterGate/pkg/infra/logger"
	_ "github.com/NeuralTrust/DisasterGate/pkg/infra/migrations"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

const dbRetryDelay = 5 * time.Second

var errNoVocabulary = errors.New("loaded model does not expose its vocabulary")

func main() {
	configDir := pflag.String("config", "./config", "directory holding config.yaml")
	pflag.Parse()

	if envFile, err := config.LoadEnv(); err != nil {
		log.Printf("no %s file found, using system environment variables", envFile)
	}

	logger, err := infraLogger.NewLogger("monitor")
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

	if err := run(ctx, cfg, logger.Logger); err != nil {
		logger.WithError(err).Error("monitoring failed")
		logger.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger) error {
	db, err := prepareDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	registry, err := dependency_container.BuildArtifactRegistry(ctx, cfg, logger)
	if err != nil {
		return err
	}
	loader := prediction.NewArtifactLoader(registry, cfg.Model.LoadTimeout, logger)
	scorer, err := loader.Load(ctx, cfg.Model.Locator())
	if err != nil {
		return err
	}
	m, ok := scorer.(monitoring.Model)
	if !ok {
		return errNoVocabulary
	}
	if meta, err := training.ReadMeta(ctx, registry, cfg.Model.Locator()); err != nil {
		logger.WithError(err).Warn("run metadata not available")
	} else {
		logger.WithFields(logrus.Fields{
			"run_id":          meta.RunID,
			"created_at":      meta.CreatedAt,
			"train_samples":   meta.Metrics.Samples,
			"vocabulary_size": meta.Metrics.VocabularySize,
		}).Info("monitoring model")
	}

	normalizer, err := cfg.Text.Normalizer()
	if err != nil {
		return err
	}

	var reference, current *dataset.Dataset
	opts := dataset.LoadOptions{
		Retries:    cfg.Training.Retries,
		RetryDelay: cfg.Training.RetryDelay,
		Normalizer: normalizer,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		reference, err = dataset.Load(gctx, logger, cfg.Monitoring.ReferencePath, opts)
		return err
	})
	g.Go(func() (err error) {
		current, err = dataset.Load(gctx, logger, cfg.Monitoring.CurrentPath, opts)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	job := monitoring.NewJob(logger, m, database.NewMetricsRepository(db), monitoring.Options{
		RunID:        cfg.Model.Run,
		ChunkSize:    cfg.Monitoring.ChunkSize,
		SendInterval: cfg.Monitoring.SendInterval,
		Begin:        cfg.Monitoring.Begin,
	})
	sent, err := job.Run(ctx, reference, current)
	logger.WithField("rows", sent).Info("monitoring finished")
	return err
}

// prepareDatabase creates the metrics database when missing, then opens it
// and applies migrations. Postgres may still be starting, so each step is
// retried.
func prepareDatabase(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*database.DB, error) {
	conn := cfg.Database.Connection()
	attempts := cfg.Database.MaxRetries
	if attempts < 1 {
		attempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = database.EnsureDatabase(ctx, logger, conn); lastErr == nil {
			db, err := database.NewDB(ctx, logger, conn)
			if err == nil {
				return db, nil
			}
			lastErr = err
		}
		logger.WithError(lastErr).WithField("attempt", attempt).Warn("database not ready")
		if attempt == attempts {
			break
		}
		select {
		case <-time.After(dbRetryDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}
