package dependency_container

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/DisasterGate/pkg/app/prediction"
	"github.com/NeuralTrust/DisasterGate/pkg/config"
	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	handlers "github.com/NeuralTrust/DisasterGate/pkg/handlers/http"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/artifacts"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/cache"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/events"
	"github.com/NeuralTrust/DisasterGate/pkg/middleware"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Config              *config.Config
	Logger              *logrus.Logger
	Artifacts           *artifacts.Registry
	Predictor           prediction.Predictor
	Cache               *cache.PredictionCache
	EventWorker         *events.Worker
	HandlerTransport    handlers.HandlerTransport
	MiddlewareTransport middleware.Transport
}

type ContainerDI struct {
	Config *config.Config
	Logger *logrus.Logger

	// Artifacts overrides the registry built from Config.Artifacts.
	Artifacts *artifacts.Registry
	// Publisher overrides the Kafka publisher built from Config.Events.
	Publisher events.Publisher
}

// BuildArtifactRegistry registers the S3 store behind a circuit breaker and,
// when a root directory is configured, the local file store.
func BuildArtifactRegistry(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*artifacts.Registry, error) {
	registry := artifacts.NewRegistry()

	s3Store, err := artifacts.NewS3Store(ctx, cfg.Artifacts.S3)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize s3 artifact store: %w", err)
	}
	registry.Register(model.DefaultScheme, artifacts.NewBreakerStore(
		"artifacts-s3",
		s3Store,
		cfg.Artifacts.BreakerTimeout,
		cfg.Artifacts.BreakerMaxFailures,
	))

	if cfg.Artifacts.Root != "" {
		registry.Register(model.FileScheme, artifacts.NewFileStore(cfg.Artifacts.Root))
		logger.WithField("root", cfg.Artifacts.Root).Info("file artifact store enabled")
	}
	return registry, nil
}

func NewContainer(ctx context.Context, di ContainerDI) (*Container, error) {
	cfg, logger := di.Config, di.Logger

	registry := di.Artifacts
	if registry == nil {
		var err error
		if registry, err = BuildArtifactRegistry(ctx, cfg, logger); err != nil {
			return nil, err
		}
	}
	loader := prediction.NewArtifactLoader(registry, cfg.Model.LoadTimeout, logger)

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Artifacts: registry,
	}

	normalizer, err := cfg.Text.Normalizer()
	if err != nil {
		return nil, err
	}
	opts := []prediction.Option{prediction.WithNormalizer(normalizer)}
	if cfg.Redis.Enabled {
		predictionCache, err := cache.NewClient(cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		c.Cache = predictionCache
		opts = append(opts, prediction.WithCache(predictionCache))
	}

	if cfg.Events.Enabled {
		publisher := di.Publisher
		if publisher == nil {
			kafkaPublisher, err := events.NewKafkaPublisher(cfg.Events.Kafka)
			if err != nil {
				c.Close()
				return nil, err
			}
			publisher = kafkaPublisher
		}
		c.EventWorker = events.NewWorker(logger, publisher, cfg.Events.QueueSize)
		c.EventWorker.StartWorkers(cfg.Events.Workers)
		opts = append(opts, prediction.WithEventSink(c.EventWorker))
	}

	predictor, err := prediction.NewPredictor(cfg.Model.Locator(), loader, logger, opts...)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Predictor = predictor

	c.HandlerTransport = handlers.HandlerTransport{
		RootHandler:       handlers.NewRootHandler(),
		PredictHandler:    handlers.NewPredictHandler(logger, predictor, cfg.Server.MaxInputBytes),
		HealthHandler:     handlers.NewHealthHandler(predictor),
		GetVersionHandler: handlers.NewGetVersionHandler(),
	}
	c.MiddlewareTransport = middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		RequestIDMiddleware:    middleware.NewRequestIDMiddleware(),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(logger),
	}
	return c, nil
}

// Close flushes pending events before dropping the cache connection.
func (c *Container) Close() {
	if c.EventWorker != nil {
		c.EventWorker.Shutdown()
	}
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			c.Logger.WithError(err).Warn("failed to close prediction cache")
		}
	}
}
