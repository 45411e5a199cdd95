package prediction

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/prometheus"
	"github.com/NeuralTrust/DisasterGate/pkg/textnorm"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Predictor classifies raw text with a model loaded at most once.
type Predictor interface {
	Load(ctx context.Context) error
	Predict(ctx context.Context, raw string) (model.Label, error)
	Ready() bool
	Locator() model.Locator
}

// Cache memoizes labels per run and cleaned text.
type Cache interface {
	Get(ctx context.Context, run, cleaned string) (model.Label, bool, error)
	Set(ctx context.Context, run, cleaned string, label model.Label) error
}

// EventSink must not block the caller.
type EventSink interface {
	Publish(event model.PredictionEvent)
}

type Option func(*predictor)

func WithCache(cache Cache) Option {
	return func(p *predictor) {
		p.cache = cache
	}
}

func WithEventSink(sink EventSink) Option {
	return func(p *predictor) {
		p.sink = sink
	}
}

func WithNormalizer(n *textnorm.Normalizer) Option {
	return func(p *predictor) {
		p.normalize = n.Normalize
	}
}

type loadedModel struct {
	scorer model.Scorer
}

type predictor struct {
	locator   model.Locator
	loader    model.Loader
	logger    *logrus.Logger
	normalize func(string) string
	cache     Cache
	sink      EventSink

	group  singleflight.Group
	loaded atomic.Pointer[loadedModel]
	now    func() time.Time
}

// NewPredictor validates the locator before anything else; the loader is
// not touched until Load or the first Predict.
func NewPredictor(locator model.Locator, loader model.Loader, logger *logrus.Logger, opts ...Option) (Predictor, error) {
	if err := locator.Validate(); err != nil {
		return nil, err
	}
	p := &predictor{
		locator:   locator,
		loader:    loader,
		logger:    logger,
		normalize: textnorm.Normalize,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *predictor) Locator() model.Locator {
	return p.locator
}

func (p *predictor) Ready() bool {
	return p.loaded.Load() != nil
}

// Load fetches the model once. Concurrent callers share the in-flight
// fetch; a failure leaves the predictor unloaded so a later call can retry.
func (p *predictor) Load(ctx context.Context) error {
	_, err := p.scorer(ctx)
	return err
}

func (p *predictor) scorer(ctx context.Context) (model.Scorer, error) {
	if m := p.loaded.Load(); m != nil {
		return m.scorer, nil
	}
	v, err, _ := p.group.Do("load", func() (interface{}, error) {
		if m := p.loaded.Load(); m != nil {
			return m.scorer, nil
		}
		uri := p.locator.URI()
		start := time.Now()
		scorer, err := p.loader.Load(ctx, p.locator)
		if err == nil && scorer == nil {
			err = model.ErrModelNotLoaded
		}
		if err != nil {
			if !model.IsArtifactLoadError(err) && !model.IsConfigurationError(err) {
				err = model.NewArtifactLoadError(uri, err)
			}
			p.logger.WithError(err).WithField("uri", uri).Error("failed to load model")
			return nil, err
		}
		p.loaded.Store(&loadedModel{scorer: scorer})
		prometheus.ModelReady.Set(1)
		p.logger.WithFields(logrus.Fields{
			"uri":      uri,
			"duration": time.Since(start).String(),
		}).Info("model loaded")
		return scorer, nil
	})
	if err != nil {
		return nil, err
	}
	scorer, _ := v.(model.Scorer) //nolint:errcheck
	return scorer, nil
}

func (p *predictor) Predict(ctx context.Context, raw string) (model.Label, error) {
	cleaned := p.normalize(raw)

	if label, ok := p.cached(ctx, cleaned); ok {
		p.publish(raw, cleaned, label, true)
		return label, nil
	}

	scorer, err := p.scorer(ctx)
	if err != nil {
		return 0, err
	}
	labels, err := scorer.Predict(ctx, []string{cleaned})
	if err != nil {
		return 0, model.NewPredictionError(err)
	}
	if len(labels) == 0 {
		return 0, model.NewPredictionError(model.ErrEmptyPrediction)
	}
	label := labels[0]

	if p.cache != nil {
		if err := p.cache.Set(ctx, p.locator.Run, cleaned, label); err != nil {
			p.logger.WithError(err).Warn("failed to cache prediction")
		}
	}
	p.publish(raw, cleaned, label, false)
	return label, nil
}

func (p *predictor) cached(ctx context.Context, cleaned string) (model.Label, bool) {
	if p.cache == nil {
		return 0, false
	}
	label, ok, err := p.cache.Get(ctx, p.locator.Run, cleaned)
	if err != nil {
		p.logger.WithError(err).Warn("failed to read prediction cache")
		return 0, false
	}
	return label, ok
}

func (p *predictor) publish(raw, cleaned string, label model.Label, hit bool) {
	if p.sink == nil {
		return
	}
	p.sink.Publish(model.PredictionEvent{
		Run:       p.locator.Run,
		Raw:       raw,
		Cleaned:   cleaned,
		Label:     label,
		CacheHit:  hit,
		Timestamp: p.now().UTC(),
	})
}
