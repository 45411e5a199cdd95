package prediction

import (
	"context"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/classifier"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
)

// StoreResolver picks the artifact store that serves a locator scheme.
type StoreResolver interface {
	Store(scheme string) (model.ArtifactStore, error)
}

type artifactLoader struct {
	stores  StoreResolver
	timeout time.Duration
	logger  *logrus.Logger
}

func NewArtifactLoader(stores StoreResolver, timeout time.Duration, logger *logrus.Logger) model.Loader {
	return &artifactLoader{
		stores:  stores,
		timeout: timeout,
		logger:  logger,
	}
}

func (l *artifactLoader) Load(ctx context.Context, locator model.Locator) (model.Scorer, error) {
	if err := locator.Validate(); err != nil {
		return nil, err
	}
	store, err := l.stores.Store(locator.SchemeOrDefault())
	if err != nil {
		return nil, err
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	uri := locator.URI()
	key := locator.Prefix() + model.ArtifactName
	l.logger.WithFields(logrus.Fields{"uri": uri, "key": key}).Debug("fetching model artifact")

	body, err := store.Get(ctx, locator.Bucket, key)
	if err != nil {
		if httpx.IsOpen(err) {
			l.logger.WithField("uri", uri).Warn("artifact store circuit is open, skipping fetch")
		}
		return nil, model.NewArtifactLoadError(uri, err)
	}
	defer body.Close() //nolint:errcheck

	pipeline, err := classifier.Decode(body)
	if err != nil {
		return nil, model.NewArtifactLoadError(uri, err)
	}
	return pipeline, nil
}
