package artifacts

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/httpx"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/prometheus"
)

// BreakerStore guards a store with a circuit breaker. Missing artifacts
// do not count as failures.
type BreakerStore struct {
	inner   model.ArtifactStore
	breaker httpx.CircuitBreaker
}

var _ model.ArtifactStore = (*BreakerStore)(nil)

func NewBreakerStore(name string, inner model.ArtifactStore, timeout time.Duration, maxFailures uint32) *BreakerStore {
	prometheus.ArtifactStoreOpen.WithLabelValues(name).Set(0)
	return &BreakerStore{
		inner: inner,
		breaker: httpx.NewCircuitBreaker(name, timeout, maxFailures,
			httpx.WithSuccessFilter(func(err error) bool {
				return errors.Is(err, model.ErrArtifactNotFound)
			}),
			httpx.WithStateObserver(func(name, _, to string) {
				open := 1.0
				if to == "closed" {
					open = 0
				}
				prometheus.ArtifactStoreOpen.WithLabelValues(name).Set(open)
			}),
		),
	}
}

// Open reports whether the breaker currently refuses or probes calls.
func (b *BreakerStore) Open() bool {
	return b.breaker.State() != "closed"
}

func (b *BreakerStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	var rc io.ReadCloser
	err := b.breaker.Execute(func() error {
		var err error
		rc, err = b.inner.Get(ctx, bucket, key)
		return err
	})
	return rc, err
}

func (b *BreakerStore) Put(ctx context.Context, bucket, key string, body io.Reader) error {
	return b.breaker.Execute(func() error {
		return b.inner.Put(ctx, bucket, key, body)
	})
}
