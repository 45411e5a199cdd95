package mocks

import (
	"context"
	"fmt"
	"io"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/stretchr/testify/mock"
)

type Scorer struct {
	mock.Mock
}

func (m *Scorer) Predict(ctx context.Context, cleaned []string) ([]model.Label, error) {
	args := m.Called(ctx, cleaned)
	labels, ok := args.Get(0).([]model.Label)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected []model.Label, got %T", args.Get(0))
	}
	return labels, args.Error(1)
}

type Loader struct {
	mock.Mock
}

func (m *Loader) Load(ctx context.Context, locator model.Locator) (model.Scorer, error) {
	args := m.Called(ctx, locator)
	scorer, ok := args.Get(0).(model.Scorer)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected model.Scorer, got %T", args.Get(0))
	}
	return scorer, args.Error(1)
}

type ArtifactStore struct {
	mock.Mock
}

func (m *ArtifactStore) Get(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, bucket, key)
	rc, ok := args.Get(0).(io.ReadCloser)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected io.ReadCloser, got %T", args.Get(0))
	}
	return rc, args.Error(1)
}

func (m *ArtifactStore) Put(ctx context.Context, bucket, key string, body io.Reader) error {
	args := m.Called(ctx, bucket, key, body)
	return args.Error(0)
}
