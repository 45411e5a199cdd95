package mocks

import (
	"context"

	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/stretchr/testify/mock"
)

type Predictor struct {
	mock.Mock
}

func (m *Predictor) Load(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *Predictor) Predict(ctx context.Context, raw string) (model.Label, error) {
	args := m.Called(ctx, raw)
	label, _ := args.Get(0).(model.Label) //nolint:errcheck
	return label, args.Error(1)
}

func (m *Predictor) Ready() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *Predictor) Locator() model.Locator {
	args := m.Called()
	loc, _ := args.Get(0).(model.Locator) //nolint:errcheck
	return loc
}
