package mocks

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/DisasterGate/pkg/infra/httpx"
	"github.com/stretchr/testify/mock"
)

type Client struct {
	mock.Mock
}

func (m *Client) Get(ctx context.Context, uri string) (*httpx.Response, error) {
	args := m.Called(ctx, uri)
	resp, ok := args.Get(0).(*httpx.Response)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *httpx.Response, got %T", args.Get(0))
	}
	return resp, args.Error(1)
}
