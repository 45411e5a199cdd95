package server

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/DisasterGate/pkg/config"
	"github.com/NeuralTrust/DisasterGate/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	PredictionServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	PredictionServer struct {
		*BaseServer
	}
)

func NewPredictionServer(di PredictionServerDI) *PredictionServer {
	s := &PredictionServer{
		BaseServer: NewBaseServer(di.Config, di.Logger).WithRouters(di.Routers...),
	}
	s.setupMetricsEndpoint()
	return s
}

func (s *PredictionServer) Addr() string {
	return fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
}

func (s *PredictionServer) Run() error {
	s.Logger.WithField("addr", s.Addr()).Info("starting prediction server")
	return s.Router.Listen(s.Addr())
}

func (s *PredictionServer) Shutdown(ctx context.Context) error {
	return s.shutdown(ctx)
}
