package server

import (
	"fmt"

	"github.com/NeuralTrust/DoctourGate/pkg/config"
	"github.com/NeuralTrust/DoctourGate/pkg/server/router"
	"github.com/sirupsen/logrus"
)

type (
	APIServerDI struct {
		Config  *config.Config
		Logger  *logrus.Logger
		Routers []router.ServerRouter
	}
	// APIServer serves safety validation, consultations and the websocket
	// endpoint. It also owns the metrics listener.
	APIServer struct {
		*BaseServer
	}
)

func NewAPIServer(di APIServerDI) *APIServer {
	s := &APIServer{
		BaseServer: NewBaseServer(di.Config, di.Logger),
	}
	s.setupHealthCheck()
	s.WithRouters(di.Routers...)
	return s
}

func (s *APIServer) Run() error {
	s.setupMetricsEndpoint()
	addr := fmt.Sprintf(":%d", s.Config.Server.APIPort)
	s.Logger.WithField("addr", addr).Info("starting api server")
	return s.Router.Listen(addr)
}
