package router

import (
	"errors"

	handlers "github.com/NeuralTrust/DisasterGate/pkg/handlers/http"
	"github.com/NeuralTrust/DisasterGate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
)

var ErrMissingHandler = errors.New("handler transport is incomplete")

type predictionRouter struct {
	middlewareTransport middleware.Transport
	handlerTransport    handlers.HandlerTransport
}

func NewPredictionRouter(
	middlewareTransport middleware.Transport,
	handlerTransport handlers.HandlerTransport,
) ServerRouter {
	return &predictionRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
	}
}

func (r *predictionRouter) BuildRoutes(router *fiber.App) error {
	h := r.handlerTransport
	if h.RootHandler == nil || h.PredictHandler == nil || h.HealthHandler == nil || h.GetVersionHandler == nil {
		return ErrMissingHandler
	}

	if mws := r.middlewareTransport.Handlers(); len(mws) > 0 {
		router.Use(mws...)
	}

	router.Get("/", h.RootHandler.Handle)
	router.Get("/predict", h.PredictHandler.Handle)
	router.Get("/health", h.HealthHandler.Handle)
	router.Get("/version", h.GetVersionHandler.Handle)
	return nil
}
