package http

import (
	"time"

	"github.com/NeuralTrust/DisasterGate/pkg/app/prediction"
	"github.com/gofiber/fiber/v2"
)

type healthHandler struct {
	predictor prediction.Predictor
}

// NewHealthHandler reports liveness plus whether the model is in memory.
// The endpoint answers 200 either way; the model loads on first use.
func NewHealthHandler(predictor prediction.Predictor) Handler {
	return &healthHandler{predictor: predictor}
}

func (h *healthHandler) Handle(c *fiber.Ctx) error {
	loc := h.predictor.Locator()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":      "ok",
		"model_ready": h.predictor.Ready(),
		"model_uri":   loc.URI(),
		"time":        time.Now().Format(time.RFC3339),
	})
}
