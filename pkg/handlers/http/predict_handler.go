package http

import (
	"fmt"

	"github.com/NeuralTrust/DisasterGate/pkg/app/prediction"
	"github.com/NeuralTrust/DisasterGate/pkg/domain/model"
	"github.com/NeuralTrust/DisasterGate/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const DataParam = "data"

type predictHandler struct {
	logger        *logrus.Logger
	predictor     prediction.Predictor
	maxInputBytes int
}

// NewPredictHandler serves GET /predict?data=<text>. maxInputBytes <= 0
// disables the size check.
func NewPredictHandler(logger *logrus.Logger, predictor prediction.Predictor, maxInputBytes int) Handler {
	return &predictHandler{
		logger:        logger,
		predictor:     predictor,
		maxInputBytes: maxInputBytes,
	}
}

func (h *predictHandler) Handle(c *fiber.Ctx) error {
	args := c.Context().QueryArgs()
	if !args.Has(DataParam) {
		return errorJSON(c, fiber.StatusUnprocessableEntity, "query parameter 'data' is required")
	}
	// Copy: fasthttp reuses the argument buffer once the handler returns.
	text := string(args.Peek(DataParam))
	if h.maxInputBytes > 0 && len(text) > h.maxInputBytes {
		return errorJSON(c, fiber.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds %d bytes", h.maxInputBytes))
	}

	label, err := h.predictor.Predict(c.UserContext(), text)
	if err != nil {
		return h.handleError(c, err)
	}
	if prometheus.Config.EnablePredictions {
		prometheus.PredictionsTotal.WithLabelValues(label.String()).Inc()
	}
	return c.Status(fiber.StatusOK).JSON(PredictResponse{Prediction: int(label)})
}

func (h *predictHandler) handleError(c *fiber.Ctx, err error) error {
	var (
		status int
		class  string
	)
	switch {
	case model.IsConfigurationError(err):
		status, class = fiber.StatusServiceUnavailable, "configuration"
	case model.IsArtifactLoadError(err):
		status, class = fiber.StatusServiceUnavailable, "artifact_load"
	case model.IsPredictionError(err):
		status, class = fiber.StatusInternalServerError, "prediction"
	default:
		status, class = fiber.StatusInternalServerError, "unknown"
	}
	prometheus.PredictionErrors.WithLabelValues(class).Inc()
	h.logger.WithError(err).WithField("class", class).Error("prediction request failed")

	if status == fiber.StatusServiceUnavailable {
		return errorJSON(c, status, "model unavailable")
	}
	return errorJSON(c, status, "prediction failed")
}
