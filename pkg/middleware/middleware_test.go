package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/DisasterGate/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newApp() *fiber.App {
	logger := quietLogger()
	transport := Transport{
		PanicRecoverMiddleware: NewPanicRecoverMiddleware(logger),
		RequestIDMiddleware:    NewRequestIDMiddleware(),
		MetricsMiddleware:      NewMetricsMiddleware(logger),
	}
	app := fiber.New()
	app.Use(transport.Handlers()...)
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		c.Status(fiber.StatusCreated)
		panic("boom")
	})
	return app
}

func TestPanicRecoverAlwaysAnswers500(t *testing.T) {
	resp, err := newApp().Test(httptest.NewRequest(fiber.MethodGet, "/panic", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Internal server error", body["error"])
}

func TestRequestID(t *testing.T) {
	app := newApp()

	req := httptest.NewRequest(fiber.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(RequestIDHeader))

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
}

func TestMetricsMiddlewareCountsRequests(t *testing.T) {
	counter := prometheus.RequestTotal.WithLabelValues("/ok", fiber.MethodGet, "2xx")
	before := testutil.ToFloat64(counter)

	resp, err := newApp().Test(httptest.NewRequest(fiber.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(200))
	assert.Equal(t, "4xx", statusClass(422))
	assert.Equal(t, "5xx", statusClass(0))
}
