package prometheus

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		1, 5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000,
	}

	RequestTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "disastergate_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"route", "method", "status"},
	)

	RequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "disastergate_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	PredictionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "disastergate_predictions_total",
			Help: "Predictions served by label",
		},
		[]string{"label"},
	)

	PredictionErrors = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "disastergate_prediction_errors_total",
			Help: "Failed predictions by error class",
		},
		[]string{"class"},
	)

	ModelReady = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "disastergate_model_ready",
			Help: "1 when the classifier is loaded",
		},
	)

	ArtifactStoreOpen = promauto.With(registerer).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "disastergate_artifact_store_open",
			Help: "1 while the circuit breaker of an artifact store is not closed",
		},
		[]string{"store"},
	)

	EventsDropped = promauto.With(registerer).NewCounter(
		prometheus.CounterOpts{
			Name: "disastergate_prediction_events_dropped_total",
			Help: "Prediction events dropped because the queue was full",
		},
	)

	EventsPublished = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "disastergate_prediction_events_total",
			Help: "Prediction events handed to the broker by result",
		},
		[]string{"result"},
	)
)

type MetricsConfig struct {
	EnableLatency     bool `mapstructure:"enable_latency"`
	EnablePredictions bool `mapstructure:"enable_predictions"`
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:     true,
		EnablePredictions: true,
	}
}

var (
	Config       = DefaultMetricsConfig()
	registerOnce sync.Once
)

// Initialize sets the feature flags. Runtime collectors are registered on
// the first call only.
func Initialize(cfg MetricsConfig) {
	Config = cfg
	registerOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}

func Gatherer() prometheus.Gatherer {
	return registry
}
