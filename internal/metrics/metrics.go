// Package metrics provides Prometheus metrics collection for the battery
// health service. It defines the prediction, session, export and ingestion
// metrics exposed on the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	// Model metrics
	MLPredictions      prometheus.Counter   // Total number of successful model scorings
	MLFailures         prometheus.Counter   // Total number of failed model scorings
	MLModelAge         prometheus.Gauge     // Age of the loaded model artifact in seconds
	MLLatency          prometheus.Histogram // Scoring latency in seconds
	MLPredictionScores prometheus.Histogram // Distribution of health scores
	FeatureDrift       *prometheus.GaugeVec // Shift of recent input means from the scaler baseline, in baseline std units

	// Session metrics
	PredictionRequests prometheus.Counter     // Prediction requests received
	PredictionRejected prometheus.Counter     // Prediction requests rejected without a ledger append
	LedgerSize         prometheus.Gauge       // Events in the active session ledger
	Suitability        *prometheus.CounterVec // Recorded predictions by suitability band

	// Export metrics
	Exports        *prometheus.CounterVec // Reports exported by format
	ExportFailures prometheus.Counter     // Failed report exports

	// Ingestion metrics
	MQTTMessages       prometheus.Counter // Sensor messages received over MQTT
	MQTTInvalidPayload prometheus.Counter // Sensor messages that could not be decoded

	// System metrics
	ErrorsTotal prometheus.Counter // Total number of errors encountered
}

// New creates and registers all Prometheus metrics using the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates metrics with a custom registry (useful for testing).
func NewWithRegistry(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		MLPredictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_predictions_total",
			Help: "Total number of successful health model scorings",
		}),
		MLFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "ml_failures_total",
			Help: "Total number of failed health model scorings",
		}),
		MLModelAge: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ml_model_age_seconds",
			Help: "Age of the loaded model artifact in seconds",
		}),
		MLLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_latency_seconds",
			Help:    "Health scoring latency in seconds (normalize + predict)",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0},
		}),
		MLPredictionScores: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ml_health_scores",
			Help:    "Distribution of battery health scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		FeatureDrift: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ml_feature_drift",
			Help: "Shift of the recent input mean from the scaler baseline in standard deviations",
		}, []string{"feature"}),
		PredictionRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_requests_total",
			Help: "Total number of prediction requests",
		}),
		PredictionRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "prediction_rejected_total",
			Help: "Total number of prediction requests rejected by the scorer",
		}),
		LedgerSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "session_ledger_events",
			Help: "Number of events in the active session history",
		}),
		Suitability: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "predictions_by_suitability_total",
			Help: "Recorded predictions by suitability band",
		}, []string{"suitability"}),
		Exports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "report_exports_total",
			Help: "Total number of exported reports by format",
		}, []string{"format"}),
		ExportFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "report_export_failures_total",
			Help: "Total number of failed report exports",
		}),
		MQTTMessages: factory.NewCounter(prometheus.CounterOpts{
			Name: "mqtt_messages_total",
			Help: "Total number of sensor messages received over MQTT",
		}),
		MQTTInvalidPayload: factory.NewCounter(prometheus.CounterOpts{
			Name: "mqtt_invalid_payloads_total",
			Help: "Total number of undecodable sensor messages",
		}),
		ErrorsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors encountered",
		}),
	}
}
