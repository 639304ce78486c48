package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Common labels for all metrics
	commonLabels = []string{"stage"}

	// Latency buckets in milliseconds. Moderation calls sit behind a 10s
	// deadline, so the ladder tops out at 10s.
	latencyBuckets = []float64{
		5, 10, 25, // Fast checks (5-25ms)
		50, 100, 250, // Normal checks (50-250ms)
		500, 1000, 2500, // Slow checks (500ms-2.5s)
		5000, 10000, // Near-deadline checks (5s-10s)
	}

	GuardrailChecksTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilr_guardrail_checks_total",
			Help: "Total number of guardrail checks performed",
		},
		append(commonLabels, "verdict"),
	)

	GuardrailBlockedTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilr_guardrail_blocked_total",
			Help: "Total number of payloads rejected by the guardrail",
		},
		commonLabels,
	)

	GuardrailCheckLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quilr_guardrail_check_latency_ms",
			Help:    "Guardrail check latency in milliseconds",
			Buckets: latencyBuckets,
		},
		commonLabels,
	)

	GuardrailErrorsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilr_guardrail_errors_total",
			Help: "Total number of guardrail checks that failed to complete",
		},
		commonLabels,
	)

	GuardrailCategoryDetections = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "quilr_guardrail_category_detections_total",
			Help: "Detections per moderation category",
		},
		append(commonLabels, "category"),
	)
)

type MetricsConfig struct {
	EnableLatency            bool // Check latency histogram
	EnableCategoryDetections bool // Per-category counters (higher cardinality)
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:            true,  // Basic latency is usually safe
		EnableCategoryDetections: false, // Disabled by default (high cardinality)
	}
}

var Config MetricsConfig

func Initialize(cfg MetricsConfig) {
	Config = cfg
	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prometheus.DefaultRegisterer = registry
	prometheus.DefaultGatherer = registry
}
