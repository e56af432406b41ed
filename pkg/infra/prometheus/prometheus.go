package prometheus

import (
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Validation latency buckets in microseconds; a validation is a handful
	// of substring scans so anything past a few ms is an outlier.
	validationBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 5000,
	}

	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	VerdictsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctourgate_verdicts_total",
			Help: "Safety verdicts produced, by level and deciding layer",
		},
		[]string{"level", "layer"},
	)

	MatchedTermsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctourgate_matched_terms_total",
			Help: "Rule terms matched by decisive verdicts",
		},
		[]string{"layer", "term"},
	)

	ValidationLatency = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "doctourgate_validation_latency_us",
			Help:    "Safety validation latency in microseconds",
			Buckets: validationBuckets,
		},
	)

	RuleReloadsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctourgate_rule_reloads_total",
			Help: "Rule set reload attempts by trigger and result",
		},
		[]string{"trigger", "result"},
	)

	RuleSetTerms = promauto.With(registerer).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "doctourgate_rule_set_terms",
			Help: "Entries in the active rule set per category",
		},
		[]string{"category"},
	)

	ConsultationsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctourgate_consultations_total",
			Help: "Consultations handled by outcome",
		},
		[]string{"outcome"},
	)

	HTTPRequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "doctourgate_http_requests_total",
			Help: "HTTP requests processed",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "doctourgate_http_latency_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)
)

type MetricsConfig struct {
	EnableLatency    bool // Validation and HTTP latency histograms
	EnableTermLabels bool // Per-term counters (cardinality grows with the rule set)
}

func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		EnableLatency:    true,
		EnableTermLabels: false,
	}
}

var (
	config   atomic.Pointer[MetricsConfig]
	initOnce sync.Once
)

func init() {
	cfg := DefaultMetricsConfig()
	config.Store(&cfg)
}

// CurrentConfig is safe to call while Initialize runs elsewhere.
func CurrentConfig() MetricsConfig {
	return *config.Load()
}

// Initialize applies cfg. Collector registration happens once per process.
func Initialize(cfg MetricsConfig) {
	config.Store(&cfg)
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
		prometheus.DefaultRegisterer = registry
		prometheus.DefaultGatherer = registry
	})
}

// Gatherer exposes the private registry to the /metrics handler and tests.
func Gatherer() prometheus.Gatherer {
	return registry
}
