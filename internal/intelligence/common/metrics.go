package common

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// IntelligenceMetrics is the telemetry contract for the intelligence layer.
// Each extraction package records through this interface so the backing
// implementation (Prometheus in production, noop in tests) can be swapped
// without touching extraction code.
type IntelligenceMetrics interface {
	// RecordInference records one call to an external model.
	RecordInference(ctx context.Context, modelName string, durationMs float64, success bool)

	// RecordExtraction records one extraction pass: strategy is "ner",
	// "regex", or "rag"; count is the number of entities produced.
	RecordExtraction(ctx context.Context, strategy string, count int, durationMs float64)

	// RecordCacheAccess records a cache hit or miss for a model result.
	RecordCacheAccess(ctx context.Context, component string, hit bool)

	// RecordRiskAssessment records one screening verdict.
	RecordRiskAssessment(ctx context.Context, riskLevel string, durationMs float64)
}

var latencyBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

type prometheusMetrics struct {
	inferences  *prometheus.CounterVec
	inferenceMs *prometheus.HistogramVec
	extractions *prometheus.CounterVec
	entities    *prometheus.CounterVec
	cacheHits   *prometheus.CounterVec
	screenings  *prometheus.CounterVec
	screeningMs prometheus.Histogram
}

// NewPrometheusMetrics registers the intelligence metric family on reg and
// returns the recording facade. All metrics carry the medner_intelligence_
// prefix.
func NewPrometheusMetrics(reg prometheus.Registerer) (IntelligenceMetrics, error) {
	m := &prometheusMetrics{
		inferences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medner_intelligence_inferences_total",
			Help: "Model inference calls by model and outcome.",
		}, []string{"model", "outcome"}),
		inferenceMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medner_intelligence_inference_duration_ms",
			Help:    "Model inference latency in milliseconds.",
			Buckets: latencyBuckets,
		}, []string{"model"}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medner_intelligence_extractions_total",
			Help: "Extraction passes by strategy.",
		}, []string{"strategy"}),
		entities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medner_intelligence_entities_total",
			Help: "Entities produced by strategy.",
		}, []string{"strategy"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medner_intelligence_cache_accesses_total",
			Help: "Cache accesses by component and outcome.",
		}, []string{"component", "outcome"}),
		screenings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medner_intelligence_screenings_total",
			Help: "Screening verdicts by risk level.",
		}, []string{"risk_level"}),
		screeningMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "medner_intelligence_screening_duration_ms",
			Help:    "Screening evaluation latency in milliseconds.",
			Buckets: latencyBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		m.inferences, m.inferenceMs, m.extractions, m.entities,
		m.cacheHits, m.screenings, m.screeningMs,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *prometheusMetrics) RecordInference(_ context.Context, modelName string, durationMs float64, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.inferences.WithLabelValues(modelName, outcome).Inc()
	m.inferenceMs.WithLabelValues(modelName).Observe(durationMs)
}

func (m *prometheusMetrics) RecordExtraction(_ context.Context, strategy string, count int, _ float64) {
	m.extractions.WithLabelValues(strategy).Inc()
	m.entities.WithLabelValues(strategy).Add(float64(count))
}

func (m *prometheusMetrics) RecordCacheAccess(_ context.Context, component string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheHits.WithLabelValues(component, outcome).Inc()
}

func (m *prometheusMetrics) RecordRiskAssessment(_ context.Context, riskLevel string, durationMs float64) {
	m.screenings.WithLabelValues(riskLevel).Inc()
	m.screeningMs.Observe(durationMs)
}

type noopMetrics struct{}

func (noopMetrics) RecordInference(context.Context, string, float64, bool) {}
func (noopMetrics) RecordExtraction(context.Context, string, int, float64) {}
func (noopMetrics) RecordCacheAccess(context.Context, string, bool)        {}
func (noopMetrics) RecordRiskAssessment(context.Context, string, float64)  {}

// NewNoopMetrics returns a metrics sink that records nothing.
func NewNoopMetrics() IntelligenceMetrics { return noopMetrics{} }

// InMemoryMetrics counts events in memory for tests.
type InMemoryMetrics struct {
	mu          sync.Mutex
	Inferences  map[string]int
	Extractions map[string]int
	Entities    map[string]int
	CacheHits   int
	CacheMisses int
	Screenings  map[string]int
}

// NewInMemoryMetrics returns an empty in-memory recorder.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		Inferences:  map[string]int{},
		Extractions: map[string]int{},
		Entities:    map[string]int{},
		Screenings:  map[string]int{},
	}
}

func (m *InMemoryMetrics) RecordInference(_ context.Context, modelName string, _ float64, _ bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inferences[modelName]++
}

func (m *InMemoryMetrics) RecordExtraction(_ context.Context, strategy string, count int, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Extractions[strategy]++
	m.Entities[strategy] += count
}

func (m *InMemoryMetrics) RecordCacheAccess(_ context.Context, _ string, hit bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if hit {
		m.CacheHits++
	} else {
		m.CacheMisses++
	}
}

func (m *InMemoryMetrics) RecordRiskAssessment(_ context.Context, riskLevel string, _ float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Screenings[riskLevel]++
}
