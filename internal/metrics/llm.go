package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Language model and translation metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of language model completions",
		},
		[]string{"model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "Language model completion duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)

	TranslationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "translations_total",
			Help:      "Question translations by outcome",
		},
		[]string{"outcome"}, // structured / text / not_found / error
	)
)

var llmOnce sync.Once

// RegisterLLMMetrics registers language model metrics with the default registry.
func RegisterLLMMetrics() {
	llmOnce.Do(func() {
		prometheus.MustRegister(LLMRequestsTotal, LLMRequestDuration, TranslationsTotal)
	})
}
