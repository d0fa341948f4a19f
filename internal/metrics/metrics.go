// Package metrics holds the Prometheus collectors for LLM calls, search calls, pipeline runs and HTTP traffic.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "song_scout"

// LLM metrics.
var (
	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM requests",
		},
		[]string{"provider", "model", "status"},
	)

	LLMRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"provider", "model"},
	)

	LLMTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Total LLM tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)
)

// Search metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"backend", "status"},
	)

	SearchRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	SearchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_results_total",
			Help:      "Search results returned by backends before de-duplication",
		},
		[]string{"backend"},
	)
)

// Pipeline metrics.
var (
	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Total pipeline runs by outcome",
		},
		[]string{"outcome"}, // ok / parse_failure / retrieval_error / no_queries / empty / error
	)

	PipelineRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "End-to-end pipeline duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
	)

	RankedItemsCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranked_items",
			Help:      "Number of ranked items returned per run",
			Buckets:   prometheus.LinearBuckets(0, 5, 7),
		},
	)
)

var registerOnce sync.Once

// Register registers every song_scout collector with the default registry.
// Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			LLMRequestsTotal,
			LLMRequestDuration,
			LLMTokensTotal,
			SearchRequestsTotal,
			SearchRequestDuration,
			SearchResultsTotal,
			PipelineRunsTotal,
			PipelineRunDuration,
			RankedItemsCount,
			HTTPRequestsTotal,
			HTTPRequestDuration,
			HTTPRequestsInFlight,
		)
	})
}
