// Package metrics defines prometheus metrics to expose
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "courtside_api_request_duration_seconds",
			Help:    "Total time taken for generation requests in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 15, 20, 25, 30, 40, 50, 75, 100, 150, 200},
		},
		[]string{"model"},
	)

	PromptTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_api_prompt_tokens_total",
			Help: "Total number of prompt tokens used",
		},
		[]string{"model"},
	)

	CompletionTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_api_completion_tokens_total",
			Help: "Total number of completion tokens used",
		},
		[]string{"model"},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_api_request_count_total",
			Help: "Total number of generation requests processed",
		},
		[]string{"model", "status"},
	)

	BilledAmount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_api_billed_amount_total",
			Help: "Total settlement-currency amount billed",
		},
		[]string{"model"},
	)

	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_api_error_count",
			Help: "Error count",
		},
		[]string{"model", "from"},
	)

	ResponseCodes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "courtside_api_status_code",
			Help: "Status Codes",
		},
		[]string{"path", "status_code"},
		//we don't need model here because we know what models are being failed from error count
	)
)
