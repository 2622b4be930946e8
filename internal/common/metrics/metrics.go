// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of gateway requests by outcome",
		},
		[]string{"outcome"},
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gateway_request_duration_seconds",
			Help: "Duration of full gateway request processing in seconds",
		},
		[]string{"outcome"},
	)

	ClassifierCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_calls_total",
			Help: "Total number of understanding-service calls by status",
		},
		[]string{"status"},
	)

	ClassifierCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "classifier_call_duration_seconds",
			Help: "Duration of understanding-service calls in seconds",
		},
		[]string{"status"},
	)

	HandlerInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "handler_invocations_total",
			Help: "Total number of handler invocations by intent and status",
		},
		[]string{"intent", "status"},
	)

	HandlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "handler_duration_seconds",
			Help: "Duration of backend handler execution in seconds",
		},
		[]string{"intent"},
	)
)
