// Package metrics exposes Prometheus collectors for the entitlement server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CarrierOperations counts outbound carrier API calls by carrier,
	// operation and outcome.
	CarrierOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrier_operations_total",
		Help: "Total carrier API calls by carrier, operation and outcome.",
	}, []string{"carrier", "operation", "outcome"})

	// CarrierOperationDuration observes outbound carrier call latency.
	CarrierOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "carrier_operation_duration_seconds",
		Help:    "Carrier API call latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"carrier", "operation"})

	// TransferOperations counts profile transfer operations by final status.
	TransferOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "transfer_operations_total",
		Help: "Total profile transfer operations by final status.",
	}, []string{"carrier", "status"})

	// HTTPRequests counts API requests by method, path and status class.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	// StaleOperationsReconciled counts operations closed by the sweep.
	StaleOperationsReconciled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stale_operations_reconciled_total",
		Help: "Total stale transfer operations closed by the reconciliation sweep.",
	})
)

// ObserveCarrierCall records one carrier call with its duration and outcome.
func ObserveCarrierCall(carrier, operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	CarrierOperations.WithLabelValues(carrier, operation, outcome).Inc()
	CarrierOperationDuration.WithLabelValues(carrier, operation).Observe(time.Since(start).Seconds())
}
