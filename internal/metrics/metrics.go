package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics.
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_api_requests_total",
			Help: "Total HTTP API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_api_request_duration_seconds",
			Help:    "HTTP API request latency distribution",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Dispatch metrics.
var (
	// DispatchDecisionsTotal counts routing decisions per backend.
	DispatchDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_dispatch_decisions_total",
			Help: "Backend routing decisions",
		},
		[]string{"entity", "verb", "backend", "tenant_id"},
	)

	// DispatchFallbacksTotal counts fallback executions and their outcome.
	DispatchFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_dispatch_fallbacks_total",
			Help: "Fallback executions after primary backend failure",
		},
		[]string{"operation", "outcome"}, // outcome: recovered, failed, unavailable
	)

	// DispatchOperationDuration measures end-to-end operation latency.
	DispatchOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_dispatch_operation_duration_seconds",
			Help:    "Routed operation latency distribution",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation", "backend"},
	)

	// DispatchSafeDefaultsTotal counts routing decisions that fell back to
	// the safe default because tenant mode was unrecognized.
	DispatchSafeDefaultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_dispatch_safe_defaults_total",
			Help: "Routing decisions resolved by the local safe default",
		},
		[]string{"tenant_id"},
	)

	// MirrorFailuresTotal counts best-effort local mirror failures after
	// remote writes.
	MirrorFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_dispatch_mirror_failures_total",
			Help: "Failed best-effort mirrors of remote writes into the local store",
		},
		[]string{"entity"},
	)
)

// Remote partner metrics.
var (
	VelneoRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_velneo_requests_total",
			Help: "Requests issued to the Velneo partner API",
		},
		[]string{"endpoint", "status"},
	)

	VelneoRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backoffice_velneo_request_duration_seconds",
			Help:    "Velneo partner API latency distribution",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)
)

// Audit metrics.
var (
	// AuditWriteFailuresTotal counts swallowed audit sink failures. These
	// never surface to callers, so the counter is the operator's signal.
	AuditWriteFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "backoffice_audit_write_failures_total",
			Help: "Audit events that could not be persisted",
		},
	)

	AuditEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_audit_events_total",
			Help: "Audit events recorded",
		},
		[]string{"event_type", "success"},
	)
)

// Document ingestion metrics.
var (
	DocumentIngestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backoffice_document_ingests_total",
			Help: "Scanned policy document ingestion outcomes",
		},
		[]string{"status"},
	)
)
