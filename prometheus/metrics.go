package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Vendor and purchase order metrics
	VendorOperationsCounter        *prometheus.CounterVec
	PurchaseOrderOperationsCounter *prometheus.CounterVec

	// Metrics engine
	RuleOutcomesCounter   *prometheus.CounterVec
	RecalculationDuration *prometheus.HistogramVec
	EventsPublishedTotal  *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg using the given name prefix
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		VendorOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_vendor_operations_total",
				Help: "Total number of vendor operations",
			},
			[]string{"operation"},
		),
		PurchaseOrderOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_purchase_order_operations_total",
				Help: "Total number of purchase order operations",
			},
			[]string{"operation"},
		),
		RuleOutcomesCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_performance_rule_outcomes_total",
				Help: "Metric rule evaluations by rule and outcome",
			},
			[]string{"rule", "outcome"},
		),
		RecalculationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_performance_recalculation_duration_seconds",
				Help:    "Duration of vendor metric recalculations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"trigger"},
		),
		EventsPublishedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_performance_events_published_total",
				Help: "Performance events handed to the broker by result",
			},
			[]string{"result"},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		m.DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordHTTPRequest records a served request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordVendorOperation increments the counter for vendor operations
func (m *Metrics) RecordVendorOperation(operation string) {
	if m == nil {
		return
	}
	m.VendorOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordPurchaseOrderOperation increments the counter for purchase order operations
func (m *Metrics) RecordPurchaseOrderOperation(operation string) {
	if m == nil {
		return
	}
	m.PurchaseOrderOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordRuleOutcome counts one rule evaluation
func (m *Metrics) RecordRuleOutcome(rule, outcome string) {
	if m == nil {
		return
	}
	m.RuleOutcomesCounter.WithLabelValues(rule, outcome).Inc()
}

// ObserveRecalculation records how long a recalculation took
func (m *Metrics) ObserveRecalculation(trigger string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RecalculationDuration.WithLabelValues(trigger).Observe(duration.Seconds())
}

// RecordEventPublished counts a publish attempt
func (m *Metrics) RecordEventPublished(result string) {
	if m == nil {
		return
	}
	m.EventsPublishedTotal.WithLabelValues(result).Inc()
}
