package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNewMetricsRegistersOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordVendorOperation("create")
	m.RecordVendorOperation("create")
	m.RecordPurchaseOrderOperation("update")
	m.RecordRuleOutcome("on_time_delivery_rate", "applied")
	m.ObserveRecalculation("purchase_order", 10*time.Millisecond)
	m.RecordHTTPRequest("GET", "/vendors/", "200", time.Millisecond)
	m.TrackDBOperation("get_vendor")(time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.VendorOperationsCounter.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PurchaseOrderOperationsCounter.WithLabelValues("update")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RuleOutcomesCounter.WithLabelValues("on_time_delivery_rate", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HttpRequestsTotal.WithLabelValues("GET", "/vendors/", "200")))

	count, err := testutil.GatherAndCount(reg, "test_performance_recalculation_duration_seconds")
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordVendorOperation("create")
		m.RecordPurchaseOrderOperation("create")
		m.RecordRuleOutcome("fulfillment_rate", "failed")
		m.ObserveRecalculation("sweep", time.Second)
		m.RecordHTTPRequest("GET", "/", "200", time.Second)
		m.RecordEventPublished("ok")
		m.TrackDBOperation("list_vendors")(time.Now())
	})
}
