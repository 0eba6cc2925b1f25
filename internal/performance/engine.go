// Package performance derives the cached vendor performance metrics from the
// vendor's purchase orders and records historical snapshots of them.
package performance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/events"
	"github.com/KRGANESH/vendor-management/internal/lock"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/pkg/logger"
	"github.com/KRGANESH/vendor-management/prometheus"
)

const (
	DefaultSnapshotGranularity = 24 * time.Hour
	DefaultQueryTimeout        = 5 * time.Second
)

// Outcome is what a rule did during one run
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeSkipped Outcome = "skipped"
	OutcomeNoData  Outcome = "no_data"
	OutcomeFailed  Outcome = "failed"
)

// RuleResult reports a single rule evaluation
type RuleResult struct {
	Rule    string
	Field   model.MetricField
	Outcome Outcome
	Value   float64
	Err     error
}

// Result is the outcome of one recalculation of a vendor
type Result struct {
	VendorID  uint
	Rules     []RuleResult
	Metrics   model.PerformanceMetrics
	Snapshots []model.HistoricalPerformance
}

// Applied reports whether any metric was written
func (r *Result) Applied() bool {
	for _, rr := range r.Rules {
		if rr.Outcome == OutcomeApplied {
			return true
		}
	}
	return false
}

// Outcome returns the outcome of the rule writing field
func (r *Result) Outcome(field model.MetricField) Outcome {
	for _, rr := range r.Rules {
		if rr.Field == field {
			return rr.Outcome
		}
	}
	return ""
}

// Summary reports a sweep over every vendor
type Summary struct {
	Vendors int
	Failed  int
}

// Engine recomputes vendor metrics. It is safe for concurrent use; runs for
// the same vendor are serialized through the Locker.
type Engine struct {
	store        Store
	locker       lock.Locker
	publisher    events.Publisher
	metrics      *prometheus.Metrics
	now          func() time.Time
	granularity  time.Duration
	queryTimeout time.Duration
}

// Option configures an Engine
type Option func(*Engine)

// WithLocker replaces the in-process vendor lock
func WithLocker(l lock.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

// WithPublisher sets where performance events are sent
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *prometheus.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithClock overrides the source of "now"
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithSnapshotGranularity sets the truncation of snapshot dates. Zero keeps
// the exact instant.
func WithSnapshotGranularity(d time.Duration) Option {
	return func(e *Engine) { e.granularity = d }
}

// WithQueryTimeout bounds each store attempt. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(e *Engine) { e.queryTimeout = d }
}

// NewEngine creates an Engine over store
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		locker:       lock.NewKeyedMutex(),
		publisher:    events.NopPublisher{},
		now:          time.Now,
		granularity:  DefaultSnapshotGranularity,
		queryTimeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// plan is one pending rule evaluation with its snapshot key
type plan struct {
	rule       rule
	skip       bool
	snapshotAt time.Time
}

// OnPurchaseOrderSaved recomputes the metrics of the order's vendor after the
// order was created or updated. Each rule first checks its own trigger
// condition against the saved order.
func (e *Engine) OnPurchaseOrderSaved(ctx context.Context, order *model.PurchaseOrder) (*Result, error) {
	if order == nil {
		return nil, apperror.Validation("purchase order is required")
	}

	now := e.now().UTC()
	plans := make([]plan, 0, len(rules))
	for _, r := range rules {
		plans = append(plans, plan{
			rule:       r,
			skip:       !r.applies(order, now),
			snapshotAt: r.snapshotAt(order, now),
		})
	}

	id := order.ID
	return e.run(ctx, order.VendorID, now, plans, &events.PerformanceEvent{
		Trigger:         events.TriggerPurchaseOrder,
		PurchaseOrderID: &id,
	})
}

// Recalculate recomputes every metric of a vendor regardless of trigger
// conditions. All snapshots are keyed at the current time.
func (e *Engine) Recalculate(ctx context.Context, vendorID uint) (*Result, error) {
	return e.recalculate(ctx, vendorID, events.TriggerManual)
}

func (e *Engine) recalculate(ctx context.Context, vendorID uint, trigger events.Trigger) (*Result, error) {
	now := e.now().UTC()
	plans := make([]plan, 0, len(rules))
	for _, r := range rules {
		plans = append(plans, plan{rule: r, snapshotAt: now})
	}
	return e.run(ctx, vendorID, now, plans, &events.PerformanceEvent{Trigger: trigger})
}

// RecalculateAll recomputes every vendor. A failing vendor is logged and the
// sweep moves on.
func (e *Engine) RecalculateAll(ctx context.Context) (Summary, error) {
	log := logger.FromContext(ctx)

	ids, err := call(ctx, e, "list_vendor_ids", e.store.ListVendorIDs)
	if err != nil {
		return Summary{}, errors.Wrap(err, "failed to list vendors")
	}

	summary := Summary{Vendors: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		if _, err := e.recalculate(ctx, id, events.TriggerSweep); err != nil {
			if apperror.Is(err, apperror.KindNotFound) {
				// Deleted after the listing
				summary.Vendors--
				continue
			}
			summary.Failed++
			log.Error("Failed to recalculate vendor metrics", zap.Uint("vendor_id", id), zap.Error(err))
		}
	}

	log.Info("Recalculated vendor metrics",
		zap.Int("vendors", summary.Vendors),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (e *Engine) run(ctx context.Context, vendorID uint, now time.Time, plans []plan, event *events.PerformanceEvent) (*Result, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveRecalculation(string(event.Trigger), time.Since(start)) }()

	log := logger.FromContext(ctx).With(zap.Uint("vendor_id", vendorID), zap.String("trigger", string(event.Trigger)))
	ctx = logger.WithLogger(ctx, log)

	unlock, err := e.locker.Lock(ctx, fmt.Sprintf("vendor:%d", vendorID))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to lock vendor %d", vendorID)
	}
	defer unlock()

	vendor, err := call(ctx, e, "get_vendor", func(ctx context.Context) (*model.Vendor, error) {
		return e.store.GetVendor(ctx, vendorID)
	})
	if err != nil {
		return nil, err
	}

	result := &Result{VendorID: vendorID, Metrics: vendor.PerformanceMetrics}
	touched := make(map[time.Time][]model.MetricField)

	// Compute phase: every rule writes its own column independently
	for _, p := range plans {
		rr := e.apply(ctx, vendorID, now, p)
		result.Rules = append(result.Rules, rr)
		e.metrics.RecordRuleOutcome(p.rule.name, string(rr.Outcome))

		if rr.Outcome != OutcomeApplied {
			continue
		}
		result.Metrics.Set(p.rule.field, rr.Value)
		key := e.snapshotKey(p.snapshotAt)
		touched[key] = append(touched[key], p.rule.field)
	}

	// Snapshot phase: one upsert per key, seeded with the final metric set
	keys := make([]time.Time, 0, len(touched))
	for key := range touched {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	for _, key := range keys {
		fields := touched[key]
		row, err := call(ctx, e, "upsert_historical_performance", func(ctx context.Context) (*model.HistoricalPerformance, error) {
			return e.store.UpsertHistoricalPerformance(ctx, vendorID, key, result.Metrics, fields)
		})
		if err != nil {
			log.Error("Failed to record historical performance", zap.Time("date", key), zap.Error(err))
			continue
		}
		result.Snapshots = append(result.Snapshots, *row)
	}

	if result.Applied() {
		e.publish(ctx, event, result)
	}
	return result, nil
}

func (e *Engine) apply(ctx context.Context, vendorID uint, now time.Time, p plan) RuleResult {
	rr := RuleResult{Rule: p.rule.name, Field: p.rule.field}
	if p.skip {
		rr.Outcome = OutcomeSkipped
		return rr
	}

	value, ok, err := p.rule.compute(ctx, e, vendorID, now)
	switch {
	case err != nil:
		rr.Outcome, rr.Err = OutcomeFailed, err
	case !ok:
		rr.Outcome = OutcomeNoData
	default:
		err = exec(ctx, e, "update_vendor_metric", func(ctx context.Context) error {
			return e.store.UpdateVendorMetric(ctx, vendorID, p.rule.field, value)
		})
		if err != nil {
			rr.Outcome, rr.Err = OutcomeFailed, err
		} else {
			rr.Outcome, rr.Value = OutcomeApplied, value
		}
	}

	if rr.Err != nil {
		logger.FromContext(ctx).Error("Metric rule failed",
			zap.String("rule", p.rule.name),
			zap.Error(rr.Err),
		)
	}
	return rr
}

func (e *Engine) publish(ctx context.Context, event *events.PerformanceEvent, result *Result) {
	event.EventType = events.EventPerformanceUpdated
	event.VendorID = result.VendorID
	event.Metrics = result.Metrics
	event.Timestamp = e.now().UTC()

	if err := e.publisher.Publish(ctx, event); err != nil {
		e.metrics.RecordEventPublished("error")
		logger.FromContext(ctx).Warn("Failed to publish performance event", zap.Error(err))
		return
	}
	e.metrics.RecordEventPublished("ok")
}

// snapshotKey normalizes a snapshot instant to the configured granularity in UTC
func (e *Engine) snapshotKey(t time.Time) time.Time {
	t = t.UTC()
	if e.granularity <= 0 {
		return t
	}
	return t.Truncate(e.granularity)
}
