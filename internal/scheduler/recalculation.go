// Package scheduler runs the periodic vendor metrics sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/internal/performance"
	"github.com/KRGANESH/vendor-management/pkg/logger"
)

// Recalculator recomputes the metrics of every vendor
type Recalculator interface {
	RecalculateAll(ctx context.Context) (performance.Summary, error)
}

// RunRecalculation schedules RecalculateAll every interval and blocks until
// ctx is canceled. Runs never overlap; a tick that arrives during a run is
// skipped.
func RunRecalculation(ctx context.Context, interval time.Duration, r Recalculator) error {
	if interval <= 0 {
		return errors.Errorf("recalculation interval must be positive, got %s", interval)
	}
	log := logger.FromContext(ctx)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return errors.Wrap(err, "failed to create scheduler")
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			log.Info("Running vendor metrics sweep")
			if _, err := r.RecalculateAll(ctx); err != nil {
				log.Error("Vendor metrics sweep failed", zap.Error(err))
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.Wrap(err, "failed to schedule vendor metrics sweep")
	}

	log.Info("Starting vendor metrics sweep", zap.Duration("interval", interval))
	scheduler.Start()

	<-ctx.Done()

	return scheduler.Shutdown()
}
