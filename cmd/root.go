package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/KRGANESH/vendor-management/internal/events"
	"github.com/KRGANESH/vendor-management/internal/lock"
	"github.com/KRGANESH/vendor-management/internal/performance"
	"github.com/KRGANESH/vendor-management/internal/repository"
	"github.com/KRGANESH/vendor-management/pkg/config"
	"github.com/KRGANESH/vendor-management/pkg/database"
	"github.com/KRGANESH/vendor-management/pkg/logger"
	vmetrics "github.com/KRGANESH/vendor-management/prometheus"
)

var rootCmd = &cobra.Command{
	Use:           "vendor-service",
	Short:         "Vendor management service",
	Long:          `Tracks vendors and purchase orders and derives vendor performance metrics`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app holds the dependencies shared by every command
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	metrics *vmetrics.Metrics
	repos   *repository.Repositories
	closers []func() error
}

// bootstrap loads configuration, the logger and the database
func bootstrap() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to initialize logger")
	}
	log := logger.GetLogger()

	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		return nil, err
	}

	metrics := vmetrics.NewMetrics(cfg.Metrics.Prefix, prometheus.DefaultRegisterer)
	log.Info("Prometheus metrics initialized")

	a := &app{
		cfg:     cfg,
		log:     log,
		db:      db,
		metrics: metrics,
		repos:   repository.NewRepositories(db, metrics),
	}
	a.onClose(func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})
	return a, nil
}

func (a *app) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("Failed to release resource", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

// newEngine wires the metrics engine with the configured lock and publisher
func (a *app) newEngine() (*performance.Engine, error) {
	opts := []performance.Option{
		performance.WithMetrics(a.metrics),
		performance.WithSnapshotGranularity(a.cfg.Performance.SnapshotGranularity),
		performance.WithQueryTimeout(a.cfg.Performance.QueryTimeout),
	}

	if a.cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", a.cfg.Redis.Host, a.cfg.Redis.Port),
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
		})
		a.onClose(client.Close)
		opts = append(opts, performance.WithLocker(
			lock.NewRedisLocker(client, config.ServiceName+":lock:", a.cfg.Redis.LockTTL, a.cfg.Redis.LockTimeout),
		))
		a.log.Info("Using Redis vendor locks", zap.String("host", a.cfg.Redis.Host))
	}

	if a.cfg.Kafka.Enabled() {
		publisher, err := events.NewKafkaPublisher(a.cfg.Kafka)
		if err != nil {
			return nil, err
		}
		a.onClose(publisher.Close)
		opts = append(opts, performance.WithPublisher(publisher))
		a.log.Info("Publishing performance events",
			zap.Strings("brokers", a.cfg.Kafka.Brokers),
			zap.String("topic", a.cfg.Kafka.Topic),
		)
	}

	return performance.NewEngine(a.repos.Performance, opts...), nil
}
