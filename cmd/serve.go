package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/KRGANESH/vendor-management/internal/handler"
	"github.com/KRGANESH/vendor-management/internal/middleware"
	"github.com/KRGANESH/vendor-management/internal/scheduler"
	"github.com/KRGANESH/vendor-management/internal/service"
	"github.com/KRGANESH/vendor-management/pkg/database"
	"github.com/KRGANESH/vendor-management/pkg/logger"
	"github.com/KRGANESH/vendor-management/pkg/validate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the HTTP API server and, when configured, the periodic metrics sweep`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	log := a.log
	log.Info("Starting vendor service...", zap.String("environment", a.cfg.Server.Env))

	if err := database.Migrate(a.db); err != nil {
		return err
	}
	log.Info("Database connection established and migrations completed",
		zap.String("db_host", a.cfg.DB.Host),
		zap.String("db_name", a.cfg.DB.DBName),
	)

	engine, err := a.newEngine()
	if err != nil {
		return err
	}

	vendors := service.NewVendorService(a.repos, engine, a.metrics)
	orders := service.NewPurchaseOrderService(a.repos, engine, a.metrics)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = validate.New()

	// Middleware
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(middleware.HTTPMetrics(a.metrics))
	e.Use(middleware.RequestLogger)

	handler.New(vendors, orders).Register(e)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server", zap.String("port", a.cfg.Server.Port))
		if err := e.Start(":" + a.cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if interval := a.cfg.Performance.RecalculateInterval; interval > 0 {
		g.Go(func() error {
			return scheduler.RunRecalculation(ctx, interval, engine)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("Service error", zap.Error(err))
		return err
	}

	log.Info("Service shut down gracefully")
	return nil
}
