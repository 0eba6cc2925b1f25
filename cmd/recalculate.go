package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KRGANESH/vendor-management/pkg/logger"
)

var recalculateVendorID uint

var recalculateCmd = &cobra.Command{
	Use:   "recalculate",
	Short: "Recompute vendor performance metrics",
	Long:  `Recompute the cached performance metrics of one vendor, or of every vendor when --vendor is not set`,
	RunE:  runRecalculate,
}

func init() {
	recalculateCmd.Flags().UintVar(&recalculateVendorID, "vendor", 0, "vendor id to recompute (default all vendors)")
	rootCmd.AddCommand(recalculateCmd)
}

func runRecalculate(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	engine, err := a.newEngine()
	if err != nil {
		return err
	}

	ctx := logger.WithLogger(cmd.Context(), a.log)

	if recalculateVendorID != 0 {
		result, err := engine.Recalculate(ctx, recalculateVendorID)
		if err != nil {
			return err
		}
		a.log.Info("Vendor metrics recalculated",
			zap.Uint("vendor_id", result.VendorID),
			zap.Float64("on_time_delivery_rate", result.Metrics.OnTimeDeliveryRate),
			zap.Float64("quality_rating_avg", result.Metrics.QualityRatingAvg),
			zap.Float64("average_response_time", result.Metrics.AverageResponseTime),
			zap.Float64("fulfillment_rate", result.Metrics.FulfillmentRate),
		)
		return nil
	}

	_, err = engine.RecalculateAll(ctx)
	return err
}
