package model

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SetupModels runs the schema migrations for every persisted model
func SetupModels(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Vendor{},
		&PurchaseOrder{},
		&HistoricalPerformance{},
	); err != nil {
		return errors.Wrap(err, "failed to run auto migrations")
	}
	return nil
}
