// Package testutil provides an in-memory database and fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/pkg/database"
)

var dbCounter atomic.Int64

// Now is the fixed reference instant used by tests
var Now = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// SetupTestDB opens a private in-memory SQLite database with the schema applied.
// The pool is limited to one connection so the memory database is shared by
// every query of the test.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig("silent"))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateVendor inserts a vendor with the given code
func CreateVendor(t *testing.T, db *gorm.DB, code string) *model.Vendor {
	t.Helper()

	vendor := &model.Vendor{
		Name:           "Vendor " + code,
		ContactDetails: "contact@" + code + ".example",
		Address:        "1 Supply Street",
		VendorCode:     code,
	}
	require.NoError(t, db.Create(vendor).Error)
	return vendor
}

// OrderOption customizes a purchase order fixture
type OrderOption func(*model.PurchaseOrder)

// Completed marks the order completed
func Completed() OrderOption {
	return func(o *model.PurchaseOrder) { o.Status = model.StatusCompleted }
}

// Canceled marks the order canceled
func Canceled() OrderOption {
	return func(o *model.PurchaseOrder) { o.Status = model.StatusCanceled }
}

// Rated sets the quality rating
func Rated(rating float64) OrderOption {
	return func(o *model.PurchaseOrder) { o.QualityRating = &rating }
}

// DeliveredAt sets the delivery date
func DeliveredAt(at time.Time) OrderOption {
	return func(o *model.PurchaseOrder) { o.DeliveryDate = at }
}

// Acknowledged sets issue and acknowledgment dates
func Acknowledged(issued, acked time.Time) OrderOption {
	return func(o *model.PurchaseOrder) {
		o.IssueDate = issued
		o.AcknowledgmentDate = &acked
	}
}

// NewOrder builds an unsaved pending order delivered one day before Now
func NewOrder(vendorID uint, poNumber string, opts ...OrderOption) *model.PurchaseOrder {
	order := &model.PurchaseOrder{
		PONumber:     poNumber,
		VendorID:     vendorID,
		OrderDate:    Now.Add(-72 * time.Hour),
		DeliveryDate: Now.Add(-24 * time.Hour),
		Items:        datatypes.JSON(`[{"sku":"A-1","qty":1}]`),
		Quantity:     1,
		Status:       model.StatusPending,
		IssueDate:    Now.Add(-72 * time.Hour),
	}
	for _, opt := range opts {
		opt(order)
	}
	return order
}

// CreateOrder inserts a purchase order built by NewOrder
func CreateOrder(t *testing.T, db *gorm.DB, vendorID uint, poNumber string, opts ...OrderOption) *model.PurchaseOrder {
	t.Helper()

	order := NewOrder(vendorID, poNumber, opts...)
	require.NoError(t, db.Omit("Vendor").Create(order).Error)
	return order
}
