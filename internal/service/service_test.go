package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/internal/performance"
	"github.com/KRGANESH/vendor-management/internal/repository"
	"github.com/KRGANESH/vendor-management/internal/testutil"
)

// MockMetricsEngine records engine invocations
type MockMetricsEngine struct {
	mock.Mock
}

func (m *MockMetricsEngine) OnPurchaseOrderSaved(ctx context.Context, order *model.PurchaseOrder) (*performance.Result, error) {
	args := m.Called(ctx, order)
	result, _ := args.Get(0).(*performance.Result)
	return result, args.Error(1)
}

func (m *MockMetricsEngine) Recalculate(ctx context.Context, vendorID uint) (*performance.Result, error) {
	args := m.Called(ctx, vendorID)
	result, _ := args.Get(0).(*performance.Result)
	return result, args.Error(1)
}

func setupServices(t *testing.T) (*gorm.DB, *VendorService, *PurchaseOrderService, *MockMetricsEngine) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db, nil)
	engine := new(MockMetricsEngine)
	return db, NewVendorService(repos, engine, nil), NewPurchaseOrderService(repos, engine, nil), engine
}

func orderInput(vendorID uint, poNumber string) PurchaseOrderInput {
	return PurchaseOrderInput{
		PONumber:     poNumber,
		VendorID:     vendorID,
		OrderDate:    testutil.Now.Add(-72 * time.Hour),
		DeliveryDate: testutil.Now.Add(-24 * time.Hour),
		Items:        datatypes.JSON(`["bolts"]`),
		Quantity:     10,
		IssueDate:    testutil.Now.Add(-72 * time.Hour),
	}
}

func TestVendorService_CreateRejectsDuplicateCode(t *testing.T) {
	_, vendors, _, _ := setupServices(t)
	ctx := context.Background()

	_, err := vendors.Create(ctx, VendorInput{Name: "Acme", VendorCode: "ACME"})
	require.NoError(t, err)

	_, err = vendors.Create(ctx, VendorInput{Name: "Other", VendorCode: "ACME"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestVendorService_UpdateAllowsOwnCode(t *testing.T) {
	_, vendors, _, _ := setupServices(t)
	ctx := context.Background()

	created, err := vendors.Create(ctx, VendorInput{Name: "Acme", VendorCode: "ACME"})
	require.NoError(t, err)
	_, err = vendors.Create(ctx, VendorInput{Name: "Other", VendorCode: "OTHER"})
	require.NoError(t, err)

	updated, err := vendors.Update(ctx, created.ID, VendorInput{Name: "Acme Ltd", VendorCode: "ACME"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Name)

	_, err = vendors.Update(ctx, created.ID, VendorInput{Name: "Acme Ltd", VendorCode: "OTHER"})
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = vendors.Update(ctx, 999, VendorInput{Name: "Ghost", VendorCode: "GHOST"})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestVendorService_PerformanceReturnsCachedValues(t *testing.T) {
	db, vendors, _, _ := setupServices(t)
	vendor := testutil.CreateVendor(t, db, "V-1")
	require.NoError(t, db.Model(vendor).Update("fulfillment_rate", 12.5).Error)

	view, err := vendors.Performance(context.Background(), vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, vendor.Name, view.Vendor)
	assert.Equal(t, 12.5, view.FulfillmentRate)

	_, err = vendors.History(context.Background(), 999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestPurchaseOrderService_CreateTriggersEngine(t *testing.T) {
	db, _, orders, engine := setupServices(t)
	vendor := testutil.CreateVendor(t, db, "V-1")

	engine.On("OnPurchaseOrderSaved", mock.Anything, mock.AnythingOfType("*model.PurchaseOrder")).
		Return(&performance.Result{VendorID: vendor.ID}, nil).Once()

	order, err := orders.Create(context.Background(), orderInput(vendor.ID, "PO-1"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, order.Status)

	engine.AssertExpectations(t)
	saved := engine.Calls[0].Arguments.Get(1).(*model.PurchaseOrder)
	assert.Equal(t, order.ID, saved.ID)
}

func TestPurchaseOrderService_EngineFailureDoesNotFailSave(t *testing.T) {
	db, _, orders, engine := setupServices(t)
	vendor := testutil.CreateVendor(t, db, "V-1")

	engine.On("OnPurchaseOrderSaved", mock.Anything, mock.Anything).
		Return(nil, apperror.StoreUnavailable(errors.New("down"), "unavailable"))

	order, err := orders.Create(context.Background(), orderInput(vendor.ID, "PO-1"))
	require.NoError(t, err)

	stored, err := orders.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-1", stored.PONumber)
}

func TestPurchaseOrderService_RejectedInputHasNoSideEffects(t *testing.T) {
	db, _, orders, engine := setupServices(t)
	vendor := testutil.CreateVendor(t, db, "V-1")
	ctx := context.Background()

	engine.On("OnPurchaseOrderSaved", mock.Anything, mock.Anything).Return(&performance.Result{}, nil).Once()
	_, err := orders.Create(ctx, orderInput(vendor.ID, "PO-1"))
	require.NoError(t, err)

	_, err = orders.Create(ctx, orderInput(vendor.ID, "PO-1"))
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	_, err = orders.Create(ctx, orderInput(vendor.ID+1, "PO-2"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	bad := orderInput(vendor.ID, "PO-3")
	rating := 7.0
	bad.QualityRating = &rating
	_, err = orders.Create(ctx, bad)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	bad = orderInput(vendor.ID, "PO-4")
	bad.Status = "shipped"
	_, err = orders.Create(ctx, bad)
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	engine.AssertNumberOfCalls(t, "OnPurchaseOrderSaved", 1)
}

func TestPurchaseOrderService_UpdateMovingVendorRecalculatesPrevious(t *testing.T) {
	db, _, orders, engine := setupServices(t)
	from := testutil.CreateVendor(t, db, "FROM")
	to := testutil.CreateVendor(t, db, "TO")
	ctx := context.Background()

	engine.On("OnPurchaseOrderSaved", mock.Anything, mock.Anything).Return(&performance.Result{}, nil)
	engine.On("Recalculate", mock.Anything, from.ID).Return(&performance.Result{}, nil).Once()

	order, err := orders.Create(ctx, orderInput(from.ID, "PO-1"))
	require.NoError(t, err)

	input := orderInput(to.ID, "PO-1")
	input.Status = model.StatusCompleted
	updated, err := orders.Update(ctx, order.ID, input)
	require.NoError(t, err)

	assert.Equal(t, to.ID, updated.VendorID)
	assert.Equal(t, model.StatusCompleted, updated.Status)
	engine.AssertNumberOfCalls(t, "OnPurchaseOrderSaved", 2)
	engine.AssertExpectations(t)
}

func TestPurchaseOrderService_UpdateRequiresStatus(t *testing.T) {
	db, _, orders, engine := setupServices(t)
	vendor := testutil.CreateVendor(t, db, "V-1")
	order := testutil.CreateOrder(t, db, vendor.ID, "PO-1", testutil.Completed())

	_, err := orders.Update(context.Background(), order.ID, orderInput(vendor.ID, "PO-1"))
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	stored, err := orders.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)
	engine.AssertNotCalled(t, "OnPurchaseOrderSaved", mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_UpdateMissingOrder(t *testing.T) {
	db, _, orders, engine := setupServices(t)
	vendor := testutil.CreateVendor(t, db, "V-1")

	_, err := orders.Update(context.Background(), 404, orderInput(vendor.ID, "PO-1"))
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	engine.AssertNotCalled(t, "OnPurchaseOrderSaved", mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_DeleteDoesNotTriggerEngine(t *testing.T) {
	db, _, orders, engine := setupServices(t)
	vendor := testutil.CreateVendor(t, db, "V-1")
	order := testutil.CreateOrder(t, db, vendor.ID, "PO-1")

	require.NoError(t, orders.Delete(context.Background(), order.ID))
	engine.AssertNotCalled(t, "OnPurchaseOrderSaved", mock.Anything, mock.Anything)
	engine.AssertNotCalled(t, "Recalculate", mock.Anything, mock.Anything)
}

func TestPurchaseOrderService_WithRealEngine(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db, nil)
	engine := performance.NewEngine(repos.Performance, performance.WithClock(func() time.Time { return testutil.Now }))
	orders := NewPurchaseOrderService(repos, engine, nil)
	vendors := NewVendorService(repos, engine, nil)
	ctx := context.Background()

	vendor, err := vendors.Create(ctx, VendorInput{Name: "Acme", VendorCode: "ACME"})
	require.NoError(t, err)

	for i, rating := range []float64{3, 5, 4} {
		input := orderInput(vendor.ID, []string{"PO-1", "PO-2", "PO-3"}[i])
		input.Status = model.StatusCompleted
		r := rating
		input.QualityRating = &r
		_, err := orders.Create(ctx, input)
		require.NoError(t, err)
	}

	view, err := vendors.Performance(ctx, vendor.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, view.OnTimeDeliveryRate)
	assert.Equal(t, 4.0, view.QualityRatingAvg)
	assert.Equal(t, 100.0, view.FulfillmentRate)
}
