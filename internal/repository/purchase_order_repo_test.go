package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KRGANESH/vendor-management/internal/apperror"
	"github.com/KRGANESH/vendor-management/internal/model"
	"github.com/KRGANESH/vendor-management/internal/testutil"
)

func TestPurchaseOrderRepository_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPurchaseOrderRepository(db, nil)
	ctx := context.Background()
	vendor := testutil.CreateVendor(t, db, "V-1")

	order := testutil.NewOrder(vendor.ID, "PO-1")
	order.Status = ""
	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, model.StatusPending, order.Status, "status defaults to pending")

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-1", found.PONumber)
	assert.JSONEq(t, `[{"sku":"A-1","qty":1}]`, string(found.Items))

	rating := 4.0
	found.Status = model.StatusCompleted
	found.QualityRating = &rating
	require.NoError(t, repo.Update(ctx, found))

	reloaded, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, reloaded.Status)
	require.NotNil(t, reloaded.QualityRating)
	assert.Equal(t, 4.0, *reloaded.QualityRating)

	require.NoError(t, repo.Delete(ctx, order.ID))
	_, err = repo.FindByID(ctx, order.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.True(t, apperror.Is(repo.Delete(ctx, order.ID), apperror.KindNotFound))
}

func TestPurchaseOrderRepository_RejectsInvalidRating(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPurchaseOrderRepository(db, nil)
	vendor := testutil.CreateVendor(t, db, "V-1")

	err := repo.Create(context.Background(), testutil.NewOrder(vendor.ID, "PO-1", testutil.Rated(5.5)))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestPurchaseOrderRepository_NormalizesToUTC(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPurchaseOrderRepository(db, nil)
	ctx := context.Background()
	vendor := testutil.CreateVendor(t, db, "V-1")

	zone := time.FixedZone("UTC+5", 5*60*60)
	order := testutil.NewOrder(vendor.ID, "PO-1", testutil.DeliveredAt(testutil.Now.In(zone)))
	require.NoError(t, repo.Create(ctx, order))

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, found.DeliveryDate.Equal(testutil.Now))
	assert.Equal(t, time.UTC, order.DeliveryDate.Location())
}

func TestPurchaseOrderRepository_FindAllByVendor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewPurchaseOrderRepository(db, nil)
	ctx := context.Background()

	a := testutil.CreateVendor(t, db, "A")
	b := testutil.CreateVendor(t, db, "B")
	testutil.CreateOrder(t, db, a.ID, "PO-1")
	testutil.CreateOrder(t, db, b.ID, "PO-2")
	testutil.CreateOrder(t, db, a.ID, "PO-3")

	all, err := repo.FindAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := repo.FindAll(ctx, &a.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "PO-1", onlyA[0].PONumber)
	assert.Equal(t, "PO-3", onlyA[1].PONumber)

	exists, err := repo.ExistsByPONumber(ctx, "PO-2", 0)
	require.NoError(t, err)
	assert.True(t, exists)
}
