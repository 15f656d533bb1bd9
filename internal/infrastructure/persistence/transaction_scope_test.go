package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/erp/ledgercore/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	scope := NewGormTransactionScope(db)

	productID, locationID := uuid.New(), uuid.New()
	boom := errors.New("boom")
	err := scope.Execute(ctx, func(repos ledger.Repositories) error {
		position, err := inventory.NewStockPosition(productID, locationID)
		if err != nil {
			return err
		}
		if _, err := repos.StockPositions().Create(ctx, position); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = NewGormStockPositionRepository(db).FindByKey(ctx, productID, locationID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTransactionScope_Commits(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	scope := NewGormTransactionScope(db)

	vendorID := uuid.New()
	po, err := trade.NewPurchaseOrder("PO-1", vendorID)
	require.NoError(t, err)

	err = scope.Execute(ctx, func(repos ledger.Repositories) error {
		if err := repos.PurchaseOrders().Create(ctx, po); err != nil {
			return err
		}
		locked, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, po.ID)
		if err != nil {
			return err
		}
		if err := locked.MarkGoodsValidated(); err != nil {
			return err
		}
		return repos.PurchaseOrders().UpdateStatus(ctx, locked)
	})
	require.NoError(t, err)

	stored, err := NewGormPurchaseOrderRepository(db).FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusGoodsValidated, stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestGormInvoiceRepository_ExistsByNumber(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormInvoiceRepository(db)

	vendorID := uuid.New()
	inv, err := trade.NewInvoice(trade.InvoiceDetails{
		InvoiceNumber: "INV-7",
		VendorID:      vendorID,
		InvoiceDate:   time.Now(),
		InvoiceAmount: decimal.NewFromInt(1000),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, inv))

	exists, err := repo.ExistsByNumber(ctx, vendorID, "INV-7", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByNumber(ctx, vendorID, "INV-7", inv.ID)
	require.NoError(t, err)
	assert.False(t, exists, "the invoice itself is excluded")

	exists, err = repo.ExistsByNumber(ctx, uuid.New(), "INV-7", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, exists, "numbers are scoped to the vendor")

	require.NoError(t, inv.MarkDeleted(0, nil))
	require.NoError(t, repo.Update(ctx, inv))

	exists, err = repo.ExistsByNumber(ctx, vendorID, "INV-7", uuid.Nil)
	require.NoError(t, err)
	assert.False(t, exists, "deleted invoices release their number")

	invoices, total, err := repo.List(ctx, &vendorID, shared.Filter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, invoices)
}
