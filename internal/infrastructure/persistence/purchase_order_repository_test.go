package persistence

import (
	"context"
	"testing"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/erp/ledgercore/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormPurchaseOrderRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPurchaseOrderRepository(testutil.NewSQLiteDB(t))

	vendor := uuid.New()
	po, err := trade.NewPurchaseOrder("PO-1", vendor)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, po))
	other, err := trade.NewPurchaseOrder("PO-2", uuid.New())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, other))

	exists, err := repo.ExistsByNumber(ctx, "PO-1", uuid.Nil)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsByNumber(ctx, "PO-1", po.ID)
	require.NoError(t, err)
	assert.False(t, exists, "an order does not clash with itself")

	require.NoError(t, po.Revise("PO-1A", vendor))
	require.NoError(t, po.ChangeStatus(trade.PurchaseOrderStatusCancelled))
	require.NoError(t, repo.Update(ctx, po))

	stored, err := repo.FindByID(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, "PO-1A", stored.PONumber)
	assert.Equal(t, trade.PurchaseOrderStatusCancelled, stored.Status)
	assert.Equal(t, po.Version, stored.Version)

	orders, total, err := repo.List(ctx, &vendor, nil, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, po.ID, orders[0].ID)

	open := trade.PurchaseOrderStatusOpen
	orders, total, err = repo.List(ctx, nil, &open, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, other.ID, orders[0].ID)

	missing := &trade.PurchaseOrder{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	assert.ErrorIs(t, repo.Update(ctx, missing), shared.ErrNotFound)
}
