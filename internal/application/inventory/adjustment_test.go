package inventory_test

import (
	"context"
	"testing"

	appinventory "github.com/erp/ledgercore/internal/application/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyAdjustments(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	plain, tracked := uuid.New(), uuid.New()
	h.receive(t, "GRN-A", grnLine(plain, 5), grnLine(tracked, 1, "T1"))

	resp, err := h.svc.ApplyAdjustments(ctx, h.actor, appinventory.ApplyAdjustmentsRequest{
		Adjustments: []appinventory.AdjustmentRequest{
			{ProductID: plain, LocationID: h.location, QuantityChange: decimal.NewFromInt(-2), Reason: "damaged"},
			{ProductID: tracked, LocationID: h.location, QuantityChange: decimal.NewFromInt(2), Reason: "found",
				SerialTracked: true, SerialsAdd: []string{"T2", "T3"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Positions, 2)
	assert.True(t, h.quantity(t, plain).Equal(decimal.NewFromInt(3)))
	assert.True(t, h.quantity(t, tracked).Equal(decimal.NewFromInt(3)))
	assert.Equal(t, map[string]string{"T1": "in_stock", "T2": "in_stock", "T3": "in_stock"}, h.serialStatus(t, tracked))

	batch, err := h.svc.GetAdjustmentBatch(ctx, resp.BatchID)
	require.NoError(t, err)
	assert.Len(t, batch, 2)

	logged, err := h.svc.ListAdjustments(ctx, plain, h.location, appinventory.ListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(1), logged.Total)
	assert.Equal(t, "damaged", logged.Items[0].Reason)

	t.Run("serial removal takes units out of stock", func(t *testing.T) {
		_, err := h.svc.ApplyAdjustments(ctx, h.actor, appinventory.ApplyAdjustmentsRequest{
			Adjustments: []appinventory.AdjustmentRequest{
				{ProductID: tracked, LocationID: h.location, QuantityChange: decimal.NewFromInt(-1), Reason: "lost",
					SerialTracked: true, SerialsRemove: []string{"T1"}},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "out_of_stock", h.serialStatus(t, tracked)["T1"])
		assert.True(t, h.quantity(t, tracked).Equal(decimal.NewFromInt(2)))
	})

	t.Run("a failing adjustment rolls back the whole batch", func(t *testing.T) {
		_, err := h.svc.ApplyAdjustments(ctx, h.actor, appinventory.ApplyAdjustmentsRequest{
			Adjustments: []appinventory.AdjustmentRequest{
				{ProductID: plain, LocationID: h.location, QuantityChange: decimal.NewFromInt(1), Reason: "recount"},
				{ProductID: tracked, LocationID: h.location, QuantityChange: decimal.NewFromInt(-1), Reason: "lost",
					SerialTracked: true, SerialsRemove: []string{"T1"}},
			},
		})
		assert.ErrorIs(t, err, shared.ErrSerialUnavailable)
		assert.True(t, h.quantity(t, plain).Equal(decimal.NewFromInt(3)))
		assert.True(t, h.quantity(t, tracked).Equal(decimal.NewFromInt(2)))
	})

	t.Run("negative result is rejected", func(t *testing.T) {
		_, err := h.svc.ApplyAdjustments(ctx, h.actor, appinventory.ApplyAdjustmentsRequest{
			Adjustments: []appinventory.AdjustmentRequest{
				{ProductID: plain, LocationID: h.location, QuantityChange: decimal.NewFromInt(-4), Reason: "shrinkage"},
			},
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("unknown batch", func(t *testing.T) {
		_, err := h.svc.GetAdjustmentBatch(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
