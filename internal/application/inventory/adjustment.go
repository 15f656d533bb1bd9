package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ApplyAdjustments applies a batch of signed corrections in one transaction.
// A positive change registers the serials it names as in stock, a negative
// change takes its named serials out of stock. Each adjustment is logged.
func (s *InventoryService) ApplyAdjustments(ctx context.Context, actor *uuid.UUID, req ApplyAdjustmentsRequest) (*ApplyAdjustmentsResponse, error) {
	if len(req.Adjustments) == 0 {
		return nil, shared.NewValidationError("At least one adjustment is required")
	}
	batchID := uuid.New()
	adjustments := make([]trade.InventoryAdjustment, len(req.Adjustments))
	for i, r := range req.Adjustments {
		adj, err := trade.NewInventoryAdjustment(batchID, trade.AdjustmentInput{
			ProductID:      r.ProductID,
			LocationID:     r.LocationID,
			AdjustmentDate: r.AdjustmentDate,
			QuantityChange: r.QuantityChange,
			Reason:         r.Reason,
			SerialTracked:  r.SerialTracked,
			SerialsAdd:     r.SerialsAdd,
			SerialsRemove:  r.SerialsRemove,
		}, actor)
		if err != nil {
			return nil, err
		}
		adjustments[i] = *adj
	}

	var positions []StockPositionResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		books := s.books.Open(repos)
		deltas := make([]ledger.StockDelta, len(adjustments))
		for i := range adjustments {
			a := &adjustments[i]
			deltas[i] = ledger.StockDelta{
				ProductID:  a.ProductID,
				LocationID: a.LocationID,
				Quantity:   a.QuantityChange,
				Source:     adjustmentSource(a),
				Operator:   actor,
			}
		}
		if err := books.Stock.ApplyAll(ctx, deltas); err != nil {
			return err
		}

		for i := range adjustments {
			a := &adjustments[i]
			if !a.SerialTracked {
				continue
			}
			if _, err := books.Serials.Add(ctx, a.ProductID, a.LocationID, a.SerialsAdded, adjustmentSource(a), actor); err != nil {
				return err
			}
			if err := books.Serials.Reserve(ctx, a.ProductID, a.LocationID, a.SerialsRemoved, adjustmentSource(a), actor); err != nil {
				return err
			}
		}

		if err := repos.InventoryAdjustments().Append(ctx, adjustments); err != nil {
			return fmt.Errorf("log adjustments: %w", err)
		}

		seen := make(map[inventory.PositionKey]struct{})
		keys := make([]inventory.PositionKey, 0, len(adjustments))
		for i := range adjustments {
			k := adjustments[i].Key()
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
		for _, k := range keys {
			pos, err := repos.StockPositions().FindByKey(ctx, k.ProductID, k.LocationID)
			if err != nil {
				return fmt.Errorf("read stock position: %w", err)
			}
			positions = append(positions, ToStockPositionResponse(pos))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory adjusted",
		zap.String("batch_id", batchID.String()),
		zap.Int("adjustments", len(adjustments)),
	)
	resp := &ApplyAdjustmentsResponse{
		BatchID:     batchID,
		Adjustments: make([]AdjustmentResponse, len(adjustments)),
		Positions:   positions,
	}
	for i := range adjustments {
		resp.Adjustments[i] = ToAdjustmentResponse(&adjustments[i])
	}
	return resp, nil
}

func adjustmentSource(a *trade.InventoryAdjustment) inventory.SourceRef {
	return inventory.SourceRef{
		Type:      inventory.MovementSourceAdjustment,
		ID:        a.BatchID,
		LineID:    &a.ID,
		Reference: a.Reference(),
	}
}

// ListAdjustments lists the adjustments logged for a position, newest first
func (s *InventoryService) ListAdjustments(ctx context.Context, productID, locationID uuid.UUID, filter ListFilter) (*shared.Paginated[AdjustmentResponse], error) {
	f := filter.Normalize()
	var page shared.Paginated[AdjustmentResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		adjs, total, err := repos.InventoryAdjustments().ListByPosition(ctx, productID, locationID, f)
		if err != nil {
			return err
		}
		items := make([]AdjustmentResponse, len(adjs))
		for i := range adjs {
			items[i] = ToAdjustmentResponse(&adjs[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAdjustmentBatch returns the adjustments submitted together under batchID
func (s *InventoryService) GetAdjustmentBatch(ctx context.Context, batchID uuid.UUID) ([]AdjustmentResponse, error) {
	var out []AdjustmentResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		adjs, err := repos.InventoryAdjustments().ListByBatch(ctx, batchID)
		if err != nil {
			return err
		}
		if len(adjs) == 0 {
			return shared.NewNotFoundError("Adjustment batch not found")
		}
		out = make([]AdjustmentResponse, len(adjs))
		for i := range adjs {
			out[i] = ToAdjustmentResponse(&adjs[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
