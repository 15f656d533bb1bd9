package inventory

import (
	"context"
	"errors"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GetStockPosition returns the quantity on hand. A position never moved is zero.
func (s *InventoryService) GetStockPosition(ctx context.Context, productID, locationID uuid.UUID) (*StockPositionResponse, error) {
	var resp StockPositionResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		pos, err := repos.StockPositions().FindByKey(ctx, productID, locationID)
		if errors.Is(err, shared.ErrNotFound) {
			resp = StockPositionResponse{ProductID: productID, LocationID: locationID, Quantity: decimal.Zero}
			return nil
		}
		if err != nil {
			return err
		}
		resp = ToStockPositionResponse(pos)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListStockPositions lists positions, optionally for one product or location
func (s *InventoryService) ListStockPositions(ctx context.Context, filter StockPositionListFilter) (*shared.Paginated[StockPositionResponse], error) {
	f := inventory.PositionFilter{
		Filter:     shared.Filter{Page: filter.Page, PageSize: filter.PageSize}.Normalize(),
		ProductID:  filter.ProductID,
		LocationID: filter.LocationID,
	}
	var page shared.Paginated[StockPositionResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		positions, total, err := repos.StockPositions().List(ctx, f)
		if err != nil {
			return err
		}
		items := make([]StockPositionResponse, len(positions))
		for i := range positions {
			items[i] = ToStockPositionResponse(&positions[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListStockMovements returns the movement log of a position, newest first
func (s *InventoryService) ListStockMovements(ctx context.Context, productID, locationID uuid.UUID, filter ListFilter) (*shared.Paginated[StockMovementResponse], error) {
	f := filter.Normalize()
	var page shared.Paginated[StockMovementResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		movements, total, err := repos.StockMovements().ListByPosition(ctx, productID, locationID, f)
		if err != nil {
			return err
		}
		items := make([]StockMovementResponse, len(movements))
		for i := range movements {
			items[i] = ToStockMovementResponse(&movements[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ListSerials lists the serial units of a product at a location.
// An empty status lists every unit.
func (s *InventoryService) ListSerials(ctx context.Context, productID, locationID uuid.UUID, status string) ([]SerialUnitResponse, error) {
	var filter *inventory.SerialStatus
	if status != "" {
		st := inventory.SerialStatus(status)
		if !st.IsValid() {
			return nil, shared.NewValidationError("Invalid serial status: " + status)
		}
		filter = &st
	}
	var out []SerialUnitResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		units, err := repos.SerialUnits().List(ctx, productID, locationID, filter)
		if err != nil {
			return err
		}
		out = make([]SerialUnitResponse, len(units))
		for i, u := range units {
			out[i] = SerialUnitResponse{SerialNumber: u.SerialNumber, Status: string(u.Status), UpdatedAt: u.UpdatedAt}
		}
		return nil
	})
	return out, err
}

// ListDocumentMovements returns every movement a document caused, oldest first.
// A sales order's cancellation movements are listed under SALES_ORDER_CANCEL.
func (s *InventoryService) ListDocumentMovements(ctx context.Context, sourceType string, sourceID uuid.UUID) ([]StockMovementResponse, error) {
	source := inventory.MovementSource(sourceType)
	if !source.IsValid() {
		return nil, shared.NewValidationError("Invalid movement source: " + sourceType)
	}
	var out []StockMovementResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		movements, err := repos.StockMovements().ListBySource(ctx, source, sourceID)
		if err != nil {
			return err
		}
		out = make([]StockMovementResponse, len(movements))
		for i := range movements {
			out[i] = ToStockMovementResponse(&movements[i])
		}
		return nil
	})
	return out, err
}
