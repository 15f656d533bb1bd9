package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SavePurchaseOrder creates a purchase order, or edits the open order named by req.ID.
// PO numbers are unique across vendors.
func (s *InventoryService) SavePurchaseOrder(ctx context.Context, req SavePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	isNew := req.ID == nil
	exclude := uuid.Nil
	if !isNew {
		exclude = *req.ID
	}

	var saved *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		orders := repos.PurchaseOrders()
		exists, err := orders.ExistsByNumber(ctx, req.PONumber, exclude)
		if err != nil {
			return fmt.Errorf("check po number: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Purchase order number already exists")
		}

		if isNew {
			po, err := trade.NewPurchaseOrder(req.PONumber, req.VendorID)
			if err != nil {
				return err
			}
			if err := orders.Create(ctx, po); err != nil {
				return fmt.Errorf("create purchase order: %w", err)
			}
			saved = po
			return nil
		}

		po, err := lockPurchaseOrder(ctx, orders, *req.ID)
		if err != nil {
			return err
		}
		if err := po.Revise(req.PONumber, req.VendorID); err != nil {
			return err
		}
		if err := orders.Update(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		saved = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order saved",
		zap.String("po_id", saved.ID.String()),
		zap.String("po_number", saved.PONumber),
		zap.Bool("created", isNew),
	)
	resp := ToPurchaseOrderResponse(saved)
	return &resp, nil
}

// UpdatePurchaseOrderStatus opens or cancels a purchase order
func (s *InventoryService) UpdatePurchaseOrderStatus(ctx context.Context, id uuid.UUID, req UpdatePurchaseOrderStatusRequest) (*PurchaseOrderResponse, error) {
	var saved *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		orders := repos.PurchaseOrders()
		po, err := lockPurchaseOrder(ctx, orders, id)
		if err != nil {
			return err
		}
		from := po.Status
		if err := po.ChangeStatus(trade.PurchaseOrderStatus(req.Status)); err != nil {
			return err
		}
		if po.Status != from {
			if err := orders.UpdateStatus(ctx, po); err != nil {
				return fmt.Errorf("update purchase order: %w", err)
			}
		}
		saved = po
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("purchase order status changed",
		zap.String("po_id", saved.ID.String()),
		zap.String("status", string(saved.Status)),
	)
	resp := ToPurchaseOrderResponse(saved)
	return &resp, nil
}

// GetPurchaseOrder returns a purchase order
func (s *InventoryService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	var resp PurchaseOrderResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		po, err := repos.PurchaseOrders().FindByID(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Purchase order not found")
		}
		if err != nil {
			return err
		}
		resp = ToPurchaseOrderResponse(po)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListPurchaseOrders lists purchase orders, optionally of one vendor or status
func (s *InventoryService) ListPurchaseOrders(ctx context.Context, vendorID *uuid.UUID, status string, filter shared.Filter) (*shared.Paginated[PurchaseOrderResponse], error) {
	var statusFilter *trade.PurchaseOrderStatus
	if status != "" {
		st := trade.PurchaseOrderStatus(status)
		if !st.IsValid() {
			return nil, shared.NewValidationError("Invalid purchase order status")
		}
		statusFilter = &st
	}

	f := filter.Normalize()
	var page shared.Paginated[PurchaseOrderResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		orders, total, err := repos.PurchaseOrders().List(ctx, vendorID, statusFilter, f)
		if err != nil {
			return err
		}
		items := make([]PurchaseOrderResponse, len(orders))
		for i := range orders {
			items[i] = ToPurchaseOrderResponse(&orders[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func lockPurchaseOrder(ctx context.Context, orders trade.PurchaseOrderRepository, id uuid.UUID) (*trade.PurchaseOrder, error) {
	po, err := orders.FindByIDForUpdate(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Purchase order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lock purchase order: %w", err)
	}
	return po, nil
}
