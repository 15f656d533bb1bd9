package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SalesOrderService fulfils, edits, and cancels sales orders and manages their payments
type SalesOrderService struct {
	scope  ledger.TransactionScope
	books  *ledger.Factory
	logger *zap.Logger
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(scope ledger.TransactionScope, books *ledger.Factory, logger *zap.Logger) *SalesOrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesOrderService{
		scope:  scope,
		books:  books,
		logger: logger,
	}
}

// SaveOrder creates a sales order, or revises an existing one.
//
// New lines debit stock and reserve their serials; on revision only lines whose
// product, quantity, or serials changed move stock, and removed lines give their
// stock and serials back. Unchanged lines are not rechecked. When the request
// carries a payment list it replaces the order's payments in the same transaction,
// and the payment status is recomputed against the new total either way.
func (s *SalesOrderService) SaveOrder(ctx context.Context, actor *uuid.UUID, req SaveSalesOrderRequest) (*SalesOrderResponse, error) {
	var payments []ledger.PaymentInput
	if req.Payments != nil {
		var err error
		if payments, err = paymentInputs(*req.Payments); err != nil {
			return nil, err
		}
	}
	isNew := req.ID == nil
	id := uuid.New()
	if !isNew {
		id = *req.ID
	}

	var saved *trade.SalesOrder
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		orders := repos.SalesOrders()
		exists, err := orders.ExistsByCode(ctx, req.OrderCode, id)
		if err != nil {
			return fmt.Errorf("check order code: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Sales order code already exists")
		}

		var order *trade.SalesOrder
		var rev trade.Revision
		if isNew {
			order, rev, err = trade.NewSalesOrder(id, req.header(), req.lines(), actor)
		} else {
			if order, err = s.lockOrder(ctx, repos, id); err != nil {
				return err
			}
			rev, err = order.Revise(req.header(), req.lines(), actor)
		}
		if err != nil {
			return err
		}

		if err := orders.Save(ctx, order, rev.Writes, isNew); err != nil {
			return fmt.Errorf("save sales order: %w", err)
		}
		books := s.books.Open(repos)
		source := inventory.SourceRef{Type: inventory.MovementSourceSalesOrder, ID: order.ID, Reference: order.Reference()}
		if err := books.ApplyLineChanges(ctx, rev.Changes, ledger.Outbound, source, actor); err != nil {
			return err
		}

		ref := finance.DocumentRef{Type: finance.DocumentTypeSalesOrder, ID: order.ID}
		var rec *ledger.Reconciliation
		if req.Payments != nil {
			rec, err = books.Payments.Sync(ctx, ref, order.CustomerID, payments, actor)
		} else {
			rec, err = books.Payments.Recompute(ctx, ref)
		}
		if err != nil {
			return err
		}
		order.SetPaymentStatus(rec.Status)
		saved = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order saved",
		zap.String("order_id", saved.ID.String()),
		zap.String("order_code", saved.OrderCode),
		zap.Bool("created", isNew),
		zap.String("grand_total", saved.GrandTotalRounded.String()),
		zap.String("payment_status", string(saved.PaymentStatus)),
	)
	resp := ToSalesOrderResponse(saved)
	return &resp, nil
}

func (s *SalesOrderService) lockOrder(ctx context.Context, repos ledger.Repositories, id uuid.UUID) (*trade.SalesOrder, error) {
	order, err := repos.SalesOrders().FindByIDForUpdate(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Sales order not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lock sales order: %w", err)
	}
	return order, nil
}

// CancelOrder credits back the stock of every line, returns its serials to
// stock, and marks the order cancelled. Payments are left as they are.
func (s *SalesOrderService) CancelOrder(ctx context.Context, actor *uuid.UUID, id uuid.UUID, req CancelSalesOrderRequest) (*SalesOrderResponse, error) {
	var cancelled *trade.SalesOrder
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		order, err := s.lockOrder(ctx, repos, id)
		if err != nil {
			return err
		}
		footprints, err := order.Cancel(req.Reason, actor)
		if err != nil {
			return err
		}
		source := inventory.SourceRef{Type: inventory.MovementSourceSalesOrderCancel, ID: order.ID, Reference: order.Reference()}
		if err := s.books.Open(repos).ApplyLineChanges(ctx, ledger.Relinquish(footprints), ledger.Outbound, source, actor); err != nil {
			return err
		}
		if err := repos.SalesOrders().UpdateStatus(ctx, order); err != nil {
			return fmt.Errorf("update sales order: %w", err)
		}
		cancelled = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("sales order cancelled",
		zap.String("order_id", cancelled.ID.String()),
		zap.String("order_code", cancelled.OrderCode),
		zap.String("reason", cancelled.CancellationReason),
	)
	resp := ToSalesOrderResponse(cancelled)
	return &resp, nil
}

// GetOrder returns an order with its lines
func (s *SalesOrderService) GetOrder(ctx context.Context, id uuid.UUID) (*SalesOrderResponse, error) {
	var resp SalesOrderResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		order, err := repos.SalesOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToSalesOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOrders lists orders, newest first
func (s *SalesOrderService) ListOrders(ctx context.Context, filter shared.Filter) (*shared.Paginated[SalesOrderResponse], error) {
	f := filter.Normalize()
	var page shared.Paginated[SalesOrderResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		orders, total, err := repos.SalesOrders().List(ctx, f)
		if err != nil {
			return err
		}
		items := make([]SalesOrderResponse, len(orders))
		for i := range orders {
			items[i] = ToSalesOrderResponse(&orders[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// SyncPayments replaces the payment list of an order
func (s *SalesOrderService) SyncPayments(ctx context.Context, actor *uuid.UUID, orderID uuid.UUID, req SyncPaymentsRequest) (*ReconciliationResponse, error) {
	return syncPayments(ctx, s.scope, s.books, s.logger, actor, finance.DocumentRef{Type: finance.DocumentTypeSalesOrder, ID: orderID}, req)
}

// SavePayment adds a payment to an order, or edits one when req.ID is set
func (s *SalesOrderService) SavePayment(ctx context.Context, actor *uuid.UUID, orderID uuid.UUID, req PaymentRequest) (*ReconciliationResponse, error) {
	return savePayment(ctx, s.scope, s.books, s.logger, actor, finance.DocumentRef{Type: finance.DocumentTypeSalesOrder, ID: orderID}, req)
}

// DeletePayment removes a payment from an order and reverses its ledger effect
func (s *SalesOrderService) DeletePayment(ctx context.Context, actor *uuid.UUID, orderID, paymentID uuid.UUID) (*ReconciliationResponse, error) {
	return deletePayment(ctx, s.scope, s.books, s.logger, actor, finance.DocumentRef{Type: finance.DocumentTypeSalesOrder, ID: orderID}, paymentID)
}

// ListPayments lists the payments of an order
func (s *SalesOrderService) ListPayments(ctx context.Context, orderID uuid.UUID) ([]PaymentResponse, error) {
	return listPayments(ctx, s.scope, finance.DocumentRef{Type: finance.DocumentTypeSalesOrder, ID: orderID})
}
