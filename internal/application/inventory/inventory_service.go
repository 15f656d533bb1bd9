package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryService runs the stock documents: goods receipts, issues, and adjustments.
// Every write runs in one transaction; a failure on any line undoes the whole document.
type InventoryService struct {
	scope  ledger.TransactionScope
	books  *ledger.Factory
	logger *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope ledger.TransactionScope, books *ledger.Factory, logger *zap.Logger) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		scope:  scope,
		books:  books,
		logger: logger,
	}
}

// SaveGoodsReceipt creates or revises a GRN and moves the stock it brings in.
// On revision only lines whose product, location, quantity, or serials changed
// touch stock. The purchase order is marked goods validated and a revision
// cannot move the GRN to another order.
func (s *InventoryService) SaveGoodsReceipt(ctx context.Context, actor *uuid.UUID, req SaveGoodsReceiptRequest) (*GoodsReceiptResponse, error) {
	isNew := req.ID == nil
	id := uuid.New()
	if !isNew {
		id = *req.ID
	}

	var saved *trade.GoodsReceipt
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		grns := repos.GoodsReceipts()
		exists, err := grns.ExistsByNumber(ctx, req.GRNNumber, id)
		if err != nil {
			return fmt.Errorf("check grn number: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "GRN number already exists")
		}

		po, err := lockPurchaseOrder(ctx, repos.PurchaseOrders(), req.PurchaseOrderID)
		if err != nil {
			return err
		}
		if po.VendorID != req.VendorID {
			return shared.NewValidationError("Vendor does not match the purchase order")
		}

		var grn *trade.GoodsReceipt
		var rev trade.Revision
		if isNew {
			grn, rev, err = trade.NewGoodsReceipt(id, req.header(), req.lines(), actor)
		} else {
			grn, err = grns.FindByIDForUpdate(ctx, id)
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("GRN not found")
			}
			if err != nil {
				return fmt.Errorf("lock grn: %w", err)
			}
			rev, err = grn.Revise(req.header(), req.lines(), actor)
		}
		if err != nil {
			return err
		}

		if err := grns.Save(ctx, grn, rev.Writes, isNew); err != nil {
			return fmt.Errorf("save grn: %w", err)
		}
		source := inventory.SourceRef{Type: inventory.MovementSourceGoodsReceipt, ID: grn.ID, Reference: grn.Reference()}
		if err := s.books.Open(repos).ApplyLineChanges(ctx, rev.Changes, ledger.Inbound, source, actor); err != nil {
			return err
		}

		if err := po.MarkGoodsValidated(); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().UpdateStatus(ctx, po); err != nil {
			return fmt.Errorf("update purchase order: %w", err)
		}
		saved = grn
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("goods receipt saved",
		zap.String("grn_id", saved.ID.String()),
		zap.String("grn_number", saved.GRNNumber),
		zap.Bool("created", isNew),
		zap.Int("lines", len(saved.Lines)),
	)
	resp := ToGoodsReceiptResponse(saved)
	return &resp, nil
}

// GetGoodsReceipt returns a GRN with its lines
func (s *InventoryService) GetGoodsReceipt(ctx context.Context, id uuid.UUID) (*GoodsReceiptResponse, error) {
	var resp GoodsReceiptResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		grn, err := repos.GoodsReceipts().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToGoodsReceiptResponse(grn)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListGoodsReceipts lists GRNs, newest first
func (s *InventoryService) ListGoodsReceipts(ctx context.Context, filter ListFilter) (*shared.Paginated[GoodsReceiptResponse], error) {
	f := filter.Normalize()
	var page shared.Paginated[GoodsReceiptResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		grns, total, err := repos.GoodsReceipts().List(ctx, f)
		if err != nil {
			return err
		}
		items := make([]GoodsReceiptResponse, len(grns))
		for i := range grns {
			items[i] = ToGoodsReceiptResponse(&grns[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// CreateIssue issues stock out of a location. Every line is availability
// checked and every named serial must be in stock, or nothing is issued.
func (s *InventoryService) CreateIssue(ctx context.Context, actor *uuid.UUID, req CreateIssueRequest) (*IssueResponse, error) {
	issue, err := trade.NewInventoryIssue(req.IssueNumber, req.LocationID, req.IssueDate, req.IssuedTo, req.Remarks, req.lines(), actor)
	if err != nil {
		return nil, err
	}

	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		exists, err := repos.InventoryIssues().ExistsByNumber(ctx, issue.IssueNumber)
		if err != nil {
			return fmt.Errorf("check issue number: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Issue number already exists")
		}
		if err := repos.InventoryIssues().Create(ctx, issue); err != nil {
			return fmt.Errorf("create issue: %w", err)
		}
		source := inventory.SourceRef{Type: inventory.MovementSourceInventoryIssue, ID: issue.ID, Reference: issue.Reference()}
		return s.books.Open(repos).ApplyLineChanges(ctx, ledger.Acquire(issue.Footprints()), ledger.Outbound, source, actor)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("inventory issued",
		zap.String("issue_id", issue.ID.String()),
		zap.String("issue_number", issue.IssueNumber),
		zap.Int("lines", len(issue.Lines)),
	)
	resp := ToIssueResponse(issue)
	return &resp, nil
}

// GetIssue returns an issue with its lines
func (s *InventoryService) GetIssue(ctx context.Context, id uuid.UUID) (*IssueResponse, error) {
	var resp IssueResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		issue, err := repos.InventoryIssues().FindByID(ctx, id)
		if err != nil {
			return err
		}
		resp = ToIssueResponse(issue)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListIssues lists issues, newest first
func (s *InventoryService) ListIssues(ctx context.Context, filter ListFilter) (*shared.Paginated[IssueResponse], error) {
	f := filter.Normalize()
	var page shared.Paginated[IssueResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		issues, total, err := repos.InventoryIssues().List(ctx, f)
		if err != nil {
			return err
		}
		items := make([]IssueResponse, len(issues))
		for i := range issues {
			items[i] = ToIssueResponse(&issues[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
