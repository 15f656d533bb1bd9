package trade

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	// FindByIDForUpdate finds a purchase order and locks its row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)
	ExistsByNumber(ctx context.Context, poNumber string, excludeID uuid.UUID) (bool, error)
	// Update persists number, vendor and status
	Update(ctx context.Context, po *PurchaseOrder) error
	UpdateStatus(ctx context.Context, po *PurchaseOrder) error
	List(ctx context.Context, vendorID *uuid.UUID, status *PurchaseOrderStatus, filter shared.Filter) ([]PurchaseOrder, int64, error)
}

// GoodsReceiptRepository defines persistence for GRNs
type GoodsReceiptRepository interface {
	// FindByID loads a GRN with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*GoodsReceipt, error)
	// FindByIDForUpdate loads a GRN with its lines and locks the header row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*GoodsReceipt, error)
	ExistsByNumber(ctx context.Context, grnNumber string, excludeID uuid.UUID) (bool, error)
	// Save inserts or updates the header and applies the line writes
	Save(ctx context.Context, grn *GoodsReceipt, writes LineWrites, isNew bool) error
	List(ctx context.Context, filter shared.Filter) ([]GoodsReceipt, int64, error)
}

// InventoryIssueRepository defines persistence for issues
type InventoryIssueRepository interface {
	Create(ctx context.Context, issue *InventoryIssue) error
	FindByID(ctx context.Context, id uuid.UUID) (*InventoryIssue, error)
	ExistsByNumber(ctx context.Context, issueNumber string) (bool, error)
	List(ctx context.Context, filter shared.Filter) ([]InventoryIssue, int64, error)
}

// InventoryAdjustmentRepository defines the adjustment audit log
type InventoryAdjustmentRepository interface {
	Append(ctx context.Context, adjustments []InventoryAdjustment) error
	ListByBatch(ctx context.Context, batchID uuid.UUID) ([]InventoryAdjustment, error)
	ListByPosition(ctx context.Context, productID, locationID uuid.UUID, filter shared.Filter) ([]InventoryAdjustment, int64, error)
}

// SalesOrderRepository defines persistence for sales orders
type SalesOrderRepository interface {
	// FindByID loads an order with its lines
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	// FindByIDForUpdate loads an order with its lines and locks the header row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	ExistsByCode(ctx context.Context, orderCode string, excludeID uuid.UUID) (bool, error)
	// Save inserts or updates the header and applies the line writes
	Save(ctx context.Context, order *SalesOrder, writes LineWrites, isNew bool) error
	// UpdateStatus persists status, cancellation, and payment status fields only
	UpdateStatus(ctx context.Context, order *SalesOrder) error
	List(ctx context.Context, filter shared.Filter) ([]SalesOrder, int64, error)
}

// InvoiceRepository defines persistence for vendor invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate finds an invoice and locks its row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ExistsByNumber(ctx context.Context, vendorID uuid.UUID, invoiceNumber string, excludeID uuid.UUID) (bool, error)
	Create(ctx context.Context, invoice *Invoice) error
	Update(ctx context.Context, invoice *Invoice) error
	List(ctx context.Context, vendorID *uuid.UUID, filter shared.Filter) ([]Invoice, int64, error)
}
