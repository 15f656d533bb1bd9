package inventory

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLineRequest is the stock part of a document line
type StockLineRequest struct {
	ID            *uuid.UUID      `json:"id"`
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	SerialTracked bool            `json:"serial_tracked"`
	SerialNumbers []string        `json:"serial_numbers"`
}

func (r StockLineRequest) toInput() trade.StockLineInput {
	in := trade.StockLineInput{
		ProductID:     r.ProductID,
		Quantity:      r.Quantity,
		SerialTracked: r.SerialTracked,
		SerialNumbers: r.SerialNumbers,
	}
	if r.ID != nil {
		in.ID = *r.ID
	}
	return in
}

// SavePurchaseOrderRequest creates a purchase order, or edits it when ID is set
type SavePurchaseOrderRequest struct {
	ID       *uuid.UUID `json:"id"`
	PONumber string     `json:"po_number" binding:"required,max=50"`
	VendorID uuid.UUID  `json:"vendor_id" binding:"required"`
}

// UpdatePurchaseOrderStatusRequest moves a purchase order to OPEN or CANCELLED
type UpdatePurchaseOrderStatusRequest struct {
	Status string `json:"status" binding:"required,max=20"`
}

// PurchaseOrderResponse is a purchase order
type PurchaseOrderResponse struct {
	ID        uuid.UUID `json:"id"`
	PONumber  string    `json:"po_number"`
	VendorID  uuid.UUID `json:"vendor_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// ToPurchaseOrderResponse converts a purchase order to its response
func ToPurchaseOrderResponse(po *trade.PurchaseOrder) PurchaseOrderResponse {
	return PurchaseOrderResponse{
		ID:        po.ID,
		PONumber:  po.PONumber,
		VendorID:  po.VendorID,
		Status:    string(po.Status),
		CreatedAt: po.CreatedAt,
		UpdatedAt: po.UpdatedAt,
		Version:   po.Version,
	}
}

// GoodsReceiptLineRequest is one GRN line
type GoodsReceiptLineRequest struct {
	StockLineRequest
	POLineID    *uuid.UUID      `json:"po_line_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	UOM         string          `json:"uom" binding:"max=20"`
	BatchNumber string          `json:"batch_number" binding:"max=50"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
}

// SaveGoodsReceiptRequest creates a GRN, or revises it when ID is set
type SaveGoodsReceiptRequest struct {
	ID              *uuid.UUID                `json:"id"`
	GRNNumber       string                    `json:"grn_number" binding:"required,max=50"`
	PurchaseOrderID uuid.UUID                 `json:"purchase_order_id" binding:"required"`
	VendorID        uuid.UUID                 `json:"vendor_id" binding:"required"`
	LocationID      uuid.UUID                 `json:"location_id" binding:"required"`
	ReceiptDate     time.Time                 `json:"receipt_date" binding:"required"`
	Remarks         string                    `json:"remarks" binding:"max=500"`
	Lines           []GoodsReceiptLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r SaveGoodsReceiptRequest) header() trade.GoodsReceiptHeader {
	return trade.GoodsReceiptHeader{
		GRNNumber:       r.GRNNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		VendorID:        r.VendorID,
		LocationID:      r.LocationID,
		ReceiptDate:     r.ReceiptDate,
		Remarks:         r.Remarks,
	}
}

func (r SaveGoodsReceiptRequest) lines() []trade.GoodsReceiptLineInput {
	out := make([]trade.GoodsReceiptLineInput, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = trade.GoodsReceiptLineInput{
			StockLineInput: l.toInput(),
			POLineID:       l.POLineID,
			UnitPrice:      l.UnitPrice,
			TaxAmount:      l.TaxAmount,
			UOM:            l.UOM,
			BatchNumber:    l.BatchNumber,
			ExpiryDate:     l.ExpiryDate,
		}
	}
	return out
}

// GoodsReceiptLineResponse is one GRN line
type GoodsReceiptLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	POLineID      *uuid.UUID      `json:"po_line_id,omitempty"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	UOM           string          `json:"uom,omitempty"`
	BatchNumber   string          `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	SerialTracked bool            `json:"serial_tracked"`
	SerialNumbers []string        `json:"serial_numbers,omitempty"`
}

// GoodsReceiptResponse is a GRN with its lines
type GoodsReceiptResponse struct {
	ID              uuid.UUID                  `json:"id"`
	GRNNumber       string                     `json:"grn_number"`
	PurchaseOrderID uuid.UUID                  `json:"purchase_order_id"`
	VendorID        uuid.UUID                  `json:"vendor_id"`
	LocationID      uuid.UUID                  `json:"location_id"`
	ReceiptDate     time.Time                  `json:"receipt_date"`
	Remarks         string                     `json:"remarks,omitempty"`
	Lines           []GoodsReceiptLineResponse `json:"lines"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`
	Version         int                        `json:"version"`
}

// ToGoodsReceiptResponse converts a GRN to its response
func ToGoodsReceiptResponse(g *trade.GoodsReceipt) GoodsReceiptResponse {
	lines := make([]GoodsReceiptLineResponse, len(g.Lines))
	for i, l := range g.Lines {
		lines[i] = GoodsReceiptLineResponse{
			ID:            l.ID,
			POLineID:      l.POLineID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			TaxAmount:     l.TaxAmount,
			TotalAmount:   l.TotalAmount,
			UOM:           l.UOM,
			BatchNumber:   l.BatchNumber,
			ExpiryDate:    l.ExpiryDate,
			SerialTracked: l.SerialTracked,
			SerialNumbers: l.SerialNumbers,
		}
	}
	return GoodsReceiptResponse{
		ID:              g.ID,
		GRNNumber:       g.GRNNumber,
		PurchaseOrderID: g.PurchaseOrderID,
		VendorID:        g.VendorID,
		LocationID:      g.LocationID,
		ReceiptDate:     g.ReceiptDate,
		Remarks:         g.Remarks,
		Lines:           lines,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
		Version:         g.Version,
	}
}

// IssueLineRequest is one issue line
type IssueLineRequest struct {
	StockLineRequest
	UOM     string `json:"uom" binding:"max=20"`
	Remarks string `json:"remarks" binding:"max=255"`
}

// CreateIssueRequest issues stock out of a location
type CreateIssueRequest struct {
	IssueNumber string             `json:"issue_number" binding:"required,max=50"`
	LocationID  uuid.UUID          `json:"location_id" binding:"required"`
	IssueDate   time.Time          `json:"issue_date" binding:"required"`
	IssuedTo    string             `json:"issued_to" binding:"max=100"`
	Remarks     string             `json:"remarks" binding:"max=500"`
	Lines       []IssueLineRequest `json:"lines" binding:"required,min=1,dive"`
}

func (r CreateIssueRequest) lines() []trade.InventoryIssueLineInput {
	out := make([]trade.InventoryIssueLineInput, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = trade.InventoryIssueLineInput{
			StockLineInput: l.toInput(),
			UOM:            l.UOM,
			Remarks:        l.Remarks,
		}
	}
	return out
}

// IssueLineResponse is one issue line
type IssueLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UOM           string          `json:"uom,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
	SerialTracked bool            `json:"serial_tracked"`
	SerialNumbers []string        `json:"serial_numbers,omitempty"`
}

// IssueResponse is an inventory issue with its lines
type IssueResponse struct {
	ID          uuid.UUID           `json:"id"`
	IssueNumber string              `json:"issue_number"`
	LocationID  uuid.UUID           `json:"location_id"`
	IssueDate   time.Time           `json:"issue_date"`
	IssuedTo    string              `json:"issued_to,omitempty"`
	Remarks     string              `json:"remarks,omitempty"`
	Lines       []IssueLineResponse `json:"lines"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ToIssueResponse converts an issue to its response
func ToIssueResponse(i *trade.InventoryIssue) IssueResponse {
	lines := make([]IssueLineResponse, len(i.Lines))
	for n, l := range i.Lines {
		lines[n] = IssueLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			UOM:           l.UOM,
			Remarks:       l.Remarks,
			SerialTracked: l.SerialTracked,
			SerialNumbers: l.SerialNumbers,
		}
	}
	return IssueResponse{
		ID:          i.ID,
		IssueNumber: i.IssueNumber,
		LocationID:  i.LocationID,
		IssueDate:   i.IssueDate,
		IssuedTo:    i.IssuedTo,
		Remarks:     i.Remarks,
		Lines:       lines,
		CreatedAt:   i.CreatedAt,
	}
}

// AdjustmentRequest is one signed stock correction
type AdjustmentRequest struct {
	ProductID      uuid.UUID       `json:"product_id" binding:"required"`
	LocationID     uuid.UUID       `json:"location_id" binding:"required"`
	AdjustmentDate time.Time       `json:"adjustment_date"`
	QuantityChange decimal.Decimal `json:"quantity_change" binding:"decimal_ne0"`
	Reason         string          `json:"reason" binding:"required,max=255"`
	SerialTracked  bool            `json:"serial_tracked"`
	SerialsAdd     []string        `json:"serials_add"`
	SerialsRemove  []string        `json:"serials_remove"`
}

// ApplyAdjustmentsRequest is a batch of adjustments applied atomically
type ApplyAdjustmentsRequest struct {
	Adjustments []AdjustmentRequest `json:"adjustments" binding:"required,min=1,dive"`
}

// AdjustmentResponse is one logged adjustment
type AdjustmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	BatchID        uuid.UUID       `json:"batch_id"`
	ProductID      uuid.UUID       `json:"product_id"`
	LocationID     uuid.UUID       `json:"location_id"`
	AdjustmentDate time.Time       `json:"adjustment_date"`
	QuantityChange decimal.Decimal `json:"quantity_change"`
	Reason         string          `json:"reason"`
	SerialsAdded   []string        `json:"serials_added,omitempty"`
	SerialsRemoved []string        `json:"serials_removed,omitempty"`
	AdjustedBy     *uuid.UUID      `json:"adjusted_by,omitempty"`
}

// ToAdjustmentResponse converts a logged adjustment to its response
func ToAdjustmentResponse(a *trade.InventoryAdjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:             a.ID,
		BatchID:        a.BatchID,
		ProductID:      a.ProductID,
		LocationID:     a.LocationID,
		AdjustmentDate: a.AdjustmentDate,
		QuantityChange: a.QuantityChange,
		Reason:         a.Reason,
		SerialsAdded:   a.SerialsAdded,
		SerialsRemoved: a.SerialsRemoved,
		AdjustedBy:     a.AdjustedBy,
	}
}

// ApplyAdjustmentsResponse is the logged batch and the resulting positions
type ApplyAdjustmentsResponse struct {
	BatchID     uuid.UUID               `json:"batch_id"`
	Adjustments []AdjustmentResponse    `json:"adjustments"`
	Positions   []StockPositionResponse `json:"positions"`
}

// StockPositionResponse is the quantity on hand at one location
type StockPositionResponse struct {
	ProductID  uuid.UUID       `json:"product_id"`
	LocationID uuid.UUID       `json:"location_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// ToStockPositionResponse converts a position to its response
func ToStockPositionResponse(p *inventory.StockPosition) StockPositionResponse {
	return StockPositionResponse{
		ProductID:  p.ProductID,
		LocationID: p.LocationID,
		Quantity:   p.Quantity,
		UpdatedAt:  p.UpdatedAt,
		Version:    p.Version,
	}
}

// StockPositionListFilter filters a position listing
type StockPositionListFilter struct {
	ProductID  *uuid.UUID `form:"product_id"`
	LocationID *uuid.UUID `form:"location_id"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// StockMovementResponse is one entry of a position's movement log
type StockMovementResponse struct {
	ID            uuid.UUID       `json:"id"`
	Quantity      decimal.Decimal `json:"quantity"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	SourceType    string          `json:"source_type"`
	SourceID      uuid.UUID       `json:"source_id"`
	SourceLineID  *uuid.UUID      `json:"source_line_id,omitempty"`
	Reference     string          `json:"reference,omitempty"`
	OperatorID    *uuid.UUID      `json:"operator_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// ToStockMovementResponse converts a movement to its response
func ToStockMovementResponse(m *inventory.StockMovement) StockMovementResponse {
	return StockMovementResponse{
		ID:            m.ID,
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    m.SourceType.String(),
		SourceID:      m.SourceID,
		SourceLineID:  m.SourceLineID,
		Reference:     m.Reference,
		OperatorID:    m.OperatorID,
		CreatedAt:     m.CreatedAt,
	}
}

// SerialUnitResponse is one serial unit
type SerialUnitResponse struct {
	SerialNumber string    `json:"serial_number"`
	Status       string    `json:"status"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ListFilter is a paged date-bounded filter
type ListFilter struct {
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// Normalize converts the filter to a repository filter
func (f ListFilter) Normalize() shared.Filter {
	return shared.Filter{Page: f.Page, PageSize: f.PageSize, From: f.From, To: f.To}.Normalize()
}
