package trade

import (
	"time"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesOrderLineRequest is one sales order line
type SalesOrderLineRequest struct {
	ID            *uuid.UUID      `json:"id"`
	ProductID     uuid.UUID       `json:"product_id" binding:"required"`
	Quantity      decimal.Decimal `json:"quantity" binding:"decimal_gt0"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Discount      decimal.Decimal `json:"discount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	UOM           string          `json:"uom" binding:"max=20"`
	BatchNo       string          `json:"batch_no" binding:"max=50"`
	SerialTracked bool            `json:"serial_tracked"`
	SerialNumbers []string        `json:"serial_numbers"`
}

// PaymentRequest is one payment against an invoice or sales order.
// ID is empty for a new payment.
type PaymentRequest struct {
	ID          *uuid.UUID      `json:"id"`
	PaymentDate time.Time       `json:"payment_date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Mode        string          `json:"mode" binding:"max=20"`
	BankID      *uuid.UUID      `json:"bank_id"`
	Reference   string          `json:"reference" binding:"max=100"`
	Notes       string          `json:"notes" binding:"max=500"`
}

func (r PaymentRequest) details() (finance.PaymentDetails, error) {
	mode, err := finance.ParsePaymentMode(r.Mode)
	if err != nil {
		return finance.PaymentDetails{}, err
	}
	return finance.PaymentDetails{
		PaymentDate: r.PaymentDate,
		Amount:      r.Amount,
		Mode:        mode,
		BankID:      r.BankID,
		Reference:   r.Reference,
		Notes:       r.Notes,
	}, nil
}

func paymentInputs(reqs []PaymentRequest) ([]ledger.PaymentInput, error) {
	out := make([]ledger.PaymentInput, len(reqs))
	for i, r := range reqs {
		d, err := r.details()
		if err != nil {
			return nil, err
		}
		out[i] = ledger.PaymentInput{ID: r.ID, Details: d}
	}
	return out, nil
}

// SyncPaymentsRequest replaces the payment list of a document
type SyncPaymentsRequest struct {
	Payments []PaymentRequest `json:"payments" binding:"dive"`
}

// SaveSalesOrderRequest creates an order, or revises it when ID is set.
// A non-nil Payments list replaces the order's payments in the same transaction.
type SaveSalesOrderRequest struct {
	ID         *uuid.UUID              `json:"id"`
	OrderCode  string                  `json:"order_code" binding:"required,max=50"`
	OrderDate  time.Time               `json:"order_date" binding:"required"`
	CustomerID *uuid.UUID              `json:"customer_id"`
	LocationID uuid.UUID               `json:"location_id" binding:"required"`
	Remarks    string                  `json:"remarks" binding:"max=500"`
	Lines      []SalesOrderLineRequest `json:"lines" binding:"required,min=1,dive"`
	Payments   *[]PaymentRequest       `json:"payments" binding:"omitempty,dive"`
}

func (r SaveSalesOrderRequest) header() trade.SalesOrderHeader {
	return trade.SalesOrderHeader{
		OrderCode:  r.OrderCode,
		OrderDate:  r.OrderDate,
		CustomerID: r.CustomerID,
		LocationID: r.LocationID,
		Remarks:    r.Remarks,
	}
}

func (r SaveSalesOrderRequest) lines() []trade.SalesOrderLineInput {
	out := make([]trade.SalesOrderLineInput, len(r.Lines))
	for i, l := range r.Lines {
		in := trade.SalesOrderLineInput{
			StockLineInput: trade.StockLineInput{
				ProductID:     l.ProductID,
				Quantity:      l.Quantity,
				SerialTracked: l.SerialTracked,
				SerialNumbers: l.SerialNumbers,
			},
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			TaxAmount: l.TaxAmount,
			UOM:       l.UOM,
			BatchNo:   l.BatchNo,
		}
		if l.ID != nil {
			in.ID = *l.ID
		}
		out[i] = in
	}
	return out
}

// CancelSalesOrderRequest cancels an order
type CancelSalesOrderRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// SalesOrderLineResponse is one sales order line
type SalesOrderLineResponse struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"product_id"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Discount      decimal.Decimal `json:"discount"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	LineTotal     decimal.Decimal `json:"line_total"`
	UOM           string          `json:"uom,omitempty"`
	BatchNo       string          `json:"batch_no,omitempty"`
	SerialTracked bool            `json:"serial_tracked"`
	SerialNumbers []string        `json:"serial_numbers,omitempty"`
}

// SalesOrderResponse is an order with its lines
type SalesOrderResponse struct {
	ID                 uuid.UUID                `json:"id"`
	OrderCode          string                   `json:"order_code"`
	OrderDate          time.Time                `json:"order_date"`
	CustomerID         *uuid.UUID               `json:"customer_id,omitempty"`
	LocationID         uuid.UUID                `json:"location_id"`
	Status             string                   `json:"status"`
	PaymentStatus      string                   `json:"payment_status"`
	Subtotal           decimal.Decimal          `json:"subtotal"`
	DiscountAmount     decimal.Decimal          `json:"discount_amount"`
	TaxAmount          decimal.Decimal          `json:"tax_amount"`
	GrandTotal         decimal.Decimal          `json:"grand_total"`
	GrandTotalRounded  decimal.Decimal          `json:"grand_total_rounded"`
	Remarks            string                   `json:"remarks,omitempty"`
	CancellationReason string                   `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time               `json:"cancelled_at,omitempty"`
	Lines              []SalesOrderLineResponse `json:"lines"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
	Version            int                      `json:"version"`
}

// ToSalesOrderResponse converts an order to its response
func ToSalesOrderResponse(o *trade.SalesOrder) SalesOrderResponse {
	lines := make([]SalesOrderLineResponse, len(o.Lines))
	for i, l := range o.Lines {
		lines[i] = SalesOrderLineResponse{
			ID:            l.ID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			UnitPrice:     l.UnitPrice,
			Discount:      l.Discount,
			TaxAmount:     l.TaxAmount,
			LineTotal:     l.LineTotal,
			UOM:           l.UOM,
			BatchNo:       l.BatchNo,
			SerialTracked: l.SerialTracked,
			SerialNumbers: l.SerialNumbers,
		}
	}
	return SalesOrderResponse{
		ID:                 o.ID,
		OrderCode:          o.OrderCode,
		OrderDate:          o.OrderDate,
		CustomerID:         o.CustomerID,
		LocationID:         o.LocationID,
		Status:             string(o.Status),
		PaymentStatus:      string(o.PaymentStatus),
		Subtotal:           o.Subtotal,
		DiscountAmount:     o.DiscountAmount,
		TaxAmount:          o.TaxAmount,
		GrandTotal:         o.GrandTotal,
		GrandTotalRounded:  o.GrandTotalRounded,
		Remarks:            o.Remarks,
		CancellationReason: o.CancellationReason,
		CancelledAt:        o.CancelledAt,
		Lines:              lines,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		Version:            o.Version,
	}
}

// SaveInvoiceRequest creates an invoice, or updates it when ID is set
type SaveInvoiceRequest struct {
	ID              *uuid.UUID      `json:"id"`
	InvoiceNumber   string          `json:"invoice_number" binding:"required,max=50"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id"`
	VendorID        uuid.UUID       `json:"vendor_id" binding:"required"`
	InvoiceDate     time.Time       `json:"invoice_date" binding:"required"`
	InvoiceAmount   decimal.Decimal `json:"invoice_amount" binding:"decimal_gte0"`
	CGSTAmount      decimal.Decimal `json:"cgst_amount" binding:"decimal_gte0"`
	SGSTAmount      decimal.Decimal `json:"sgst_amount" binding:"decimal_gte0"`
	IGSTAmount      decimal.Decimal `json:"igst_amount" binding:"decimal_gte0"`
	Remarks         string          `json:"remarks" binding:"max=500"`
}

func (r SaveInvoiceRequest) details() trade.InvoiceDetails {
	return trade.InvoiceDetails{
		InvoiceNumber:   r.InvoiceNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		VendorID:        r.VendorID,
		InvoiceDate:     r.InvoiceDate,
		InvoiceAmount:   r.InvoiceAmount,
		CGSTAmount:      r.CGSTAmount,
		SGSTAmount:      r.SGSTAmount,
		IGSTAmount:      r.IGSTAmount,
		Remarks:         r.Remarks,
	}
}

// InvoiceResponse is a vendor invoice
type InvoiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	InvoiceNumber   string          `json:"invoice_number"`
	PurchaseOrderID *uuid.UUID      `json:"purchase_order_id,omitempty"`
	VendorID        uuid.UUID       `json:"vendor_id"`
	InvoiceDate     time.Time       `json:"invoice_date"`
	InvoiceAmount   decimal.Decimal `json:"invoice_amount"`
	CGSTAmount      decimal.Decimal `json:"cgst_amount"`
	SGSTAmount      decimal.Decimal `json:"sgst_amount"`
	IGSTAmount      decimal.Decimal `json:"igst_amount"`
	TotalTaxAmount  decimal.Decimal `json:"total_tax_amount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Remarks         string          `json:"remarks,omitempty"`
	PaymentStatus   string          `json:"payment_status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToInvoiceResponse converts an invoice to its response
func ToInvoiceResponse(i *trade.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:              i.ID,
		InvoiceNumber:   i.InvoiceNumber,
		PurchaseOrderID: i.PurchaseOrderID,
		VendorID:        i.VendorID,
		InvoiceDate:     i.InvoiceDate,
		InvoiceAmount:   i.InvoiceAmount,
		CGSTAmount:      i.CGSTAmount,
		SGSTAmount:      i.SGSTAmount,
		IGSTAmount:      i.IGSTAmount,
		TotalTaxAmount:  i.TotalTaxAmount,
		TotalAmount:     i.TotalAmount,
		Remarks:         i.Remarks,
		PaymentStatus:   string(i.PaymentStatus),
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

// PaymentResponse is one payment record
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	PaymentDate time.Time       `json:"payment_date"`
	Amount      decimal.Decimal `json:"amount"`
	Mode        string          `json:"mode"`
	BankID      *uuid.UUID      `json:"bank_id,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
}

// ToPaymentResponse converts a payment record to its response
func ToPaymentResponse(p *finance.PaymentRecord) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		PaymentDate: p.PaymentDate,
		Amount:      p.Amount,
		Mode:        string(p.Mode),
		BankID:      p.BankID,
		Reference:   p.Reference,
		Notes:       p.Notes,
	}
}

// ReconciliationResponse is the payment state of a document after a payment change
type ReconciliationResponse struct {
	DocumentType  string            `json:"document_type"`
	DocumentID    uuid.UUID         `json:"document_id"`
	TotalPaid     decimal.Decimal   `json:"total_paid"`
	DocumentTotal decimal.Decimal   `json:"document_total"`
	PaymentStatus string            `json:"payment_status"`
	Payments      []PaymentResponse `json:"payments,omitempty"`
}

// ToReconciliationResponse converts a reconciliation to its response
func ToReconciliationResponse(r *ledger.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{
		DocumentType:  string(r.Document.Type),
		DocumentID:    r.Document.ID,
		TotalPaid:     r.TotalPaid,
		DocumentTotal: r.DocumentTotal,
		PaymentStatus: string(r.Status),
	}
}
