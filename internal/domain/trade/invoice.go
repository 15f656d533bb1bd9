package trade

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice is a vendor bill. Payments against it move money out of the books.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber   string
	PurchaseOrderID *uuid.UUID
	VendorID        uuid.UUID
	InvoiceDate     time.Time
	InvoiceAmount   decimal.Decimal
	CGSTAmount      decimal.Decimal
	SGSTAmount      decimal.Decimal
	IGSTAmount      decimal.Decimal
	TotalTaxAmount  decimal.Decimal
	TotalAmount     decimal.Decimal
	Remarks         string
	PaymentStatus   finance.PaymentStatus
	CreatedBy       *uuid.UUID
	UpdatedBy       *uuid.UUID
	IsDeleted       bool
	DeletedAt       *time.Time
	DeletedBy       *uuid.UUID
}

// InvoiceDetails are the editable fields of an invoice
type InvoiceDetails struct {
	InvoiceNumber   string
	PurchaseOrderID *uuid.UUID
	VendorID        uuid.UUID
	InvoiceDate     time.Time
	InvoiceAmount   decimal.Decimal
	CGSTAmount      decimal.Decimal
	SGSTAmount      decimal.Decimal
	IGSTAmount      decimal.Decimal
	Remarks         string
}

func (d InvoiceDetails) validate() error {
	if strings.TrimSpace(d.InvoiceNumber) == "" {
		return shared.NewValidationError("Invoice number is required")
	}
	if d.VendorID == uuid.Nil {
		return shared.NewValidationError("Vendor is required")
	}
	if d.InvoiceDate.IsZero() {
		return shared.NewValidationError("Invoice date is required")
	}
	if d.InvoiceAmount.IsNegative() || d.CGSTAmount.IsNegative() || d.SGSTAmount.IsNegative() || d.IGSTAmount.IsNegative() {
		return shared.NewValidationError("Invoice amounts cannot be negative")
	}
	return nil
}

// NewInvoice creates an unpaid invoice
func NewInvoice(details InvoiceDetails, actor *uuid.UUID) (*Invoice, error) {
	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PaymentStatus:     finance.PaymentStatusUnpaid,
		CreatedBy:         actor,
	}
	if err := inv.Update(details, actor); err != nil {
		return nil, err
	}
	return inv, nil
}

// Update replaces the editable fields and recomputes the totals.
// Returns an error if the invoice was deleted.
func (i *Invoice) Update(d InvoiceDetails, actor *uuid.UUID) error {
	if i.IsDeleted {
		return shared.NewInvalidStateError("Deleted invoice cannot be edited")
	}
	if err := d.validate(); err != nil {
		return err
	}
	i.InvoiceNumber = strings.TrimSpace(d.InvoiceNumber)
	i.PurchaseOrderID = d.PurchaseOrderID
	i.VendorID = d.VendorID
	i.InvoiceDate = d.InvoiceDate
	i.InvoiceAmount = d.InvoiceAmount
	i.CGSTAmount = d.CGSTAmount
	i.SGSTAmount = d.SGSTAmount
	i.IGSTAmount = d.IGSTAmount
	i.TotalTaxAmount = d.CGSTAmount.Add(d.SGSTAmount).Add(d.IGSTAmount)
	i.TotalAmount = d.InvoiceAmount.Add(i.TotalTaxAmount)
	i.Remarks = strings.TrimSpace(d.Remarks)
	i.UpdatedBy = actor
	i.Touch()
	return nil
}

// PayableTotal is the amount payments are reconciled against
func (i *Invoice) PayableTotal() decimal.Decimal {
	return i.TotalAmount
}

// SetPaymentStatus records a recomputed payment status
func (i *Invoice) SetPaymentStatus(status finance.PaymentStatus) {
	i.PaymentStatus = status
}

// MarkDeleted soft deletes the invoice. An invoice with live payments cannot be deleted.
func (i *Invoice) MarkDeleted(paymentCount int, actor *uuid.UUID) error {
	if i.IsDeleted {
		return shared.NewNotFoundError("Invoice not found or already deleted")
	}
	if paymentCount > 0 {
		return shared.NewInvalidStateError("Invoice has payments; remove them before deleting the invoice")
	}
	now := time.Now()
	i.IsDeleted = true
	i.DeletedAt = &now
	i.DeletedBy = actor
	i.UpdatedBy = actor
	i.UpdatedAt = now
	return nil
}

// Reference returns the provenance reference used on ledger entries
func (i *Invoice) Reference() string {
	return "INV-" + i.InvoiceNumber
}
