package trade

import (
	"strings"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusOpen           PurchaseOrderStatus = "OPEN"
	PurchaseOrderStatusGoodsValidated PurchaseOrderStatus = "GOODS_VALIDATED"
	PurchaseOrderStatusCancelled      PurchaseOrderStatus = "CANCELLED"
)

// IsValid checks if the status is known
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusOpen, PurchaseOrderStatusGoodsValidated, PurchaseOrderStatusCancelled:
		return true
	}
	return false
}

// PurchaseOrder is the vendor order a goods receipt is booked against.
// Only the fields a receipt checks are kept; pricing lives with the vendor's invoice.
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber string
	VendorID uuid.UUID
	Status   PurchaseOrderStatus
}

// NewPurchaseOrder creates an open purchase order
func NewPurchaseOrder(poNumber string, vendorID uuid.UUID) (*PurchaseOrder, error) {
	poNumber, err := validatePurchaseOrder(poNumber, vendorID)
	if err != nil {
		return nil, err
	}
	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          poNumber,
		VendorID:          vendorID,
		Status:            PurchaseOrderStatusOpen,
	}, nil
}

func validatePurchaseOrder(poNumber string, vendorID uuid.UUID) (string, error) {
	poNumber = strings.TrimSpace(poNumber)
	if poNumber == "" {
		return "", shared.NewValidationError("Purchase order number is required")
	}
	if vendorID == uuid.Nil {
		return "", shared.NewValidationError("Vendor ID is required")
	}
	return poNumber, nil
}

// Revise changes the number and vendor of an open order.
// Once goods are received the vendor is fixed by the receipts.
func (p *PurchaseOrder) Revise(poNumber string, vendorID uuid.UUID) error {
	if p.Status != PurchaseOrderStatusOpen {
		return shared.NewInvalidStateError("Only an open purchase order can be edited")
	}
	poNumber, err := validatePurchaseOrder(poNumber, vendorID)
	if err != nil {
		return err
	}
	p.PONumber = poNumber
	p.VendorID = vendorID
	p.IncrementVersion()
	p.Touch()
	return nil
}

// ChangeStatus moves the order between OPEN and CANCELLED.
// GOODS_VALIDATED is only reached through a goods receipt and is final.
func (p *PurchaseOrder) ChangeStatus(target PurchaseOrderStatus) error {
	if !target.IsValid() {
		return shared.NewValidationError("Invalid purchase order status")
	}
	if target == p.Status {
		return nil
	}
	switch {
	case target == PurchaseOrderStatusGoodsValidated:
		return shared.NewInvalidStateError("Goods are validated by posting a goods receipt")
	case p.Status == PurchaseOrderStatusGoodsValidated:
		return shared.NewInvalidStateError("Purchase order already has goods received")
	}
	p.Status = target
	p.IncrementVersion()
	p.Touch()
	return nil
}

// MarkGoodsValidated records that goods were received against the order
func (p *PurchaseOrder) MarkGoodsValidated() error {
	if p.Status == PurchaseOrderStatusCancelled {
		return shared.NewInvalidStateError("Cannot receive goods against a cancelled purchase order")
	}
	if p.Status != PurchaseOrderStatusGoodsValidated {
		p.Status = PurchaseOrderStatusGoodsValidated
		p.IncrementVersion()
		p.Touch()
	}
	return nil
}
