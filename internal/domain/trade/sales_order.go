package trade

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a sales order
type OrderStatus string

const (
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	return s == OrderStatusConfirmed || s == OrderStatusCancelled
}

// SalesOrderLine represents a line item in a sales order
type SalesOrderLine struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Discount      decimal.Decimal
	TaxAmount     decimal.Decimal
	LineTotal     decimal.Decimal // Quantity * UnitPrice - Discount + TaxAmount
	UOM           string
	BatchNo       string
	SerialTracked bool
	SerialNumbers []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SalesOrderLineInput is an incoming sales order line
type SalesOrderLineInput struct {
	StockLineInput
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	TaxAmount decimal.Decimal
	UOM       string
	BatchNo   string
}

// SalesOrderHeader holds the editable header fields of a sales order
type SalesOrderHeader struct {
	OrderCode  string
	OrderDate  time.Time
	CustomerID *uuid.UUID
	LocationID uuid.UUID
	Remarks    string
}

func (h SalesOrderHeader) validate() error {
	if strings.TrimSpace(h.OrderCode) == "" {
		return shared.NewValidationError("Sales order code is required")
	}
	if h.LocationID == uuid.Nil {
		return shared.NewValidationError("Sales point location is required")
	}
	if h.OrderDate.IsZero() {
		return shared.NewValidationError("Order date is required")
	}
	return nil
}

// SalesOrder is a confirmed customer order whose lines hold stock at the sales point location
type SalesOrder struct {
	shared.BaseAggregateRoot
	OrderCode          string
	OrderDate          time.Time
	CustomerID         *uuid.UUID
	LocationID         uuid.UUID
	Status             OrderStatus
	PaymentStatus      finance.PaymentStatus
	Subtotal           decimal.Decimal
	DiscountAmount     decimal.Decimal
	TaxAmount          decimal.Decimal
	GrandTotal         decimal.Decimal
	GrandTotalRounded  decimal.Decimal
	Remarks            string
	CancellationReason string
	CancelledAt        *time.Time
	CancelledBy        *uuid.UUID
	CreatedBy          *uuid.UUID
	UpdatedBy          *uuid.UUID
	Lines              []SalesOrderLine
}

// NewSalesOrder creates a confirmed, unpaid order. The returned revision lists every line as added.
func NewSalesOrder(id uuid.UUID, header SalesOrderHeader, lines []SalesOrderLineInput, actor *uuid.UUID) (*SalesOrder, Revision, error) {
	o := &SalesOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		Status:            OrderStatusConfirmed,
		PaymentStatus:     finance.PaymentStatusUnpaid,
		CreatedBy:         actor,
	}
	rev, err := o.Revise(header, lines, actor)
	if err != nil {
		return nil, Revision{}, err
	}
	return o, rev, nil
}

// Revise replaces the header and lines of the order.
// Lines are matched by ID; the revision holds only the lines that actually changed.
func (o *SalesOrder) Revise(header SalesOrderHeader, inputs []SalesOrderLineInput, actor *uuid.UUID) (Revision, error) {
	if o.Status == OrderStatusCancelled {
		return Revision{}, shared.NewInvalidStateError("Cancelled sales order cannot be edited")
	}
	if err := header.validate(); err != nil {
		return Revision{}, err
	}
	if len(inputs) == 0 {
		return Revision{}, shared.NewValidationError("Sales order must have at least one line")
	}

	existing := make(map[uuid.UUID]SalesOrderLine, len(o.Lines))
	existingIDs := make(map[uuid.UUID]struct{}, len(o.Lines))
	for _, l := range o.Lines {
		existing[l.ID] = l
		existingIDs[l.ID] = struct{}{}
	}
	stockInputs := make([]StockLineInput, len(inputs))
	for i, in := range inputs {
		stockInputs[i] = in.StockLineInput
	}
	resolved, err := resolveLineIDs(existingIDs, stockInputs)
	if err != nil {
		return Revision{}, err
	}

	now := time.Now()
	lines := make([]SalesOrderLine, len(inputs))
	for i, in := range inputs {
		if in.UnitPrice.IsNegative() {
			return Revision{}, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
		}
		if in.Discount.IsNegative() || in.TaxAmount.IsNegative() {
			return Revision{}, shared.NewValidationError("Discount and tax cannot be negative")
		}
		s := resolved[i]
		line := SalesOrderLine{
			ID:            s.ID,
			OrderID:       o.ID,
			ProductID:     s.ProductID,
			Quantity:      s.Quantity,
			UnitPrice:     in.UnitPrice,
			Discount:      in.Discount,
			TaxAmount:     in.TaxAmount,
			UOM:           strings.TrimSpace(in.UOM),
			BatchNo:       strings.TrimSpace(in.BatchNo),
			SerialTracked: s.SerialTracked,
			SerialNumbers: s.SerialNumbers,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		line.LineTotal = line.Quantity.Mul(line.UnitPrice).Sub(line.Discount).Add(line.TaxAmount).Round(2)
		if line.LineTotal.IsNegative() {
			return Revision{}, shared.NewValidationError("Line discount exceeds line amount")
		}
		if prev, ok := existing[line.ID]; ok {
			line.CreatedAt = prev.CreatedAt
			if sameSalesLine(prev, line) {
				line.UpdatedAt = prev.UpdatedAt
			}
		}
		lines[i] = line
	}

	current := salesFootprints(header.LocationID, lines)
	if err := checkSerialsUnique(current); err != nil {
		return Revision{}, err
	}
	previousFootprints := o.Footprints()
	previousLines := o.Lines

	o.OrderCode = strings.TrimSpace(header.OrderCode)
	o.OrderDate = header.OrderDate
	o.CustomerID = header.CustomerID
	o.LocationID = header.LocationID
	o.Remarks = strings.TrimSpace(header.Remarks)
	o.Lines = lines
	o.UpdatedBy = actor
	o.recalculateTotals()
	o.Touch()

	return Revision{
		Changes: DiffFootprints(previousFootprints, current),
		Writes: planWrites(previousLines, lines,
			func(l SalesOrderLine) uuid.UUID { return l.ID }, sameSalesLine),
	}, nil
}

func sameSalesLine(a, b SalesOrderLine) bool {
	return a.ProductID == b.ProductID &&
		a.Quantity.Equal(b.Quantity) &&
		a.UnitPrice.Equal(b.UnitPrice) &&
		a.Discount.Equal(b.Discount) &&
		a.TaxAmount.Equal(b.TaxAmount) &&
		a.UOM == b.UOM &&
		a.BatchNo == b.BatchNo &&
		a.SerialTracked == b.SerialTracked &&
		sameSerials(a.SerialNumbers, b.SerialNumbers)
}

func (o *SalesOrder) recalculateTotals() {
	subtotal, discount, tax, grand := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	for _, l := range o.Lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
		discount = discount.Add(l.Discount)
		tax = tax.Add(l.TaxAmount)
		grand = grand.Add(l.LineTotal)
	}
	o.Subtotal = subtotal.Round(2)
	o.DiscountAmount = discount.Round(2)
	o.TaxAmount = tax.Round(2)
	o.GrandTotal = grand.Round(2)
	o.GrandTotalRounded = grand.Round(0)
}

// Footprints returns the stock held by each line at the order's location
func (o *SalesOrder) Footprints() []LineFootprint {
	return salesFootprints(o.LocationID, o.Lines)
}

func salesFootprints(locationID uuid.UUID, lines []SalesOrderLine) []LineFootprint {
	out := make([]LineFootprint, len(lines))
	for i, l := range lines {
		out[i] = LineFootprint{
			LineID:        l.ID,
			ProductID:     l.ProductID,
			LocationID:    locationID,
			Quantity:      l.Quantity,
			SerialTracked: l.SerialTracked,
			Serials:       l.SerialNumbers,
		}
	}
	return out
}

// Cancel marks the order cancelled and returns the footprints to credit back
func (o *SalesOrder) Cancel(reason string, actor *uuid.UUID) ([]LineFootprint, error) {
	if o.Status == OrderStatusCancelled {
		return nil, shared.NewInvalidStateError("Sales order is already cancelled")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewValidationError("Cancellation reason is required")
	}
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancellationReason = reason
	o.CancelledAt = &now
	o.CancelledBy = actor
	o.UpdatedBy = actor
	o.Touch()
	return o.Footprints(), nil
}

// PayableTotal is the amount payments are reconciled against
func (o *SalesOrder) PayableTotal() decimal.Decimal {
	return o.GrandTotalRounded
}

// SetPaymentStatus records a recomputed payment status
func (o *SalesOrder) SetPaymentStatus(status finance.PaymentStatus) {
	o.PaymentStatus = status
}

// Reference returns the provenance reference used on stock movements
func (o *SalesOrder) Reference() string {
	return "SO-" + o.OrderCode
}
