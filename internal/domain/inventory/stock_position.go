package inventory

import (
	"bytes"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PositionKey identifies a stock position
type PositionKey struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
}

// Less orders keys by product then location. Batches of stock deltas are
// applied in this order so concurrent documents lock rows in the same sequence.
func (k PositionKey) Less(other PositionKey) bool {
	if c := bytes.Compare(k.ProductID[:], other.ProductID[:]); c != 0 {
		return c < 0
	}
	return bytes.Compare(k.LocationID[:], other.LocationID[:]) < 0
}

// StockPosition is the quantity on hand of one product at one location.
// Quantity is the materialized sum of its StockMovements and never negative.
type StockPosition struct {
	shared.BaseAggregateRoot
	ProductID      uuid.UUID
	LocationID     uuid.UUID
	Quantity       decimal.Decimal
	LastMovementID *uuid.UUID
}

// NewStockPosition creates an empty position for a product at a location
func NewStockPosition(productID, locationID uuid.UUID) (*StockPosition, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	return &StockPosition{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		LocationID:        locationID,
		Quantity:          decimal.Zero,
	}, nil
}

// Key returns the position key
func (p *StockPosition) Key() PositionKey {
	return PositionKey{ProductID: p.ProductID, LocationID: p.LocationID}
}

// CanDebit reports whether quantity can be removed without going negative
func (p *StockPosition) CanDebit(quantity decimal.Decimal) bool {
	return p.Quantity.GreaterThanOrEqual(quantity)
}

// ApplyDelta adds a signed quantity to the position and returns the balance
// before and after. A delta that would leave the position negative is rejected
// with an InsufficientStockError and the position is left unchanged.
func (p *StockPosition) ApplyDelta(delta decimal.Decimal) (before, after decimal.Decimal, err error) {
	before = p.Quantity
	after = before.Add(delta)
	if after.IsNegative() {
		return before, before, NewInsufficientStockError(p.ProductID, p.LocationID, delta.Neg(), before)
	}
	p.Quantity = after
	p.IncrementVersion()
	p.Touch()
	return before, after, nil
}

// RecordMovement links the position to the movement that last changed it
func (p *StockPosition) RecordMovement(movementID uuid.UUID) {
	id := movementID
	p.LastMovementID = &id
}
