package inventory

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementSource is the kind of document that caused a stock movement
type MovementSource string

const (
	// MovementSourceGoodsReceipt is a GRN receipt or a correction of one
	MovementSourceGoodsReceipt MovementSource = "GOODS_RECEIPT"
	// MovementSourceInventoryIssue is an internal issue of stock
	MovementSourceInventoryIssue MovementSource = "INVENTORY_ISSUE"
	// MovementSourceAdjustment is a manual signed adjustment
	MovementSourceAdjustment MovementSource = "INVENTORY_ADJUSTMENT"
	// MovementSourceSalesOrder is a sales fulfillment or an edit of one
	MovementSourceSalesOrder MovementSource = "SALES_ORDER"
	// MovementSourceSalesOrderCancel is the credit back of a cancelled sales order
	MovementSourceSalesOrderCancel MovementSource = "SALES_ORDER_CANCEL"
)

// String returns the string representation of MovementSource
func (s MovementSource) String() string {
	return string(s)
}

// IsValid returns true if the source is known
func (s MovementSource) IsValid() bool {
	switch s {
	case MovementSourceGoodsReceipt,
		MovementSourceInventoryIssue,
		MovementSourceAdjustment,
		MovementSourceSalesOrder,
		MovementSourceSalesOrderCancel:
		return true
	}
	return false
}

// SourceRef points at the document, and optionally the line, that caused a change
type SourceRef struct {
	Type      MovementSource
	ID        uuid.UUID
	LineID    *uuid.UUID
	Reference string
}

// StockMovement is an immutable record of one signed change to a stock position.
// Corrections are new movements; rows are never updated.
type StockMovement struct {
	ID            uuid.UUID
	PositionID    uuid.UUID
	ProductID     uuid.UUID
	LocationID    uuid.UUID
	Quantity      decimal.Decimal // signed
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	SourceType    MovementSource
	SourceID      uuid.UUID
	SourceLineID  *uuid.UUID
	Reference     string
	OperatorID    *uuid.UUID
	CreatedAt     time.Time
}

// NewStockMovement creates a movement for a change already applied to position
func NewStockMovement(
	position *StockPosition,
	quantity decimal.Decimal,
	balanceBefore decimal.Decimal,
	balanceAfter decimal.Decimal,
	source SourceRef,
	operatorID *uuid.UUID,
) (*StockMovement, error) {
	if position == nil {
		return nil, shared.NewDomainError("INVALID_POSITION", "Stock position cannot be nil")
	}
	if quantity.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Movement quantity cannot be zero")
	}
	if !source.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE_TYPE", "Invalid movement source")
	}
	if source.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SOURCE_ID", "Source ID cannot be empty")
	}
	if !balanceBefore.Add(quantity).Equal(balanceAfter) {
		return nil, shared.NewDomainError("INVALID_BALANCE", "Balance after must equal balance before plus quantity")
	}

	return &StockMovement{
		ID:            uuid.New(),
		PositionID:    position.ID,
		ProductID:     position.ProductID,
		LocationID:    position.LocationID,
		Quantity:      quantity,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		SourceType:    source.Type,
		SourceID:      source.ID,
		SourceLineID:  source.LineID,
		Reference:     source.Reference,
		OperatorID:    operatorID,
		CreatedAt:     time.Now(),
	}, nil
}

// IsCredit returns true if the movement increased stock
func (m *StockMovement) IsCredit() bool {
	return m.Quantity.IsPositive()
}
