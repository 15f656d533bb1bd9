package trade

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryAdjustment is the audit row of one signed stock correction.
// Adjustments submitted together share a BatchID.
type InventoryAdjustment struct {
	shared.BaseEntity
	BatchID        uuid.UUID
	ProductID      uuid.UUID
	LocationID     uuid.UUID
	AdjustmentDate time.Time
	QuantityChange decimal.Decimal
	Reason         string
	AdjustedBy     *uuid.UUID
	SerialTracked  bool
	SerialsAdded   []string
	SerialsRemoved []string
}

// AdjustmentInput is one incoming adjustment
type AdjustmentInput struct {
	ProductID      uuid.UUID
	LocationID     uuid.UUID
	AdjustmentDate time.Time
	QuantityChange decimal.Decimal
	Reason         string
	SerialTracked  bool
	SerialsAdd     []string
	SerialsRemove  []string
}

// NewInventoryAdjustment validates an adjustment.
// For serial tracked products a positive change names the serials it adds and a
// negative change names the serials it removes, one per unit.
func NewInventoryAdjustment(batchID uuid.UUID, in AdjustmentInput, actor *uuid.UUID) (*InventoryAdjustment, error) {
	if in.ProductID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if in.LocationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}
	if in.QuantityChange.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity change cannot be zero")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, shared.NewValidationError("Adjustment reason is required")
	}
	if in.AdjustmentDate.IsZero() {
		in.AdjustmentDate = time.Now()
	}

	adj := &InventoryAdjustment{
		BaseEntity:     shared.NewBaseEntity(),
		BatchID:        batchID,
		ProductID:      in.ProductID,
		LocationID:     in.LocationID,
		AdjustmentDate: in.AdjustmentDate,
		QuantityChange: in.QuantityChange,
		Reason:         reason,
		AdjustedBy:     actor,
		SerialTracked:  in.SerialTracked,
	}
	if !in.SerialTracked {
		if len(in.SerialsAdd) > 0 || len(in.SerialsRemove) > 0 {
			return nil, shared.NewValidationError("Serial numbers given for a product that is not serial tracked")
		}
		return adj, nil
	}

	add, err := inventory.NormalizeSerials(in.SerialsAdd)
	if err != nil {
		return nil, err
	}
	remove, err := inventory.NormalizeSerials(in.SerialsRemove)
	if err != nil {
		return nil, err
	}
	if in.QuantityChange.IsPositive() {
		if len(remove) > 0 {
			return nil, shared.NewValidationError("A positive adjustment cannot remove serial numbers")
		}
		if err := inventory.ValidateSerialCount(in.QuantityChange, add); err != nil {
			return nil, err
		}
	} else {
		if len(add) > 0 {
			return nil, shared.NewValidationError("A negative adjustment cannot add serial numbers")
		}
		if err := inventory.ValidateSerialCount(in.QuantityChange, remove); err != nil {
			return nil, err
		}
	}
	adj.SerialsAdded = add
	adj.SerialsRemoved = remove
	return adj, nil
}

// Key returns the stock position the adjustment touches
func (a *InventoryAdjustment) Key() inventory.PositionKey {
	return inventory.PositionKey{ProductID: a.ProductID, LocationID: a.LocationID}
}

// Reference returns the provenance reference used on stock movements
func (a *InventoryAdjustment) Reference() string {
	return "ADJUSTMENT#" + a.Reason
}
