package trade

import (
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLineInput is the stock part of an incoming document line.
// ID is empty for new lines and set to the stable line ID for existing ones.
type StockLineInput struct {
	ID            uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	SerialTracked bool
	SerialNumbers []string
}

// normalize validates the stock fields and cleans the serial list
func (in StockLineInput) normalize() (StockLineInput, error) {
	if in.ProductID == uuid.Nil {
		return in, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if !in.Quantity.IsPositive() {
		return in, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if !in.SerialTracked {
		if len(in.SerialNumbers) > 0 {
			return in, shared.NewValidationError("Serial numbers given for a product that is not serial tracked")
		}
		in.SerialNumbers = nil
		return in, nil
	}
	serials, err := inventory.NormalizeSerials(in.SerialNumbers)
	if err != nil {
		return in, err
	}
	if err := inventory.ValidateSerialCount(in.Quantity, serials); err != nil {
		return in, err
	}
	in.SerialNumbers = serials
	return in, nil
}

// resolveLineIDs checks that every incoming ID names an existing line exactly once
// and assigns new IDs to lines without one.
func resolveLineIDs(existing map[uuid.UUID]struct{}, inputs []StockLineInput) ([]StockLineInput, error) {
	used := make(map[uuid.UUID]struct{}, len(inputs))
	out := make([]StockLineInput, len(inputs))
	for i, in := range inputs {
		if in.ID == uuid.Nil {
			in.ID = uuid.New()
		} else {
			if _, ok := existing[in.ID]; !ok {
				return nil, shared.NewNotFoundError("Line " + in.ID.String() + " does not belong to this document")
			}
			if _, dup := used[in.ID]; dup {
				return nil, shared.NewValidationError("Line " + in.ID.String() + " appears more than once")
			}
		}
		used[in.ID] = struct{}{}
		normalized, err := in.normalize()
		if err != nil {
			return nil, err
		}
		out[i] = normalized
	}
	return out, nil
}

// checkSerialsUnique rejects a serial number named by two lines for the same product
func checkSerialsUnique(lines []LineFootprint) error {
	seen := make(map[inventory.PositionKey]map[string]struct{})
	for _, l := range lines {
		set, ok := seen[l.Key()]
		if !ok {
			set = make(map[string]struct{})
			seen[l.Key()] = set
		}
		for _, s := range l.Serials {
			if _, dup := set[s]; dup {
				return shared.NewValidationError("Serial number " + s + " is used on more than one line")
			}
			set[s] = struct{}{}
		}
	}
	return nil
}
