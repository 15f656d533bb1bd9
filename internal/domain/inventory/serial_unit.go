package inventory

import (
	"sort"
	"strings"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SerialStatus is the lifecycle state of a serial unit
type SerialStatus string

const (
	SerialStatusInStock    SerialStatus = "in_stock"
	SerialStatusOutOfStock SerialStatus = "out_of_stock"
)

// IsValid returns true if the status is known
func (s SerialStatus) IsValid() bool {
	return s == SerialStatusInStock || s == SerialStatusOutOfStock
}

// SerialUnit is one individually tracked physical item.
// Units are never deleted; stock movements flip their status.
type SerialUnit struct {
	shared.BaseEntity
	ProductID      uuid.UUID
	LocationID     uuid.UUID
	SerialNumber   string
	Status         SerialStatus
	LastSourceType MovementSource
	LastSourceID   *uuid.UUID
	UpdatedBy      *uuid.UUID
}

// NewSerialUnit creates an in-stock unit
func NewSerialUnit(productID, locationID uuid.UUID, serialNumber string, source SourceRef, actor *uuid.UUID) (*SerialUnit, error) {
	serialNumber = strings.TrimSpace(serialNumber)
	if serialNumber == "" {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Serial number cannot be empty")
	}
	if productID == uuid.Nil || locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SERIAL", "Serial unit requires product and location")
	}
	var sourceID *uuid.UUID
	if source.ID != uuid.Nil {
		id := source.ID
		sourceID = &id
	}
	return &SerialUnit{
		BaseEntity:     shared.NewBaseEntity(),
		ProductID:      productID,
		LocationID:     locationID,
		SerialNumber:   serialNumber,
		Status:         SerialStatusInStock,
		LastSourceType: source.Type,
		LastSourceID:   sourceID,
		UpdatedBy:      actor,
	}, nil
}

// IsAvailable returns true if the unit can be sold or issued
func (u *SerialUnit) IsAvailable() bool {
	return u.Status == SerialStatusInStock
}

// NormalizeSerials trims serial numbers and rejects blanks and duplicates.
// The returned slice keeps the caller's order.
func NormalizeSerials(serials []string) ([]string, error) {
	seen := make(map[string]struct{}, len(serials))
	out := make([]string, 0, len(serials))
	for _, s := range serials {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, shared.NewValidationError("Serial number cannot be empty")
		}
		if _, ok := seen[s]; ok {
			return nil, shared.NewValidationError("Duplicate serial number: " + s)
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out, nil
}

// ValidateSerialCount checks that a serial-tracked quantity is whole and
// matches the number of serials supplied.
func ValidateSerialCount(quantity decimal.Decimal, serials []string) error {
	if !quantity.Equal(quantity.Truncate(0)) {
		return shared.NewValidationError("Serial tracked quantity must be a whole number")
	}
	if !quantity.Abs().Equal(decimal.NewFromInt(int64(len(serials)))) {
		return shared.NewValidationError("Number of serial numbers must match quantity")
	}
	return nil
}

// DiffSerials returns the serials present only in next (added) and only in prev (removed).
// Both results are sorted.
func DiffSerials(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, s := range prev {
		prevSet[s] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, s := range next {
		nextSet[s] = struct{}{}
		if _, ok := prevSet[s]; !ok {
			added = append(added, s)
		}
	}
	for _, s := range prev {
		if _, ok := nextSet[s]; !ok {
			removed = append(removed, s)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

// MissingSerials returns the requested serials that are not present among available.
func MissingSerials(requested []string, available []SerialUnit) []string {
	ok := make(map[string]struct{}, len(available))
	for _, u := range available {
		ok[u.SerialNumber] = struct{}{}
	}
	var missing []string
	for _, s := range requested {
		if _, found := ok[s]; !found {
			missing = append(missing, s)
		}
	}
	sort.Strings(missing)
	return missing
}
