package inventory

import (
	"fmt"
	"strings"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InsufficientStockError is returned when a debit would drive a stock position negative.
// It matches shared.ErrInsufficientStock under errors.Is and *shared.DomainError under errors.As.
type InsufficientStockError struct {
	*shared.DomainError
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Requested  decimal.Decimal
	Available  decimal.Decimal
}

// NewInsufficientStockError creates an InsufficientStockError for the given position
func NewInsufficientStockError(productID, locationID uuid.UUID, requested, available decimal.Decimal) *InsufficientStockError {
	msg := fmt.Sprintf("Insufficient stock for product %s at location %s: requested %s, available %s",
		productID, locationID, requested.String(), available.String())
	return &InsufficientStockError{
		DomainError: shared.NewDomainError(shared.CodeInsufficientStock, msg),
		ProductID:   productID,
		LocationID:  locationID,
		Requested:   requested,
		Available:   available,
	}
}

// Unwrap exposes the underlying DomainError
func (e *InsufficientStockError) Unwrap() error {
	return e.DomainError
}

// Details returns the context a caller needs to correct and resubmit
func (e *InsufficientStockError) Details() map[string]any {
	return map[string]any{
		"product_id":  e.ProductID.String(),
		"location_id": e.LocationID.String(),
		"requested":   e.Requested.String(),
		"available":   e.Available.String(),
	}
}

// SerialUnavailableError is returned when one or more named serial units
// could not be transitioned because they are missing or in the wrong status.
type SerialUnavailableError struct {
	*shared.DomainError
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Serials    []string
}

// NewSerialUnavailableError creates a SerialUnavailableError listing the offending serials
func NewSerialUnavailableError(productID, locationID uuid.UUID, serials []string) *SerialUnavailableError {
	msg := fmt.Sprintf("Some serial numbers are not available for product %s at location %s: %s",
		productID, locationID, strings.Join(serials, ", "))
	return &SerialUnavailableError{
		DomainError: shared.NewDomainError(shared.CodeSerialUnavailable, msg),
		ProductID:   productID,
		LocationID:  locationID,
		Serials:     serials,
	}
}

// Unwrap exposes the underlying DomainError
func (e *SerialUnavailableError) Unwrap() error {
	return e.DomainError
}

// Details returns the context a caller needs to correct and resubmit
func (e *SerialUnavailableError) Details() map[string]any {
	return map[string]any{
		"product_id":  e.ProductID.String(),
		"location_id": e.LocationID.String(),
		"serials":     e.Serials,
	}
}
