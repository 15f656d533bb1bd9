package inventory

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

// StockPositionRepository defines persistence for stock positions.
// Writers must hold the row lock taken by FindByKeyForUpdate before calling Update.
type StockPositionRepository interface {
	// FindByKey finds a position without locking it
	FindByKey(ctx context.Context, productID, locationID uuid.UUID) (*StockPosition, error)

	// FindByKeyForUpdate finds a position and locks its row until the transaction ends.
	// Returns shared.ErrNotFound if the position does not exist.
	FindByKeyForUpdate(ctx context.Context, productID, locationID uuid.UUID) (*StockPosition, error)

	// Create inserts a position if none exists for its key.
	// Returns false when another writer created the row first.
	Create(ctx context.Context, position *StockPosition) (bool, error)

	// Update persists quantity and last movement of a locked position
	Update(ctx context.Context, position *StockPosition) error

	// List returns positions, optionally restricted to a product or location
	List(ctx context.Context, filter PositionFilter) ([]StockPosition, int64, error)
}

// PositionFilter narrows a position listing
type PositionFilter struct {
	shared.Filter
	ProductID  *uuid.UUID
	LocationID *uuid.UUID
}

// StockMovementRepository defines the append-only movement log
type StockMovementRepository interface {
	// Append stores a new movement
	Append(ctx context.Context, movement *StockMovement) error

	// ListByPosition returns movements of a position, newest first
	ListByPosition(ctx context.Context, productID, locationID uuid.UUID, filter shared.Filter) ([]StockMovement, int64, error)

	// ListBySource returns every movement caused by a document, oldest first
	ListBySource(ctx context.Context, sourceType MovementSource, sourceID uuid.UUID) ([]StockMovement, error)
}

// SerialTransition describes a conditional status change for a set of serials
type SerialTransition struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Serials    []string
	// From restricts the change to units currently in this status. Nil matches any status.
	From   *SerialStatus
	To     SerialStatus
	Source SourceRef
	Actor  *uuid.UUID
}

// SerialUnitRepository defines persistence for serial units
type SerialUnitRepository interface {
	// InsertIgnoringDuplicates inserts units, skipping any whose natural key exists.
	// Returns the number of rows actually inserted.
	InsertIgnoringDuplicates(ctx context.Context, units []SerialUnit) (int64, error)

	// Transition applies a conditional status change and returns the number of rows changed
	Transition(ctx context.Context, t SerialTransition) (int64, error)

	// FindBySerials returns the units of a product at a location with the given serial numbers.
	// A nil status matches any status.
	FindBySerials(ctx context.Context, productID, locationID uuid.UUID, serials []string, status *SerialStatus) ([]SerialUnit, error)

	// List returns the units of a product at a location
	List(ctx context.Context, productID, locationID uuid.UUID, status *SerialStatus) ([]SerialUnit, error)
}
