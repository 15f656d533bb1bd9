package ledger

import (
	"context"
	"fmt"

	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/google/uuid"
)

// SerialRegistry owns the in_stock / out_of_stock lifecycle of serial units.
// Every call is scoped to one product at one location.
type SerialRegistry struct {
	units    inventory.SerialUnitRepository
	recorder Recorder
}

// Add registers serials as in_stock. Serials already registered for the
// product and location are skipped without error.
func (r *SerialRegistry) Add(ctx context.Context, productID, locationID uuid.UUID, serials []string, source inventory.SourceRef, actor *uuid.UUID) (int64, error) {
	if len(serials) == 0 {
		return 0, nil
	}
	units := make([]inventory.SerialUnit, 0, len(serials))
	for _, s := range serials {
		u, err := inventory.NewSerialUnit(productID, locationID, s, source, actor)
		if err != nil {
			return 0, err
		}
		units = append(units, *u)
	}
	n, err := r.units.InsertIgnoringDuplicates(ctx, units)
	if err != nil {
		return 0, fmt.Errorf("add serial units: %w", err)
	}
	return n, nil
}

// Reserve moves every named serial from in_stock to out_of_stock, or none of them.
// If any serial is missing or already out of stock the call fails with
// *inventory.SerialUnavailableError; the caller's rollback restores any row
// the conditional update had already flipped.
func (r *SerialRegistry) Reserve(ctx context.Context, productID, locationID uuid.UUID, serials []string, source inventory.SourceRef, actor *uuid.UUID) error {
	if len(serials) == 0 {
		return nil
	}
	inStock := inventory.SerialStatusInStock
	available, err := r.units.FindBySerials(ctx, productID, locationID, serials, &inStock)
	if err != nil {
		return fmt.Errorf("check serial units: %w", err)
	}
	if missing := inventory.MissingSerials(serials, available); len(missing) > 0 {
		r.recorder.SerialRejected(ctx)
		return inventory.NewSerialUnavailableError(productID, locationID, missing)
	}

	n, err := r.units.Transition(ctx, inventory.SerialTransition{
		ProductID:  productID,
		LocationID: locationID,
		Serials:    serials,
		From:       &inStock,
		To:         inventory.SerialStatusOutOfStock,
		Source:     source,
		Actor:      actor,
	})
	if err != nil {
		return fmt.Errorf("reserve serial units: %w", err)
	}
	if n != int64(len(serials)) {
		// A concurrent writer consumed a unit between the check and the update.
		r.recorder.SerialRejected(ctx)
		return inventory.NewSerialUnavailableError(productID, locationID, serials)
	}
	return nil
}

// Release moves named serials back to in_stock. Units already in stock are left alone.
func (r *SerialRegistry) Release(ctx context.Context, productID, locationID uuid.UUID, serials []string, source inventory.SourceRef, actor *uuid.UUID) error {
	if len(serials) == 0 {
		return nil
	}
	outOfStock := inventory.SerialStatusOutOfStock
	if _, err := r.units.Transition(ctx, inventory.SerialTransition{
		ProductID:  productID,
		LocationID: locationID,
		Serials:    serials,
		From:       &outOfStock,
		To:         inventory.SerialStatusInStock,
		Source:     source,
		Actor:      actor,
	}); err != nil {
		return fmt.Errorf("release serial units: %w", err)
	}
	return nil
}
