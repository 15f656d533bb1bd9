package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockDelta is one signed change to a stock position
type StockDelta struct {
	ProductID  uuid.UUID
	LocationID uuid.UUID
	Quantity   decimal.Decimal
	Source     inventory.SourceRef
	Operator   *uuid.UUID
}

// Key returns the stock position the delta touches
func (d StockDelta) Key() inventory.PositionKey {
	return inventory.PositionKey{ProductID: d.ProductID, LocationID: d.LocationID}
}

// StockLedger owns per (product, location) quantity on hand.
type StockLedger struct {
	positions inventory.StockPositionRepository
	movements inventory.StockMovementRepository
	recorder  Recorder
	logger    *zap.Logger
}

// ApplyDelta applies a signed quantity to a position and returns the new quantity.
//
// The position row is locked for the rest of the transaction before it is read,
// so concurrent debits of the same position serialize on the row lock and the
// availability check cannot race. A debit that would leave the position negative
// fails with *inventory.InsufficientStockError and writes nothing.
// A credit to a position that does not exist yet creates it.
func (l *StockLedger) ApplyDelta(ctx context.Context, d StockDelta) (decimal.Decimal, error) {
	if d.Quantity.IsZero() {
		pos, err := l.positions.FindByKey(ctx, d.ProductID, d.LocationID)
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, nil
		}
		if err != nil {
			return decimal.Zero, fmt.Errorf("read stock position: %w", err)
		}
		return pos.Quantity, nil
	}

	pos, err := l.lock(ctx, d)
	if err != nil {
		return decimal.Zero, err
	}

	before, after, err := pos.ApplyDelta(d.Quantity)
	if err != nil {
		l.recorder.StockRejected(ctx)
		l.logger.Debug("stock debit rejected",
			zap.String("product_id", d.ProductID.String()),
			zap.String("location_id", d.LocationID.String()),
			zap.String("requested", d.Quantity.Neg().String()),
			zap.String("available", before.String()),
		)
		return decimal.Zero, err
	}

	movement, err := inventory.NewStockMovement(pos, d.Quantity, before, after, d.Source, d.Operator)
	if err != nil {
		return decimal.Zero, err
	}
	if err := l.movements.Append(ctx, movement); err != nil {
		return decimal.Zero, fmt.Errorf("append stock movement: %w", err)
	}
	pos.RecordMovement(movement.ID)
	if err := l.positions.Update(ctx, pos); err != nil {
		return decimal.Zero, fmt.Errorf("update stock position: %w", err)
	}
	return after, nil
}

// lock returns the locked position for d, creating it for credits
func (l *StockLedger) lock(ctx context.Context, d StockDelta) (*inventory.StockPosition, error) {
	pos, err := l.positions.FindByKeyForUpdate(ctx, d.ProductID, d.LocationID)
	if err == nil {
		return pos, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("lock stock position: %w", err)
	}
	if d.Quantity.IsNegative() {
		l.recorder.StockRejected(ctx)
		return nil, inventory.NewInsufficientStockError(d.ProductID, d.LocationID, d.Quantity.Neg(), decimal.Zero)
	}

	pos, err = inventory.NewStockPosition(d.ProductID, d.LocationID)
	if err != nil {
		return nil, err
	}
	created, err := l.positions.Create(ctx, pos)
	if err != nil {
		return nil, fmt.Errorf("create stock position: %w", err)
	}
	if created {
		return pos, nil
	}
	// Another transaction created the row first; take its lock instead.
	pos, err = l.positions.FindByKeyForUpdate(ctx, d.ProductID, d.LocationID)
	if err != nil {
		return nil, fmt.Errorf("lock stock position: %w", err)
	}
	return pos, nil
}

// ApplyAll applies deltas in (product, location) order so that documents
// touching overlapping positions take row locks in the same sequence.
// The first failure stops the batch; the caller's transaction discards the rest.
func (l *StockLedger) ApplyAll(ctx context.Context, deltas []StockDelta) error {
	ordered := make([]StockDelta, len(deltas))
	copy(ordered, deltas)
	sort.SliceStable(ordered, func(i, j int) bool {
		ki, kj := ordered[i].Key(), ordered[j].Key()
		if ki != kj {
			return ki.Less(kj)
		}
		// credits first so a line moved within one position never dips below zero
		return ordered[i].Quantity.IsPositive() && !ordered[j].Quantity.IsPositive()
	})
	for _, d := range ordered {
		if _, err := l.ApplyDelta(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

// Available returns the quantity on hand without locking
func (l *StockLedger) Available(ctx context.Context, productID, locationID uuid.UUID) (decimal.Decimal, error) {
	pos, err := l.positions.FindByKey(ctx, productID, locationID)
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return pos.Quantity, nil
}
