package trade

import (
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineFootprint is the stock a document line holds: a quantity of one product at
// one location, plus the serial units it names when the product is serial tracked.
type LineFootprint struct {
	LineID        uuid.UUID
	ProductID     uuid.UUID
	LocationID    uuid.UUID
	Quantity      decimal.Decimal
	SerialTracked bool
	Serials       []string
}

// Key returns the stock position the line touches
func (f LineFootprint) Key() inventory.PositionKey {
	return inventory.PositionKey{ProductID: f.ProductID, LocationID: f.LocationID}
}

// LineChangeKind classifies how a line differs between two revisions of a document
type LineChangeKind string

const (
	LineAdded    LineChangeKind = "ADDED"
	LineRemoved  LineChangeKind = "REMOVED"
	LineChanged  LineChangeKind = "CHANGED"
	LineReplaced LineChangeKind = "REPLACED"
)

// LineChange is the stock relevant difference of one line.
// For LineChanged, QuantityDelta is current minus previous and the serial slices
// hold what was added and dropped. For the other kinds the full footprints apply.
type LineChange struct {
	LineID         uuid.UUID
	Kind           LineChangeKind
	Previous       *LineFootprint
	Current        *LineFootprint
	QuantityDelta  decimal.Decimal
	SerialsAdded   []string
	SerialsRemoved []string
}

// DiffFootprints compares two revisions of a document's lines by line ID.
// Lines whose product, location, quantity, and serials are unchanged are omitted,
// so only true deltas reach the stock and serial ledgers.
// A line that moved to another product or location is reported as REPLACED.
func DiffFootprints(previous, current []LineFootprint) []LineChange {
	prevByID := make(map[uuid.UUID]LineFootprint, len(previous))
	for _, f := range previous {
		prevByID[f.LineID] = f
	}
	seen := make(map[uuid.UUID]struct{}, len(current))

	var changes []LineChange
	for i := range current {
		cur := current[i]
		seen[cur.LineID] = struct{}{}
		prev, ok := prevByID[cur.LineID]
		if !ok {
			changes = append(changes, LineChange{LineID: cur.LineID, Kind: LineAdded, Current: &cur})
			continue
		}
		if prev.Key() != cur.Key() || prev.SerialTracked != cur.SerialTracked {
			p := prev
			changes = append(changes, LineChange{LineID: cur.LineID, Kind: LineReplaced, Previous: &p, Current: &cur})
			continue
		}
		delta := cur.Quantity.Sub(prev.Quantity)
		added, removed := inventory.DiffSerials(prev.Serials, cur.Serials)
		if delta.IsZero() && len(added) == 0 && len(removed) == 0 {
			continue
		}
		p := prev
		changes = append(changes, LineChange{
			LineID:         cur.LineID,
			Kind:           LineChanged,
			Previous:       &p,
			Current:        &cur,
			QuantityDelta:  delta,
			SerialsAdded:   added,
			SerialsRemoved: removed,
		})
	}
	for i := range previous {
		prev := previous[i]
		if _, ok := seen[prev.LineID]; ok {
			continue
		}
		changes = append(changes, LineChange{LineID: prev.LineID, Kind: LineRemoved, Previous: &prev})
	}
	return changes
}
