package ledger

import (
	"context"
	"sort"

	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Flow tells which way stock moves when a document line holds it
type Flow int

const (
	// Outbound documents (sales orders, issues) consume stock they hold
	Outbound Flow = iota
	// Inbound documents (goods receipts) supply stock they hold
	Inbound
)

type serialSets struct {
	held     map[string]struct{}
	released map[string]struct{}
}

// ApplyLineChanges turns line differences of one document into stock movements
// and serial transitions. source identifies the document; each stock movement
// additionally carries the line that caused it.
//
// Serials moved between lines at the same position cancel out, and within a
// position credits and releases run before debits and reservations.
func (b *Books) ApplyLineChanges(ctx context.Context, changes []trade.LineChange, flow Flow, source inventory.SourceRef, actor *uuid.UUID) error {
	var deltas []StockDelta
	serials := make(map[inventory.PositionKey]*serialSets)

	hold := func(f *trade.LineFootprint, qty decimal.Decimal, add, drop []string) {
		if !qty.IsZero() {
			src := source
			lineID := f.LineID
			src.LineID = &lineID
			signed := qty
			if flow == Outbound {
				signed = qty.Neg()
			}
			deltas = append(deltas, StockDelta{
				ProductID:  f.ProductID,
				LocationID: f.LocationID,
				Quantity:   signed,
				Source:     src,
				Operator:   actor,
			})
		}
		if !f.SerialTracked || (len(add) == 0 && len(drop) == 0) {
			return
		}
		set, ok := serials[f.Key()]
		if !ok {
			set = &serialSets{held: map[string]struct{}{}, released: map[string]struct{}{}}
			serials[f.Key()] = set
		}
		for _, s := range drop {
			if _, ok := set.held[s]; ok {
				delete(set.held, s)
				continue
			}
			set.released[s] = struct{}{}
		}
		for _, s := range add {
			if _, ok := set.released[s]; ok {
				delete(set.released, s)
				continue
			}
			set.held[s] = struct{}{}
		}
	}

	for _, c := range changes {
		switch c.Kind {
		case trade.LineAdded:
			hold(c.Current, c.Current.Quantity, c.Current.Serials, nil)
		case trade.LineRemoved:
			hold(c.Previous, c.Previous.Quantity.Neg(), nil, c.Previous.Serials)
		case trade.LineChanged:
			hold(c.Current, c.QuantityDelta, c.SerialsAdded, c.SerialsRemoved)
		case trade.LineReplaced:
			hold(c.Previous, c.Previous.Quantity.Neg(), nil, c.Previous.Serials)
			hold(c.Current, c.Current.Quantity, c.Current.Serials, nil)
		}
	}

	if err := b.Stock.ApplyAll(ctx, deltas); err != nil {
		return err
	}

	keys := make([]inventory.PositionKey, 0, len(serials))
	for k := range serials {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	for _, k := range keys {
		set := serials[k]
		if err := b.releaseHeld(ctx, k, sortedSet(set.released), flow, source, actor); err != nil {
			return err
		}
		if err := b.takeHeld(ctx, k, sortedSet(set.held), flow, source, actor); err != nil {
			return err
		}
	}
	return nil
}

// takeHeld records that the document now holds serials
func (b *Books) takeHeld(ctx context.Context, k inventory.PositionKey, serials []string, flow Flow, source inventory.SourceRef, actor *uuid.UUID) error {
	if len(serials) == 0 {
		return nil
	}
	if flow == Inbound {
		_, err := b.Serials.Add(ctx, k.ProductID, k.LocationID, serials, source, actor)
		return err
	}
	return b.Serials.Reserve(ctx, k.ProductID, k.LocationID, serials, source, actor)
}

// releaseHeld records that the document no longer holds serials
func (b *Books) releaseHeld(ctx context.Context, k inventory.PositionKey, serials []string, flow Flow, source inventory.SourceRef, actor *uuid.UUID) error {
	if len(serials) == 0 {
		return nil
	}
	if flow == Inbound {
		// units a receipt no longer brings in leave stock
		return b.Serials.Reserve(ctx, k.ProductID, k.LocationID, serials, source, actor)
	}
	return b.Serials.Release(ctx, k.ProductID, k.LocationID, serials, source, actor)
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Acquire describes a document newly holding every footprint
func Acquire(footprints []trade.LineFootprint) []trade.LineChange {
	changes := make([]trade.LineChange, len(footprints))
	for i := range footprints {
		f := footprints[i]
		changes[i] = trade.LineChange{LineID: f.LineID, Kind: trade.LineAdded, Current: &f}
	}
	return changes
}

// Relinquish describes a document giving up every footprint
func Relinquish(footprints []trade.LineFootprint) []trade.LineChange {
	changes := make([]trade.LineChange, len(footprints))
	for i := range footprints {
		f := footprints[i]
		changes[i] = trade.LineChange{LineID: f.LineID, Kind: trade.LineRemoved, Previous: &f}
	}
	return changes
}
