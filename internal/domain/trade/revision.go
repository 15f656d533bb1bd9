package trade

import "github.com/google/uuid"

// LineWrites lists the line rows a revision inserts, updates, and deletes.
// Lines not listed are left untouched in storage.
type LineWrites struct {
	Inserted []uuid.UUID
	Updated  []uuid.UUID
	Deleted  []uuid.UUID
}

// IsEmpty returns true if the revision writes no line rows
func (w LineWrites) IsEmpty() bool {
	return len(w.Inserted) == 0 && len(w.Updated) == 0 && len(w.Deleted) == 0
}

// Revision is the outcome of revising a document's lines: the stock relevant
// changes to post and the row writes to persist.
type Revision struct {
	Changes []LineChange
	Writes  LineWrites
}

// planWrites classifies line IDs by comparing two revisions with same.
func planWrites[T any](previous, current []T, idOf func(T) uuid.UUID, same func(a, b T) bool) LineWrites {
	prevByID := make(map[uuid.UUID]T, len(previous))
	for _, l := range previous {
		prevByID[idOf(l)] = l
	}
	var w LineWrites
	kept := make(map[uuid.UUID]struct{}, len(current))
	for _, l := range current {
		id := idOf(l)
		kept[id] = struct{}{}
		prev, ok := prevByID[id]
		switch {
		case !ok:
			w.Inserted = append(w.Inserted, id)
		case !same(prev, l):
			w.Updated = append(w.Updated, id)
		}
	}
	for _, l := range previous {
		if _, ok := kept[idOf(l)]; !ok {
			w.Deleted = append(w.Deleted, idOf(l))
		}
	}
	return w
}

func sameSerials(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
