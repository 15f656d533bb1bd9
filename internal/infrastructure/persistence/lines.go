package persistence

import (
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// orderedLines preloads document lines in their submitted order
func orderedLines(db *gorm.DB) *gorm.DB {
	return db.Order("line_no ASC, created_at ASC")
}

// applyLineWrites writes only the line rows a revision touched.
// Deletes run first so a reused serial on a new line never meets its old row.
// lineModel builds the row for the line with the given ID at its slice position.
func applyLineWrites(tx *gorm.DB, writes trade.LineWrites, emptyModel any, ids []uuid.UUID, lineModel func(i int) any) error {
	if len(writes.Deleted) > 0 {
		if err := tx.Where("id IN ?", writes.Deleted).Delete(emptyModel).Error; err != nil {
			return err
		}
	}
	inserted := idSet(writes.Inserted)
	updated := idSet(writes.Updated)
	for i, id := range ids {
		switch {
		case inserted[id]:
			if err := tx.Create(lineModel(i)).Error; err != nil {
				return err
			}
		case updated[id]:
			if err := tx.Select("*").Omit("created_at").Updates(lineModel(i)).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func idSet(ids []uuid.UUID) map[uuid.UUID]bool {
	set := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
