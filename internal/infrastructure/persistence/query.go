package persistence

import (
	"errors"

	"github.com/erp/ledgercore/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate locks the selected rows until the transaction ends.
// SQLite ignores the clause; Postgres emits SELECT ... FOR UPDATE.
var forUpdate = clause.Locking{Strength: "UPDATE"}

// notFound maps gorm's missing-row error to the domain error
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// withinDates restricts a query to column values inside the filter's date range.
// To names a calendar day, so the whole of that day is included.
func withinDates(query *gorm.DB, column string, filter shared.Filter) *gorm.DB {
	if filter.From != nil {
		query = query.Where(column+" >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where(column+" < ?", filter.To.AddDate(0, 0, 1))
	}
	return query
}

// paginate applies the filter's page window
func paginate(query *gorm.DB, filter shared.Filter) *gorm.DB {
	filter = filter.Normalize()
	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}
