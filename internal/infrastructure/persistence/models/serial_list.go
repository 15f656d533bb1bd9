package models

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// SerialList stores the serial numbers of a document line.
// Postgres keeps it as text[]; other dialects get the array literal as text.
type SerialList []string

// GormDataType returns the generic data type
func (SerialList) GormDataType() string {
	return "text[]"
}

// GormDBDataType returns the column type for the connected dialect
func (SerialList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Value implements driver.Valuer
func (s SerialList) Value() (driver.Value, error) {
	if s == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(s).Value()
}

// Scan implements sql.Scanner
func (s *SerialList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	if len(arr) == 0 {
		*s = nil
		return nil
	}
	*s = SerialList(arr)
	return nil
}
