package models

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockPositionModel is the persistence model for the StockPosition aggregate root.
type StockPositionModel struct {
	AggregateModel
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_position_key,priority:1"`
	LocationID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_position_key,priority:2;index"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastMovementID *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (StockPositionModel) TableName() string {
	return "stock_positions"
}

// ToDomain converts the persistence model to a domain StockPosition
func (m *StockPositionModel) ToDomain() *inventory.StockPosition {
	return &inventory.StockPosition{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ProductID:         m.ProductID,
		LocationID:        m.LocationID,
		Quantity:          m.Quantity,
		LastMovementID:    m.LastMovementID,
	}
}

// FromDomain populates the persistence model from a domain StockPosition
func (m *StockPositionModel) FromDomain(p *inventory.StockPosition) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.ProductID = p.ProductID
	m.LocationID = p.LocationID
	m.Quantity = p.Quantity
	m.LastMovementID = p.LastMovementID
}

// StockPositionModelFromDomain creates a new persistence model from a domain StockPosition
func StockPositionModelFromDomain(p *inventory.StockPosition) *StockPositionModel {
	m := &StockPositionModel{}
	m.FromDomain(p)
	return m
}

// StockMovementModel is the persistence model for the append-only movement log.
type StockMovementModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	PositionID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_position,priority:1"`
	LocationID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_position,priority:2"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceBefore decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	BalanceAfter  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SourceType    string          `gorm:"type:varchar(30);not null;index:idx_stock_movement_source,priority:1"`
	SourceID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_stock_movement_source,priority:2"`
	SourceLineID  *uuid.UUID      `gorm:"type:uuid"`
	Reference     string          `gorm:"type:varchar(255)"`
	OperatorID    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt     time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		ID:            m.ID,
		PositionID:    m.PositionID,
		ProductID:     m.ProductID,
		LocationID:    m.LocationID,
		Quantity:      m.Quantity,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		SourceType:    inventory.MovementSource(m.SourceType),
		SourceID:      m.SourceID,
		SourceLineID:  m.SourceLineID,
		Reference:     m.Reference,
		OperatorID:    m.OperatorID,
		CreatedAt:     m.CreatedAt,
	}
}

// StockMovementModelFromDomain creates a new persistence model from a domain StockMovement
func StockMovementModelFromDomain(mv *inventory.StockMovement) *StockMovementModel {
	return &StockMovementModel{
		ID:            mv.ID,
		PositionID:    mv.PositionID,
		ProductID:     mv.ProductID,
		LocationID:    mv.LocationID,
		Quantity:      mv.Quantity,
		BalanceBefore: mv.BalanceBefore,
		BalanceAfter:  mv.BalanceAfter,
		SourceType:    string(mv.SourceType),
		SourceID:      mv.SourceID,
		SourceLineID:  mv.SourceLineID,
		Reference:     mv.Reference,
		OperatorID:    mv.OperatorID,
		CreatedAt:     mv.CreatedAt,
	}
}

// SerialUnitModel is the persistence model for a serial unit.
// The natural key is (product, location, serial number).
type SerialUnitModel struct {
	BaseModel
	ProductID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_serial_unit_key,priority:1"`
	LocationID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_serial_unit_key,priority:2"`
	SerialNumber   string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_serial_unit_key,priority:3"`
	Status         string     `gorm:"type:varchar(20);not null;index"`
	LastSourceType string     `gorm:"type:varchar(30)"`
	LastSourceID   *uuid.UUID `gorm:"type:uuid"`
	UpdatedBy      *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (SerialUnitModel) TableName() string {
	return "serial_units"
}

// ToDomain converts the persistence model to a domain SerialUnit
func (m *SerialUnitModel) ToDomain() *inventory.SerialUnit {
	return &inventory.SerialUnit{
		BaseEntity:     m.BaseModel.ToDomain(),
		ProductID:      m.ProductID,
		LocationID:     m.LocationID,
		SerialNumber:   m.SerialNumber,
		Status:         inventory.SerialStatus(m.Status),
		LastSourceType: inventory.MovementSource(m.LastSourceType),
		LastSourceID:   m.LastSourceID,
		UpdatedBy:      m.UpdatedBy,
	}
}

// SerialUnitModelFromDomain creates a new persistence model from a domain SerialUnit
func SerialUnitModelFromDomain(u *inventory.SerialUnit) *SerialUnitModel {
	m := &SerialUnitModel{
		ProductID:      u.ProductID,
		LocationID:     u.LocationID,
		SerialNumber:   u.SerialNumber,
		Status:         string(u.Status),
		LastSourceType: string(u.LastSourceType),
		LastSourceID:   u.LastSourceID,
		UpdatedBy:      u.UpdatedBy,
	}
	m.FromDomainBaseEntity(u.BaseEntity)
	return m
}

