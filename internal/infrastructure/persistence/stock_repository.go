package persistence

import (
	"context"
	"time"

	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockPositionRepository implements StockPositionRepository using GORM
type GormStockPositionRepository struct {
	db *gorm.DB
}

// NewGormStockPositionRepository creates a new GormStockPositionRepository
func NewGormStockPositionRepository(db *gorm.DB) *GormStockPositionRepository {
	return &GormStockPositionRepository{db: db}
}

// FindByKey finds a position without locking it
func (r *GormStockPositionRepository) FindByKey(ctx context.Context, productID, locationID uuid.UUID) (*inventory.StockPosition, error) {
	return r.find(r.db.WithContext(ctx), productID, locationID)
}

// FindByKeyForUpdate finds a position and locks its row
func (r *GormStockPositionRepository) FindByKeyForUpdate(ctx context.Context, productID, locationID uuid.UUID) (*inventory.StockPosition, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), productID, locationID)
}

func (r *GormStockPositionRepository) find(query *gorm.DB, productID, locationID uuid.UUID) (*inventory.StockPosition, error) {
	var model models.StockPositionModel
	if err := query.
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&model).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a position unless one already exists for the key
func (r *GormStockPositionRepository) Create(ctx context.Context, position *inventory.StockPosition) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}},
			DoNothing: true,
		}).
		Create(models.StockPositionModelFromDomain(position))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update persists quantity and last movement of a locked position
func (r *GormStockPositionRepository) Update(ctx context.Context, position *inventory.StockPosition) error {
	result := r.db.WithContext(ctx).
		Model(&models.StockPositionModel{}).
		Where("id = ?", position.ID).
		Updates(map[string]any{
			"quantity":         position.Quantity,
			"last_movement_id": position.LastMovementID,
			"version":          position.Version,
			"updated_at":       position.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns positions, optionally restricted to a product or location
func (r *GormStockPositionRepository) List(ctx context.Context, filter inventory.PositionFilter) ([]inventory.StockPosition, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StockPositionModel{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.LocationID != nil {
		query = query.Where("location_id = ?", *filter.LocationID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockPositionModel
	if err := paginate(query, filter.Filter).
		Order("product_id, location_id").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	positions := make([]inventory.StockPosition, len(rows))
	for i := range rows {
		positions[i] = *rows[i].ToDomain()
	}
	return positions, total, nil
}

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Append stores a new movement
func (r *GormStockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(models.StockMovementModelFromDomain(movement)).Error
}

// ListByPosition returns movements of a position, newest first
func (r *GormStockMovementRepository) ListByPosition(ctx context.Context, productID, locationID uuid.UUID, filter shared.Filter) ([]inventory.StockMovement, int64, error) {
	query := withinDates(
		r.db.WithContext(ctx).Model(&models.StockMovementModel{}).
			Where("product_id = ? AND location_id = ?", productID, locationID),
		"created_at", filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockMovementModel
	if err := paginate(query, filter).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return movementsToDomain(rows), total, nil
}

// ListBySource returns every movement caused by a document, oldest first
func (r *GormStockMovementRepository) ListBySource(ctx context.Context, sourceType inventory.MovementSource, sourceID uuid.UUID) ([]inventory.StockMovement, error) {
	var rows []models.StockMovementModel
	if err := r.db.WithContext(ctx).
		Where("source_type = ? AND source_id = ?", string(sourceType), sourceID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return movementsToDomain(rows), nil
}

func movementsToDomain(rows []models.StockMovementModel) []inventory.StockMovement {
	out := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormSerialUnitRepository implements SerialUnitRepository using GORM
type GormSerialUnitRepository struct {
	db *gorm.DB
}

// NewGormSerialUnitRepository creates a new GormSerialUnitRepository
func NewGormSerialUnitRepository(db *gorm.DB) *GormSerialUnitRepository {
	return &GormSerialUnitRepository{db: db}
}

// InsertIgnoringDuplicates inserts units, skipping any whose natural key exists
func (r *GormSerialUnitRepository) InsertIgnoringDuplicates(ctx context.Context, units []inventory.SerialUnit) (int64, error) {
	if len(units) == 0 {
		return 0, nil
	}
	rows := make([]*models.SerialUnitModel, len(units))
	for i := range units {
		rows[i] = models.SerialUnitModelFromDomain(&units[i])
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}, {Name: "location_id"}, {Name: "serial_number"}},
			DoNothing: true,
		}).
		Create(&rows)
	return result.RowsAffected, result.Error
}

// Transition applies a conditional status change and returns the number of rows changed
func (r *GormSerialUnitRepository) Transition(ctx context.Context, t inventory.SerialTransition) (int64, error) {
	if len(t.Serials) == 0 {
		return 0, nil
	}
	query := r.db.WithContext(ctx).
		Model(&models.SerialUnitModel{}).
		Where("product_id = ? AND location_id = ? AND serial_number IN ?", t.ProductID, t.LocationID, t.Serials)
	if t.From != nil {
		query = query.Where("status = ?", string(*t.From))
	}

	var sourceID *uuid.UUID
	if t.Source.ID != uuid.Nil {
		id := t.Source.ID
		sourceID = &id
	}
	result := query.Updates(map[string]any{
		"status":           string(t.To),
		"last_source_type": string(t.Source.Type),
		"last_source_id":   sourceID,
		"updated_by":       t.Actor,
		"updated_at":       time.Now(),
	})
	return result.RowsAffected, result.Error
}

// FindBySerials returns the units of a product at a location with the given serial numbers
func (r *GormSerialUnitRepository) FindBySerials(ctx context.Context, productID, locationID uuid.UUID, serials []string, status *inventory.SerialStatus) ([]inventory.SerialUnit, error) {
	if len(serials) == 0 {
		return nil, nil
	}
	query := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ? AND serial_number IN ?", productID, locationID, serials)
	return r.find(query, status)
}

// List returns the units of a product at a location
func (r *GormSerialUnitRepository) List(ctx context.Context, productID, locationID uuid.UUID, status *inventory.SerialStatus) ([]inventory.SerialUnit, error) {
	query := r.db.WithContext(ctx).
		Where("product_id = ? AND location_id = ?", productID, locationID)
	return r.find(query, status)
}

func (r *GormSerialUnitRepository) find(query *gorm.DB, status *inventory.SerialStatus) ([]inventory.SerialUnit, error) {
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	var rows []models.SerialUnitModel
	if err := query.Order("serial_number").Find(&rows).Error; err != nil {
		return nil, err
	}
	units := make([]inventory.SerialUnit, len(rows))
	for i := range rows {
		units[i] = *rows[i].ToDomain()
	}
	return units, nil
}

// Ensure the GORM repositories implement the domain interfaces
var (
	_ inventory.StockPositionRepository = (*GormStockPositionRepository)(nil)
	_ inventory.StockMovementRepository = (*GormStockMovementRepository)(nil)
	_ inventory.SerialUnitRepository    = (*GormSerialUnitRepository)(nil)
)
