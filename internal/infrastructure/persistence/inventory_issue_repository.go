package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryIssueRepository implements InventoryIssueRepository using GORM
type GormInventoryIssueRepository struct {
	db *gorm.DB
}

// NewGormInventoryIssueRepository creates a new GormInventoryIssueRepository
func NewGormInventoryIssueRepository(db *gorm.DB) *GormInventoryIssueRepository {
	return &GormInventoryIssueRepository{db: db}
}

// Create stores an issue together with its lines
func (r *GormInventoryIssueRepository) Create(ctx context.Context, issue *trade.InventoryIssue) error {
	return r.db.WithContext(ctx).Create(models.InventoryIssueModelFromDomain(issue)).Error
}

// FindByID loads an issue with its lines
func (r *GormInventoryIssueRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.InventoryIssue, error) {
	var model models.InventoryIssueModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderedLines).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks whether the issue number is taken
func (r *GormInventoryIssueRepository) ExistsByNumber(ctx context.Context, issueNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryIssueModel{}).
		Where("issue_number = ?", issueNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns issues with their lines, newest first
func (r *GormInventoryIssueRepository) List(ctx context.Context, filter shared.Filter) ([]trade.InventoryIssue, int64, error) {
	query := withinDates(r.db.WithContext(ctx).Model(&models.InventoryIssueModel{}), "issue_date", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.InventoryIssueModel
	if err := paginate(query, filter).
		Preload("Lines", orderedLines).
		Order("issue_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]trade.InventoryIssue, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// GormInventoryAdjustmentRepository implements InventoryAdjustmentRepository using GORM
type GormInventoryAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormInventoryAdjustmentRepository creates a new GormInventoryAdjustmentRepository
func NewGormInventoryAdjustmentRepository(db *gorm.DB) *GormInventoryAdjustmentRepository {
	return &GormInventoryAdjustmentRepository{db: db}
}

// Append stores adjustment audit rows
func (r *GormInventoryAdjustmentRepository) Append(ctx context.Context, adjustments []trade.InventoryAdjustment) error {
	if len(adjustments) == 0 {
		return nil
	}
	rows := make([]*models.InventoryAdjustmentModel, len(adjustments))
	for i := range adjustments {
		rows[i] = models.InventoryAdjustmentModelFromDomain(&adjustments[i])
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListByBatch returns the adjustments submitted together
func (r *GormInventoryAdjustmentRepository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]trade.InventoryAdjustment, error) {
	var rows []models.InventoryAdjustmentModel
	if err := r.db.WithContext(ctx).
		Where("batch_id = ?", batchID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return adjustmentsToDomain(rows), nil
}

// ListByPosition returns the adjustments of one position, newest first
func (r *GormInventoryAdjustmentRepository) ListByPosition(ctx context.Context, productID, locationID uuid.UUID, filter shared.Filter) ([]trade.InventoryAdjustment, int64, error) {
	query := withinDates(
		r.db.WithContext(ctx).Model(&models.InventoryAdjustmentModel{}).
			Where("product_id = ? AND location_id = ?", productID, locationID),
		"adjustment_date", filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.InventoryAdjustmentModel
	if err := paginate(query, filter).
		Order("adjustment_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return adjustmentsToDomain(rows), total, nil
}

func adjustmentsToDomain(rows []models.InventoryAdjustmentModel) []trade.InventoryAdjustment {
	out := make([]trade.InventoryAdjustment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure the GORM repositories implement the domain interfaces
var (
	_ trade.InventoryIssueRepository      = (*GormInventoryIssueRepository)(nil)
	_ trade.InventoryAdjustmentRepository = (*GormInventoryAdjustmentRepository)(nil)
)
