package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// Create stores a new purchase order
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, po *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(models.PurchaseOrderModelFromDomain(po)).Error
}

// FindByID finds a purchase order by ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a purchase order and locks its row
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByNumber reports whether another purchase order uses poNumber
func (r *GormPurchaseOrderRepository) ExistsByNumber(ctx context.Context, poNumber string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("po_number = ? AND id <> ?", poNumber, excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update persists the editable fields of a purchase order
func (r *GormPurchaseOrderRepository) Update(ctx context.Context, po *trade.PurchaseOrder) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("id = ?", po.ID).
		Updates(map[string]any{
			"po_number":  po.PONumber,
			"vendor_id":  po.VendorID,
			"status":     string(po.Status),
			"version":    po.Version,
			"updated_at": po.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateStatus persists the status of a purchase order
func (r *GormPurchaseOrderRepository) UpdateStatus(ctx context.Context, po *trade.PurchaseOrder) error {
	result := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("id = ?", po.ID).
		Updates(map[string]any{
			"status":     string(po.Status),
			"version":    po.Version,
			"updated_at": po.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns purchase orders, newest first
func (r *GormPurchaseOrderRepository) List(ctx context.Context, vendorID *uuid.UUID, status *trade.PurchaseOrderStatus, filter shared.Filter) ([]trade.PurchaseOrder, int64, error) {
	query := withinDates(r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}), "created_at", filter)
	if vendorID != nil {
		query = query.Where("vendor_id = ?", *vendorID)
	}
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PurchaseOrderModel
	if err := paginate(query, filter).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]trade.PurchaseOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
