package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGoodsReceiptRepository implements GoodsReceiptRepository using GORM
type GormGoodsReceiptRepository struct {
	db *gorm.DB
}

// NewGormGoodsReceiptRepository creates a new GormGoodsReceiptRepository
func NewGormGoodsReceiptRepository(db *gorm.DB) *GormGoodsReceiptRepository {
	return &GormGoodsReceiptRepository{db: db}
}

// FindByID loads a GRN with its lines
func (r *GormGoodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.GoodsReceipt, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads a GRN with its lines and locks the header row
func (r *GormGoodsReceiptRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.GoodsReceipt, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), id)
}

func (r *GormGoodsReceiptRepository) find(query *gorm.DB, id uuid.UUID) (*trade.GoodsReceipt, error) {
	var model models.GoodsReceiptModel
	if err := query.Preload("Lines", orderedLines).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks whether another GRN uses the number
func (r *GormGoodsReceiptRepository) ExistsByNumber(ctx context.Context, grnNumber string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.GoodsReceiptModel{}).
		Where("grn_number = ? AND id <> ?", grnNumber, excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts or updates the header and applies the line writes
func (r *GormGoodsReceiptRepository) Save(ctx context.Context, grn *trade.GoodsReceipt, writes trade.LineWrites, isNew bool) error {
	tx := r.db.WithContext(ctx)
	header := models.GoodsReceiptModelFromDomain(grn)
	if isNew {
		if err := tx.Omit("Lines").Create(header).Error; err != nil {
			return err
		}
	} else {
		result := tx.Model(&models.GoodsReceiptModel{}).
			Where("id = ?", grn.ID).
			Updates(map[string]any{
				"grn_number":        header.GRNNumber,
				"purchase_order_id": header.PurchaseOrderID,
				"vendor_id":         header.VendorID,
				"location_id":       header.LocationID,
				"receipt_date":      header.ReceiptDate,
				"remarks":           header.Remarks,
				"updated_by":        header.UpdatedBy,
				"updated_at":        header.UpdatedAt,
				"version":           gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}

	ids := make([]uuid.UUID, len(grn.Lines))
	for i, l := range grn.Lines {
		ids[i] = l.ID
	}
	return applyLineWrites(tx, writes, &models.GoodsReceiptLineModel{}, ids, func(i int) any {
		return models.GoodsReceiptLineModelFromDomain(&grn.Lines[i], i)
	})
}

// List returns GRNs with their lines, newest first
func (r *GormGoodsReceiptRepository) List(ctx context.Context, filter shared.Filter) ([]trade.GoodsReceipt, int64, error) {
	query := withinDates(r.db.WithContext(ctx).Model(&models.GoodsReceiptModel{}), "receipt_date", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.GoodsReceiptModel
	if err := paginate(query, filter).
		Preload("Lines", orderedLines).
		Order("receipt_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]trade.GoodsReceipt, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormGoodsReceiptRepository implements GoodsReceiptRepository
var _ trade.GoodsReceiptRepository = (*GormGoodsReceiptRepository)(nil)
