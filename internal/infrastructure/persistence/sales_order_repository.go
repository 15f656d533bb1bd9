package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesOrderRepository implements SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID loads an order with its lines
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.find(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate loads an order with its lines and locks the header row
func (r *GormSalesOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SalesOrder, error) {
	return r.find(r.db.WithContext(ctx).Clauses(forUpdate), id)
}

func (r *GormSalesOrderRepository) find(query *gorm.DB, id uuid.UUID) (*trade.SalesOrder, error) {
	var model models.SalesOrderModel
	if err := query.Preload("Lines", orderedLines).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByCode checks whether another order uses the code
func (r *GormSalesOrderRepository) ExistsByCode(ctx context.Context, orderCode string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Where("order_code = ? AND id <> ?", orderCode, excludeID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save inserts or updates the header and applies the line writes
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder, writes trade.LineWrites, isNew bool) error {
	tx := r.db.WithContext(ctx)
	header := models.SalesOrderModelFromDomain(order)
	if isNew {
		if err := tx.Omit("Lines").Create(header).Error; err != nil {
			return err
		}
	} else {
		result := tx.Model(&models.SalesOrderModel{}).
			Where("id = ?", order.ID).
			Updates(map[string]any{
				"order_code":          header.OrderCode,
				"order_date":          header.OrderDate,
				"customer_id":         header.CustomerID,
				"location_id":         header.LocationID,
				"payment_status":      header.PaymentStatus,
				"subtotal":            header.Subtotal,
				"discount_amount":     header.DiscountAmount,
				"tax_amount":          header.TaxAmount,
				"grand_total":         header.GrandTotal,
				"grand_total_rounded": header.GrandTotalRounded,
				"remarks":             header.Remarks,
				"updated_by":          header.UpdatedBy,
				"updated_at":          header.UpdatedAt,
				"version":             gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
	}

	ids := make([]uuid.UUID, len(order.Lines))
	for i, l := range order.Lines {
		ids[i] = l.ID
	}
	return applyLineWrites(tx, writes, &models.SalesOrderLineModel{}, ids, func(i int) any {
		return models.SalesOrderLineModelFromDomain(&order.Lines[i], i)
	})
}

// UpdateStatus persists status, cancellation, and payment status fields only
func (r *GormSalesOrderRepository) UpdateStatus(ctx context.Context, order *trade.SalesOrder) error {
	result := r.db.WithContext(ctx).
		Model(&models.SalesOrderModel{}).
		Where("id = ?", order.ID).
		Updates(map[string]any{
			"status":              string(order.Status),
			"payment_status":      string(order.PaymentStatus),
			"cancellation_reason": order.CancellationReason,
			"cancelled_at":        order.CancelledAt,
			"cancelled_by":        order.CancelledBy,
			"updated_by":          order.UpdatedBy,
			"updated_at":          order.UpdatedAt,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns orders with their lines, newest first
func (r *GormSalesOrderRepository) List(ctx context.Context, filter shared.Filter) ([]trade.SalesOrder, int64, error) {
	query := withinDates(r.db.WithContext(ctx).Model(&models.SalesOrderModel{}), "order_date", filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.SalesOrderModel
	if err := paginate(query, filter).
		Preload("Lines", orderedLines).
		Order("order_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]trade.SalesOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormSalesOrderRepository implements SalesOrderRepository
var _ trade.SalesOrderRepository = (*GormSalesOrderRepository)(nil)
