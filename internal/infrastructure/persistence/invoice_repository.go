package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID, deleted or not
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an invoice and locks its row
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByNumber checks whether a live invoice of the vendor uses the number
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, vendorID uuid.UUID, invoiceNumber string, excludeID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("vendor_id = ? AND invoice_number = ? AND id <> ? AND is_deleted = ?", vendorID, invoiceNumber, excludeID, false).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create stores a new invoice
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *trade.Invoice) error {
	return r.db.WithContext(ctx).Create(models.InvoiceModelFromDomain(invoice)).Error
}

// Update persists every field of a locked invoice
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *trade.Invoice) error {
	m := models.InvoiceModelFromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ?", invoice.ID).
		Updates(map[string]any{
			"invoice_number":    m.InvoiceNumber,
			"purchase_order_id": m.PurchaseOrderID,
			"vendor_id":         m.VendorID,
			"invoice_date":      m.InvoiceDate,
			"invoice_amount":    m.InvoiceAmount,
			"cgst_amount":       m.CGSTAmount,
			"sgst_amount":       m.SGSTAmount,
			"igst_amount":       m.IGSTAmount,
			"total_tax_amount":  m.TotalTaxAmount,
			"total_amount":      m.TotalAmount,
			"remarks":           m.Remarks,
			"payment_status":    m.PaymentStatus,
			"updated_by":        m.UpdatedBy,
			"updated_at":        m.UpdatedAt,
			"is_deleted":        m.IsDeleted,
			"deleted_at":        m.DeletedAt,
			"deleted_by":        m.DeletedBy,
			"version":           gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// List returns live invoices, optionally of one vendor, newest first
func (r *GormInvoiceRepository) List(ctx context.Context, vendorID *uuid.UUID, filter shared.Filter) ([]trade.Invoice, int64, error) {
	query := withinDates(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).Where("is_deleted = ?", false),
		"invoice_date", filter,
	)
	if vendorID != nil {
		query = query.Where("vendor_id = ?", *vendorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.InvoiceModel
	if err := paginate(query, filter).
		Order("invoice_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]trade.Invoice, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ trade.InvoiceRepository = (*GormInvoiceRepository)(nil)
