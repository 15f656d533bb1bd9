package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRecordRepository implements PaymentRecordRepository using GORM
type GormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewGormPaymentRecordRepository creates a new GormPaymentRecordRepository
func NewGormPaymentRecordRepository(db *gorm.DB) *GormPaymentRecordRepository {
	return &GormPaymentRecordRepository{db: db}
}

// ListByDocument lists the payments of a document, oldest first
func (r *GormPaymentRecordRepository) ListByDocument(ctx context.Context, doc finance.DocumentRef) ([]finance.PaymentRecord, error) {
	var rows []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("document_type = ? AND document_id = ?", string(doc.Type), doc.ID).
		Order("payment_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.PaymentRecord, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindByID finds a payment by ID
func (r *GormPaymentRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.PaymentRecord, error) {
	var model models.PaymentRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Insert stores a new payment
func (r *GormPaymentRecordRepository) Insert(ctx context.Context, payment *finance.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(models.PaymentRecordModelFromDomain(payment)).Error
}

// Update replaces the editable fields of a payment
func (r *GormPaymentRecordRepository) Update(ctx context.Context, payment *finance.PaymentRecord) error {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentRecordModel{}).
		Where("id = ?", payment.ID).
		Updates(map[string]any{
			"payment_date": payment.PaymentDate,
			"amount":       payment.Amount,
			"mode":         string(payment.Mode),
			"bank_id":      payment.BankID,
			"reference":    payment.Reference,
			"notes":        payment.Notes,
			"updated_by":   payment.UpdatedBy,
			"updated_at":   payment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByIDs removes payments
func (r *GormPaymentRecordRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.PaymentRecordModel{}).Error
}

// GormPartyPaymentRepository implements PartyPaymentRepository using GORM
type GormPartyPaymentRepository struct {
	db *gorm.DB
}

// NewGormPartyPaymentRepository creates a new GormPartyPaymentRepository
func NewGormPartyPaymentRepository(db *gorm.DB) *GormPartyPaymentRepository {
	return &GormPartyPaymentRepository{db: db}
}

// Create stores a new party payment
func (r *GormPartyPaymentRepository) Create(ctx context.Context, payment *finance.PartyPayment) error {
	return r.db.WithContext(ctx).Create(models.PartyPaymentModelFromDomain(payment)).Error
}

// FindByIDForUpdate finds a payment and locks its row
func (r *GormPartyPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.PartyPayment, error) {
	var model models.PartyPaymentModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// MarkDeleted persists the deleted flags of a live payment
func (r *GormPartyPaymentRepository) MarkDeleted(ctx context.Context, payment *finance.PartyPayment) error {
	result := r.db.WithContext(ctx).
		Model(&models.PartyPaymentModel{}).
		Where("id = ? AND is_deleted = ?", payment.ID, false).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": payment.DeletedAt,
			"deleted_by": payment.DeletedBy,
			"updated_at": payment.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Payment not found or already deleted")
	}
	return nil
}

// ListByParty lists live payments with a party, newest first
func (r *GormPartyPaymentRepository) ListByParty(ctx context.Context, partyType finance.PartyType, partyID uuid.UUID, filter shared.Filter) ([]finance.PartyPayment, int64, error) {
	query := withinDates(
		r.db.WithContext(ctx).Model(&models.PartyPaymentModel{}).
			Where("party_type = ? AND party_id = ? AND is_deleted = ?", string(partyType), partyID, false),
		"payment_date", filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PartyPaymentModel
	if err := paginate(query, filter).
		Order("payment_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]finance.PartyPayment, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// GormPartyDiscountRepository implements PartyDiscountRepository using GORM
type GormPartyDiscountRepository struct {
	db *gorm.DB
}

// NewGormPartyDiscountRepository creates a new GormPartyDiscountRepository
func NewGormPartyDiscountRepository(db *gorm.DB) *GormPartyDiscountRepository {
	return &GormPartyDiscountRepository{db: db}
}

// Create stores a new party discount
func (r *GormPartyDiscountRepository) Create(ctx context.Context, discount *finance.PartyDiscount) error {
	return r.db.WithContext(ctx).Create(models.PartyDiscountModelFromDomain(discount)).Error
}

// FindByIDForUpdate finds a discount and locks its row
func (r *GormPartyDiscountRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.PartyDiscount, error) {
	var model models.PartyDiscountModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// MarkDeleted persists the deleted flags of a live discount
func (r *GormPartyDiscountRepository) MarkDeleted(ctx context.Context, discount *finance.PartyDiscount) error {
	result := r.db.WithContext(ctx).
		Model(&models.PartyDiscountModel{}).
		Where("id = ? AND is_deleted = ?", discount.ID, false).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": discount.DeletedAt,
			"deleted_by": discount.DeletedBy,
			"updated_at": discount.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Discount not found or already deleted")
	}
	return nil
}

// ListByParty lists live discounts of a party, newest first
func (r *GormPartyDiscountRepository) ListByParty(ctx context.Context, partyType finance.DiscountParty, partyID uuid.UUID, filter shared.Filter) ([]finance.PartyDiscount, int64, error) {
	query := withinDates(
		r.db.WithContext(ctx).Model(&models.PartyDiscountModel{}).
			Where("party_type = ? AND party_id = ? AND is_deleted = ?", string(partyType), partyID, false),
		"discount_date", filter,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PartyDiscountModel
	if err := paginate(query, filter).
		Order("discount_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]finance.PartyDiscount, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Ensure the GORM repositories implement the domain interfaces
var (
	_ finance.PaymentRecordRepository = (*GormPaymentRecordRepository)(nil)
	_ finance.PartyPaymentRepository  = (*GormPartyPaymentRepository)(nil)
	_ finance.PartyDiscountRepository = (*GormPartyDiscountRepository)(nil)
)
