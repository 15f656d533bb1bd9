package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormLedgerEntryRepository implements LedgerEntryRepository using GORM
type GormLedgerEntryRepository struct {
	db *gorm.DB
}

// NewGormLedgerEntryRepository creates a new GormLedgerEntryRepository
func NewGormLedgerEntryRepository(db *gorm.DB) *GormLedgerEntryRepository {
	return &GormLedgerEntryRepository{db: db}
}

// Append stores a new entry
func (r *GormLedgerEntryRepository) Append(ctx context.Context, entry *finance.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(models.LedgerEntryModelFromDomain(entry)).Error
}

// FindByID finds an entry by ID
func (r *GormLedgerEntryRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an entry and locks its row
func (r *GormLedgerEntryRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.LedgerEntry, error) {
	var model models.LedgerEntryModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// MarkDeleted persists the deleted flags of an entry.
// Only a live row is flagged, so a concurrent delete cannot be applied twice.
func (r *GormLedgerEntryRepository) MarkDeleted(ctx context.Context, entry *finance.LedgerEntry) error {
	result := r.db.WithContext(ctx).
		Model(&models.LedgerEntryModel{}).
		Where("id = ? AND is_deleted = ?", entry.ID, false).
		Updates(map[string]any{
			"is_deleted": true,
			"deleted_at": entry.DeletedAt,
			"deleted_by": entry.DeletedBy,
			"updated_at": entry.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Ledger entry not found or already deleted")
	}
	return nil
}

// ListByAccount lists entries of a ledger, newest first
func (r *GormLedgerEntryRepository) ListByAccount(ctx context.Context, accountKey string, filter finance.EntryFilter) ([]finance.LedgerEntry, int64, error) {
	query := withinDates(
		r.db.WithContext(ctx).Model(&models.LedgerEntryModel{}).Where("account_key = ?", accountKey),
		"entry_date", filter.Filter,
	)
	if !filter.IncludeDeleted {
		query = query.Where("is_deleted = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.LedgerEntryModel
	if err := paginate(query, filter.Filter).
		Order("entry_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return entriesToDomain(rows), total, nil
}

// ListLiveByPayment lists the non-deleted entries caused by a payment
func (r *GormLedgerEntryRepository) ListLiveByPayment(ctx context.Context, paymentID uuid.UUID) ([]finance.LedgerEntry, error) {
	var rows []models.LedgerEntryModel
	if err := r.db.WithContext(ctx).
		Where("payment_id = ? AND is_deleted = ?", paymentID, false).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return entriesToDomain(rows), nil
}

func entriesToDomain(rows []models.LedgerEntryModel) []finance.LedgerEntry {
	out := make([]finance.LedgerEntry, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormLedgerBalanceRepository implements LedgerBalanceRepository using GORM
type GormLedgerBalanceRepository struct {
	db *gorm.DB
}

// NewGormLedgerBalanceRepository creates a new GormLedgerBalanceRepository
func NewGormLedgerBalanceRepository(db *gorm.DB) *GormLedgerBalanceRepository {
	return &GormLedgerBalanceRepository{db: db}
}

// FindByAccount finds the balance row of a ledger without locking it
func (r *GormLedgerBalanceRepository) FindByAccount(ctx context.Context, accountKey string) (*finance.LedgerBalance, error) {
	var model models.LedgerBalanceModel
	if err := r.db.WithContext(ctx).First(&model, "account_key = ?", accountKey).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// FindByAccountForUpdate finds the balance row of a ledger and locks it
func (r *GormLedgerBalanceRepository) FindByAccountForUpdate(ctx context.Context, accountKey string) (*finance.LedgerBalance, error) {
	var model models.LedgerBalanceModel
	if err := r.db.WithContext(ctx).Clauses(forUpdate).First(&model, "account_key = ?", accountKey).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// Create inserts a balance row unless one already exists for the account
func (r *GormLedgerBalanceRepository) Create(ctx context.Context, balance *finance.LedgerBalance) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_key"}},
			DoNothing: true,
		}).
		Create(models.LedgerBalanceModelFromDomain(balance))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Update persists a locked balance row
func (r *GormLedgerBalanceRepository) Update(ctx context.Context, balance *finance.LedgerBalance) error {
	result := r.db.WithContext(ctx).
		Model(&models.LedgerBalanceModel{}).
		Where("id = ?", balance.ID).
		Updates(map[string]any{
			"current_balance": balance.CurrentBalance,
			"last_entry_id":   balance.LastEntryID,
			"version":         balance.Version,
			"updated_at":      balance.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListByChannel returns all balance rows of a channel
func (r *GormLedgerBalanceRepository) ListByChannel(ctx context.Context, channel finance.Channel) ([]finance.LedgerBalance, error) {
	var rows []models.LedgerBalanceModel
	if err := r.db.WithContext(ctx).
		Where("channel = ?", string(channel)).
		Order("account_key").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.LedgerBalance, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// GormBankAccountRepository implements BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// Create stores a new bank account
func (r *GormBankAccountRepository) Create(ctx context.Context, bank *finance.BankAccount) error {
	return r.db.WithContext(ctx).Create(models.BankAccountModelFromDomain(bank)).Error
}

// FindByID finds a bank account by ID
func (r *GormBankAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.BankAccount, error) {
	var model models.BankAccountModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return model.ToDomain(), nil
}

// ExistsByAccountNumber checks whether an account number is taken
func (r *GormBankAccountRepository) ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BankAccountModel{}).
		Where("account_number = ?", accountNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// List returns bank accounts ordered by name
func (r *GormBankAccountRepository) List(ctx context.Context, activeOnly bool) ([]finance.BankAccount, error) {
	query := r.db.WithContext(ctx).Model(&models.BankAccountModel{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.BankAccountModel
	if err := query.Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]finance.BankAccount, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Ensure the GORM repositories implement the domain interfaces
var (
	_ finance.LedgerEntryRepository   = (*GormLedgerEntryRepository)(nil)
	_ finance.LedgerBalanceRepository = (*GormLedgerBalanceRepository)(nil)
	_ finance.BankAccountRepository   = (*GormBankAccountRepository)(nil)
)
