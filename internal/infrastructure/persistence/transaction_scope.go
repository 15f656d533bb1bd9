package persistence

import (
	"context"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// It provides atomic execution of multiple repository operations.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos ledger.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{tx: tx})
	})
}

// gormRepositories hands out repositories bound to one transaction
type gormRepositories struct {
	tx *gorm.DB
}

func (r *gormRepositories) StockPositions() inventory.StockPositionRepository {
	return NewGormStockPositionRepository(r.tx)
}

func (r *gormRepositories) StockMovements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.tx)
}

func (r *gormRepositories) SerialUnits() inventory.SerialUnitRepository {
	return NewGormSerialUnitRepository(r.tx)
}

func (r *gormRepositories) LedgerEntries() finance.LedgerEntryRepository {
	return NewGormLedgerEntryRepository(r.tx)
}

func (r *gormRepositories) LedgerBalances() finance.LedgerBalanceRepository {
	return NewGormLedgerBalanceRepository(r.tx)
}

func (r *gormRepositories) BankAccounts() finance.BankAccountRepository {
	return NewGormBankAccountRepository(r.tx)
}

func (r *gormRepositories) PaymentRecords() finance.PaymentRecordRepository {
	return NewGormPaymentRecordRepository(r.tx)
}

func (r *gormRepositories) PartyPayments() finance.PartyPaymentRepository {
	return NewGormPartyPaymentRepository(r.tx)
}

func (r *gormRepositories) PartyDiscounts() finance.PartyDiscountRepository {
	return NewGormPartyDiscountRepository(r.tx)
}

func (r *gormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.tx)
}

func (r *gormRepositories) GoodsReceipts() trade.GoodsReceiptRepository {
	return NewGormGoodsReceiptRepository(r.tx)
}

func (r *gormRepositories) InventoryIssues() trade.InventoryIssueRepository {
	return NewGormInventoryIssueRepository(r.tx)
}

func (r *gormRepositories) InventoryAdjustments() trade.InventoryAdjustmentRepository {
	return NewGormInventoryAdjustmentRepository(r.tx)
}

func (r *gormRepositories) SalesOrders() trade.SalesOrderRepository {
	return NewGormSalesOrderRepository(r.tx)
}

func (r *gormRepositories) Invoices() trade.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ ledger.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements Repositories
var _ ledger.Repositories = (*gormRepositories)(nil)
