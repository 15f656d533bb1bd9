package ledger

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/trade"
)

// TransactionScope runs a unit of work in one database transaction.
// Every document operation executes inside exactly one Execute call: if fn returns
// an error every statement issued since the scope began is rolled back, including
// stock, serial, and ledger side effects.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to all repositories within a transaction.
// All repositories returned share the same underlying database transaction.
type Repositories interface {
	StockPositions() inventory.StockPositionRepository
	StockMovements() inventory.StockMovementRepository
	SerialUnits() inventory.SerialUnitRepository

	LedgerEntries() finance.LedgerEntryRepository
	LedgerBalances() finance.LedgerBalanceRepository
	BankAccounts() finance.BankAccountRepository
	PaymentRecords() finance.PaymentRecordRepository
	PartyPayments() finance.PartyPaymentRepository
	PartyDiscounts() finance.PartyDiscountRepository

	PurchaseOrders() trade.PurchaseOrderRepository
	GoodsReceipts() trade.GoodsReceiptRepository
	InventoryIssues() trade.InventoryIssueRepository
	InventoryAdjustments() trade.InventoryAdjustmentRepository
	SalesOrders() trade.SalesOrderRepository
	Invoices() trade.InvoiceRepository
}
