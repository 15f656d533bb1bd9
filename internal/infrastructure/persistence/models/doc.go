// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Key Principles:
// 1. Domain entities should be free of GORM tags and infrastructure concerns
// 2. Persistence models contain all GORM annotations and table mappings
// 3. Repositories use persistence models for database operations
//
// Structure:
// - base.go: Base persistence models (BaseModel, AggregateModel)
// - inventory.go: Stock positions, the movement log, serial units
// - finance.go: Ledger entries and balances, bank accounts, payments, party discounts
// - trade.go: Purchase orders, GRNs, issues, adjustments, sales orders, invoices
// - serial_list.go: Serial number column type
package models

// All returns every persistence model, in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&StockPositionModel{},
		&StockMovementModel{},
		&SerialUnitModel{},
		&BankAccountModel{},
		&LedgerBalanceModel{},
		&LedgerEntryModel{},
		&PaymentRecordModel{},
		&PartyPaymentModel{},
		&PartyDiscountModel{},
		&PurchaseOrderModel{},
		&GoodsReceiptModel{},
		&GoodsReceiptLineModel{},
		&InventoryIssueModel{},
		&InventoryIssueLineModel{},
		&InventoryAdjustmentModel{},
		&SalesOrderModel{},
		&SalesOrderLineModel{},
		&InvoiceModel{},
	}
}
