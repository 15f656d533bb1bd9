package finance

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
)

// EntryFilter narrows a ledger entry listing
type EntryFilter struct {
	shared.Filter
	IncludeDeleted bool
}

// LedgerEntryRepository defines persistence for ledger entries.
// Entries are appended and only ever updated to set the deleted flags.
type LedgerEntryRepository interface {
	// Append stores a new entry
	Append(ctx context.Context, entry *LedgerEntry) error

	// FindByID finds an entry by ID
	FindByID(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// FindByIDForUpdate finds an entry and locks its row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*LedgerEntry, error)

	// MarkDeleted persists the deleted flags of an entry
	MarkDeleted(ctx context.Context, entry *LedgerEntry) error

	// ListByAccount lists entries of a ledger, newest first
	ListByAccount(ctx context.Context, accountKey string, filter EntryFilter) ([]LedgerEntry, int64, error)

	// ListLiveByPayment lists the non-deleted entries caused by a payment
	ListLiveByPayment(ctx context.Context, paymentID uuid.UUID) ([]LedgerEntry, error)
}

// LedgerBalanceRepository defines persistence for ledger balances
type LedgerBalanceRepository interface {
	// FindByAccount finds the balance row of a ledger without locking it
	FindByAccount(ctx context.Context, accountKey string) (*LedgerBalance, error)

	// FindByAccountForUpdate finds the balance row of a ledger and locks it.
	// Returns shared.ErrNotFound if the ledger has no balance row yet.
	FindByAccountForUpdate(ctx context.Context, accountKey string) (*LedgerBalance, error)

	// Create inserts a balance row if none exists for its account.
	// Returns false when another writer created the row first.
	Create(ctx context.Context, balance *LedgerBalance) (bool, error)

	// Update persists a locked balance row
	Update(ctx context.Context, balance *LedgerBalance) error

	// ListByChannel returns all balance rows of a channel
	ListByChannel(ctx context.Context, channel Channel) ([]LedgerBalance, error)
}

// BankAccountRepository defines persistence for bank accounts
type BankAccountRepository interface {
	Create(ctx context.Context, bank *BankAccount) error
	FindByID(ctx context.Context, id uuid.UUID) (*BankAccount, error)
	ExistsByAccountNumber(ctx context.Context, accountNumber string) (bool, error)
	List(ctx context.Context, activeOnly bool) ([]BankAccount, error)
}

// PaymentRecordRepository defines persistence for document payments
type PaymentRecordRepository interface {
	// ListByDocument lists the payments of a document, oldest first
	ListByDocument(ctx context.Context, doc DocumentRef) ([]PaymentRecord, error)

	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*PaymentRecord, error)

	Insert(ctx context.Context, payment *PaymentRecord) error
	Update(ctx context.Context, payment *PaymentRecord) error

	// DeleteByIDs removes payments. Their ledger effect must already be settled.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
}

// PartyPaymentRepository defines persistence for party payments
type PartyPaymentRepository interface {
	Create(ctx context.Context, payment *PartyPayment) error

	// FindByIDForUpdate finds a payment and locks its row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PartyPayment, error)

	// MarkDeleted persists the deleted flags of a payment
	MarkDeleted(ctx context.Context, payment *PartyPayment) error

	// ListByParty lists live payments with a party, newest first
	ListByParty(ctx context.Context, partyType PartyType, partyID uuid.UUID, filter shared.Filter) ([]PartyPayment, int64, error)
}

// PartyDiscountRepository defines persistence for party discounts
type PartyDiscountRepository interface {
	Create(ctx context.Context, discount *PartyDiscount) error

	// FindByIDForUpdate finds a discount and locks its row
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PartyDiscount, error)

	// MarkDeleted persists the deleted flags of a discount
	MarkDeleted(ctx context.Context, discount *PartyDiscount) error

	// ListByParty lists live discounts of a party, newest first
	ListByParty(ctx context.Context, partyType DiscountParty, partyID uuid.UUID, filter shared.Filter) ([]PartyDiscount, int64, error)
}
