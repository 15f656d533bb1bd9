package finance

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Channel distinguishes the cash book from bank books
type Channel string

const (
	ChannelCash Channel = "CASH"
	ChannelBank Channel = "BANK"
)

// IsValid returns true if the channel is known
func (c Channel) IsValid() bool {
	return c == ChannelCash || c == ChannelBank
}

// Direction is the direction of a money movement
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// IsValid returns true if the direction is known
func (d Direction) IsValid() bool {
	return d == DirectionIn || d == DirectionOut
}

// Opposite returns the reverse direction
func (d Direction) Opposite() Direction {
	if d == DirectionIn {
		return DirectionOut
	}
	return DirectionIn
}

// Signed applies the direction to a positive amount
func (d Direction) Signed(amount decimal.Decimal) decimal.Decimal {
	if d == DirectionOut {
		return amount.Neg()
	}
	return amount
}

// DirectionOf returns the direction and absolute amount of a signed value
func DirectionOf(signed decimal.Decimal) (Direction, decimal.Decimal) {
	if signed.IsNegative() {
		return DirectionOut, signed.Abs()
	}
	return DirectionIn, signed
}

// LedgerAccount identifies one ledger: the cash book, or the book of one bank account
type LedgerAccount struct {
	Channel Channel
	BankID  *uuid.UUID
}

// CashAccount returns the singleton cash ledger
func CashAccount() LedgerAccount {
	return LedgerAccount{Channel: ChannelCash}
}

// BankLedger returns the ledger of a bank account
func BankLedger(bankID uuid.UUID) LedgerAccount {
	id := bankID
	return LedgerAccount{Channel: ChannelBank, BankID: &id}
}

// Key returns the stable storage key of the ledger
func (a LedgerAccount) Key() string {
	if a.Channel == ChannelBank && a.BankID != nil {
		return string(ChannelBank) + ":" + a.BankID.String()
	}
	return string(a.Channel)
}

// Validate checks the account is well formed
func (a LedgerAccount) Validate() error {
	switch a.Channel {
	case ChannelCash:
		if a.BankID != nil {
			return shared.NewValidationError("Cash ledger cannot reference a bank account")
		}
	case ChannelBank:
		if a.BankID == nil || *a.BankID == uuid.Nil {
			return shared.NewValidationError("Bank ID is required for bank ledger")
		}
	default:
		return shared.NewValidationError("Invalid ledger channel")
	}
	return nil
}

// ParseLedgerKey is the inverse of LedgerAccount.Key
func ParseLedgerKey(key string) (LedgerAccount, error) {
	if key == string(ChannelCash) {
		return CashAccount(), nil
	}
	if rest, ok := strings.CutPrefix(key, string(ChannelBank)+":"); ok {
		id, err := uuid.Parse(rest)
		if err != nil {
			return LedgerAccount{}, shared.NewValidationError("Invalid bank ledger key")
		}
		return BankLedger(id), nil
	}
	return LedgerAccount{}, shared.NewValidationError("Invalid ledger key")
}

// EntrySource is the kind of operation that created a ledger entry
type EntrySource string

const (
	EntrySourceManual        EntrySource = "MANUAL"
	EntrySourceSalesOrder    EntrySource = "SALES_ORDER"
	EntrySourceInvoice       EntrySource = "INVOICE"
	EntrySourceVendorPayment EntrySource = "VENDOR_PAYMENT"
	EntrySourcePartyPayment  EntrySource = "PARTY_PAYMENT"
)

// IsValid returns true if the source is known
func (s EntrySource) IsValid() bool {
	switch s {
	case EntrySourceManual, EntrySourceSalesOrder, EntrySourceInvoice,
		EntrySourceVendorPayment, EntrySourcePartyPayment:
		return true
	}
	return false
}

// LedgerEntry is one directional money movement on a ledger.
// Entries are never updated except to set the deleted flags, and never hard deleted.
type LedgerEntry struct {
	shared.BaseEntity
	AccountKey   string
	Channel      Channel
	BankID       *uuid.UUID
	EntryDate    time.Time
	Direction    Direction
	Amount       decimal.Decimal // always positive
	Category     string
	Description  string
	SourceType   EntrySource
	SourceID     *uuid.UUID
	PaymentID    *uuid.UUID
	Reference    string
	BalanceAfter decimal.Decimal
	CreatedBy    *uuid.UUID
	IsDeleted    bool
	DeletedAt    *time.Time
	DeletedBy    *uuid.UUID
}

// NewLedgerEntry creates an entry. BalanceAfter is filled in by the ledger when posted.
func NewLedgerEntry(
	account LedgerAccount,
	direction Direction,
	amount decimal.Decimal,
	entryDate time.Time,
	source EntrySource,
	description string,
) (*LedgerEntry, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if !direction.IsValid() {
		return nil, shared.NewValidationError("Entry direction must be IN or OUT")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Entry amount must be positive")
	}
	if !source.IsValid() {
		return nil, shared.NewValidationError("Invalid entry source")
	}
	if entryDate.IsZero() {
		entryDate = time.Now()
	}
	return &LedgerEntry{
		BaseEntity:  shared.NewBaseEntity(),
		AccountKey:  account.Key(),
		Channel:     account.Channel,
		BankID:      account.BankID,
		EntryDate:   entryDate,
		Direction:   direction,
		Amount:      amount,
		SourceType:  source,
		Description: description,
	}, nil
}

// Account returns the ledger the entry belongs to
func (e *LedgerEntry) Account() LedgerAccount {
	return LedgerAccount{Channel: e.Channel, BankID: e.BankID}
}

// Signed returns the entry's effect on its ledger balance
func (e *LedgerEntry) Signed() decimal.Decimal {
	return e.Direction.Signed(e.Amount)
}

// MarkDeleted flags the entry as deleted
func (e *LedgerEntry) MarkDeleted(actor *uuid.UUID) error {
	if e.IsDeleted {
		return shared.NewInvalidStateError("Ledger entry is already deleted")
	}
	now := time.Now()
	e.IsDeleted = true
	e.DeletedAt = &now
	e.DeletedBy = actor
	e.UpdatedAt = now
	return nil
}

// LedgerBalance is the current balance of one ledger.
// It changes only in the transaction that inserts or deletes one of its entries.
type LedgerBalance struct {
	shared.BaseAggregateRoot
	AccountKey     string
	Channel        Channel
	BankID         *uuid.UUID
	CurrentBalance decimal.Decimal
	LastEntryID    *uuid.UUID
}

// NewLedgerBalance creates a zero balance row for an account
func NewLedgerBalance(account LedgerAccount) (*LedgerBalance, error) {
	if err := account.Validate(); err != nil {
		return nil, err
	}
	return &LedgerBalance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AccountKey:        account.Key(),
		Channel:           account.Channel,
		BankID:            account.BankID,
		CurrentBalance:    decimal.Zero,
	}, nil
}

// Apply adds a signed amount and records the entry responsible
func (b *LedgerBalance) Apply(signed decimal.Decimal, entryID uuid.UUID) decimal.Decimal {
	b.CurrentBalance = b.CurrentBalance.Add(signed)
	id := entryID
	b.LastEntryID = &id
	b.IncrementVersion()
	b.Touch()
	return b.CurrentBalance
}

// BankAccount is a bank account whose transactions form a bank ledger
type BankAccount struct {
	shared.BaseEntity
	Name          string
	AccountNumber string
	IFSCCode      string
	BranchName    string
	IsActive      bool
}

// NewBankAccount creates an active bank account
func NewBankAccount(name, accountNumber, ifsc, branch string) (*BankAccount, error) {
	name = strings.TrimSpace(name)
	accountNumber = strings.TrimSpace(accountNumber)
	if name == "" {
		return nil, shared.NewValidationError("Bank name is required")
	}
	if accountNumber == "" {
		return nil, shared.NewValidationError("Account number is required")
	}
	return &BankAccount{
		BaseEntity:    shared.NewBaseEntity(),
		Name:          name,
		AccountNumber: accountNumber,
		IFSCCode:      strings.TrimSpace(ifsc),
		BranchName:    strings.TrimSpace(branch),
		IsActive:      true,
	}, nil
}

// BankWithBalance pairs a bank account with its ledger balance
type BankWithBalance struct {
	Bank    BankAccount
	Balance decimal.Decimal
}
