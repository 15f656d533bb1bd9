package models

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryModel is the persistence model for a cash book or bank book entry.
type LedgerEntryModel struct {
	BaseModel
	AccountKey   string          `gorm:"type:varchar(60);not null;index:idx_ledger_entry_account,priority:1"`
	Channel      string          `gorm:"type:varchar(10);not null"`
	BankID       *uuid.UUID      `gorm:"type:uuid;index"`
	EntryDate    time.Time       `gorm:"not null;index:idx_ledger_entry_account,priority:2"`
	Direction    string          `gorm:"type:varchar(3);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Category     string          `gorm:"type:varchar(50)"`
	Description  string          `gorm:"type:text"`
	SourceType   string          `gorm:"type:varchar(30);not null;index:idx_ledger_entry_source,priority:1"`
	SourceID     *uuid.UUID      `gorm:"type:uuid;index:idx_ledger_entry_source,priority:2"`
	PaymentID    *uuid.UUID      `gorm:"type:uuid;index"`
	Reference    string          `gorm:"type:varchar(255)"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid"`
	IsDeleted    bool            `gorm:"not null;default:false;index"`
	DeletedAt    *time.Time
	DeletedBy    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LedgerEntryModel) TableName() string {
	return "ledger_entries"
}

// ToDomain converts the persistence model to a domain LedgerEntry
func (m *LedgerEntryModel) ToDomain() *finance.LedgerEntry {
	return &finance.LedgerEntry{
		BaseEntity:   m.BaseModel.ToDomain(),
		AccountKey:   m.AccountKey,
		Channel:      finance.Channel(m.Channel),
		BankID:       m.BankID,
		EntryDate:    m.EntryDate,
		Direction:    finance.Direction(m.Direction),
		Amount:       m.Amount,
		Category:     m.Category,
		Description:  m.Description,
		SourceType:   finance.EntrySource(m.SourceType),
		SourceID:     m.SourceID,
		PaymentID:    m.PaymentID,
		Reference:    m.Reference,
		BalanceAfter: m.BalanceAfter,
		CreatedBy:    m.CreatedBy,
		IsDeleted:    m.IsDeleted,
		DeletedAt:    m.DeletedAt,
		DeletedBy:    m.DeletedBy,
	}
}

// LedgerEntryModelFromDomain creates a new persistence model from a domain LedgerEntry
func LedgerEntryModelFromDomain(e *finance.LedgerEntry) *LedgerEntryModel {
	m := &LedgerEntryModel{
		AccountKey:   e.AccountKey,
		Channel:      string(e.Channel),
		BankID:       e.BankID,
		EntryDate:    e.EntryDate,
		Direction:    string(e.Direction),
		Amount:       e.Amount,
		Category:     e.Category,
		Description:  e.Description,
		SourceType:   string(e.SourceType),
		SourceID:     e.SourceID,
		PaymentID:    e.PaymentID,
		Reference:    e.Reference,
		BalanceAfter: e.BalanceAfter,
		CreatedBy:    e.CreatedBy,
		IsDeleted:    e.IsDeleted,
		DeletedAt:    e.DeletedAt,
		DeletedBy:    e.DeletedBy,
	}
	m.FromDomainBaseEntity(e.BaseEntity)
	return m
}

// LedgerBalanceModel holds the running balance of one ledger
type LedgerBalanceModel struct {
	AggregateModel
	AccountKey     string          `gorm:"type:varchar(60);not null;uniqueIndex"`
	Channel        string          `gorm:"type:varchar(10);not null;index"`
	BankID         *uuid.UUID      `gorm:"type:uuid"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LastEntryID    *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LedgerBalanceModel) TableName() string {
	return "ledger_balances"
}

// ToDomain converts the persistence model to a domain LedgerBalance
func (m *LedgerBalanceModel) ToDomain() *finance.LedgerBalance {
	return &finance.LedgerBalance{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		AccountKey:        m.AccountKey,
		Channel:           finance.Channel(m.Channel),
		BankID:            m.BankID,
		CurrentBalance:    m.CurrentBalance,
		LastEntryID:       m.LastEntryID,
	}
}

// LedgerBalanceModelFromDomain creates a new persistence model from a domain LedgerBalance
func LedgerBalanceModelFromDomain(b *finance.LedgerBalance) *LedgerBalanceModel {
	m := &LedgerBalanceModel{
		AccountKey:     b.AccountKey,
		Channel:        string(b.Channel),
		BankID:         b.BankID,
		CurrentBalance: b.CurrentBalance,
		LastEntryID:    b.LastEntryID,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// BankAccountModel is the persistence model for a bank account
type BankAccountModel struct {
	BaseModel
	Name          string `gorm:"type:varchar(200);not null"`
	AccountNumber string `gorm:"type:varchar(50);not null;uniqueIndex"`
	IFSCCode      string `gorm:"type:varchar(20)"`
	BranchName    string `gorm:"type:varchar(200)"`
	IsActive      bool   `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount
func (m *BankAccountModel) ToDomain() *finance.BankAccount {
	return &finance.BankAccount{
		BaseEntity:    m.BaseModel.ToDomain(),
		Name:          m.Name,
		AccountNumber: m.AccountNumber,
		IFSCCode:      m.IFSCCode,
		BranchName:    m.BranchName,
		IsActive:      m.IsActive,
	}
}

// BankAccountModelFromDomain creates a new persistence model from a domain BankAccount
func BankAccountModelFromDomain(b *finance.BankAccount) *BankAccountModel {
	m := &BankAccountModel{
		Name:          b.Name,
		AccountNumber: b.AccountNumber,
		IFSCCode:      b.IFSCCode,
		BranchName:    b.BranchName,
		IsActive:      b.IsActive,
	}
	m.FromDomainBaseEntity(b.BaseEntity)
	return m
}

// PaymentRecordModel is a payment applied to an invoice or sales order
type PaymentRecordModel struct {
	BaseModel
	DocumentType string          `gorm:"type:varchar(20);not null;index:idx_payment_record_document,priority:1"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_payment_record_document,priority:2"`
	PartyID      *uuid.UUID      `gorm:"type:uuid;index"`
	PaymentDate  time.Time       `gorm:"not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Mode         string          `gorm:"type:varchar(20);not null"`
	BankID       *uuid.UUID      `gorm:"type:uuid"`
	Reference    string          `gorm:"type:varchar(255)"`
	Notes        string          `gorm:"type:text"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid"`
	UpdatedBy    *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts the persistence model to a domain PaymentRecord
func (m *PaymentRecordModel) ToDomain() *finance.PaymentRecord {
	return &finance.PaymentRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		DocumentType: finance.DocumentType(m.DocumentType),
		DocumentID:   m.DocumentID,
		PartyID:      m.PartyID,
		PaymentDate:  m.PaymentDate,
		Amount:       m.Amount,
		Mode:         finance.PaymentMode(m.Mode),
		BankID:       m.BankID,
		Reference:    m.Reference,
		Notes:        m.Notes,
		CreatedBy:    m.CreatedBy,
		UpdatedBy:    m.UpdatedBy,
	}
}

// PaymentRecordModelFromDomain creates a new persistence model from a domain PaymentRecord
func PaymentRecordModelFromDomain(p *finance.PaymentRecord) *PaymentRecordModel {
	m := &PaymentRecordModel{
		DocumentType: string(p.DocumentType),
		DocumentID:   p.DocumentID,
		PartyID:      p.PartyID,
		PaymentDate:  p.PaymentDate,
		Amount:       p.Amount,
		Mode:         string(p.Mode),
		BankID:       p.BankID,
		Reference:    p.Reference,
		Notes:        p.Notes,
		CreatedBy:    p.CreatedBy,
		UpdatedBy:    p.UpdatedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// PartyPaymentModel is a standalone vendor or customer payment
type PartyPaymentModel struct {
	BaseModel
	PartyType            string          `gorm:"type:varchar(20);not null;index:idx_party_payment_party,priority:1"`
	PartyID              uuid.UUID       `gorm:"type:uuid;not null;index:idx_party_payment_party,priority:2"`
	PaymentDate          time.Time       `gorm:"not null;index"`
	Amount               decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Method               string          `gorm:"type:varchar(10);not null"`
	BankID               *uuid.UUID      `gorm:"type:uuid"`
	TransactionReference string          `gorm:"type:varchar(255)"`
	ModeOfTransaction    string          `gorm:"type:varchar(50)"`
	Notes                string          `gorm:"type:text"`
	LedgerEntryID        *uuid.UUID      `gorm:"type:uuid"`
	CreatedBy            *uuid.UUID      `gorm:"type:uuid"`
	IsDeleted            bool            `gorm:"not null;default:false;index"`
	DeletedAt            *time.Time
	DeletedBy            *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PartyPaymentModel) TableName() string {
	return "party_payments"
}

// ToDomain converts the persistence model to a domain PartyPayment
func (m *PartyPaymentModel) ToDomain() *finance.PartyPayment {
	return &finance.PartyPayment{
		BaseEntity:           m.BaseModel.ToDomain(),
		PartyType:            finance.PartyType(m.PartyType),
		PartyID:              m.PartyID,
		PaymentDate:          m.PaymentDate,
		Amount:               m.Amount,
		Method:               finance.Channel(m.Method),
		BankID:               m.BankID,
		TransactionReference: m.TransactionReference,
		ModeOfTransaction:    m.ModeOfTransaction,
		Notes:                m.Notes,
		LedgerEntryID:        m.LedgerEntryID,
		CreatedBy:            m.CreatedBy,
		IsDeleted:            m.IsDeleted,
		DeletedAt:            m.DeletedAt,
		DeletedBy:            m.DeletedBy,
	}
}

// PartyPaymentModelFromDomain creates a new persistence model from a domain PartyPayment
func PartyPaymentModelFromDomain(p *finance.PartyPayment) *PartyPaymentModel {
	m := &PartyPaymentModel{
		PartyType:            string(p.PartyType),
		PartyID:              p.PartyID,
		PaymentDate:          p.PaymentDate,
		Amount:               p.Amount,
		Method:               string(p.Method),
		BankID:               p.BankID,
		TransactionReference: p.TransactionReference,
		ModeOfTransaction:    p.ModeOfTransaction,
		Notes:                p.Notes,
		LedgerEntryID:        p.LedgerEntryID,
		CreatedBy:            p.CreatedBy,
		IsDeleted:            p.IsDeleted,
		DeletedAt:            p.DeletedAt,
		DeletedBy:            p.DeletedBy,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// PartyDiscountModel is a discount granted to a customer or dealer
type PartyDiscountModel struct {
	BaseModel
	PartyType    string          `gorm:"type:varchar(20);not null;index:idx_party_discount_party,priority:1"`
	PartyID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_party_discount_party,priority:2"`
	DiscountDate time.Time       `gorm:"not null;index"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason       string          `gorm:"type:text"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid"`
	IsDeleted    bool            `gorm:"not null;default:false;index"`
	DeletedAt    *time.Time
	DeletedBy    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (PartyDiscountModel) TableName() string {
	return "party_discounts"
}

// ToDomain converts the persistence model to a domain PartyDiscount
func (m *PartyDiscountModel) ToDomain() *finance.PartyDiscount {
	return &finance.PartyDiscount{
		BaseEntity:   m.BaseModel.ToDomain(),
		PartyType:    finance.DiscountParty(m.PartyType),
		PartyID:      m.PartyID,
		DiscountDate: m.DiscountDate,
		Amount:       m.Amount,
		Reason:       m.Reason,
		CreatedBy:    m.CreatedBy,
		IsDeleted:    m.IsDeleted,
		DeletedAt:    m.DeletedAt,
		DeletedBy:    m.DeletedBy,
	}
}

// PartyDiscountModelFromDomain creates a new persistence model from a domain PartyDiscount
func PartyDiscountModelFromDomain(d *finance.PartyDiscount) *PartyDiscountModel {
	m := &PartyDiscountModel{
		PartyType:    string(d.PartyType),
		PartyID:      d.PartyID,
		DiscountDate: d.DiscountDate,
		Amount:       d.Amount,
		Reason:       d.Reason,
		CreatedBy:    d.CreatedBy,
		IsDeleted:    d.IsDeleted,
		DeletedAt:    d.DeletedAt,
		DeletedBy:    d.DeletedBy,
	}
	m.FromDomainBaseEntity(d.BaseEntity)
	return m
}
