package finance

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerEntryRequest posts a direct cashbook or bank entry
type LedgerEntryRequest struct {
	EntryDate   time.Time       `json:"entry_date"`
	Direction   string          `json:"direction" binding:"required,oneof=IN OUT"`
	Amount      decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Category    string          `json:"category" binding:"max=50"`
	Description string          `json:"description" binding:"required,max=500"`
	Reference   string          `json:"reference" binding:"max=100"`
}

// LedgerEntryResponse is one cashbook or bank entry
type LedgerEntryResponse struct {
	ID           uuid.UUID       `json:"id"`
	Channel      string          `json:"channel"`
	BankID       *uuid.UUID      `json:"bank_id,omitempty"`
	EntryDate    time.Time       `json:"entry_date"`
	Direction    string          `json:"direction"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category,omitempty"`
	Description  string          `json:"description,omitempty"`
	SourceType   string          `json:"source_type"`
	SourceID     *uuid.UUID      `json:"source_id,omitempty"`
	PaymentID    *uuid.UUID      `json:"payment_id,omitempty"`
	Reference    string          `json:"reference,omitempty"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	IsDeleted    bool            `json:"is_deleted"`
	DeletedAt    *time.Time      `json:"deleted_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToLedgerEntryResponse converts an entry to its response
func ToLedgerEntryResponse(e *finance.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:           e.ID,
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
		IsDeleted:    e.IsDeleted,
		DeletedAt:    e.DeletedAt,
		CreatedAt:    e.CreatedAt,
	}
}

// EntryListFilter filters an entry listing
type EntryListFilter struct {
	From           *time.Time `form:"from" time_format:"2006-01-02"`
	To             *time.Time `form:"to" time_format:"2006-01-02"`
	IncludeDeleted bool       `form:"include_deleted"`
	Page           int        `form:"page" binding:"omitempty,min=1"`
	PageSize       int        `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// BalanceResponse is the current balance of a ledger
type BalanceResponse struct {
	Channel string          `json:"channel"`
	BankID  *uuid.UUID      `json:"bank_id,omitempty"`
	Balance decimal.Decimal `json:"balance"`
}

// CreateBankAccountRequest registers a bank account
type CreateBankAccountRequest struct {
	Name          string `json:"name" binding:"required,max=100"`
	AccountNumber string `json:"account_number" binding:"required,max=50"`
	IFSCCode      string `json:"ifsc_code" binding:"max=20"`
	BranchName    string `json:"branch_name" binding:"max=100"`
}

// BankAccountResponse is a bank account, with its balance when listed
type BankAccountResponse struct {
	ID            uuid.UUID        `json:"id"`
	Name          string           `json:"name"`
	AccountNumber string           `json:"account_number"`
	IFSCCode      string           `json:"ifsc_code,omitempty"`
	BranchName    string           `json:"branch_name,omitempty"`
	IsActive      bool             `json:"is_active"`
	Balance       *decimal.Decimal `json:"balance,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ToBankAccountResponse converts a bank account to its response
func ToBankAccountResponse(b *finance.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:            b.ID,
		Name:          b.Name,
		AccountNumber: b.AccountNumber,
		IFSCCode:      b.IFSCCode,
		BranchName:    b.BranchName,
		IsActive:      b.IsActive,
		CreatedAt:     b.CreatedAt,
	}
}

// CreatePartyPaymentRequest records a payment to a vendor or from a customer
type CreatePartyPaymentRequest struct {
	PartyID              uuid.UUID       `json:"party_id" binding:"required"`
	PaymentDate          time.Time       `json:"payment_date" binding:"required"`
	Amount               decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Method               string          `json:"method" binding:"required,oneof=CASH BANK"`
	BankID               *uuid.UUID      `json:"bank_id"`
	TransactionReference string          `json:"transaction_reference" binding:"max=100"`
	ModeOfTransaction    string          `json:"mode_of_transaction" binding:"max=50"`
	Notes                string          `json:"notes" binding:"max=500"`
}

// PartyPaymentResponse is a party payment
type PartyPaymentResponse struct {
	ID                   uuid.UUID       `json:"id"`
	PartyType            string          `json:"party_type"`
	PartyID              uuid.UUID       `json:"party_id"`
	PaymentDate          time.Time       `json:"payment_date"`
	Amount               decimal.Decimal `json:"amount"`
	Method               string          `json:"method"`
	BankID               *uuid.UUID      `json:"bank_id,omitempty"`
	TransactionReference string          `json:"transaction_reference,omitempty"`
	ModeOfTransaction    string          `json:"mode_of_transaction,omitempty"`
	Notes                string          `json:"notes,omitempty"`
	LedgerEntryID        *uuid.UUID      `json:"ledger_entry_id,omitempty"`
	BalanceAfter         decimal.Decimal `json:"balance_after"`
	IsDeleted            bool            `json:"is_deleted"`
	CreatedAt            time.Time       `json:"created_at"`
}

// ToPartyPaymentResponse converts a party payment to its response
func ToPartyPaymentResponse(p *finance.PartyPayment) PartyPaymentResponse {
	return PartyPaymentResponse{
		ID:                   p.ID,
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
		IsDeleted:            p.IsDeleted,
		CreatedAt:            p.CreatedAt,
	}
}

// CreatePartyDiscountRequest grants a discount to a customer or dealer
type CreatePartyDiscountRequest struct {
	PartyType    string          `json:"party_type" binding:"required,oneof=CUSTOMER DEALER"`
	PartyID      uuid.UUID       `json:"party_id" binding:"required"`
	DiscountDate time.Time       `json:"discount_date" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"decimal_gt0"`
	Reason       string          `json:"reason" binding:"max=500"`
}

// PartyDiscountResponse is a party discount
type PartyDiscountResponse struct {
	ID           uuid.UUID       `json:"id"`
	PartyType    string          `json:"party_type"`
	PartyID      uuid.UUID       `json:"party_id"`
	DiscountDate time.Time       `json:"discount_date"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason,omitempty"`
	CreatedBy    *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ToPartyDiscountResponse converts a party discount to its response
func ToPartyDiscountResponse(d *finance.PartyDiscount) PartyDiscountResponse {
	return PartyDiscountResponse{
		ID:           d.ID,
		PartyType:    string(d.PartyType),
		PartyID:      d.PartyID,
		DiscountDate: d.DiscountDate,
		Amount:       d.Amount,
		Reason:       d.Reason,
		CreatedBy:    d.CreatedBy,
		CreatedAt:    d.CreatedAt,
	}
}
