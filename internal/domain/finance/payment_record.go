package finance

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentType is the kind of document a payment is applied to
type DocumentType string

const (
	DocumentTypeInvoice    DocumentType = "INVOICE"
	DocumentTypeSalesOrder DocumentType = "SALES_ORDER"
)

// IsValid returns true if the document type is known
func (t DocumentType) IsValid() bool {
	return t == DocumentTypeInvoice || t == DocumentTypeSalesOrder
}

// LedgerDirection is the direction money moves when the document is paid.
// Invoices are vendor bills, so paying them takes money out.
func (t DocumentType) LedgerDirection() Direction {
	if t == DocumentTypeInvoice {
		return DirectionOut
	}
	return DirectionIn
}

// EntrySource returns the ledger entry source for payments on this document type
func (t DocumentType) EntrySource() EntrySource {
	if t == DocumentTypeInvoice {
		return EntrySourceInvoice
	}
	return EntrySourceSalesOrder
}

// DocumentRef identifies a payable document
type DocumentRef struct {
	Type DocumentType
	ID   uuid.UUID
}

// PaymentMode is how a document payment was made
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "CASH"
	PaymentModeBank   PaymentMode = "BANK"
	PaymentModeUPI    PaymentMode = "UPI"
	PaymentModeCheque PaymentMode = "CHEQUE"
	PaymentModeCard   PaymentMode = "CARD"
	PaymentModeOther  PaymentMode = "OTHER"
)

// ParsePaymentMode normalizes a mode string. Blank input is OTHER.
func ParsePaymentMode(s string) (PaymentMode, error) {
	m := PaymentMode(strings.ToUpper(strings.TrimSpace(s)))
	if m == "" {
		return PaymentModeOther, nil
	}
	switch m {
	case PaymentModeCash, PaymentModeBank, PaymentModeUPI, PaymentModeCheque, PaymentModeCard, PaymentModeOther:
		return m, nil
	}
	return "", shared.NewValidationError("Invalid payment mode: " + s)
}

// PaymentRecord is one payment applied to an invoice or sales order
type PaymentRecord struct {
	shared.BaseEntity
	DocumentType DocumentType
	DocumentID   uuid.UUID
	PartyID      *uuid.UUID
	PaymentDate  time.Time
	Amount       decimal.Decimal
	Mode         PaymentMode
	BankID       *uuid.UUID
	Reference    string
	Notes        string
	CreatedBy    *uuid.UUID
	UpdatedBy    *uuid.UUID
}

// PaymentDetails are the caller editable fields of a payment record
type PaymentDetails struct {
	PaymentDate time.Time
	Amount      decimal.Decimal
	Mode        PaymentMode
	BankID      *uuid.UUID
	Reference   string
	Notes       string
}

func (d PaymentDetails) validate() error {
	if !d.Amount.IsPositive() {
		return shared.NewValidationError("Payment amount must be positive")
	}
	if d.PaymentDate.IsZero() {
		return shared.NewValidationError("Payment date is required")
	}
	if d.Mode == "" {
		return shared.NewValidationError("Payment mode is required")
	}
	if d.Mode != PaymentModeBank && d.BankID != nil {
		return shared.NewValidationError("Bank account is only allowed for BANK payments")
	}
	return nil
}

// NewPaymentRecord creates a payment against a document
func NewPaymentRecord(doc DocumentRef, partyID *uuid.UUID, details PaymentDetails, actor *uuid.UUID) (*PaymentRecord, error) {
	if !doc.Type.IsValid() || doc.ID == uuid.Nil {
		return nil, shared.NewValidationError("Payment requires a valid document")
	}
	if err := details.validate(); err != nil {
		return nil, err
	}
	p := &PaymentRecord{
		BaseEntity:   shared.NewBaseEntity(),
		DocumentType: doc.Type,
		DocumentID:   doc.ID,
		PartyID:      partyID,
		CreatedBy:    actor,
	}
	p.apply(details)
	return p, nil
}

// Update replaces the editable fields
func (p *PaymentRecord) Update(details PaymentDetails, actor *uuid.UUID) error {
	if err := details.validate(); err != nil {
		return err
	}
	p.apply(details)
	p.UpdatedBy = actor
	p.Touch()
	return nil
}

func (p *PaymentRecord) apply(d PaymentDetails) {
	p.PaymentDate = d.PaymentDate
	p.Amount = d.Amount
	p.Mode = d.Mode
	p.BankID = d.BankID
	p.Reference = strings.TrimSpace(d.Reference)
	p.Notes = strings.TrimSpace(d.Notes)
}

// Document returns the document the payment is applied to
func (p *PaymentRecord) Document() DocumentRef {
	return DocumentRef{Type: p.DocumentType, ID: p.DocumentID}
}

// LedgerAccount returns the ledger this payment moves money on.
// CASH payments hit the cash book, BANK payments with a bank account hit that bank's book,
// everything else has no ledger effect.
func (p *PaymentRecord) LedgerAccount() (LedgerAccount, bool) {
	switch {
	case p.Mode == PaymentModeCash:
		return CashAccount(), true
	case p.Mode == PaymentModeBank && p.BankID != nil:
		return BankLedger(*p.BankID), true
	}
	return LedgerAccount{}, false
}

// LedgerEffect returns the signed amount the payment should contribute per ledger
func (p *PaymentRecord) LedgerEffect() map[string]AccountEffect {
	effects := make(map[string]AccountEffect, 1)
	if account, ok := p.LedgerAccount(); ok {
		effects[account.Key()] = AccountEffect{
			Account: account,
			Signed:  p.DocumentType.LedgerDirection().Signed(p.Amount),
		}
	}
	return effects
}

// AccountEffect is a signed amount on one ledger
type AccountEffect struct {
	Account LedgerAccount
	Signed  decimal.Decimal
}
