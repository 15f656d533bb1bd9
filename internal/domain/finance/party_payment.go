package finance

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartyType distinguishes who a standalone payment is with
type PartyType string

const (
	// PartyTypeVendor is a payment made to a vendor
	PartyTypeVendor PartyType = "VENDOR"
	// PartyTypeCustomer is a payment received from a customer or dealer
	PartyTypeCustomer PartyType = "CUSTOMER"
)

// IsValid returns true if the party type is known
func (t PartyType) IsValid() bool {
	return t == PartyTypeVendor || t == PartyTypeCustomer
}

// Direction returns how money moves for a payment with this party
func (t PartyType) Direction() Direction {
	if t == PartyTypeVendor {
		return DirectionOut
	}
	return DirectionIn
}

// EntrySource returns the ledger entry source for this party type
func (t PartyType) EntrySource() EntrySource {
	if t == PartyTypeVendor {
		return EntrySourceVendorPayment
	}
	return EntrySourcePartyPayment
}

// PartyPayment is a payment to or from a party that is not tied to a document.
// It owns exactly one ledger entry, referenced by LedgerEntryID.
type PartyPayment struct {
	shared.BaseEntity
	PartyType            PartyType
	PartyID              uuid.UUID
	PaymentDate          time.Time
	Amount               decimal.Decimal
	Method               Channel
	BankID               *uuid.UUID
	TransactionReference string
	ModeOfTransaction    string
	Notes                string
	LedgerEntryID        *uuid.UUID
	CreatedBy            *uuid.UUID
	IsDeleted            bool
	DeletedAt            *time.Time
	DeletedBy            *uuid.UUID
}

// NewPartyPayment creates a party payment. BANK payments require a bank account.
func NewPartyPayment(
	partyType PartyType,
	partyID uuid.UUID,
	paymentDate time.Time,
	amount decimal.Decimal,
	method Channel,
	bankID *uuid.UUID,
	actor *uuid.UUID,
) (*PartyPayment, error) {
	if !partyType.IsValid() {
		return nil, shared.NewValidationError("Invalid party type")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewValidationError("Party ID is required")
	}
	if paymentDate.IsZero() {
		return nil, shared.NewValidationError("Payment date is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	switch method {
	case ChannelCash:
		bankID = nil
	case ChannelBank:
		if bankID == nil || *bankID == uuid.Nil {
			return nil, shared.NewValidationError("Bank ID is required for BANK payments")
		}
	default:
		return nil, shared.NewValidationError("Payment method must be CASH or BANK")
	}
	return &PartyPayment{
		BaseEntity:  shared.NewBaseEntity(),
		PartyType:   partyType,
		PartyID:     partyID,
		PaymentDate: paymentDate,
		Amount:      amount,
		Method:      method,
		BankID:      bankID,
		CreatedBy:   actor,
	}, nil
}

// WithReference sets the free-text reference fields
func (p *PartyPayment) WithReference(transactionReference, modeOfTransaction, notes string) *PartyPayment {
	p.TransactionReference = strings.TrimSpace(transactionReference)
	p.ModeOfTransaction = strings.TrimSpace(modeOfTransaction)
	p.Notes = strings.TrimSpace(notes)
	return p
}

// Account returns the ledger the payment posts to
func (p *PartyPayment) Account() LedgerAccount {
	if p.Method == ChannelBank && p.BankID != nil {
		return BankLedger(*p.BankID)
	}
	return CashAccount()
}

// Direction returns how money moves for this payment
func (p *PartyPayment) Direction() Direction {
	return p.PartyType.Direction()
}

// AttachEntry records the ledger entry created for the payment
func (p *PartyPayment) AttachEntry(entryID uuid.UUID) {
	id := entryID
	p.LedgerEntryID = &id
}

// MarkDeleted soft deletes the payment
func (p *PartyPayment) MarkDeleted(actor *uuid.UUID) error {
	if p.IsDeleted {
		return shared.NewNotFoundError("Payment not found or already deleted")
	}
	now := time.Now()
	p.IsDeleted = true
	p.DeletedAt = &now
	p.DeletedBy = actor
	p.UpdatedAt = now
	return nil
}
