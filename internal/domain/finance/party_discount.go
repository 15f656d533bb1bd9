package finance

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountParty is the kind of sales party a discount is granted to
type DiscountParty string

const (
	DiscountPartyCustomer DiscountParty = "CUSTOMER"
	DiscountPartyDealer   DiscountParty = "DEALER"
)

// IsValid returns true if the party kind is known
func (p DiscountParty) IsValid() bool {
	return p == DiscountPartyCustomer || p == DiscountPartyDealer
}

// PartyDiscount is a discount granted to a customer or dealer outside any
// sales order. It is a record for the party's statement and moves no money.
type PartyDiscount struct {
	shared.BaseEntity
	PartyType    DiscountParty
	PartyID      uuid.UUID
	DiscountDate time.Time
	Amount       decimal.Decimal
	Reason       string
	CreatedBy    *uuid.UUID
	IsDeleted    bool
	DeletedAt    *time.Time
	DeletedBy    *uuid.UUID
}

// NewPartyDiscount creates a party discount
func NewPartyDiscount(
	partyType DiscountParty,
	partyID uuid.UUID,
	discountDate time.Time,
	amount decimal.Decimal,
	reason string,
	actor *uuid.UUID,
) (*PartyDiscount, error) {
	if !partyType.IsValid() {
		return nil, shared.NewValidationError("Party type must be CUSTOMER or DEALER")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewValidationError("Party ID is required")
	}
	if discountDate.IsZero() {
		return nil, shared.NewValidationError("Discount date is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Discount amount must be positive")
	}
	return &PartyDiscount{
		BaseEntity:   shared.NewBaseEntity(),
		PartyType:    partyType,
		PartyID:      partyID,
		DiscountDate: discountDate,
		Amount:       amount,
		Reason:       strings.TrimSpace(reason),
		CreatedBy:    actor,
	}, nil
}

// MarkDeleted soft deletes the discount
func (d *PartyDiscount) MarkDeleted(actor *uuid.UUID) error {
	if d.IsDeleted {
		return shared.NewNotFoundError("Discount not found or already deleted")
	}
	now := time.Now()
	d.IsDeleted = true
	d.DeletedAt = &now
	d.DeletedBy = actor
	d.UpdatedAt = now
	return nil
}
