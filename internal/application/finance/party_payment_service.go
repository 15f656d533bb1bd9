package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PartyPaymentService records payments to vendors and from customers that are
// not tied to a document. Each payment owns exactly one ledger entry.
type PartyPaymentService struct {
	scope  ledger.TransactionScope
	books  *ledger.Factory
	logger *zap.Logger
}

// NewPartyPaymentService creates a new PartyPaymentService
func NewPartyPaymentService(scope ledger.TransactionScope, books *ledger.Factory, logger *zap.Logger) *PartyPaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartyPaymentService{
		scope:  scope,
		books:  books,
		logger: logger,
	}
}

// CreateVendorPayment pays a vendor; money goes OUT of cash or the named bank
func (s *PartyPaymentService) CreateVendorPayment(ctx context.Context, actor *uuid.UUID, req CreatePartyPaymentRequest) (*PartyPaymentResponse, error) {
	return s.create(ctx, actor, finance.PartyTypeVendor, req)
}

// CreateCustomerPayment records a customer paying in; money comes IN
func (s *PartyPaymentService) CreateCustomerPayment(ctx context.Context, actor *uuid.UUID, req CreatePartyPaymentRequest) (*PartyPaymentResponse, error) {
	return s.create(ctx, actor, finance.PartyTypeCustomer, req)
}

func (s *PartyPaymentService) create(ctx context.Context, actor *uuid.UUID, partyType finance.PartyType, req CreatePartyPaymentRequest) (*PartyPaymentResponse, error) {
	payment, err := finance.NewPartyPayment(partyType, req.PartyID, req.PaymentDate, req.Amount, finance.Channel(req.Method), req.BankID, actor)
	if err != nil {
		return nil, err
	}
	payment.WithReference(req.TransactionReference, req.ModeOfTransaction, req.Notes)

	var resp PartyPaymentResponse
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		paymentID := payment.ID
		entry, err := s.books.Open(repos).Money.Post(ctx, ledger.Posting{
			Account:     payment.Account(),
			Direction:   payment.Direction(),
			Amount:      payment.Amount,
			EntryDate:   payment.PaymentDate,
			Source:      partyType.EntrySource(),
			SourceID:    &paymentID,
			PaymentID:   &paymentID,
			Category:    "PAYMENT",
			Description: fmt.Sprintf("%s payment %s", partyType, payment.TransactionReference),
			Reference:   payment.TransactionReference,
			Actor:       actor,
		})
		if err != nil {
			return err
		}
		payment.AttachEntry(entry.ID)
		if err := repos.PartyPayments().Create(ctx, payment); err != nil {
			return fmt.Errorf("create party payment: %w", err)
		}
		resp = ToPartyPaymentResponse(payment)
		resp.BalanceAfter = entry.BalanceAfter
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("party payment created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("party_type", string(partyType)),
		zap.String("amount", payment.Amount.String()),
		zap.String("balance_after", resp.BalanceAfter.String()),
	)
	return &resp, nil
}

// SoftDelete reverses the payment's ledger entry by its exact signed amount,
// marks the entry deleted, and then marks the payment deleted.
func (s *PartyPaymentService) SoftDelete(ctx context.Context, actor *uuid.UUID, id uuid.UUID) (*PartyPaymentResponse, error) {
	var resp PartyPaymentResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		payment, err := repos.PartyPayments().FindByIDForUpdate(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Payment not found or already deleted")
		}
		if err != nil {
			return fmt.Errorf("lock party payment: %w", err)
		}
		if err := payment.MarkDeleted(actor); err != nil {
			return err
		}
		if payment.LedgerEntryID == nil {
			return shared.NewInvalidStateError("Payment has no ledger entry to reverse")
		}
		money := s.books.Open(repos).Money
		if _, err := money.ReverseEntry(ctx, *payment.LedgerEntryID, actor); err != nil {
			return err
		}
		if err := repos.PartyPayments().MarkDeleted(ctx, payment); err != nil {
			return fmt.Errorf("delete party payment: %w", err)
		}
		balance, err := money.Balance(ctx, payment.Account())
		if err != nil {
			return err
		}
		resp = ToPartyPaymentResponse(payment)
		resp.BalanceAfter = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("party payment deleted",
		zap.String("payment_id", id.String()),
		zap.String("balance_after", resp.BalanceAfter.String()),
	)
	return &resp, nil
}

// ListPayments lists live payments with a party, newest first
func (s *PartyPaymentService) ListPayments(ctx context.Context, partyType finance.PartyType, partyID uuid.UUID, filter shared.Filter) (*shared.Paginated[PartyPaymentResponse], error) {
	if !partyType.IsValid() {
		return nil, shared.NewValidationError("Invalid party type")
	}
	f := filter.Normalize()
	var page shared.Paginated[PartyPaymentResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		payments, total, err := repos.PartyPayments().ListByParty(ctx, partyType, partyID, f)
		if err != nil {
			return err
		}
		items := make([]PartyPaymentResponse, len(payments))
		for i := range payments {
			items[i] = ToPartyPaymentResponse(&payments[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
