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

// PartyDiscountService keeps the discounts granted to customers and dealers.
// Discounts are statement records and post nothing to cash or bank.
type PartyDiscountService struct {
	scope  ledger.TransactionScope
	logger *zap.Logger
}

// NewPartyDiscountService creates a new PartyDiscountService
func NewPartyDiscountService(scope ledger.TransactionScope, logger *zap.Logger) *PartyDiscountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PartyDiscountService{scope: scope, logger: logger}
}

// CreateDiscount records a discount for a party
func (s *PartyDiscountService) CreateDiscount(ctx context.Context, actor *uuid.UUID, req CreatePartyDiscountRequest) (*PartyDiscountResponse, error) {
	discount, err := finance.NewPartyDiscount(finance.DiscountParty(req.PartyType), req.PartyID, req.DiscountDate, req.Amount, req.Reason, actor)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		if err := repos.PartyDiscounts().Create(ctx, discount); err != nil {
			return fmt.Errorf("create party discount: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("party discount created",
		zap.String("discount_id", discount.ID.String()),
		zap.String("party_type", string(discount.PartyType)),
		zap.String("amount", discount.Amount.String()),
	)
	resp := ToPartyDiscountResponse(discount)
	return &resp, nil
}

// DeleteDiscount soft deletes a discount. A second delete reports not found.
func (s *PartyDiscountService) DeleteDiscount(ctx context.Context, actor *uuid.UUID, id uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		discount, err := repos.PartyDiscounts().FindByIDForUpdate(ctx, id)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Discount not found or already deleted")
		}
		if err != nil {
			return fmt.Errorf("lock party discount: %w", err)
		}
		if err := discount.MarkDeleted(actor); err != nil {
			return err
		}
		return repos.PartyDiscounts().MarkDeleted(ctx, discount)
	})
	if err != nil {
		return err
	}
	s.logger.Info("party discount deleted", zap.String("discount_id", id.String()))
	return nil
}

// ListDiscounts lists live discounts of a party, newest first
func (s *PartyDiscountService) ListDiscounts(ctx context.Context, partyType finance.DiscountParty, partyID uuid.UUID, filter shared.Filter) (*shared.Paginated[PartyDiscountResponse], error) {
	if !partyType.IsValid() {
		return nil, shared.NewValidationError("Party type must be CUSTOMER or DEALER")
	}
	f := filter.Normalize()
	var page shared.Paginated[PartyDiscountResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		discounts, total, err := repos.PartyDiscounts().ListByParty(ctx, partyType, partyID, f)
		if err != nil {
			return err
		}
		items := make([]PartyDiscountResponse, len(discounts))
		for i := range discounts {
			items[i] = ToPartyDiscountResponse(&discounts[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}
