package finance_test

import (
	"context"
	"testing"
	"time"

	appfinance "github.com/erp/ledgercore/internal/application/finance"
	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type services struct {
	ledger    *appfinance.LedgerService
	payments  *appfinance.PartyPaymentService
	discounts *appfinance.PartyDiscountService
	actor     *uuid.UUID
}

func newServices(t *testing.T) *services {
	t.Helper()
	scope := persistence.NewGormTransactionScope(testutil.NewSQLiteDB(t))
	books := ledger.NewFactory(zap.NewNop(), nil)
	actor := testutil.TestUserID()
	return &services{
		ledger:    appfinance.NewLedgerService(scope, books, zap.NewNop()),
		payments:  appfinance.NewPartyPaymentService(scope, books, zap.NewNop()),
		discounts: appfinance.NewPartyDiscountService(scope, zap.NewNop()),
		actor:     &actor,
	}
}

func (s *services) cashBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	b, err := s.ledger.GetCashBalance(context.Background())
	require.NoError(t, err)
	return b.Balance
}

func cashIn(amount int64) appfinance.LedgerEntryRequest {
	return appfinance.LedgerEntryRequest{
		EntryDate:   time.Now(),
		Direction:   "IN",
		Amount:      decimal.NewFromInt(amount),
		Description: "opening cash",
	}
}

func TestLedgerService_CashEntries(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	assert.True(t, s.cashBalance(t).IsZero(), "an unused ledger reads zero")

	first, err := s.ledger.AddCashEntry(ctx, s.actor, cashIn(1000))
	require.NoError(t, err)
	assert.True(t, first.BalanceAfter.Equal(decimal.NewFromInt(1000)))

	out, err := s.ledger.AddCashEntry(ctx, s.actor, appfinance.LedgerEntryRequest{
		Direction:   "OUT",
		Amount:      decimal.NewFromInt(250),
		Description: "petty cash",
	})
	require.NoError(t, err)
	assert.True(t, out.BalanceAfter.Equal(decimal.NewFromInt(750)))

	balance, err := s.ledger.DeleteCashEntry(ctx, s.actor, out.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(1000)))

	_, err = s.ledger.DeleteCashEntry(ctx, s.actor, out.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState, "second delete is refused")

	entries, err := s.ledger.ListCashEntries(ctx, appfinance.EntryListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), entries.Total)

	all, err := s.ledger.ListCashEntries(ctx, appfinance.EntryListFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	_, err = s.ledger.AddCashEntry(ctx, s.actor, appfinance.LedgerEntryRequest{Direction: "SIDEWAYS", Amount: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestLedgerService_BankAccounts(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	bank, err := s.ledger.CreateBankAccount(ctx, appfinance.CreateBankAccountRequest{Name: "Main", AccountNumber: "0001"})
	require.NoError(t, err)
	assert.True(t, bank.IsActive)

	_, err = s.ledger.CreateBankAccount(ctx, appfinance.CreateBankAccountRequest{Name: "Copy", AccountNumber: "0001"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	_, err = s.ledger.AddBankTransaction(ctx, s.actor, bank.ID, cashIn(500))
	require.NoError(t, err)

	banks, err := s.ledger.ListBanksWithBalance(ctx, true)
	require.NoError(t, err)
	require.Len(t, banks, 1)
	require.NotNil(t, banks[0].Balance)
	assert.True(t, banks[0].Balance.Equal(decimal.NewFromInt(500)))
	assert.True(t, s.cashBalance(t).IsZero(), "bank entries leave the cashbook alone")

	_, err = s.ledger.AddBankTransaction(ctx, s.actor, uuid.New(), cashIn(1))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPartyPaymentService_VendorPaymentLifecycle(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	_, err := s.ledger.AddCashEntry(ctx, s.actor, cashIn(1000))
	require.NoError(t, err)

	vendorID := uuid.New()
	payment, err := s.payments.CreateVendorPayment(ctx, s.actor, appfinance.CreatePartyPaymentRequest{
		PartyID:     vendorID,
		PaymentDate: time.Now(),
		Amount:      decimal.NewFromInt(300),
		Method:      "CASH",
	})
	require.NoError(t, err)
	require.NotNil(t, payment.LedgerEntryID)
	assert.True(t, payment.BalanceAfter.Equal(decimal.NewFromInt(700)))
	assert.True(t, s.cashBalance(t).Equal(decimal.NewFromInt(700)))

	_, err = s.ledger.DeleteCashEntry(ctx, s.actor, *payment.LedgerEntryID)
	assert.ErrorIs(t, err, shared.ErrInvalidState, "payment entries are reversed through the payment")

	deleted, err := s.payments.SoftDelete(ctx, s.actor, payment.ID)
	require.NoError(t, err)
	assert.True(t, deleted.IsDeleted)
	assert.True(t, deleted.BalanceAfter.Equal(decimal.NewFromInt(1000)))
	assert.True(t, s.cashBalance(t).Equal(decimal.NewFromInt(1000)))

	_, err = s.payments.SoftDelete(ctx, s.actor, payment.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.True(t, s.cashBalance(t).Equal(decimal.NewFromInt(1000)), "second delete changes nothing")

	listed, err := s.payments.ListPayments(ctx, finance.PartyTypeVendor, vendorID, shared.Filter{})
	require.NoError(t, err)
	assert.Zero(t, listed.Total)
}

func TestPartyPaymentService_CustomerPaymentToBank(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	bank, err := s.ledger.CreateBankAccount(ctx, appfinance.CreateBankAccountRequest{Name: "Ops", AccountNumber: "0002"})
	require.NoError(t, err)

	payment, err := s.payments.CreateCustomerPayment(ctx, s.actor, appfinance.CreatePartyPaymentRequest{
		PartyID:     uuid.New(),
		PaymentDate: time.Now(),
		Amount:      decimal.NewFromInt(120),
		Method:      "BANK",
		BankID:      &bank.ID,
	})
	require.NoError(t, err)
	assert.True(t, payment.BalanceAfter.Equal(decimal.NewFromInt(120)))

	balance, err := s.ledger.GetBankBalance(ctx, bank.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(120)))

	_, err = s.payments.CreateCustomerPayment(ctx, s.actor, appfinance.CreatePartyPaymentRequest{
		PartyID:     uuid.New(),
		PaymentDate: time.Now(),
		Amount:      decimal.NewFromInt(1),
		Method:      "BANK",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput, "bank payments need a bank")
}

func TestPartyDiscountService(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()
	customer := uuid.New()

	discount, err := s.discounts.CreateDiscount(ctx, s.actor, appfinance.CreatePartyDiscountRequest{
		PartyType:    "CUSTOMER",
		PartyID:      customer,
		DiscountDate: time.Now(),
		Amount:       decimal.NewFromInt(120),
		Reason:       " loyalty ",
	})
	require.NoError(t, err)
	assert.Equal(t, "loyalty", discount.Reason)
	assert.Equal(t, s.actor, discount.CreatedBy)
	assert.True(t, s.cashBalance(t).IsZero())

	_, err = s.discounts.CreateDiscount(ctx, s.actor, appfinance.CreatePartyDiscountRequest{
		PartyType:    "CUSTOMER",
		PartyID:      customer,
		DiscountDate: time.Now(),
		Amount:       decimal.Zero,
	})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	page, err := s.discounts.ListDiscounts(ctx, finance.DiscountPartyCustomer, customer, shared.DefaultFilter())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, discount.ID, page.Items[0].ID)

	_, err = s.discounts.ListDiscounts(ctx, finance.DiscountParty("VENDOR"), customer, shared.DefaultFilter())
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	require.NoError(t, s.discounts.DeleteDiscount(ctx, s.actor, discount.ID))
	assert.ErrorIs(t, s.discounts.DeleteDiscount(ctx, s.actor, discount.ID), shared.ErrNotFound)
	assert.ErrorIs(t, s.discounts.DeleteDiscount(ctx, s.actor, uuid.New()), shared.ErrNotFound)

	page, err = s.discounts.ListDiscounts(ctx, finance.DiscountPartyCustomer, customer, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
