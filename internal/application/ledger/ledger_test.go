package ledger_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/inventory"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/internal/infrastructure/persistence/models"
	"github.com/erp/ledgercore/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type countingRecorder struct {
	stockRejected  atomic.Int32
	serialRejected atomic.Int32
	posted         atomic.Int32
}

func (r *countingRecorder) StockRejected(context.Context)  { r.stockRejected.Add(1) }
func (r *countingRecorder) SerialRejected(context.Context) { r.serialRejected.Add(1) }
func (r *countingRecorder) LedgerPosted(context.Context, finance.Channel, finance.Direction, decimal.Decimal) {
	r.posted.Add(1)
}

type books struct {
	db       *gorm.DB
	scope    *persistence.GormTransactionScope
	factory  *ledger.Factory
	recorder *countingRecorder
}

func newBooks(t *testing.T) *books {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	recorder := &countingRecorder{}
	return &books{
		db:       db,
		scope:    persistence.NewGormTransactionScope(db),
		factory:  ledger.NewFactory(zap.NewNop(), recorder),
		recorder: recorder,
	}
}

// run executes fn against Books bound to one transaction
func (b *books) run(t *testing.T, fn func(bk *ledger.Books) error) error {
	t.Helper()
	return b.scope.Execute(context.Background(), func(repos ledger.Repositories) error {
		return fn(b.factory.Open(repos))
	})
}

func (b *books) quantity(t *testing.T, productID, locationID uuid.UUID) decimal.Decimal {
	t.Helper()
	var qty decimal.Decimal
	require.NoError(t, b.run(t, func(bk *ledger.Books) error {
		var err error
		qty, err = bk.Stock.Available(context.Background(), productID, locationID)
		return err
	}))
	return qty
}

func (b *books) balance(t *testing.T, account finance.LedgerAccount) decimal.Decimal {
	t.Helper()
	var bal decimal.Decimal
	require.NoError(t, b.run(t, func(bk *ledger.Books) error {
		var err error
		bal, err = bk.Money.Balance(context.Background(), account)
		return err
	}))
	return bal
}

func delta(productID, locationID uuid.UUID, qty int64) ledger.StockDelta {
	return ledger.StockDelta{
		ProductID:  productID,
		LocationID: locationID,
		Quantity:   decimal.NewFromInt(qty),
		Source:     inventory.SourceRef{Type: inventory.MovementSourceAdjustment, ID: uuid.New()},
	}
}

func TestStockLedger_ApplyAll(t *testing.T) {
	ctx := context.Background()
	b := newBooks(t)
	product, other, location := uuid.New(), uuid.New(), uuid.New()

	t.Run("credits run before debits of the same position", func(t *testing.T) {
		err := b.run(t, func(bk *ledger.Books) error {
			return bk.Stock.ApplyAll(ctx, []ledger.StockDelta{
				delta(product, location, -3),
				delta(product, location, 5),
			})
		})
		require.NoError(t, err)
		assert.True(t, b.quantity(t, product, location).Equal(decimal.NewFromInt(2)))
	})

	t.Run("a failing delta rolls back the whole batch", func(t *testing.T) {
		err := b.run(t, func(bk *ledger.Books) error {
			return bk.Stock.ApplyAll(ctx, []ledger.StockDelta{
				delta(other, location, 4),
				delta(product, location, -9),
			})
		})
		var stockErr *inventory.InsufficientStockError
		require.True(t, errors.As(err, &stockErr))
		assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(2)))
		assert.True(t, b.quantity(t, other, location).IsZero())
		assert.True(t, b.quantity(t, product, location).Equal(decimal.NewFromInt(2)))
	})

	t.Run("debit of a missing position is insufficient stock", func(t *testing.T) {
		err := b.run(t, func(bk *ledger.Books) error {
			_, err := bk.Stock.ApplyDelta(ctx, delta(uuid.New(), location, -1))
			return err
		})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	})

	t.Run("zero delta reads without writing", func(t *testing.T) {
		var qty decimal.Decimal
		require.NoError(t, b.run(t, func(bk *ledger.Books) error {
			var err error
			qty, err = bk.Stock.ApplyDelta(ctx, delta(product, location, 0))
			return err
		}))
		assert.True(t, qty.Equal(decimal.NewFromInt(2)))
	})

	assert.Equal(t, int32(2), b.recorder.stockRejected.Load())
}

func TestSerialRegistry(t *testing.T) {
	ctx := context.Background()
	b := newBooks(t)
	product, location := uuid.New(), uuid.New()
	source := inventory.SourceRef{Type: inventory.MovementSourceGoodsReceipt, ID: uuid.New()}

	require.NoError(t, b.run(t, func(bk *ledger.Books) error {
		n, err := bk.Serials.Add(ctx, product, location, []string{"A", "B", "C"}, source, nil)
		if err != nil {
			return err
		}
		assert.Equal(t, int64(3), n)
		n, err = bk.Serials.Add(ctx, product, location, []string{"C", "D"}, source, nil)
		assert.Equal(t, int64(1), n, "registered serials are skipped")
		return err
	}))

	err := b.run(t, func(bk *ledger.Books) error {
		return bk.Serials.Reserve(ctx, product, location, []string{"A", "X", "B", "W"}, source, nil)
	})
	var serialErr *inventory.SerialUnavailableError
	require.True(t, errors.As(err, &serialErr))
	assert.Equal(t, []string{"W", "X"}, serialErr.Serials)
	assert.Equal(t, int32(1), b.recorder.serialRejected.Load())

	require.NoError(t, b.run(t, func(bk *ledger.Books) error {
		return bk.Serials.Reserve(ctx, product, location, []string{"A", "B"}, source, nil)
	}))
	err = b.run(t, func(bk *ledger.Books) error {
		return bk.Serials.Reserve(ctx, product, location, []string{"B"}, source, nil)
	})
	assert.ErrorIs(t, err, shared.ErrSerialUnavailable, "a reserved unit cannot be reserved twice")

	require.NoError(t, b.run(t, func(bk *ledger.Books) error {
		return bk.Serials.Release(ctx, product, location, []string{"B", "C"}, source, nil)
	}))
	require.NoError(t, b.run(t, func(bk *ledger.Books) error {
		return bk.Serials.Reserve(ctx, product, location, []string{"B"}, source, nil)
	}))
}

func TestMoneyLedger_SettlePaymentsNetsEachLedger(t *testing.T) {
	ctx := context.Background()
	b := newBooks(t)
	bank, err := finance.NewBankAccount("Main", "001", "", "")
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormBankAccountRepository(b.db).Create(ctx, bank))

	cash, bankBook := finance.CashAccount(), finance.BankLedger(bank.ID)
	paymentID, orderID := uuid.New(), uuid.New()
	settle := func(desired map[string]finance.AccountEffect) ([]*finance.LedgerEntry, error) {
		var posted []*finance.LedgerEntry
		err := b.run(t, func(bk *ledger.Books) error {
			var err error
			posted, err = bk.Money.SettlePayments(ctx, ledger.SettleRequest{
				PaymentID: paymentID,
				Source:    finance.EntrySourceSalesOrder,
				SourceID:  &orderID,
				Desired:   desired,
				EntryDate: time.Now(),
			})
			return err
		})
		return posted, err
	}
	effect := func(account finance.LedgerAccount, amount int64) map[string]finance.AccountEffect {
		return map[string]finance.AccountEffect{account.Key(): {Account: account, Signed: decimal.NewFromInt(amount)}}
	}

	posted, err := settle(effect(cash, 500))
	require.NoError(t, err)
	require.Len(t, posted, 1)

	posted, err = settle(effect(cash, 800))
	require.NoError(t, err)
	require.Len(t, posted, 1, "an edit posts only the difference")
	assert.Equal(t, finance.DirectionIn, posted[0].Direction)
	assert.True(t, posted[0].Amount.Equal(decimal.NewFromInt(300)))
	assert.True(t, posted[0].BalanceAfter.Equal(decimal.NewFromInt(800)))

	posted, err = settle(effect(cash, 800))
	require.NoError(t, err)
	assert.Empty(t, posted, "an unchanged payment posts nothing")

	posted, err = settle(effect(bankBook, 800))
	require.NoError(t, err)
	require.Len(t, posted, 2, "moving ledgers unwinds one and posts to the other")
	assert.True(t, b.balance(t, cash).IsZero())
	assert.True(t, b.balance(t, bankBook).Equal(decimal.NewFromInt(800)))

	t.Run("an inactive bank accepts unwinding only", func(t *testing.T) {
		require.NoError(t, b.db.Model(&models.BankAccountModel{}).Where("id = ?", bank.ID).Update("is_active", false).Error)

		_, err := settle(effect(bankBook, 900))
		assert.ErrorIs(t, err, shared.ErrInvalidState)

		_, err = settle(nil)
		require.NoError(t, err)
		assert.True(t, b.balance(t, bankBook).IsZero())
	})

	assert.Equal(t, int32(5), b.recorder.posted.Load())
}

func TestMoneyLedger_ReverseEntry(t *testing.T) {
	ctx := context.Background()
	b := newBooks(t)

	var entryID uuid.UUID
	require.NoError(t, b.run(t, func(bk *ledger.Books) error {
		entry, err := bk.Money.Post(ctx, ledger.Posting{
			Account:   finance.CashAccount(),
			Direction: finance.DirectionOut,
			Amount:    decimal.NewFromInt(120),
			Source:    finance.EntrySourceManual,
		})
		if err != nil {
			return err
		}
		entryID = entry.ID
		return nil
	}))
	assert.True(t, b.balance(t, finance.CashAccount()).Equal(decimal.NewFromInt(-120)))

	require.NoError(t, b.run(t, func(bk *ledger.Books) error {
		_, err := bk.Money.ReverseEntry(ctx, entryID, nil)
		return err
	}))
	assert.True(t, b.balance(t, finance.CashAccount()).IsZero())

	err := b.run(t, func(bk *ledger.Books) error {
		_, err := bk.Money.ReverseEntry(ctx, entryID, nil)
		return err
	})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	err = b.run(t, func(bk *ledger.Books) error {
		_, err := bk.Money.ReverseEntry(ctx, uuid.New(), nil)
		return err
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)

	err = b.run(t, func(bk *ledger.Books) error {
		_, err := bk.Money.Post(ctx, ledger.Posting{
			Account:   finance.BankLedger(uuid.New()),
			Direction: finance.DirectionIn,
			Amount:    decimal.NewFromInt(1),
			Source:    finance.EntrySourceManual,
		})
		return err
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
