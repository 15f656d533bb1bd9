package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEntry(t *testing.T, account finance.LedgerAccount, direction finance.Direction, amount int64) *finance.LedgerEntry {
	t.Helper()
	entry, err := finance.NewLedgerEntry(account, direction, decimal.NewFromInt(amount), time.Now(), finance.EntrySourceManual, "test")
	require.NoError(t, err)
	return entry
}

func TestGormLedgerEntryRepository_MarkDeleted(t *testing.T) {
	t.Run("flags a live entry", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormLedgerEntryRepository(db.DB)

		entry := newTestEntry(t, finance.CashAccount(), finance.DirectionIn, 100)
		require.NoError(t, entry.MarkDeleted(nil))

		mock.ExpectExec(`UPDATE "ledger_entries" SET .* WHERE id = \$\d+ AND is_deleted = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.MarkDeleted(context.Background(), entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already deleted entry is not found", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()
		repo := NewGormLedgerEntryRepository(db.DB)

		entry := newTestEntry(t, finance.CashAccount(), finance.DirectionIn, 100)
		require.NoError(t, entry.MarkDeleted(nil))

		mock.ExpectExec(`UPDATE "ledger_entries" SET .* AND is_deleted`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkDeleted(context.Background(), entry)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerBalanceRepository_FindByAccountForUpdate(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormLedgerBalanceRepository(db.DB)

	bankID := uuid.New()
	account := finance.BankLedger(bankID)
	rows := sqlmock.NewRows([]string{"id", "account_key", "channel", "bank_id", "current_balance", "version"}).
		AddRow(uuid.New(), account.Key(), "BANK", bankID, "250.75", 4)
	mock.ExpectQuery(`SELECT \* FROM "ledger_balances" WHERE account_key = \$1 .* FOR UPDATE`).
		WithArgs(account.Key(), 1).
		WillReturnRows(rows)

	balance, err := repo.FindByAccountForUpdate(context.Background(), account.Key())

	require.NoError(t, err)
	assert.Equal(t, finance.ChannelBank, balance.Channel)
	require.NotNil(t, balance.BankID)
	assert.Equal(t, bankID, *balance.BankID)
	assert.True(t, balance.CurrentBalance.Equal(decimal.RequireFromString("250.75")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLedgerEntryRepository_ListByAccount(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormLedgerEntryRepository(db)

	cash := finance.CashAccount()
	bank := finance.BankLedger(uuid.New())
	live := newTestEntry(t, cash, finance.DirectionIn, 100)
	deleted := newTestEntry(t, cash, finance.DirectionOut, 40)
	other := newTestEntry(t, bank, finance.DirectionIn, 10)
	for _, e := range []*finance.LedgerEntry{live, deleted, other} {
		require.NoError(t, repo.Append(ctx, e))
	}
	require.NoError(t, deleted.MarkDeleted(nil))
	require.NoError(t, repo.MarkDeleted(ctx, deleted))

	entries, total, err := repo.ListByAccount(ctx, cash.Key(), finance.EntryFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, live.ID, entries[0].ID)

	entries, total, err = repo.ListByAccount(ctx, cash.Key(), finance.EntryFilter{IncludeDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 2)

	// a second delete of the same entry must not succeed
	assert.ErrorIs(t, repo.MarkDeleted(ctx, deleted), shared.ErrNotFound)
}

func TestGormLedgerEntryRepository_ListByAccountDateRange(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormLedgerEntryRepository(db)

	day := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	cash := finance.CashAccount()
	post := func(at time.Time) *finance.LedgerEntry {
		entry, err := finance.NewLedgerEntry(cash, finance.DirectionIn, decimal.NewFromInt(10), at, finance.EntrySourceManual, "test")
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, entry))
		return entry
	}
	post(day.Add(-time.Hour))
	morning := post(day.Add(9 * time.Hour))
	evening := post(day.Add(23*time.Hour + 59*time.Minute))
	post(day.AddDate(0, 0, 1))

	filter := finance.EntryFilter{Filter: shared.Filter{From: &day, To: &day}}
	entries, total, err := repo.ListByAccount(ctx, cash.Key(), filter)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total, "to covers the whole of its day")
	require.Len(t, entries, 2)
	assert.Equal(t, evening.ID, entries[0].ID)
	assert.Equal(t, morning.ID, entries[1].ID)
}

func TestWithinDates_ToIsExclusiveNextDay(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormLedgerEntryRepository(db.DB)

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "ledger_entries" WHERE account_key = \$1 AND entry_date >= \$2 AND entry_date < \$3`).
		WithArgs("CASH", from, to.AddDate(0, 0, 1), false).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT \* FROM "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, total, err := repo.ListByAccount(context.Background(), "CASH",
		finance.EntryFilter{Filter: shared.Filter{From: &from, To: &to}})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLedgerBalanceRepository_CreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewSQLiteDB(t)
	repo := NewGormLedgerBalanceRepository(db)

	first, err := finance.NewLedgerBalance(finance.CashAccount())
	require.NoError(t, err)
	second, err := finance.NewLedgerBalance(finance.CashAccount())
	require.NoError(t, err)

	created, err := repo.Create(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, second)
	require.NoError(t, err)
	assert.False(t, created)

	stored, err := repo.FindByAccount(ctx, finance.CashAccount().Key())
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.True(t, stored.CurrentBalance.IsZero())
}
