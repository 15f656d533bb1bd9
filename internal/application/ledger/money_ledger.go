package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Posting describes one ledger entry to post
type Posting struct {
	Account     finance.LedgerAccount
	Direction   finance.Direction
	Amount      decimal.Decimal
	EntryDate   time.Time
	Source      finance.EntrySource
	SourceID    *uuid.UUID
	PaymentID   *uuid.UUID
	Category    string
	Description string
	Reference   string
	Actor       *uuid.UUID
}

// MoneyLedger maintains cash and bank ledgers: append-only entries plus one
// balance row per ledger, both written in the same transaction.
type MoneyLedger struct {
	entries  finance.LedgerEntryRepository
	balances finance.LedgerBalanceRepository
	banks    finance.BankAccountRepository
	recorder Recorder
	logger   *zap.Logger
}

// Post appends an entry and applies it to the ledger balance
func (l *MoneyLedger) Post(ctx context.Context, p Posting) (*finance.LedgerEntry, error) {
	return l.post(ctx, p, true)
}

func (l *MoneyLedger) post(ctx context.Context, p Posting, requireActiveBank bool) (*finance.LedgerEntry, error) {
	entry, err := finance.NewLedgerEntry(p.Account, p.Direction, p.Amount, p.EntryDate, p.Source, p.Description)
	if err != nil {
		return nil, err
	}
	if p.Account.Channel == finance.ChannelBank {
		if err := l.checkBank(ctx, *p.Account.BankID, requireActiveBank); err != nil {
			return nil, err
		}
	}
	entry.SourceID = p.SourceID
	entry.PaymentID = p.PaymentID
	entry.Category = p.Category
	entry.Reference = p.Reference
	entry.CreatedBy = p.Actor

	balance, err := l.lockBalance(ctx, p.Account)
	if err != nil {
		return nil, err
	}
	entry.BalanceAfter = balance.Apply(entry.Signed(), entry.ID)

	if err := l.entries.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry: %w", err)
	}
	if err := l.balances.Update(ctx, balance); err != nil {
		return nil, fmt.Errorf("update ledger balance: %w", err)
	}
	l.recorder.LedgerPosted(ctx, entry.Channel, entry.Direction, entry.Amount)
	l.logger.Debug("ledger entry posted",
		zap.String("account", entry.AccountKey),
		zap.String("direction", string(entry.Direction)),
		zap.String("amount", entry.Amount.String()),
		zap.String("balance_after", entry.BalanceAfter.String()),
	)
	return entry, nil
}

func (l *MoneyLedger) checkBank(ctx context.Context, bankID uuid.UUID, requireActive bool) error {
	bank, err := l.banks.FindByID(ctx, bankID)
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError("Bank account not found")
	}
	if err != nil {
		return fmt.Errorf("load bank account: %w", err)
	}
	if requireActive && !bank.IsActive {
		return shared.NewInvalidStateError("Bank account is inactive")
	}
	return nil
}

// lockBalance locks the balance row of a ledger, creating it at zero on first use
func (l *MoneyLedger) lockBalance(ctx context.Context, account finance.LedgerAccount) (*finance.LedgerBalance, error) {
	key := account.Key()
	balance, err := l.balances.FindByAccountForUpdate(ctx, key)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("lock ledger balance: %w", err)
	}
	balance, err = finance.NewLedgerBalance(account)
	if err != nil {
		return nil, err
	}
	created, err := l.balances.Create(ctx, balance)
	if err != nil {
		return nil, fmt.Errorf("create ledger balance: %w", err)
	}
	if created {
		return balance, nil
	}
	balance, err = l.balances.FindByAccountForUpdate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("lock ledger balance: %w", err)
	}
	return balance, nil
}

// ReverseEntry marks an entry deleted and removes its exact signed amount from the balance
func (l *MoneyLedger) ReverseEntry(ctx context.Context, entryID uuid.UUID, actor *uuid.UUID) (*finance.LedgerEntry, error) {
	entry, err := l.entries.FindByIDForUpdate(ctx, entryID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Ledger entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lock ledger entry: %w", err)
	}
	if err := entry.MarkDeleted(actor); err != nil {
		return nil, err
	}
	balance, err := l.lockBalance(ctx, entry.Account())
	if err != nil {
		return nil, err
	}
	balance.Apply(entry.Signed().Neg(), entry.ID)

	if err := l.entries.MarkDeleted(ctx, entry); err != nil {
		return nil, fmt.Errorf("mark ledger entry deleted: %w", err)
	}
	if err := l.balances.Update(ctx, balance); err != nil {
		return nil, fmt.Errorf("update ledger balance: %w", err)
	}
	l.logger.Debug("ledger entry reversed",
		zap.String("entry_id", entry.ID.String()),
		zap.String("account", entry.AccountKey),
		zap.String("balance_after", balance.CurrentBalance.String()),
	)
	return entry, nil
}

// SettleRequest asks the ledger to bring a payment's net effect to Desired
type SettleRequest struct {
	PaymentID   uuid.UUID
	Source      finance.EntrySource
	SourceID    *uuid.UUID
	Desired     map[string]finance.AccountEffect
	EntryDate   time.Time
	Description string
	Reference   string
	Actor       *uuid.UUID
}

type settlement struct {
	posting     Posting
	activeCheck bool
}

// SettlePayments posts one compensating entry per payment and ledger whose
// current net effect differs from the desired one. Editing a payment from A
// to B on the same ledger therefore posts a single entry of B-A.
// An empty Desired settles the payment to zero on every ledger it touched.
// Postings are made in ledger key order so concurrent settlements lock
// balance rows in the same sequence.
func (l *MoneyLedger) SettlePayments(ctx context.Context, reqs ...SettleRequest) ([]*finance.LedgerEntry, error) {
	var plan []settlement
	for _, req := range reqs {
		planned, err := l.planSettlement(ctx, req)
		if err != nil {
			return nil, err
		}
		plan = append(plan, planned...)
	}
	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].posting.Account.Key() < plan[j].posting.Account.Key()
	})

	posted := make([]*finance.LedgerEntry, 0, len(plan))
	for _, s := range plan {
		entry, err := l.post(ctx, s.posting, s.activeCheck)
		if err != nil {
			return nil, err
		}
		posted = append(posted, entry)
	}
	return posted, nil
}

func (l *MoneyLedger) planSettlement(ctx context.Context, req SettleRequest) ([]settlement, error) {
	live, err := l.entries.ListLiveByPayment(ctx, req.PaymentID)
	if err != nil {
		return nil, fmt.Errorf("list payment entries: %w", err)
	}

	current := make(map[string]finance.AccountEffect)
	for i := range live {
		e := &live[i]
		eff := current[e.AccountKey]
		eff.Account = e.Account()
		eff.Signed = eff.Signed.Add(e.Signed())
		current[e.AccountKey] = eff
	}

	keys := make([]string, 0, len(current)+len(req.Desired))
	for k := range current {
		keys = append(keys, k)
	}
	for k := range req.Desired {
		if _, ok := current[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	paymentID := req.PaymentID
	var plan []settlement
	for _, key := range keys {
		want, wanted := req.Desired[key]
		have := current[key]
		diff := want.Signed.Sub(have.Signed)
		if diff.IsZero() {
			continue
		}
		account := want.Account
		if !wanted {
			account = have.Account
		}
		direction, amount := finance.DirectionOf(diff)
		plan = append(plan, settlement{
			posting: Posting{
				Account:     account,
				Direction:   direction,
				Amount:      amount,
				EntryDate:   req.EntryDate,
				Source:      req.Source,
				SourceID:    req.SourceID,
				PaymentID:   &paymentID,
				Category:    "PAYMENT",
				Description: req.Description,
				Reference:   req.Reference,
				Actor:       req.Actor,
			},
			// Unwinding a payment from a bank that has since been closed is allowed.
			activeCheck: wanted && !want.Signed.IsZero(),
		})
	}
	return plan, nil
}

// Balance returns the current balance of a ledger. A ledger without entries is zero.
func (l *MoneyLedger) Balance(ctx context.Context, account finance.LedgerAccount) (decimal.Decimal, error) {
	if err := account.Validate(); err != nil {
		return decimal.Zero, err
	}
	balance, err := l.balances.FindByAccount(ctx, account.Key())
	if errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("read ledger balance: %w", err)
	}
	return balance.CurrentBalance, nil
}
