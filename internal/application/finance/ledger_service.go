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

// LedgerService maintains the cashbook and bank ledgers: direct entries,
// their deletion, listings, and balances.
type LedgerService struct {
	scope  ledger.TransactionScope
	books  *ledger.Factory
	logger *zap.Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(scope ledger.TransactionScope, books *ledger.Factory, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{
		scope:  scope,
		books:  books,
		logger: logger,
	}
}

// AddCashEntry posts a direct cashbook entry
func (s *LedgerService) AddCashEntry(ctx context.Context, actor *uuid.UUID, req LedgerEntryRequest) (*LedgerEntryResponse, error) {
	return s.addEntry(ctx, actor, finance.CashAccount(), req)
}

// AddBankTransaction posts a direct entry on a bank ledger
func (s *LedgerService) AddBankTransaction(ctx context.Context, actor *uuid.UUID, bankID uuid.UUID, req LedgerEntryRequest) (*LedgerEntryResponse, error) {
	return s.addEntry(ctx, actor, finance.BankLedger(bankID), req)
}

func (s *LedgerService) addEntry(ctx context.Context, actor *uuid.UUID, account finance.LedgerAccount, req LedgerEntryRequest) (*LedgerEntryResponse, error) {
	direction := finance.Direction(req.Direction)
	if !direction.IsValid() {
		return nil, shared.NewValidationError("Direction must be IN or OUT")
	}
	var resp LedgerEntryResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		entry, err := s.books.Open(repos).Money.Post(ctx, ledger.Posting{
			Account:     account,
			Direction:   direction,
			Amount:      req.Amount,
			EntryDate:   req.EntryDate,
			Source:      finance.EntrySourceManual,
			Category:    req.Category,
			Description: req.Description,
			Reference:   req.Reference,
			Actor:       actor,
		})
		if err != nil {
			return err
		}
		resp = ToLedgerEntryResponse(entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("ledger entry added",
		zap.String("account", account.Key()),
		zap.String("direction", resp.Direction),
		zap.String("amount", resp.Amount.String()),
		zap.String("balance_after", resp.BalanceAfter.String()),
	)
	return &resp, nil
}

// DeleteCashEntry deletes a direct cashbook entry and reverses its effect
func (s *LedgerService) DeleteCashEntry(ctx context.Context, actor *uuid.UUID, entryID uuid.UUID) (*BalanceResponse, error) {
	return s.deleteEntry(ctx, actor, finance.CashAccount(), entryID)
}

// DeleteBankTransaction deletes a direct bank entry and reverses its effect
func (s *LedgerService) DeleteBankTransaction(ctx context.Context, actor *uuid.UUID, bankID, entryID uuid.UUID) (*BalanceResponse, error) {
	return s.deleteEntry(ctx, actor, finance.BankLedger(bankID), entryID)
}

// deleteEntry only accepts manual entries; entries caused by payments are
// reversed through the payment that owns them.
func (s *LedgerService) deleteEntry(ctx context.Context, actor *uuid.UUID, account finance.LedgerAccount, entryID uuid.UUID) (*BalanceResponse, error) {
	var resp BalanceResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		entry, err := repos.LedgerEntries().FindByID(ctx, entryID)
		if errors.Is(err, shared.ErrNotFound) || (err == nil && entry.AccountKey != account.Key()) {
			return shared.NewNotFoundError("Ledger entry not found")
		}
		if err != nil {
			return fmt.Errorf("load ledger entry: %w", err)
		}
		if entry.SourceType != finance.EntrySourceManual || entry.PaymentID != nil {
			return shared.NewInvalidStateError("Entry belongs to a payment; delete the payment instead")
		}
		money := s.books.Open(repos).Money
		if _, err := money.ReverseEntry(ctx, entryID, actor); err != nil {
			return err
		}
		balance, err := money.Balance(ctx, account)
		if err != nil {
			return err
		}
		resp = BalanceResponse{Channel: string(account.Channel), BankID: account.BankID, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("ledger entry deleted",
		zap.String("account", account.Key()),
		zap.String("entry_id", entryID.String()),
		zap.String("balance", resp.Balance.String()),
	)
	return &resp, nil
}

// ListCashEntries lists cashbook entries, newest first
func (s *LedgerService) ListCashEntries(ctx context.Context, filter EntryListFilter) (*shared.Paginated[LedgerEntryResponse], error) {
	return s.listEntries(ctx, finance.CashAccount(), filter)
}

// ListBankTransactions lists the entries of a bank ledger, newest first
func (s *LedgerService) ListBankTransactions(ctx context.Context, bankID uuid.UUID, filter EntryListFilter) (*shared.Paginated[LedgerEntryResponse], error) {
	return s.listEntries(ctx, finance.BankLedger(bankID), filter)
}

func (s *LedgerService) listEntries(ctx context.Context, account finance.LedgerAccount, filter EntryListFilter) (*shared.Paginated[LedgerEntryResponse], error) {
	f := finance.EntryFilter{
		Filter:         shared.Filter{Page: filter.Page, PageSize: filter.PageSize, From: filter.From, To: filter.To}.Normalize(),
		IncludeDeleted: filter.IncludeDeleted,
	}
	var page shared.Paginated[LedgerEntryResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		entries, total, err := repos.LedgerEntries().ListByAccount(ctx, account.Key(), f)
		if err != nil {
			return err
		}
		items := make([]LedgerEntryResponse, len(entries))
		for i := range entries {
			items[i] = ToLedgerEntryResponse(&entries[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetCashBalance returns the cashbook balance
func (s *LedgerService) GetCashBalance(ctx context.Context) (*BalanceResponse, error) {
	return s.balance(ctx, finance.CashAccount())
}

// GetBankBalance returns the balance of a bank ledger
func (s *LedgerService) GetBankBalance(ctx context.Context, bankID uuid.UUID) (*BalanceResponse, error) {
	return s.balance(ctx, finance.BankLedger(bankID))
}

func (s *LedgerService) balance(ctx context.Context, account finance.LedgerAccount) (*BalanceResponse, error) {
	var resp BalanceResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		if account.Channel == finance.ChannelBank {
			if _, err := repos.BankAccounts().FindByID(ctx, *account.BankID); err != nil {
				return err
			}
		}
		balance, err := s.books.Open(repos).Money.Balance(ctx, account)
		if err != nil {
			return err
		}
		resp = BalanceResponse{Channel: string(account.Channel), BankID: account.BankID, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateBankAccount registers a bank account. Account numbers are unique.
func (s *LedgerService) CreateBankAccount(ctx context.Context, req CreateBankAccountRequest) (*BankAccountResponse, error) {
	bank, err := finance.NewBankAccount(req.Name, req.AccountNumber, req.IFSCCode, req.BranchName)
	if err != nil {
		return nil, err
	}
	err = s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		exists, err := repos.BankAccounts().ExistsByAccountNumber(ctx, bank.AccountNumber)
		if err != nil {
			return fmt.Errorf("check account number: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Bank account number already exists")
		}
		return repos.BankAccounts().Create(ctx, bank)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("bank account created", zap.String("bank_id", bank.ID.String()), zap.String("name", bank.Name))
	resp := ToBankAccountResponse(bank)
	return &resp, nil
}

// ListBanksWithBalance lists bank accounts with their current balances
func (s *LedgerService) ListBanksWithBalance(ctx context.Context, activeOnly bool) ([]BankAccountResponse, error) {
	var out []BankAccountResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		banks, err := repos.BankAccounts().List(ctx, activeOnly)
		if err != nil {
			return err
		}
		balances, err := repos.LedgerBalances().ListByChannel(ctx, finance.ChannelBank)
		if err != nil {
			return err
		}
		byKey := make(map[string]finance.LedgerBalance, len(balances))
		for _, b := range balances {
			byKey[b.AccountKey] = b
		}
		out = make([]BankAccountResponse, len(banks))
		for i := range banks {
			resp := ToBankAccountResponse(&banks[i])
			balance := byKey[finance.BankLedger(banks[i].ID).Key()].CurrentBalance
			resp.Balance = &balance
			out[i] = resp
		}
		return nil
	})
	return out, err
}
