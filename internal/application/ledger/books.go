package ledger

import (
	"context"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Recorder observes outcomes of the leaf components, typically to feed metrics.
type Recorder interface {
	StockRejected(ctx context.Context)
	SerialRejected(ctx context.Context)
	LedgerPosted(ctx context.Context, channel finance.Channel, direction finance.Direction, amount decimal.Decimal)
}

type nopRecorder struct{}

func (nopRecorder) StockRejected(context.Context)  {}
func (nopRecorder) SerialRejected(context.Context) {}
func (nopRecorder) LedgerPosted(context.Context, finance.Channel, finance.Direction, decimal.Decimal) {
}

// NopRecorder returns a Recorder that discards everything
func NopRecorder() Recorder {
	return nopRecorder{}
}

// Books bundles the stock ledger, serial registry, money ledger, and payment
// reconciler bound to the repositories of one transaction.
type Books struct {
	Stock    *StockLedger
	Serials  *SerialRegistry
	Money    *MoneyLedger
	Payments *PaymentReconciler
}

// Factory opens Books for a transaction with shared logger and recorder
type Factory struct {
	logger   *zap.Logger
	recorder Recorder
}

// NewFactory creates a Factory. A nil recorder discards observations.
func NewFactory(logger *zap.Logger, recorder Recorder) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	if recorder == nil {
		recorder = NopRecorder()
	}
	return &Factory{logger: logger, recorder: recorder}
}

// Open binds the components to repos
func (f *Factory) Open(repos Repositories) *Books {
	money := &MoneyLedger{
		entries:  repos.LedgerEntries(),
		balances: repos.LedgerBalances(),
		banks:    repos.BankAccounts(),
		recorder: f.recorder,
		logger:   f.logger,
	}
	return &Books{
		Stock: &StockLedger{
			positions: repos.StockPositions(),
			movements: repos.StockMovements(),
			recorder:  f.recorder,
			logger:    f.logger,
		},
		Serials: &SerialRegistry{
			units:    repos.SerialUnits(),
			recorder: f.recorder,
		},
		Money: money,
		Payments: &PaymentReconciler{
			payments: repos.PaymentRecords(),
			orders:   repos.SalesOrders(),
			invoices: repos.Invoices(),
			money:    money,
		},
	}
}
