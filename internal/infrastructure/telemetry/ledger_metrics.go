package telemetry

import (
	"context"
	"fmt"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	attrChannel   = attribute.Key("erp.ledger.channel")
	attrDirection = attribute.Key("erp.ledger.direction")
)

// LedgerMetrics records stock, serial and money ledger outcomes.
// Observations are made inside the database transaction, so a rolled back
// document can still count a posting.
type LedgerMetrics struct {
	stockRejections  metric.Int64Counter
	serialRejections metric.Int64Counter
	postings         metric.Int64Counter
	postedAmount     metric.Float64Counter
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	m := &LedgerMetrics{}
	var err error

	if m.stockRejections, err = meter.Int64Counter("erp.stock.rejections",
		metric.WithDescription("Stock debits refused for insufficient quantity"),
		metric.WithUnit("{rejection}"),
	); err != nil {
		return nil, fmt.Errorf("stock rejections counter: %w", err)
	}
	if m.serialRejections, err = meter.Int64Counter("erp.serial.rejections",
		metric.WithDescription("Serial reservations or receipts refused"),
		metric.WithUnit("{rejection}"),
	); err != nil {
		return nil, fmt.Errorf("serial rejections counter: %w", err)
	}
	if m.postings, err = meter.Int64Counter("erp.ledger.postings",
		metric.WithDescription("Cash and bank ledger entries posted"),
		metric.WithUnit("{entry}"),
	); err != nil {
		return nil, fmt.Errorf("ledger postings counter: %w", err)
	}
	if m.postedAmount, err = meter.Float64Counter("erp.ledger.posted_amount",
		metric.WithDescription("Sum of posted ledger entry amounts"),
	); err != nil {
		return nil, fmt.Errorf("ledger amount counter: %w", err)
	}
	return m, nil
}

// StockRejected implements ledger.Recorder
func (m *LedgerMetrics) StockRejected(ctx context.Context) {
	m.stockRejections.Add(ctx, 1)
}

// SerialRejected implements ledger.Recorder
func (m *LedgerMetrics) SerialRejected(ctx context.Context) {
	m.serialRejections.Add(ctx, 1)
}

// LedgerPosted implements ledger.Recorder
func (m *LedgerMetrics) LedgerPosted(ctx context.Context, channel finance.Channel, direction finance.Direction, amount decimal.Decimal) {
	attrs := metric.WithAttributes(
		attrChannel.String(string(channel)),
		attrDirection.String(string(direction)),
	)
	m.postings.Add(ctx, 1, attrs)
	m.postedAmount.Add(ctx, amount.Abs().InexactFloat64(), attrs)
}

var _ ledger.Recorder = (*LedgerMetrics)(nil)
