package trade_test

import (
	"context"
	"testing"
	"time"

	appfinance "github.com/erp/ledgercore/internal/application/finance"
	appinventory "github.com/erp/ledgercore/internal/application/inventory"
	"github.com/erp/ledgercore/internal/application/ledger"
	apptrade "github.com/erp/ledgercore/internal/application/trade"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	orders    *apptrade.SalesOrderService
	invoices  *apptrade.InvoiceService
	inventory *appinventory.InventoryService
	cash      *appfinance.LedgerService
	actor     *uuid.UUID
	location  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	books := ledger.NewFactory(zap.NewNop(), nil)
	actor := testutil.TestUserID()
	return &fixture{
		db:        db,
		orders:    apptrade.NewSalesOrderService(scope, books, zap.NewNop()),
		invoices:  apptrade.NewInvoiceService(scope, books, zap.NewNop()),
		inventory: appinventory.NewInventoryService(scope, books, zap.NewNop()),
		cash:      appfinance.NewLedgerService(scope, books, zap.NewNop()),
		actor:     &actor,
		location:  uuid.New(),
	}
}

// stock puts qty units of a product on hand, registering serials when given
func (f *fixture) stock(t *testing.T, productID uuid.UUID, qty int64, serials ...string) {
	t.Helper()
	_, err := f.inventory.ApplyAdjustments(context.Background(), f.actor, appinventory.ApplyAdjustmentsRequest{
		Adjustments: []appinventory.AdjustmentRequest{{
			ProductID:      productID,
			LocationID:     f.location,
			QuantityChange: decimal.NewFromInt(qty),
			Reason:         "opening stock",
			SerialTracked:  len(serials) > 0,
			SerialsAdd:     serials,
		}},
	})
	require.NoError(t, err)
}

func (f *fixture) quantity(t *testing.T, productID uuid.UUID) decimal.Decimal {
	t.Helper()
	pos, err := f.inventory.GetStockPosition(context.Background(), productID, f.location)
	require.NoError(t, err)
	return pos.Quantity
}

func (f *fixture) serialStatus(t *testing.T, productID uuid.UUID) map[string]string {
	t.Helper()
	units, err := f.inventory.ListSerials(context.Background(), productID, f.location, "")
	require.NoError(t, err)
	out := make(map[string]string, len(units))
	for _, u := range units {
		out[u.SerialNumber] = u.Status
	}
	return out
}

func (f *fixture) cashBalance(t *testing.T) decimal.Decimal {
	t.Helper()
	b, err := f.cash.GetCashBalance(context.Background())
	require.NoError(t, err)
	return b.Balance
}

func (f *fixture) orderRequest(code string, lines ...apptrade.SalesOrderLineRequest) apptrade.SaveSalesOrderRequest {
	return apptrade.SaveSalesOrderRequest{
		OrderCode:  code,
		OrderDate:  time.Now(),
		LocationID: f.location,
		Lines:      lines,
	}
}

func orderLine(productID uuid.UUID, qty, price int64, serials ...string) apptrade.SalesOrderLineRequest {
	return apptrade.SalesOrderLineRequest{
		ProductID:     productID,
		Quantity:      decimal.NewFromInt(qty),
		UnitPrice:     decimal.NewFromInt(price),
		SerialTracked: len(serials) > 0,
		SerialNumbers: serials,
	}
}

func cashPayment(id *uuid.UUID, amount int64) apptrade.PaymentRequest {
	return apptrade.PaymentRequest{ID: id, PaymentDate: time.Now(), Amount: decimal.NewFromInt(amount), Mode: "cash"}
}

func TestSalesOrderService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plain, tracked := uuid.New(), uuid.New()
	f.stock(t, plain, 10)
	f.stock(t, tracked, 3, "S1", "S2", "S3")

	order, err := f.orders.SaveOrder(ctx, f.actor, f.orderRequest("SO-1",
		orderLine(plain, 4, 100),
		orderLine(tracked, 2, 50, "S1", "S2"),
	))
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", order.Status)
	assert.Equal(t, string(finance.PaymentStatusUnpaid), order.PaymentStatus)
	assert.True(t, order.GrandTotalRounded.Equal(decimal.NewFromInt(500)))
	assert.True(t, f.quantity(t, plain).Equal(decimal.NewFromInt(6)))
	assert.True(t, f.quantity(t, tracked).Equal(decimal.NewFromInt(1)))
	assert.Equal(t, map[string]string{"S1": "out_of_stock", "S2": "out_of_stock", "S3": "in_stock"}, f.serialStatus(t, tracked))

	_, err = f.orders.SaveOrder(ctx, f.actor, f.orderRequest("SO-1", orderLine(plain, 1, 1)))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	// revise: one more plain unit, swap S2 for S3 at the same quantity
	edit := f.orderRequest("SO-1",
		orderLine(plain, 5, 100),
		orderLine(tracked, 2, 50, "S1", "S3"),
	)
	edit.ID = &order.ID
	edit.Lines[0].ID = &order.Lines[0].ID
	edit.Lines[1].ID = &order.Lines[1].ID
	revised, err := f.orders.SaveOrder(ctx, f.actor, edit)
	require.NoError(t, err)
	assert.True(t, revised.GrandTotalRounded.Equal(decimal.NewFromInt(600)))
	assert.True(t, f.quantity(t, plain).Equal(decimal.NewFromInt(5)))
	assert.True(t, f.quantity(t, tracked).Equal(decimal.NewFromInt(1)))
	assert.Equal(t, map[string]string{"S1": "out_of_stock", "S2": "in_stock", "S3": "out_of_stock"}, f.serialStatus(t, tracked))

	movements, err := f.inventory.ListDocumentMovements(ctx, "SALES_ORDER", order.ID)
	require.NoError(t, err)
	require.Len(t, movements, 3, "the revision moves only the plain delta")
	assert.True(t, movements[2].Quantity.Equal(decimal.NewFromInt(-1)))
	assert.Equal(t, "SO-SO-1", movements[2].Reference)

	t.Run("an edit beyond stock changes nothing", func(t *testing.T) {
		over := f.orderRequest("SO-1",
			orderLine(plain, 50, 100),
			orderLine(tracked, 2, 50, "S1", "S3"),
		)
		over.ID = &order.ID
		over.Lines[0].ID = &order.Lines[0].ID
		over.Lines[1].ID = &order.Lines[1].ID
		_, err := f.orders.SaveOrder(ctx, f.actor, over)
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		assert.True(t, f.quantity(t, plain).Equal(decimal.NewFromInt(5)))

		stored, err := f.orders.GetOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, stored.Lines[0].Quantity.Equal(decimal.NewFromInt(5)))
	})

	t.Run("an unavailable serial is rejected", func(t *testing.T) {
		_, err := f.orders.SaveOrder(ctx, f.actor, f.orderRequest("SO-2", orderLine(tracked, 1, 50, "S1")))
		assert.ErrorIs(t, err, shared.ErrSerialUnavailable)
	})

	cancelled, err := f.orders.CancelOrder(ctx, f.actor, order.ID, apptrade.CancelSalesOrderRequest{Reason: "customer withdrew"})
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", cancelled.Status)
	assert.Equal(t, "customer withdrew", cancelled.CancellationReason)
	assert.True(t, f.quantity(t, plain).Equal(decimal.NewFromInt(10)))
	assert.True(t, f.quantity(t, tracked).Equal(decimal.NewFromInt(3)))
	assert.Equal(t, map[string]string{"S1": "in_stock", "S2": "in_stock", "S3": "in_stock"}, f.serialStatus(t, tracked))

	reversal, err := f.inventory.ListDocumentMovements(ctx, "SALES_ORDER_CANCEL", order.ID)
	require.NoError(t, err)
	assert.Len(t, reversal, 2)

	_, err = f.orders.CancelOrder(ctx, f.actor, order.ID, apptrade.CancelSalesOrderRequest{Reason: "again"})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = f.orders.CancelOrder(ctx, f.actor, uuid.New(), apptrade.CancelSalesOrderRequest{Reason: "missing"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSalesOrderService_PaymentEditsPostTheDifference(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := uuid.New()
	f.stock(t, product, 5)

	order, err := f.orders.SaveOrder(ctx, f.actor, f.orderRequest("SO-PAY", orderLine(product, 5, 100)))
	require.NoError(t, err)

	rec, err := f.orders.SyncPayments(ctx, f.actor, order.ID, apptrade.SyncPaymentsRequest{
		Payments: []apptrade.PaymentRequest{cashPayment(nil, 500)},
	})
	require.NoError(t, err)
	require.Len(t, rec.Payments, 1)
	assert.Equal(t, string(finance.PaymentStatusFullPaid), rec.PaymentStatus)
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(500)))

	paymentID := rec.Payments[0].ID
	rec, err = f.orders.SyncPayments(ctx, f.actor, order.ID, apptrade.SyncPaymentsRequest{
		Payments: []apptrade.PaymentRequest{cashPayment(&paymentID, 800)},
	})
	require.NoError(t, err)
	assert.Equal(t, string(finance.PaymentStatusOverpaid), rec.PaymentStatus)
	assert.True(t, rec.TotalPaid.Equal(decimal.NewFromInt(800)))
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(800)))

	entries, err := f.cash.ListCashEntries(ctx, appfinance.EntryListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), entries.Total, "the edit posts one compensating entry")
	amounts := []string{entries.Items[0].Amount.String(), entries.Items[1].Amount.String()}
	assert.ElementsMatch(t, []string{"500", "300"}, amounts)

	t.Run("moving a payment off cash unwinds the cash ledger", func(t *testing.T) {
		upi := cashPayment(&paymentID, 800)
		upi.Mode = "UPI"
		rec, err := f.orders.SavePayment(ctx, f.actor, order.ID, upi)
		require.NoError(t, err)
		assert.Equal(t, string(finance.PaymentStatusOverpaid), rec.PaymentStatus)
		assert.True(t, f.cashBalance(t).IsZero())
	})

	t.Run("revising the order recomputes the status", func(t *testing.T) {
		f.stock(t, product, 3)
		edit := f.orderRequest("SO-PAY", orderLine(product, 8, 100))
		edit.ID = &order.ID
		edit.Lines[0].ID = &order.Lines[0].ID
		saved, err := f.orders.SaveOrder(ctx, f.actor, edit)
		require.NoError(t, err)
		assert.Equal(t, string(finance.PaymentStatusFullPaid), saved.PaymentStatus)
	})

	rec, err = f.orders.DeletePayment(ctx, f.actor, order.ID, paymentID)
	require.NoError(t, err)
	assert.Equal(t, string(finance.PaymentStatusUnpaid), rec.PaymentStatus)
	assert.Empty(t, rec.Payments)

	_, err = f.orders.DeletePayment(ctx, f.actor, order.ID, paymentID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSalesOrderService_CancelledOrderKeepsPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := uuid.New()
	f.stock(t, product, 1)

	req := f.orderRequest("SO-KEEP", orderLine(product, 1, 250))
	payments := []apptrade.PaymentRequest{cashPayment(nil, 100)}
	req.Payments = &payments
	order, err := f.orders.SaveOrder(ctx, f.actor, req)
	require.NoError(t, err)
	assert.Equal(t, string(finance.PaymentStatusPartial), order.PaymentStatus)

	_, err = f.orders.CancelOrder(ctx, f.actor, order.ID, apptrade.CancelSalesOrderRequest{Reason: "stock damaged"})
	require.NoError(t, err)

	listed, err := f.orders.ListPayments(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(100)))
}

func TestInvoiceService_Payments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendorID := uuid.New()

	invoice, err := f.invoices.SaveInvoice(ctx, f.actor, apptrade.SaveInvoiceRequest{
		InvoiceNumber: "INV-1",
		VendorID:      vendorID,
		InvoiceDate:   time.Now(),
		InvoiceAmount: decimal.NewFromInt(1000),
		CGSTAmount:    decimal.NewFromInt(90),
		SGSTAmount:    decimal.NewFromInt(90),
	})
	require.NoError(t, err)
	assert.True(t, invoice.TotalAmount.Equal(decimal.NewFromInt(1180)))

	_, err = f.invoices.SaveInvoice(ctx, f.actor, apptrade.SaveInvoiceRequest{
		InvoiceNumber: "INV-1",
		VendorID:      vendorID,
		InvoiceDate:   time.Now(),
		InvoiceAmount: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	rec, err := f.invoices.SavePayment(ctx, f.actor, invoice.ID, cashPayment(nil, 500))
	require.NoError(t, err)
	assert.Equal(t, string(finance.PaymentStatusPartial), rec.PaymentStatus)
	assert.True(t, f.cashBalance(t).Equal(decimal.NewFromInt(-500)), "invoice payments leave the cashbook")

	err = f.invoices.DeleteInvoice(ctx, f.actor, invoice.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	rec, err = f.invoices.DeletePayment(ctx, f.actor, invoice.ID, rec.Payments[0].ID)
	require.NoError(t, err)
	assert.Equal(t, string(finance.PaymentStatusUnpaid), rec.PaymentStatus)
	assert.True(t, f.cashBalance(t).IsZero())

	require.NoError(t, f.invoices.DeleteInvoice(ctx, f.actor, invoice.ID))
	_, err = f.invoices.GetInvoice(ctx, invoice.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = f.invoices.SavePayment(ctx, f.actor, invoice.ID, cashPayment(nil, 1))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceService_ZeroTotalInvoiceIsSettled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invoice, err := f.invoices.SaveInvoice(ctx, f.actor, apptrade.SaveInvoiceRequest{
		InvoiceNumber: "INV-0",
		VendorID:      uuid.New(),
		InvoiceDate:   time.Now(),
		InvoiceAmount: decimal.Zero,
	})
	require.NoError(t, err)
	assert.Equal(t, string(finance.PaymentStatusFullPaid), invoice.PaymentStatus)

	stored, err := f.invoices.GetInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, string(finance.PaymentStatusFullPaid), stored.PaymentStatus)
}

func TestInvoiceService_BankPaymentNeedsActiveBank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bank, err := f.cash.CreateBankAccount(ctx, appfinance.CreateBankAccountRequest{Name: "Main", AccountNumber: "77"})
	require.NoError(t, err)

	invoice, err := f.invoices.SaveInvoice(ctx, f.actor, apptrade.SaveInvoiceRequest{
		InvoiceNumber: "INV-B",
		VendorID:      uuid.New(),
		InvoiceDate:   time.Now(),
		InvoiceAmount: decimal.NewFromInt(200),
	})
	require.NoError(t, err)

	payment := apptrade.PaymentRequest{PaymentDate: time.Now(), Amount: decimal.NewFromInt(200), Mode: "BANK", BankID: &bank.ID}
	rec, err := f.invoices.SavePayment(ctx, f.actor, invoice.ID, payment)
	require.NoError(t, err)
	assert.Equal(t, string(finance.PaymentStatusFullPaid), rec.PaymentStatus)

	balance, err := f.cash.GetBankBalance(ctx, bank.ID)
	require.NoError(t, err)
	assert.True(t, balance.Balance.Equal(decimal.NewFromInt(-200)))
	assert.True(t, f.cashBalance(t).IsZero())

	unknown := uuid.New()
	payment.BankID = &unknown
	_, err = f.invoices.SavePayment(ctx, f.actor, invoice.ID, payment)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
