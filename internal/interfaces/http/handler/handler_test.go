package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appfinance "github.com/erp/ledgercore/internal/application/finance"
	appinventory "github.com/erp/ledgercore/internal/application/inventory"
	"github.com/erp/ledgercore/internal/application/ledger"
	apptrade "github.com/erp/ledgercore/internal/application/trade"
	"github.com/erp/ledgercore/internal/infrastructure/persistence"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/erp/ledgercore/internal/interfaces/http/handler"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/erp/ledgercore/tests/testutil"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
	Meta    *dto.Meta      `json:"meta"`
}

type idOnly struct {
	ID uuid.UUID `json:"id"`
}

type api struct {
	t        *testing.T
	engine   *gin.Engine
	actor    uuid.UUID
	location uuid.UUID
}

func newAPI(t *testing.T) *api {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	scope := persistence.NewGormTransactionScope(db)
	books := ledger.NewFactory(zap.NewNop(), nil)
	log := zap.NewNop()

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Actor())
	rg := engine.Group("/api/v1")
	handler.NewInventoryHandler(appinventory.NewInventoryService(scope, books, log)).RegisterRoutes(rg)
	handler.NewSalesOrderHandler(apptrade.NewSalesOrderService(scope, books, log)).RegisterRoutes(rg)
	handler.NewInvoiceHandler(apptrade.NewInvoiceService(scope, books, log)).RegisterRoutes(rg)
	handler.NewFinanceHandler(
		appfinance.NewLedgerService(scope, books, log),
		appfinance.NewPartyPaymentService(scope, books, log),
		appfinance.NewPartyDiscountService(scope, log),
	).RegisterRoutes(rg)
	handler.NewHealthHandler(db, "ledgercore", "test").RegisterRoutes(engine.Group(""))

	return &api{t: t, engine: engine, actor: testutil.TestUserID(), location: uuid.New()}
}

func (a *api) do(method, path string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorHeader, a.actor.String())
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	env := decode[json.RawMessage](t, w)
	require.NotNil(t, env.Error, w.Body.String())
	return env.Error.Code
}

func today() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// stock opens qty units of productID at the api's location
func (a *api) stock(productID uuid.UUID, qty int) {
	a.t.Helper()
	w := a.do(http.MethodPost, "/inventory-adjustments", gin.H{
		"adjustments": []gin.H{{
			"product_id":      productID,
			"location_id":     a.location,
			"quantity_change": fmt.Sprint(qty),
			"reason":          "opening stock",
		}},
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
}

func (a *api) quantity(productID uuid.UUID) decimal.Decimal {
	a.t.Helper()
	w := a.do(http.MethodGet, fmt.Sprintf("/stock/positions/%s/%s", productID, a.location), nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[appinventory.StockPositionResponse](a.t, w).Data.Quantity
}

func (a *api) cashBalance() decimal.Decimal {
	a.t.Helper()
	w := a.do(http.MethodGet, "/cash/balance", nil)
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	return decode[appfinance.BalanceResponse](a.t, w).Data.Balance
}

func TestInventoryHandler(t *testing.T) {
	a := newAPI(t)
	product := uuid.New()
	a.stock(product, 5)
	assert.True(t, a.quantity(product).Equal(decimal.NewFromInt(5)))

	issue := func(number string, qty string, lines bool) *httptest.ResponseRecorder {
		body := gin.H{
			"issue_number": number,
			"location_id":  a.location,
			"issue_date":   today(),
			"lines":        []gin.H{},
		}
		if lines {
			body["lines"] = []gin.H{{"product_id": product, "quantity": qty}}
		}
		return a.do(http.MethodPost, "/inventory-issues", body)
	}

	t.Run("over issue reports what is available", func(t *testing.T) {
		w := issue("ISS-1", "9", true)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		env := decode[json.RawMessage](t, w)
		assert.Equal(t, "INSUFFICIENT_STOCK", env.Error.Code)
		assert.Equal(t, "5", env.Error.Details["available"])
		assert.NotEmpty(t, env.Error.RequestID)
	})

	t.Run("an issue without lines is invalid", func(t *testing.T) {
		w := issue("ISS-2", "", false)
		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode[json.RawMessage](t, w)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		require.NotEmpty(t, env.Error.Fields)
		assert.Equal(t, "lines", env.Error.Fields[0].Field)
	})

	w := issue("ISS-3", "2", true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	issued := decode[idOnly](t, w).Data
	assert.True(t, a.quantity(product).Equal(decimal.NewFromInt(3)))

	w = a.do(http.MethodGet, fmt.Sprintf("/stock/documents/INVENTORY_ISSUE/%s/movements", issued.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	movements := decode[[]appinventory.StockMovementResponse](t, w).Data
	require.Len(t, movements, 1)
	assert.True(t, movements[0].Quantity.Equal(decimal.NewFromInt(-2)))

	w = a.do(http.MethodGet, fmt.Sprintf("/stock/positions/%s/%s/movements", product, a.location), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[[]appinventory.StockMovementResponse](t, w).Meta.Total)

	w = a.do(http.MethodGet, "/stock/positions?product_id="+product.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[[]appinventory.StockPositionResponse](t, w).Meta.Total)

	w = a.do(http.MethodGet, fmt.Sprintf("/inventory-adjustments?product_id=%s&location_id=%s", product, a.location), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]appinventory.AdjustmentResponse](t, w).Data, 1)

	tests := []struct {
		name string
		path string
		code string
		want int
	}{
		{"malformed path id", "/stock/positions/nope/" + a.location.String(), dto.ErrCodeBadRequest, http.StatusBadRequest},
		{"adjustments need a position", "/inventory-adjustments", dto.ErrCodeBadRequest, http.StatusBadRequest},
		{"unknown source type", "/stock/documents/TELEPORT/" + uuid.NewString() + "/movements", "INVALID_INPUT", http.StatusBadRequest},
		{"missing issue", "/inventory-issues/" + uuid.NewString(), "NOT_FOUND", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodGet, tt.path, nil)
			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestPurchaseOrderHandler(t *testing.T) {
	a := newAPI(t)
	vendor := uuid.New()
	product := uuid.New()

	w := a.do(http.MethodPost, "/purchase-orders", gin.H{"po_number": "PO-1", "vendor_id": vendor})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	po := decode[appinventory.PurchaseOrderResponse](t, w).Data
	assert.Equal(t, "OPEN", po.Status)

	w = a.do(http.MethodPost, "/purchase-orders", gin.H{"po_number": "PO-1", "vendor_id": uuid.New()})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, w))

	w = a.do(http.MethodPut, fmt.Sprintf("/purchase-orders/%s", po.ID), gin.H{"po_number": "PO-1A", "vendor_id": vendor})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "PO-1A", decode[appinventory.PurchaseOrderResponse](t, w).Data.PONumber)

	grn := gin.H{
		"grn_number":        "GRN-1",
		"purchase_order_id": po.ID,
		"vendor_id":         vendor,
		"location_id":       a.location,
		"receipt_date":      today(),
		"lines":             []gin.H{{"product_id": product, "quantity": "8", "unit_price": "12.5"}},
	}
	w = a.do(http.MethodPost, "/goods-receipts", grn)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	received := decode[appinventory.GoodsReceiptResponse](t, w).Data
	assert.True(t, a.quantity(product).Equal(decimal.NewFromInt(8)))

	w = a.do(http.MethodGet, fmt.Sprintf("/purchase-orders/%s", po.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "GOODS_VALIDATED", decode[appinventory.PurchaseOrderResponse](t, w).Data.Status)

	w = a.do(http.MethodPut, fmt.Sprintf("/purchase-orders/%s/status", po.ID), gin.H{"status": "CANCELLED"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE", errorCode(t, w))

	w = a.do(http.MethodPost, "/purchase-orders", gin.H{"po_number": "PO-2", "vendor_id": vendor})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	other := decode[idOnly](t, w).Data.ID

	grn["purchase_order_id"] = other
	grn["lines"] = []gin.H{{"id": received.Lines[0].ID, "product_id": product, "quantity": "8", "unit_price": "12.5"}}
	w = a.do(http.MethodPut, fmt.Sprintf("/goods-receipts/%s", received.ID), grn)
	assert.Equal(t, http.StatusBadRequest, w.Code, "a GRN cannot move to another purchase order")

	w = a.do(http.MethodPut, fmt.Sprintf("/purchase-orders/%s/status", other), gin.H{"status": "CANCELLED"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", decode[appinventory.PurchaseOrderResponse](t, w).Data.Status)

	w = a.do(http.MethodGet, "/purchase-orders?vendor_id="+vendor.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(2), decode[[]appinventory.PurchaseOrderResponse](t, w).Meta.Total)

	w = a.do(http.MethodGet, "/purchase-orders?status=CANCELLED", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]appinventory.PurchaseOrderResponse](t, w).Data
	require.Len(t, listed, 1)
	assert.Equal(t, other, listed[0].ID)

	w = a.do(http.MethodGet, "/purchase-orders?status=LOST", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, fmt.Sprintf("/purchase-orders/%s", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSalesOrderHandler(t *testing.T) {
	a := newAPI(t)
	product := uuid.New()
	a.stock(product, 10)

	order := gin.H{
		"order_code":  "SO-1",
		"order_date":  today(),
		"location_id": a.location,
		"lines":       []gin.H{{"product_id": product, "quantity": "4", "unit_price": "100"}},
		"payments":    []gin.H{{"payment_date": today(), "amount": "150", "mode": "cash"}},
	}
	w := a.do(http.MethodPost, "/sales-orders", order)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[apptrade.SalesOrderResponse](t, w).Data
	assert.Equal(t, "CONFIRMED", created.Status)
	assert.Equal(t, "PARTIAL", created.PaymentStatus)
	assert.True(t, a.quantity(product).Equal(decimal.NewFromInt(6)))
	assert.True(t, a.cashBalance().Equal(decimal.NewFromInt(150)))

	w = a.do(http.MethodPost, "/sales-orders", order)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_EXISTS", errorCode(t, w))

	base := fmt.Sprintf("/sales-orders/%s", created.ID)
	w = a.do(http.MethodPost, base+"/payments", gin.H{"payment_date": today(), "amount": "250", "mode": "CASH"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[apptrade.ReconciliationResponse](t, w).Data
	assert.Equal(t, "FULL PAID", rec.PaymentStatus)
	assert.True(t, rec.TotalPaid.Equal(decimal.NewFromInt(400)))

	w = a.do(http.MethodGet, base+"/payments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]apptrade.PaymentResponse](t, w).Data, 2)

	w = a.do(http.MethodPost, base+"/cancel", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "a cancellation needs a reason")

	w = a.do(http.MethodPost, base+"/cancel", gin.H{"reason": "customer withdrew"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "CANCELLED", decode[apptrade.SalesOrderResponse](t, w).Data.Status)
	assert.True(t, a.quantity(product).Equal(decimal.NewFromInt(10)))

	w = a.do(http.MethodPost, base+"/cancel", gin.H{"reason": "again"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INVALID_STATE", errorCode(t, w))

	w = a.do(http.MethodGet, "/sales-orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[[]apptrade.SalesOrderResponse](t, w).Meta.Total)
}

func TestInvoiceHandler(t *testing.T) {
	a := newAPI(t)
	vendor := uuid.New()
	invoice := gin.H{
		"invoice_number": "INV-1",
		"vendor_id":      vendor,
		"invoice_date":   today(),
		"invoice_amount": "1000",
	}

	w := a.do(http.MethodPost, "/invoices", invoice)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode[idOnly](t, w).Data.ID

	w = a.do(http.MethodPost, "/invoices", invoice)
	assert.Equal(t, http.StatusConflict, w.Code)

	invoice["invoice_amount"] = "-1"
	w = a.do(http.MethodPut, fmt.Sprintf("/invoices/%s", id), invoice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorCode(t, w))

	base := fmt.Sprintf("/invoices/%s", id)
	w = a.do(http.MethodPut, base+"/payments", gin.H{"payments": []gin.H{{"payment_date": today(), "amount": "1000", "mode": "CASH"}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "FULL PAID", decode[apptrade.ReconciliationResponse](t, w).Data.PaymentStatus)
	assert.True(t, a.cashBalance().Equal(decimal.NewFromInt(-1000)))

	w = a.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "an invoice with payments cannot be deleted")

	w = a.do(http.MethodPut, base+"/payments", gin.H{"payments": []gin.H{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "UNPAID", decode[apptrade.ReconciliationResponse](t, w).Data.PaymentStatus)
	assert.True(t, a.cashBalance().IsZero())

	w = a.do(http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/invoices?vendor_id="+vendor.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[[]apptrade.InvoiceResponse](t, w).Meta.Total)
}

func TestFinanceHandler(t *testing.T) {
	a := newAPI(t)

	w := a.do(http.MethodPost, "/banks", gin.H{"name": "Main", "account_number": "001"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	bank := decode[idOnly](t, w).Data.ID
	banks := fmt.Sprintf("/banks/%s", bank)

	w = a.do(http.MethodPost, banks+"/transactions", gin.H{"direction": "IN", "amount": "100", "description": "deposit"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	entry := decode[appfinance.LedgerEntryResponse](t, w).Data
	assert.True(t, entry.BalanceAfter.Equal(decimal.NewFromInt(100)))

	day := time.Now().Format("2006-01-02")
	w = a.do(http.MethodGet, banks+"/transactions?from="+day+"&to="+day, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), decode[[]appfinance.LedgerEntryResponse](t, w).Meta.Total, "to includes the whole day")
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	w = a.do(http.MethodGet, banks+"/transactions?to="+yesterday, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(0), decode[[]appfinance.LedgerEntryResponse](t, w).Meta.Total)

	w = a.do(http.MethodGet, "/banks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decode[[]appfinance.BankAccountResponse](t, w).Data
	require.Len(t, listed, 1)
	require.NotNil(t, listed[0].Balance)
	assert.True(t, listed[0].Balance.Equal(decimal.NewFromInt(100)))

	w = a.do(http.MethodDelete, fmt.Sprintf("%s/transactions/%s", banks, entry.ID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[appfinance.BalanceResponse](t, w).Data.Balance.IsZero())

	w = a.do(http.MethodPost, "/cash/entries", gin.H{"direction": "SIDEWAYS", "amount": "5", "description": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "direction", decode[json.RawMessage](t, w).Error.Fields[0].Field)

	vendor := uuid.New()
	w = a.do(http.MethodPost, "/vendor-payments", gin.H{
		"party_id":     vendor,
		"payment_date": today(),
		"amount":       "40",
		"method":       "CASH",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	payment := decode[idOnly](t, w).Data.ID
	assert.True(t, a.cashBalance().Equal(decimal.NewFromInt(-40)))

	w = a.do(http.MethodGet, "/vendor-payments?party_id="+vendor.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[[]appfinance.PartyPaymentResponse](t, w).Meta.Total)

	w = a.do(http.MethodGet, "/vendor-payments", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodDelete, fmt.Sprintf("/party-payments/%s", payment), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, a.cashBalance().IsZero())

	w = a.do(http.MethodGet, fmt.Sprintf("/banks/%s/balance", uuid.New()), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/banks?active_only=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPartyDiscountRoutes(t *testing.T) {
	a := newAPI(t)
	dealer := uuid.New()

	w := a.do(http.MethodPost, "/party-discounts", gin.H{
		"party_type":    "DEALER",
		"party_id":      dealer,
		"discount_date": today(),
		"amount":        "75",
		"reason":        "festival scheme",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	discount := decode[appfinance.PartyDiscountResponse](t, w).Data
	assert.Equal(t, "DEALER", discount.PartyType)
	assert.True(t, a.cashBalance().IsZero(), "a discount moves no money")

	w = a.do(http.MethodPost, "/party-discounts", gin.H{
		"party_type":    "VENDOR",
		"party_id":      dealer,
		"discount_date": today(),
		"amount":        "5",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(http.MethodGet, "/party-discounts?party_type=DEALER&party_id="+dealer.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), decode[[]appfinance.PartyDiscountResponse](t, w).Meta.Total)

	w = a.do(http.MethodGet, "/party-discounts?party_type=CUSTOMER&party_id="+dealer.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[[]appfinance.PartyDiscountResponse](t, w).Meta.Total)

	w = a.do(http.MethodGet, "/party-discounts?party_id="+dealer.String(), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, "party_type is required")

	w = a.do(http.MethodDelete, fmt.Sprintf("/party-discounts/%s", discount.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = a.do(http.MethodDelete, fmt.Sprintf("/party-discounts/%s", discount.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodGet, "/party-discounts?party_type=DEALER&party_id="+dealer.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), decode[[]appfinance.PartyDiscountResponse](t, w).Meta.Total)
}

func TestHealthHandler(t *testing.T) {
	a := newAPI(t)
	for _, path := range []string{"/health/live", "/health/ready", "/health/info"} {
		w := httptest.NewRecorder()
		a.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
