package trade

import (
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// PurchaseOrder Tests
// ============================================

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates open order", func(t *testing.T) {
		order, err := NewPurchaseOrder(" PO-2024-001 ", uuid.New())
		require.NoError(t, err)
		assert.Equal(t, "PO-2024-001", order.PONumber)
		assert.Equal(t, PurchaseOrderStatusOpen, order.Status)
		assert.Equal(t, 1, order.Version)
	})

	t.Run("fails with empty number", func(t *testing.T) {
		_, err := NewPurchaseOrder("", uuid.New())
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("fails without vendor", func(t *testing.T) {
		_, err := NewPurchaseOrder("PO-2024-002", uuid.Nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestPurchaseOrder_MarkGoodsValidated(t *testing.T) {
	order, err := NewPurchaseOrder("PO-2024-003", uuid.New())
	require.NoError(t, err)

	require.NoError(t, order.MarkGoodsValidated())
	assert.Equal(t, PurchaseOrderStatusGoodsValidated, order.Status)
	assert.Equal(t, 2, order.Version)

	require.NoError(t, order.MarkGoodsValidated())
	assert.Equal(t, 2, order.Version, "a second receipt does not bump the version")

	order.Status = PurchaseOrderStatusCancelled
	assert.ErrorIs(t, order.MarkGoodsValidated(), shared.ErrInvalidState)
}

func TestPurchaseOrder_Revise(t *testing.T) {
	order, err := NewPurchaseOrder("PO-2024-004", uuid.New())
	require.NoError(t, err)

	vendor := uuid.New()
	require.NoError(t, order.Revise(" PO-2024-004A ", vendor))
	assert.Equal(t, "PO-2024-004A", order.PONumber)
	assert.Equal(t, vendor, order.VendorID)
	assert.Equal(t, 2, order.Version)

	assert.ErrorIs(t, order.Revise("", vendor), shared.ErrInvalidInput)

	require.NoError(t, order.MarkGoodsValidated())
	assert.ErrorIs(t, order.Revise("PO-2024-004B", vendor), shared.ErrInvalidState)
}

func TestPurchaseOrder_ChangeStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    PurchaseOrderStatus
		to      PurchaseOrderStatus
		wantErr error
	}{
		{"cancel open order", PurchaseOrderStatusOpen, PurchaseOrderStatusCancelled, nil},
		{"reopen cancelled order", PurchaseOrderStatusCancelled, PurchaseOrderStatusOpen, nil},
		{"same status", PurchaseOrderStatusOpen, PurchaseOrderStatusOpen, nil},
		{"validate by hand", PurchaseOrderStatusOpen, PurchaseOrderStatusGoodsValidated, shared.ErrInvalidState},
		{"cancel received order", PurchaseOrderStatusGoodsValidated, PurchaseOrderStatusCancelled, shared.ErrInvalidState},
		{"unknown status", PurchaseOrderStatusOpen, PurchaseOrderStatus("SHIPPED"), shared.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewPurchaseOrder("PO-X", uuid.New())
			require.NoError(t, err)
			order.Status = tt.from

			err = order.ChangeStatus(tt.to)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, order.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, order.Status)
		})
	}
}

// ============================================
// GoodsReceipt Tests
// ============================================

func receiptHeader() GoodsReceiptHeader {
	return GoodsReceiptHeader{
		GRNNumber:       "GRN-1",
		PurchaseOrderID: uuid.New(),
		VendorID:        uuid.New(),
		LocationID:      uuid.New(),
		ReceiptDate:     time.Now(),
	}
}

func receiptLine(id, productID uuid.UUID, qty, price int64, serials ...string) GoodsReceiptLineInput {
	return GoodsReceiptLineInput{
		StockLineInput: StockLineInput{
			ID:            id,
			ProductID:     productID,
			Quantity:      decimal.NewFromInt(qty),
			SerialTracked: len(serials) > 0,
			SerialNumbers: serials,
		},
		UnitPrice: decimal.NewFromInt(price),
		TaxAmount: decimal.NewFromInt(5),
	}
}

func TestGoodsReceipt_Revise(t *testing.T) {
	header := receiptHeader()
	product := uuid.New()
	grn, rev, err := NewGoodsReceipt(uuid.New(), header, []GoodsReceiptLineInput{receiptLine(uuid.Nil, product, 10, 3)}, nil)
	require.NoError(t, err)
	require.Len(t, grn.Lines, 1)
	assert.True(t, grn.Lines[0].TotalAmount.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, []LineChangeKind{LineAdded}, kinds(rev.Changes))
	assert.Equal(t, "GRN-GRN-1", grn.Reference())

	rev, err = grn.Revise(header, []GoodsReceiptLineInput{receiptLine(grn.Lines[0].ID, product, 7, 3)}, nil)
	require.NoError(t, err)
	require.Len(t, rev.Changes, 1)
	assert.Equal(t, LineChanged, rev.Changes[0].Kind)
	assert.True(t, rev.Changes[0].QuantityDelta.Equal(decimal.NewFromInt(-3)))

	moved := header
	moved.PurchaseOrderID = uuid.New()
	_, err = grn.Revise(moved, []GoodsReceiptLineInput{receiptLine(grn.Lines[0].ID, product, 7, 3)}, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput, "a GRN stays on its purchase order")
	assert.Equal(t, header.PurchaseOrderID, grn.PurchaseOrderID)

	header.VendorID = uuid.Nil
	_, err = grn.Revise(header, []GoodsReceiptLineInput{receiptLine(grn.Lines[0].ID, product, 7, 3)}, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

// ============================================
// InventoryIssue Tests
// ============================================

func TestNewInventoryIssue(t *testing.T) {
	location := uuid.New()
	line := func(qty int64, serials ...string) InventoryIssueLineInput {
		return InventoryIssueLineInput{StockLineInput: StockLineInput{
			ID:            uuid.New(),
			ProductID:     uuid.New(),
			Quantity:      decimal.NewFromInt(qty),
			SerialTracked: len(serials) > 0,
			SerialNumbers: serials,
		}}
	}

	issue, err := NewInventoryIssue("ISS-1", location, time.Now(), "workshop", "", []InventoryIssueLineInput{line(2), line(1, "Z9")}, nil)
	require.NoError(t, err)
	assert.Len(t, issue.Footprints(), 2)
	assert.Equal(t, "INVISSUE#ISS-1", issue.Reference())
	for _, l := range issue.Lines {
		assert.NotEqual(t, uuid.Nil, l.ID, "client line IDs are replaced")
	}

	_, err = NewInventoryIssue("ISS-2", location, time.Now(), "", "", nil, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewInventoryIssue("ISS-3", location, time.Now(), "", "", []InventoryIssueLineInput{line(2, "A")}, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

// ============================================
// InventoryAdjustment Tests
// ============================================

func TestNewInventoryAdjustment(t *testing.T) {
	base := AdjustmentInput{ProductID: uuid.New(), LocationID: uuid.New(), Reason: "recount"}

	tests := []struct {
		name    string
		mutate  func(in *AdjustmentInput)
		wantErr bool
	}{
		{"plain increase", func(in *AdjustmentInput) { in.QuantityChange = decimal.NewFromInt(3) }, false},
		{"zero change", func(in *AdjustmentInput) { in.QuantityChange = decimal.Zero }, true},
		{"missing reason", func(in *AdjustmentInput) { in.QuantityChange = decimal.NewFromInt(1); in.Reason = " " }, true},
		{"serials on plain product", func(in *AdjustmentInput) {
			in.QuantityChange = decimal.NewFromInt(1)
			in.SerialsAdd = []string{"A"}
		}, true},
		{"tracked increase", func(in *AdjustmentInput) {
			in.QuantityChange = decimal.NewFromInt(2)
			in.SerialTracked = true
			in.SerialsAdd = []string{"A", "B"}
		}, false},
		{"tracked decrease adding serials", func(in *AdjustmentInput) {
			in.QuantityChange = decimal.NewFromInt(-1)
			in.SerialTracked = true
			in.SerialsAdd = []string{"A"}
		}, true},
		{"tracked decrease", func(in *AdjustmentInput) {
			in.QuantityChange = decimal.NewFromInt(-1)
			in.SerialTracked = true
			in.SerialsRemove = []string{"A"}
		}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			adj, err := NewInventoryAdjustment(uuid.New(), in, nil)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.False(t, adj.AdjustmentDate.IsZero())
			assert.Equal(t, "ADJUSTMENT#recount", adj.Reference())
		})
	}
}

// ============================================
// Invoice Tests
// ============================================

func TestInvoice(t *testing.T) {
	details := InvoiceDetails{
		InvoiceNumber: "INV-1",
		VendorID:      uuid.New(),
		InvoiceDate:   time.Now(),
		InvoiceAmount: decimal.NewFromInt(1000),
		CGSTAmount:    decimal.NewFromInt(90),
		SGSTAmount:    decimal.NewFromInt(90),
	}
	inv, err := NewInvoice(details, nil)
	require.NoError(t, err)
	assert.Equal(t, finance.PaymentStatusUnpaid, inv.PaymentStatus)
	assert.True(t, inv.TotalTaxAmount.Equal(decimal.NewFromInt(180)))
	assert.True(t, inv.PayableTotal().Equal(decimal.NewFromInt(1180)))

	details.IGSTAmount = decimal.NewFromInt(-1)
	assert.ErrorIs(t, inv.Update(details, nil), shared.ErrInvalidInput)

	assert.ErrorIs(t, inv.MarkDeleted(1, nil), shared.ErrInvalidState)
	require.NoError(t, inv.MarkDeleted(0, nil))
	assert.ErrorIs(t, inv.MarkDeleted(0, nil), shared.ErrNotFound)

	details.IGSTAmount = decimal.Zero
	assert.ErrorIs(t, inv.Update(details, nil), shared.ErrInvalidState)
}
