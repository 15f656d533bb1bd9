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

// Test helpers
func testHeader(code string) SalesOrderHeader {
	return SalesOrderHeader{OrderCode: code, OrderDate: time.Now(), LocationID: uuid.New()}
}

func testLine(id, productID uuid.UUID, qty float64, price int64, serials ...string) SalesOrderLineInput {
	return SalesOrderLineInput{
		StockLineInput: StockLineInput{
			ID:            id,
			ProductID:     productID,
			Quantity:      decimal.NewFromFloat(qty),
			SerialTracked: len(serials) > 0,
			SerialNumbers: serials,
		},
		UnitPrice: decimal.NewFromInt(price),
	}
}

func kinds(changes []LineChange) []LineChangeKind {
	out := make([]LineChangeKind, len(changes))
	for i, c := range changes {
		out[i] = c.Kind
	}
	return out
}

// ============================================
// OrderStatus Tests
// ============================================

func TestOrderStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  OrderStatus
		isValid bool
	}{
		{OrderStatusConfirmed, true},
		{OrderStatusCancelled, true},
		{OrderStatus("DRAFT"), false},
		{OrderStatus(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

// ============================================
// NewSalesOrder Tests
// ============================================

func TestNewSalesOrder(t *testing.T) {
	t.Run("computes totals and lists every line as added", func(t *testing.T) {
		line := testLine(uuid.Nil, uuid.New(), 3, 100)
		line.Discount = decimal.NewFromInt(20)
		line.TaxAmount = decimal.NewFromFloat(15.5)

		order, rev, err := NewSalesOrder(uuid.New(), testHeader("SO-1"), []SalesOrderLineInput{
			line,
			testLine(uuid.Nil, uuid.New(), 1, 50, "X1"),
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, OrderStatusConfirmed, order.Status)
		assert.Equal(t, finance.PaymentStatusUnpaid, order.PaymentStatus)
		assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(350)))
		assert.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(20)))
		assert.True(t, order.GrandTotal.Equal(decimal.NewFromFloat(345.5)))
		assert.True(t, order.GrandTotalRounded.Equal(decimal.NewFromInt(346)))
		assert.Equal(t, []LineChangeKind{LineAdded, LineAdded}, kinds(rev.Changes))
		assert.Len(t, rev.Writes.Inserted, 2)
		assert.Equal(t, "SO-SO-1", order.Reference())
	})

	t.Run("validation", func(t *testing.T) {
		product := uuid.New()
		tests := []struct {
			name   string
			header SalesOrderHeader
			lines  []SalesOrderLineInput
		}{
			{"empty code", testHeader("  "), []SalesOrderLineInput{testLine(uuid.Nil, product, 1, 1)}},
			{"no lines", testHeader("SO-2"), nil},
			{"zero quantity", testHeader("SO-3"), []SalesOrderLineInput{testLine(uuid.Nil, product, 0, 1)}},
			{"serial count mismatch", testHeader("SO-4"), []SalesOrderLineInput{testLine(uuid.Nil, product, 2, 1, "A")}},
			{"fractional serial quantity", testHeader("SO-5"), []SalesOrderLineInput{testLine(uuid.Nil, product, 1.5, 1, "A")}},
			{"serial on two lines", testHeader("SO-6"), []SalesOrderLineInput{
				testLine(uuid.Nil, product, 1, 1, "A"),
				testLine(uuid.Nil, product, 1, 1, "A"),
			}},
			{"unknown line id", testHeader("SO-7"), []SalesOrderLineInput{testLine(uuid.New(), product, 1, 1)}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, _, err := NewSalesOrder(uuid.New(), tt.header, tt.lines, nil)
				assert.Error(t, err)
			})
		}
	})

	t.Run("serial numbers are trimmed", func(t *testing.T) {
		order, _, err := NewSalesOrder(uuid.New(), testHeader("SO-8"), []SalesOrderLineInput{
			testLine(uuid.Nil, uuid.New(), 2, 1, " A ", "B"),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, order.Lines[0].SerialNumbers)
	})
}

// ============================================
// Revise Tests
// ============================================

func TestSalesOrder_Revise(t *testing.T) {
	header := testHeader("SO-10")
	kept, resized, swapped, dropped := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	order, _, err := NewSalesOrder(uuid.New(), header, []SalesOrderLineInput{
		testLine(uuid.Nil, kept, 1, 10),
		testLine(uuid.Nil, resized, 4, 10),
		testLine(uuid.Nil, swapped, 2, 10, "S1", "S2"),
		testLine(uuid.Nil, dropped, 1, 10),
	}, nil)
	require.NoError(t, err)
	ids := []uuid.UUID{order.Lines[0].ID, order.Lines[1].ID, order.Lines[2].ID}

	moved := uuid.New()
	rev, err := order.Revise(header, []SalesOrderLineInput{
		testLine(ids[0], kept, 1, 10),
		testLine(ids[1], resized, 6, 10),
		testLine(ids[2], swapped, 2, 10, "S1", "S3"),
		testLine(uuid.Nil, moved, 1, 10),
	}, nil)
	require.NoError(t, err)

	byKind := make(map[LineChangeKind][]LineChange)
	for _, c := range rev.Changes {
		byKind[c.Kind] = append(byKind[c.Kind], c)
	}
	require.Len(t, byKind[LineChanged], 2, "the untouched line is not reported")
	assert.Len(t, byKind[LineAdded], 1)
	assert.Len(t, byKind[LineRemoved], 1)

	for _, c := range byKind[LineChanged] {
		switch c.LineID {
		case ids[1]:
			assert.True(t, c.QuantityDelta.Equal(decimal.NewFromInt(2)))
			assert.Empty(t, c.SerialsAdded)
		case ids[2]:
			assert.True(t, c.QuantityDelta.IsZero())
			assert.Equal(t, []string{"S3"}, c.SerialsAdded)
			assert.Equal(t, []string{"S2"}, c.SerialsRemoved)
		default:
			t.Fatalf("unexpected changed line %s", c.LineID)
		}
	}

	assert.ElementsMatch(t, []uuid.UUID{ids[1], ids[2]}, rev.Writes.Updated)
	assert.Len(t, rev.Writes.Inserted, 1)
	assert.Len(t, rev.Writes.Deleted, 1)
	assert.True(t, order.GrandTotalRounded.Equal(decimal.NewFromInt(100)))

	t.Run("moving the location replaces every line", func(t *testing.T) {
		elsewhere := header
		elsewhere.LocationID = uuid.New()
		lines := make([]SalesOrderLineInput, len(order.Lines))
		for i, l := range order.Lines {
			lines[i] = testLine(l.ID, l.ProductID, l.Quantity.InexactFloat64(), 10, l.SerialNumbers...)
		}
		rev, err := order.Revise(elsewhere, lines, nil)
		require.NoError(t, err)
		for _, c := range rev.Changes {
			assert.Equal(t, LineReplaced, c.Kind)
		}
		assert.Len(t, rev.Changes, 4)
	})
}

func TestSalesOrder_Cancel(t *testing.T) {
	order, _, err := NewSalesOrder(uuid.New(), testHeader("SO-20"), []SalesOrderLineInput{
		testLine(uuid.Nil, uuid.New(), 2, 10),
	}, nil)
	require.NoError(t, err)

	_, err = order.Cancel("   ", nil)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	actor := uuid.New()
	footprints, err := order.Cancel("customer withdrew", &actor)
	require.NoError(t, err)
	require.Len(t, footprints, 1)
	assert.True(t, footprints[0].Quantity.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, OrderStatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)

	_, err = order.Cancel("again", &actor)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	_, err = order.Revise(testHeader("SO-20"), []SalesOrderLineInput{testLine(uuid.Nil, uuid.New(), 1, 1)}, nil)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestDiffFootprints(t *testing.T) {
	location := uuid.New()
	line := uuid.New()
	fp := func(product uuid.UUID, qty int64, serials ...string) LineFootprint {
		return LineFootprint{
			LineID:        line,
			ProductID:     product,
			LocationID:    location,
			Quantity:      decimal.NewFromInt(qty),
			SerialTracked: len(serials) > 0,
			Serials:       serials,
		}
	}
	product := uuid.New()

	tests := []struct {
		name     string
		previous []LineFootprint
		current  []LineFootprint
		want     []LineChangeKind
	}{
		{"unchanged", []LineFootprint{fp(product, 2)}, []LineFootprint{fp(product, 2)}, nil},
		{"added", nil, []LineFootprint{fp(product, 2)}, []LineChangeKind{LineAdded}},
		{"removed", []LineFootprint{fp(product, 2)}, nil, []LineChangeKind{LineRemoved}},
		{"quantity", []LineFootprint{fp(product, 2)}, []LineFootprint{fp(product, 3)}, []LineChangeKind{LineChanged}},
		{"serial order only", []LineFootprint{fp(product, 2, "A", "B")}, []LineFootprint{fp(product, 2, "B", "A")}, nil},
		{"product", []LineFootprint{fp(product, 2)}, []LineFootprint{fp(uuid.New(), 2)}, []LineChangeKind{LineReplaced}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kinds(DiffFootprints(tt.previous, tt.current))
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
