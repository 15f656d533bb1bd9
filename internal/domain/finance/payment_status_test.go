package finance

import (
	"testing"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivePaymentStatus(t *testing.T) {
	d := decimal.NewFromInt
	tests := []struct {
		name  string
		paid  decimal.Decimal
		total decimal.Decimal
		want  PaymentStatus
	}{
		{"nothing paid", d(0), d(500), PaymentStatusUnpaid},
		{"part paid", d(200), d(500), PaymentStatusPartial},
		{"exactly paid", d(500), d(500), PaymentStatusFullPaid},
		{"paid over", d(800), d(500), PaymentStatusOverpaid},
		{"zero total with nothing paid", d(0), d(0), PaymentStatusFullPaid},
		{"zero total with a payment", d(10), d(0), PaymentStatusOverpaid},
		{"scale does not matter", decimal.RequireFromString("500.00"), d(500), PaymentStatusFullPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(tt.paid, tt.total))
		})
	}
}

func TestParsePaymentMode(t *testing.T) {
	tests := []struct {
		in      string
		want    PaymentMode
		wantErr bool
	}{
		{"cash", PaymentModeCash, false},
		{" Bank ", PaymentModeBank, false},
		{"", PaymentModeOther, false},
		{"UPI", PaymentModeUPI, false},
		{"barter", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePaymentMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPaymentRecord_LedgerEffect(t *testing.T) {
	bankID := uuid.New()
	details := func(mode PaymentMode, bank *uuid.UUID) PaymentDetails {
		return PaymentDetails{PaymentDate: time.Now(), Amount: decimal.NewFromInt(300), Mode: mode, BankID: bank}
	}

	t.Run("sales order cash payment moves money in", func(t *testing.T) {
		p, err := NewPaymentRecord(DocumentRef{Type: DocumentTypeSalesOrder, ID: uuid.New()}, nil, details(PaymentModeCash, nil), nil)
		require.NoError(t, err)
		effect := p.LedgerEffect()
		require.Contains(t, effect, CashAccount().Key())
		assert.True(t, effect[CashAccount().Key()].Signed.Equal(decimal.NewFromInt(300)))
	})

	t.Run("invoice bank payment moves money out of that bank", func(t *testing.T) {
		p, err := NewPaymentRecord(DocumentRef{Type: DocumentTypeInvoice, ID: uuid.New()}, nil, details(PaymentModeBank, &bankID), nil)
		require.NoError(t, err)
		key := BankLedger(bankID).Key()
		require.Contains(t, p.LedgerEffect(), key)
		assert.True(t, p.LedgerEffect()[key].Signed.Equal(decimal.NewFromInt(-300)))
	})

	t.Run("other modes have no ledger effect", func(t *testing.T) {
		for _, mode := range []PaymentMode{PaymentModeUPI, PaymentModeCheque, PaymentModeCard, PaymentModeOther} {
			p, err := NewPaymentRecord(DocumentRef{Type: DocumentTypeSalesOrder, ID: uuid.New()}, nil, details(mode, nil), nil)
			require.NoError(t, err)
			assert.Empty(t, p.LedgerEffect(), string(mode))
		}
	})

	t.Run("bank id only with BANK", func(t *testing.T) {
		_, err := NewPaymentRecord(DocumentRef{Type: DocumentTypeSalesOrder, ID: uuid.New()}, nil, details(PaymentModeCash, &bankID), nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("amount must be positive", func(t *testing.T) {
		d := details(PaymentModeCash, nil)
		d.Amount = decimal.Zero
		_, err := NewPaymentRecord(DocumentRef{Type: DocumentTypeSalesOrder, ID: uuid.New()}, nil, d, nil)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
