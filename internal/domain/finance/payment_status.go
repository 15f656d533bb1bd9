package finance

import "github.com/shopspring/decimal"

// PaymentStatus is the derived payment state of an invoice or sales order
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusPartial  PaymentStatus = "PARTIAL"
	PaymentStatusFullPaid PaymentStatus = "FULL PAID"
	PaymentStatusOverpaid PaymentStatus = "OVERPAID"
)

// IsValid returns true if the status is known
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusFullPaid, PaymentStatusOverpaid:
		return true
	}
	return false
}

// DerivePaymentStatus maps the amount paid against a document total to a status.
// Comparison is exact on fixed-point decimals; there is no tolerance band.
// Equality is checked first, so a zero-total document with nothing paid is FULL PAID.
func DerivePaymentStatus(totalPaid, documentTotal decimal.Decimal) PaymentStatus {
	switch {
	case totalPaid.Equal(documentTotal):
		return PaymentStatusFullPaid
	case totalPaid.IsZero():
		return PaymentStatusUnpaid
	case totalPaid.LessThan(documentTotal):
		return PaymentStatusPartial
	default:
		return PaymentStatusOverpaid
	}
}

// SumPayments adds up payment amounts
func SumPayments(payments []PaymentRecord) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
