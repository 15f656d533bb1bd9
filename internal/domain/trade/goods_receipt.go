package trade

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoodsReceiptLine is one received product on a GRN
type GoodsReceiptLine struct {
	ID            uuid.UUID
	ReceiptID     uuid.UUID
	POLineID      *uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	UOM           string
	BatchNumber   string
	ExpiryDate    *time.Time
	SerialTracked bool
	SerialNumbers []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// GoodsReceiptLineInput is an incoming GRN line
type GoodsReceiptLineInput struct {
	StockLineInput
	POLineID    *uuid.UUID
	UnitPrice   decimal.Decimal
	TaxAmount   decimal.Decimal
	UOM         string
	BatchNumber string
	ExpiryDate  *time.Time
}

// GoodsReceiptHeader holds the editable header fields of a GRN
type GoodsReceiptHeader struct {
	GRNNumber       string
	PurchaseOrderID uuid.UUID
	VendorID        uuid.UUID
	LocationID      uuid.UUID
	ReceiptDate     time.Time
	Remarks         string
}

func (h GoodsReceiptHeader) validate() error {
	if strings.TrimSpace(h.GRNNumber) == "" {
		return shared.NewValidationError("GRN number is required")
	}
	if h.PurchaseOrderID == uuid.Nil {
		return shared.NewValidationError("Purchase order is required")
	}
	if h.VendorID == uuid.Nil {
		return shared.NewValidationError("Vendor is required")
	}
	if h.LocationID == uuid.Nil {
		return shared.NewValidationError("Receiving location is required")
	}
	if h.ReceiptDate.IsZero() {
		return shared.NewValidationError("GRN date is required")
	}
	return nil
}

// GoodsReceipt is a goods received note: stock arriving at a location against a purchase order
type GoodsReceipt struct {
	shared.BaseAggregateRoot
	GRNNumber       string
	PurchaseOrderID uuid.UUID
	VendorID        uuid.UUID
	LocationID      uuid.UUID
	ReceiptDate     time.Time
	Remarks         string
	CreatedBy       *uuid.UUID
	UpdatedBy       *uuid.UUID
	Lines           []GoodsReceiptLine
}

// NewGoodsReceipt creates a GRN. The returned revision lists every line as added.
func NewGoodsReceipt(id uuid.UUID, header GoodsReceiptHeader, lines []GoodsReceiptLineInput, actor *uuid.UUID) (*GoodsReceipt, Revision, error) {
	g := &GoodsReceipt{
		BaseAggregateRoot: shared.NewBaseAggregateRootWithID(id),
		CreatedBy:         actor,
	}
	rev, err := g.Revise(header, lines, actor)
	if err != nil {
		return nil, Revision{}, err
	}
	return g, rev, nil
}

// Revise replaces the header and lines of the GRN, matching lines by ID
func (g *GoodsReceipt) Revise(header GoodsReceiptHeader, inputs []GoodsReceiptLineInput, actor *uuid.UUID) (Revision, error) {
	if err := header.validate(); err != nil {
		return Revision{}, err
	}
	if g.PurchaseOrderID != uuid.Nil && header.PurchaseOrderID != g.PurchaseOrderID {
		return Revision{}, shared.NewValidationError("Purchase order of a GRN cannot be changed")
	}
	if len(inputs) == 0 {
		return Revision{}, shared.NewValidationError("GRN must have at least one line")
	}

	existing := make(map[uuid.UUID]GoodsReceiptLine, len(g.Lines))
	existingIDs := make(map[uuid.UUID]struct{}, len(g.Lines))
	for _, l := range g.Lines {
		existing[l.ID] = l
		existingIDs[l.ID] = struct{}{}
	}
	stockInputs := make([]StockLineInput, len(inputs))
	for i, in := range inputs {
		stockInputs[i] = in.StockLineInput
	}
	resolved, err := resolveLineIDs(existingIDs, stockInputs)
	if err != nil {
		return Revision{}, err
	}

	now := time.Now()
	lines := make([]GoodsReceiptLine, len(inputs))
	for i, in := range inputs {
		if in.UnitPrice.IsNegative() || in.TaxAmount.IsNegative() {
			return Revision{}, shared.NewValidationError("Unit price and tax cannot be negative")
		}
		s := resolved[i]
		line := GoodsReceiptLine{
			ID:            s.ID,
			ReceiptID:     g.ID,
			POLineID:      in.POLineID,
			ProductID:     s.ProductID,
			Quantity:      s.Quantity,
			UnitPrice:     in.UnitPrice,
			TaxAmount:     in.TaxAmount,
			UOM:           strings.TrimSpace(in.UOM),
			BatchNumber:   strings.TrimSpace(in.BatchNumber),
			ExpiryDate:    in.ExpiryDate,
			SerialTracked: s.SerialTracked,
			SerialNumbers: s.SerialNumbers,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		line.TotalAmount = line.Quantity.Mul(line.UnitPrice).Add(line.TaxAmount).Round(2)
		if prev, ok := existing[line.ID]; ok {
			line.CreatedAt = prev.CreatedAt
			if sameReceiptLine(prev, line) {
				line.UpdatedAt = prev.UpdatedAt
			}
		}
		lines[i] = line
	}

	current := receiptFootprints(header.LocationID, lines)
	if err := checkSerialsUnique(current); err != nil {
		return Revision{}, err
	}
	previousFootprints := g.Footprints()
	previousLines := g.Lines

	g.GRNNumber = strings.TrimSpace(header.GRNNumber)
	g.PurchaseOrderID = header.PurchaseOrderID
	g.VendorID = header.VendorID
	g.LocationID = header.LocationID
	g.ReceiptDate = header.ReceiptDate
	g.Remarks = strings.TrimSpace(header.Remarks)
	g.Lines = lines
	g.UpdatedBy = actor
	g.Touch()

	return Revision{
		Changes: DiffFootprints(previousFootprints, current),
		Writes: planWrites(previousLines, lines,
			func(l GoodsReceiptLine) uuid.UUID { return l.ID }, sameReceiptLine),
	}, nil
}

func sameReceiptLine(a, b GoodsReceiptLine) bool {
	sameExpiry := (a.ExpiryDate == nil && b.ExpiryDate == nil) ||
		(a.ExpiryDate != nil && b.ExpiryDate != nil && a.ExpiryDate.Equal(*b.ExpiryDate))
	samePOLine := (a.POLineID == nil && b.POLineID == nil) ||
		(a.POLineID != nil && b.POLineID != nil && *a.POLineID == *b.POLineID)
	return a.ProductID == b.ProductID &&
		a.Quantity.Equal(b.Quantity) &&
		a.UnitPrice.Equal(b.UnitPrice) &&
		a.TaxAmount.Equal(b.TaxAmount) &&
		a.UOM == b.UOM &&
		a.BatchNumber == b.BatchNumber &&
		sameExpiry && samePOLine &&
		a.SerialTracked == b.SerialTracked &&
		sameSerials(a.SerialNumbers, b.SerialNumbers)
}

// Footprints returns the stock each line brought into the receiving location
func (g *GoodsReceipt) Footprints() []LineFootprint {
	return receiptFootprints(g.LocationID, g.Lines)
}

func receiptFootprints(locationID uuid.UUID, lines []GoodsReceiptLine) []LineFootprint {
	out := make([]LineFootprint, len(lines))
	for i, l := range lines {
		out[i] = LineFootprint{
			LineID:        l.ID,
			ProductID:     l.ProductID,
			LocationID:    locationID,
			Quantity:      l.Quantity,
			SerialTracked: l.SerialTracked,
			Serials:       l.SerialNumbers,
		}
	}
	return out
}

// Reference returns the provenance reference used on stock movements
func (g *GoodsReceipt) Reference() string {
	return "GRN-" + g.GRNNumber
}
