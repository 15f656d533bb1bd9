package trade

import (
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryIssueLine is one product issued out of a location
type InventoryIssueLine struct {
	ID            uuid.UUID
	IssueID       uuid.UUID
	ProductID     uuid.UUID
	Quantity      decimal.Decimal
	UOM           string
	Remarks       string
	SerialTracked bool
	SerialNumbers []string
	CreatedAt     time.Time
}

// InventoryIssueLineInput is an incoming issue line
type InventoryIssueLineInput struct {
	StockLineInput
	UOM     string
	Remarks string
}

// InventoryIssue records stock leaving a location for internal use.
// Issues are posted once and never edited.
type InventoryIssue struct {
	shared.BaseEntity
	IssueNumber string
	LocationID  uuid.UUID
	IssueDate   time.Time
	IssuedTo    string
	Remarks     string
	CreatedBy   *uuid.UUID
	Lines       []InventoryIssueLine
}

// NewInventoryIssue validates and creates an issue
func NewInventoryIssue(issueNumber string, locationID uuid.UUID, issueDate time.Time, issuedTo, remarks string, inputs []InventoryIssueLineInput, actor *uuid.UUID) (*InventoryIssue, error) {
	issueNumber = strings.TrimSpace(issueNumber)
	if issueNumber == "" {
		return nil, shared.NewValidationError("Issue number is required")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewValidationError("Issue location is required")
	}
	if issueDate.IsZero() {
		return nil, shared.NewValidationError("Issue date is required")
	}
	if len(inputs) == 0 {
		return nil, shared.NewValidationError("Issue must have at least one line")
	}

	issue := &InventoryIssue{
		BaseEntity:  shared.NewBaseEntity(),
		IssueNumber: issueNumber,
		LocationID:  locationID,
		IssueDate:   issueDate,
		IssuedTo:    strings.TrimSpace(issuedTo),
		Remarks:     strings.TrimSpace(remarks),
		CreatedBy:   actor,
	}
	stockInputs := make([]StockLineInput, len(inputs))
	for i, in := range inputs {
		in.ID = uuid.Nil
		stockInputs[i] = in.StockLineInput
	}
	resolved, err := resolveLineIDs(nil, stockInputs)
	if err != nil {
		return nil, err
	}
	issue.Lines = make([]InventoryIssueLine, len(inputs))
	for i, in := range inputs {
		s := resolved[i]
		issue.Lines[i] = InventoryIssueLine{
			ID:            s.ID,
			IssueID:       issue.ID,
			ProductID:     s.ProductID,
			Quantity:      s.Quantity,
			UOM:           strings.TrimSpace(in.UOM),
			Remarks:       strings.TrimSpace(in.Remarks),
			SerialTracked: s.SerialTracked,
			SerialNumbers: s.SerialNumbers,
			CreatedAt:     issue.CreatedAt,
		}
	}
	if err := checkSerialsUnique(issue.Footprints()); err != nil {
		return nil, err
	}
	return issue, nil
}

// Footprints returns the stock each line takes out of the location
func (i *InventoryIssue) Footprints() []LineFootprint {
	out := make([]LineFootprint, len(i.Lines))
	for n, l := range i.Lines {
		out[n] = LineFootprint{
			LineID:        l.ID,
			ProductID:     l.ProductID,
			LocationID:    i.LocationID,
			Quantity:      l.Quantity,
			SerialTracked: l.SerialTracked,
			Serials:       l.SerialNumbers,
		}
	}
	return out
}

// Reference returns the provenance reference used on stock movements
func (i *InventoryIssue) Reference() string {
	if i.Remarks != "" {
		return "INVISSUE#" + i.IssueNumber + "#" + i.Remarks
	}
	return "INVISSUE#" + i.IssueNumber
}
