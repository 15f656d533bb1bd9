package models

import (
	"time"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderModel holds the purchase order fields goods receipts depend on
type PurchaseOrderModel struct {
	AggregateModel
	PONumber string    `gorm:"type:varchar(50);not null;uniqueIndex"`
	VendorID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status   string    `gorm:"type:varchar(20);not null;default:'OPEN'"`
}

// TableName returns the table name for GORM
func (PurchaseOrderModel) TableName() string {
	return "purchase_orders"
}

// ToDomain converts the persistence model to a domain PurchaseOrder
func (m *PurchaseOrderModel) ToDomain() *trade.PurchaseOrder {
	return &trade.PurchaseOrder{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PONumber:          m.PONumber,
		VendorID:          m.VendorID,
		Status:            trade.PurchaseOrderStatus(m.Status),
	}
}

// PurchaseOrderModelFromDomain creates a new persistence model from a domain PurchaseOrder
func PurchaseOrderModelFromDomain(po *trade.PurchaseOrder) *PurchaseOrderModel {
	m := &PurchaseOrderModel{
		PONumber: po.PONumber,
		VendorID: po.VendorID,
		Status:   string(po.Status),
	}
	m.FromDomainAggregateRoot(po.BaseAggregateRoot)
	return m
}

// GoodsReceiptModel is the persistence model for the GoodsReceipt aggregate root.
type GoodsReceiptModel struct {
	AggregateModel
	GRNNumber       string                  `gorm:"column:grn_number;type:varchar(50);not null;uniqueIndex"`
	PurchaseOrderID uuid.UUID               `gorm:"type:uuid;not null;index"`
	VendorID        uuid.UUID               `gorm:"type:uuid;not null;index"`
	LocationID      uuid.UUID               `gorm:"type:uuid;not null"`
	ReceiptDate     time.Time               `gorm:"not null;index"`
	Remarks         string                  `gorm:"type:text"`
	CreatedBy       *uuid.UUID              `gorm:"type:uuid"`
	UpdatedBy       *uuid.UUID              `gorm:"type:uuid"`
	Lines           []GoodsReceiptLineModel `gorm:"foreignKey:ReceiptID;references:ID"`
}

// TableName returns the table name for GORM
func (GoodsReceiptModel) TableName() string {
	return "goods_receipts"
}

// ToDomain converts the persistence model to a domain GoodsReceipt
func (m *GoodsReceiptModel) ToDomain() *trade.GoodsReceipt {
	g := &trade.GoodsReceipt{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		GRNNumber:         m.GRNNumber,
		PurchaseOrderID:   m.PurchaseOrderID,
		VendorID:          m.VendorID,
		LocationID:        m.LocationID,
		ReceiptDate:       m.ReceiptDate,
		Remarks:           m.Remarks,
		CreatedBy:         m.CreatedBy,
		UpdatedBy:         m.UpdatedBy,
		Lines:             make([]trade.GoodsReceiptLine, len(m.Lines)),
	}
	for i := range m.Lines {
		g.Lines[i] = m.Lines[i].ToDomain()
	}
	return g
}

// GoodsReceiptModelFromDomain creates a header model from a domain GoodsReceipt.
// Lines are written separately by ID.
func GoodsReceiptModelFromDomain(g *trade.GoodsReceipt) *GoodsReceiptModel {
	m := &GoodsReceiptModel{
		GRNNumber:       g.GRNNumber,
		PurchaseOrderID: g.PurchaseOrderID,
		VendorID:        g.VendorID,
		LocationID:      g.LocationID,
		ReceiptDate:     g.ReceiptDate,
		Remarks:         g.Remarks,
		CreatedBy:       g.CreatedBy,
		UpdatedBy:       g.UpdatedBy,
	}
	m.FromDomainAggregateRoot(g.BaseAggregateRoot)
	return m
}

// GoodsReceiptLineModel is one received line. LineNo keeps the submitted order.
type GoodsReceiptLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	ReceiptID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo        int             `gorm:"not null;default:0"`
	POLineID      *uuid.UUID      `gorm:"column:po_line_id;type:uuid"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UOM           string          `gorm:"column:uom;type:varchar(20)"`
	BatchNumber   string          `gorm:"type:varchar(50)"`
	ExpiryDate    *time.Time
	SerialTracked bool       `gorm:"not null;default:false"`
	SerialNumbers SerialList
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GoodsReceiptLineModel) TableName() string {
	return "goods_receipt_lines"
}

// ToDomain converts the persistence model to a domain GoodsReceiptLine
func (m *GoodsReceiptLineModel) ToDomain() trade.GoodsReceiptLine {
	return trade.GoodsReceiptLine{
		ID:            m.ID,
		ReceiptID:     m.ReceiptID,
		POLineID:      m.POLineID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		TaxAmount:     m.TaxAmount,
		TotalAmount:   m.TotalAmount,
		UOM:           m.UOM,
		BatchNumber:   m.BatchNumber,
		ExpiryDate:    m.ExpiryDate,
		SerialTracked: m.SerialTracked,
		SerialNumbers: []string(m.SerialNumbers),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// GoodsReceiptLineModelFromDomain creates a line model at position lineNo
func GoodsReceiptLineModelFromDomain(l *trade.GoodsReceiptLine, lineNo int) *GoodsReceiptLineModel {
	return &GoodsReceiptLineModel{
		ID:            l.ID,
		ReceiptID:     l.ReceiptID,
		LineNo:        lineNo,
		POLineID:      l.POLineID,
		ProductID:     l.ProductID,
		Quantity:      l.Quantity,
		UnitPrice:     l.UnitPrice,
		TaxAmount:     l.TaxAmount,
		TotalAmount:   l.TotalAmount,
		UOM:           l.UOM,
		BatchNumber:   l.BatchNumber,
		ExpiryDate:    l.ExpiryDate,
		SerialTracked: l.SerialTracked,
		SerialNumbers: SerialList(l.SerialNumbers),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// InventoryIssueModel is the persistence model for an inventory issue
type InventoryIssueModel struct {
	BaseModel
	IssueNumber string                    `gorm:"type:varchar(50);not null;uniqueIndex"`
	LocationID  uuid.UUID                 `gorm:"type:uuid;not null;index"`
	IssueDate   time.Time                 `gorm:"not null;index"`
	IssuedTo    string                    `gorm:"type:varchar(200)"`
	Remarks     string                    `gorm:"type:text"`
	CreatedBy   *uuid.UUID                `gorm:"type:uuid"`
	Lines       []InventoryIssueLineModel `gorm:"foreignKey:IssueID;references:ID"`
}

// TableName returns the table name for GORM
func (InventoryIssueModel) TableName() string {
	return "inventory_issues"
}

// ToDomain converts the persistence model to a domain InventoryIssue
func (m *InventoryIssueModel) ToDomain() *trade.InventoryIssue {
	issue := &trade.InventoryIssue{
		BaseEntity:  m.BaseModel.ToDomain(),
		IssueNumber: m.IssueNumber,
		LocationID:  m.LocationID,
		IssueDate:   m.IssueDate,
		IssuedTo:    m.IssuedTo,
		Remarks:     m.Remarks,
		CreatedBy:   m.CreatedBy,
		Lines:       make([]trade.InventoryIssueLine, len(m.Lines)),
	}
	for i, l := range m.Lines {
		issue.Lines[i] = trade.InventoryIssueLine{
			ID:            l.ID,
			IssueID:       l.IssueID,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			UOM:           l.UOM,
			Remarks:       l.Remarks,
			SerialTracked: l.SerialTracked,
			SerialNumbers: []string(l.SerialNumbers),
			CreatedAt:     l.CreatedAt,
		}
	}
	return issue
}

// InventoryIssueModelFromDomain creates a persistence model, lines included
func InventoryIssueModelFromDomain(issue *trade.InventoryIssue) *InventoryIssueModel {
	m := &InventoryIssueModel{
		IssueNumber: issue.IssueNumber,
		LocationID:  issue.LocationID,
		IssueDate:   issue.IssueDate,
		IssuedTo:    issue.IssuedTo,
		Remarks:     issue.Remarks,
		CreatedBy:   issue.CreatedBy,
		Lines:       make([]InventoryIssueLineModel, len(issue.Lines)),
	}
	m.FromDomainBaseEntity(issue.BaseEntity)
	for i, l := range issue.Lines {
		m.Lines[i] = InventoryIssueLineModel{
			ID:            l.ID,
			IssueID:       issue.ID,
			LineNo:        i,
			ProductID:     l.ProductID,
			Quantity:      l.Quantity,
			UOM:           l.UOM,
			Remarks:       l.Remarks,
			SerialTracked: l.SerialTracked,
			SerialNumbers: SerialList(l.SerialNumbers),
			CreatedAt:     l.CreatedAt,
		}
	}
	return m
}

// InventoryIssueLineModel is one issued line
type InventoryIssueLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	IssueID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo        int             `gorm:"not null;default:0"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UOM           string          `gorm:"column:uom;type:varchar(20)"`
	Remarks       string          `gorm:"type:varchar(500)"`
	SerialTracked bool            `gorm:"not null;default:false"`
	SerialNumbers SerialList
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InventoryIssueLineModel) TableName() string {
	return "inventory_issue_lines"
}

// InventoryAdjustmentModel is the audit row of one stock adjustment
type InventoryAdjustmentModel struct {
	BaseModel
	BatchID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_adjustment_position,priority:1"`
	LocationID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_adjustment_position,priority:2"`
	AdjustmentDate time.Time       `gorm:"not null"`
	QuantityChange decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason         string          `gorm:"type:varchar(500);not null"`
	AdjustedBy     *uuid.UUID      `gorm:"type:uuid"`
	SerialTracked  bool            `gorm:"not null;default:false"`
	SerialsAdded   SerialList
	SerialsRemoved SerialList
}

// TableName returns the table name for GORM
func (InventoryAdjustmentModel) TableName() string {
	return "inventory_adjustments"
}

// ToDomain converts the persistence model to a domain InventoryAdjustment
func (m *InventoryAdjustmentModel) ToDomain() *trade.InventoryAdjustment {
	return &trade.InventoryAdjustment{
		BaseEntity:     m.BaseModel.ToDomain(),
		BatchID:        m.BatchID,
		ProductID:      m.ProductID,
		LocationID:     m.LocationID,
		AdjustmentDate: m.AdjustmentDate,
		QuantityChange: m.QuantityChange,
		Reason:         m.Reason,
		AdjustedBy:     m.AdjustedBy,
		SerialTracked:  m.SerialTracked,
		SerialsAdded:   []string(m.SerialsAdded),
		SerialsRemoved: []string(m.SerialsRemoved),
	}
}

// InventoryAdjustmentModelFromDomain creates a new persistence model from a domain InventoryAdjustment
func InventoryAdjustmentModelFromDomain(a *trade.InventoryAdjustment) *InventoryAdjustmentModel {
	m := &InventoryAdjustmentModel{
		BatchID:        a.BatchID,
		ProductID:      a.ProductID,
		LocationID:     a.LocationID,
		AdjustmentDate: a.AdjustmentDate,
		QuantityChange: a.QuantityChange,
		Reason:         a.Reason,
		AdjustedBy:     a.AdjustedBy,
		SerialTracked:  a.SerialTracked,
		SerialsAdded:   SerialList(a.SerialsAdded),
		SerialsRemoved: SerialList(a.SerialsRemoved),
	}
	m.FromDomainBaseEntity(a.BaseEntity)
	return m
}

// SalesOrderModel is the persistence model for the SalesOrder aggregate root.
type SalesOrderModel struct {
	AggregateModel
	OrderCode          string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	OrderDate          time.Time             `gorm:"not null;index"`
	CustomerID         *uuid.UUID            `gorm:"type:uuid;index"`
	LocationID         uuid.UUID             `gorm:"type:uuid;not null;index"`
	Status             string                `gorm:"type:varchar(20);not null;default:'CONFIRMED';index"`
	PaymentStatus      string                `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	Subtotal           decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount     decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount          decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal         decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotalRounded  decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0"`
	Remarks            string                `gorm:"type:text"`
	CancellationReason string                `gorm:"type:varchar(500)"`
	CancelledAt        *time.Time            `gorm:"index"`
	CancelledBy        *uuid.UUID            `gorm:"type:uuid"`
	CreatedBy          *uuid.UUID            `gorm:"type:uuid"`
	UpdatedBy          *uuid.UUID            `gorm:"type:uuid"`
	Lines              []SalesOrderLineModel `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrderModel) TableName() string {
	return "sales_orders"
}

// ToDomain converts the persistence model to a domain SalesOrder entity.
func (m *SalesOrderModel) ToDomain() *trade.SalesOrder {
	order := &trade.SalesOrder{
		BaseAggregateRoot:  m.ToDomainAggregateRoot(),
		OrderCode:          m.OrderCode,
		OrderDate:          m.OrderDate,
		CustomerID:         m.CustomerID,
		LocationID:         m.LocationID,
		Status:             trade.OrderStatus(m.Status),
		PaymentStatus:      finance.PaymentStatus(m.PaymentStatus),
		Subtotal:           m.Subtotal,
		DiscountAmount:     m.DiscountAmount,
		TaxAmount:          m.TaxAmount,
		GrandTotal:         m.GrandTotal,
		GrandTotalRounded:  m.GrandTotalRounded,
		Remarks:            m.Remarks,
		CancellationReason: m.CancellationReason,
		CancelledAt:        m.CancelledAt,
		CancelledBy:        m.CancelledBy,
		CreatedBy:          m.CreatedBy,
		UpdatedBy:          m.UpdatedBy,
		Lines:              make([]trade.SalesOrderLine, len(m.Lines)),
	}
	for i := range m.Lines {
		order.Lines[i] = m.Lines[i].ToDomain()
	}
	return order
}

// SalesOrderModelFromDomain creates a header model from a domain SalesOrder.
// Lines are written separately by ID.
func SalesOrderModelFromDomain(o *trade.SalesOrder) *SalesOrderModel {
	m := &SalesOrderModel{
		OrderCode:          o.OrderCode,
		OrderDate:          o.OrderDate,
		CustomerID:         o.CustomerID,
		LocationID:         o.LocationID,
		Status:             string(o.Status),
		PaymentStatus:      string(o.PaymentStatus),
		Subtotal:           o.Subtotal,
		DiscountAmount:     o.DiscountAmount,
		TaxAmount:          o.TaxAmount,
		GrandTotal:         o.GrandTotal,
		GrandTotalRounded:  o.GrandTotalRounded,
		Remarks:            o.Remarks,
		CancellationReason: o.CancellationReason,
		CancelledAt:        o.CancelledAt,
		CancelledBy:        o.CancelledBy,
		CreatedBy:          o.CreatedBy,
		UpdatedBy:          o.UpdatedBy,
	}
	m.FromDomainAggregateRoot(o.BaseAggregateRoot)
	return m
}

// SalesOrderLineModel is the persistence model for a sales order line.
type SalesOrderLineModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNo        int             `gorm:"not null;default:0"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Discount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UOM           string          `gorm:"column:uom;type:varchar(20)"`
	BatchNo       string          `gorm:"type:varchar(50)"`
	SerialTracked bool            `gorm:"not null;default:false"`
	SerialNumbers SerialList
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SalesOrderLineModel) TableName() string {
	return "sales_order_lines"
}

// ToDomain converts the persistence model to a domain SalesOrderLine
func (m *SalesOrderLineModel) ToDomain() trade.SalesOrderLine {
	return trade.SalesOrderLine{
		ID:            m.ID,
		OrderID:       m.OrderID,
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		Discount:      m.Discount,
		TaxAmount:     m.TaxAmount,
		LineTotal:     m.LineTotal,
		UOM:           m.UOM,
		BatchNo:       m.BatchNo,
		SerialTracked: m.SerialTracked,
		SerialNumbers: []string(m.SerialNumbers),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// SalesOrderLineModelFromDomain creates a line model at position lineNo
func SalesOrderLineModelFromDomain(l *trade.SalesOrderLine, lineNo int) *SalesOrderLineModel {
	return &SalesOrderLineModel{
		ID:            l.ID,
		OrderID:       l.OrderID,
		LineNo:        lineNo,
		ProductID:     l.ProductID,
		Quantity:      l.Quantity,
		UnitPrice:     l.UnitPrice,
		Discount:      l.Discount,
		TaxAmount:     l.TaxAmount,
		LineTotal:     l.LineTotal,
		UOM:           l.UOM,
		BatchNo:       l.BatchNo,
		SerialTracked: l.SerialTracked,
		SerialNumbers: SerialList(l.SerialNumbers),
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

// InvoiceModel is the persistence model for a vendor invoice
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber   string          `gorm:"type:varchar(50);not null;index:idx_invoice_vendor_number,priority:2"`
	PurchaseOrderID *uuid.UUID      `gorm:"type:uuid;index"`
	VendorID        uuid.UUID       `gorm:"type:uuid;not null;index:idx_invoice_vendor_number,priority:1"`
	InvoiceDate     time.Time       `gorm:"not null;index"`
	InvoiceAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CGSTAmount      decimal.Decimal `gorm:"column:cgst_amount;type:decimal(18,4);not null;default:0"`
	SGSTAmount      decimal.Decimal `gorm:"column:sgst_amount;type:decimal(18,4);not null;default:0"`
	IGSTAmount      decimal.Decimal `gorm:"column:igst_amount;type:decimal(18,4);not null;default:0"`
	TotalTaxAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Remarks         string          `gorm:"type:text"`
	PaymentStatus   string          `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	CreatedBy       *uuid.UUID      `gorm:"type:uuid"`
	UpdatedBy       *uuid.UUID      `gorm:"type:uuid"`
	IsDeleted       bool            `gorm:"not null;default:false;index"`
	DeletedAt       *time.Time
	DeletedBy       *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *trade.Invoice {
	return &trade.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		PurchaseOrderID:   m.PurchaseOrderID,
		VendorID:          m.VendorID,
		InvoiceDate:       m.InvoiceDate,
		InvoiceAmount:     m.InvoiceAmount,
		CGSTAmount:        m.CGSTAmount,
		SGSTAmount:        m.SGSTAmount,
		IGSTAmount:        m.IGSTAmount,
		TotalTaxAmount:    m.TotalTaxAmount,
		TotalAmount:       m.TotalAmount,
		Remarks:           m.Remarks,
		PaymentStatus:     finance.PaymentStatus(m.PaymentStatus),
		CreatedBy:         m.CreatedBy,
		UpdatedBy:         m.UpdatedBy,
		IsDeleted:         m.IsDeleted,
		DeletedAt:         m.DeletedAt,
		DeletedBy:         m.DeletedBy,
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(i *trade.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber:   i.InvoiceNumber,
		PurchaseOrderID: i.PurchaseOrderID,
		VendorID:        i.VendorID,
		InvoiceDate:     i.InvoiceDate,
		InvoiceAmount:   i.InvoiceAmount,
		CGSTAmount:      i.CGSTAmount,
		SGSTAmount:      i.SGSTAmount,
		IGSTAmount:      i.IGSTAmount,
		TotalTaxAmount:  i.TotalTaxAmount,
		TotalAmount:     i.TotalAmount,
		Remarks:         i.Remarks,
		PaymentStatus:   string(i.PaymentStatus),
		CreatedBy:       i.CreatedBy,
		UpdatedBy:       i.UpdatedBy,
		IsDeleted:       i.IsDeleted,
		DeletedAt:       i.DeletedAt,
		DeletedBy:       i.DeletedBy,
	}
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	return m
}
