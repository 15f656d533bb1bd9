package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InvoiceService maintains vendor invoices and their payments
type InvoiceService struct {
	scope  ledger.TransactionScope
	books  *ledger.Factory
	logger *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope ledger.TransactionScope, books *ledger.Factory, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		scope:  scope,
		books:  books,
		logger: logger,
	}
}

// SaveInvoice creates an invoice, or updates one and recomputes its payment
// status against the new total. Invoice numbers are unique per vendor.
func (s *InvoiceService) SaveInvoice(ctx context.Context, actor *uuid.UUID, req SaveInvoiceRequest) (*InvoiceResponse, error) {
	details := req.details()
	isNew := req.ID == nil

	var saved *trade.Invoice
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		invoices := repos.Invoices()
		exclude := uuid.Nil
		if !isNew {
			exclude = *req.ID
		}
		exists, err := invoices.ExistsByNumber(ctx, req.VendorID, req.InvoiceNumber, exclude)
		if err != nil {
			return fmt.Errorf("check invoice number: %w", err)
		}
		if exists {
			return shared.NewDomainError(shared.CodeAlreadyExists, "Invoice number already exists for this vendor")
		}

		var invoice *trade.Invoice
		if isNew {
			if invoice, err = trade.NewInvoice(details, actor); err != nil {
				return err
			}
			if err := invoices.Create(ctx, invoice); err != nil {
				return fmt.Errorf("create invoice: %w", err)
			}
		} else {
			if invoice, err = s.lockInvoice(ctx, repos, *req.ID); err != nil {
				return err
			}
			if err := invoice.Update(details, actor); err != nil {
				return err
			}
			if err := invoices.Update(ctx, invoice); err != nil {
				return fmt.Errorf("update invoice: %w", err)
			}
		}
		rec, err := s.books.Open(repos).Payments.Recompute(ctx, finance.DocumentRef{Type: finance.DocumentTypeInvoice, ID: invoice.ID})
		if err != nil {
			return err
		}
		invoice.SetPaymentStatus(rec.Status)
		saved = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("invoice saved",
		zap.String("invoice_id", saved.ID.String()),
		zap.String("invoice_number", saved.InvoiceNumber),
		zap.Bool("created", isNew),
		zap.String("total_amount", saved.TotalAmount.String()),
	)
	resp := ToInvoiceResponse(saved)
	return &resp, nil
}

func (s *InvoiceService) lockInvoice(ctx context.Context, repos ledger.Repositories, id uuid.UUID) (*trade.Invoice, error) {
	invoice, err := repos.Invoices().FindByIDForUpdate(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewNotFoundError("Invoice not found")
	}
	if err != nil {
		return nil, fmt.Errorf("lock invoice: %w", err)
	}
	return invoice, nil
}

// DeleteInvoice soft deletes an invoice. It fails while the invoice has payments.
func (s *InvoiceService) DeleteInvoice(ctx context.Context, actor *uuid.UUID, id uuid.UUID) error {
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		invoice, err := s.lockInvoice(ctx, repos, id)
		if err != nil {
			return err
		}
		payments, err := repos.PaymentRecords().ListByDocument(ctx, finance.DocumentRef{Type: finance.DocumentTypeInvoice, ID: id})
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		if err := invoice.MarkDeleted(len(payments), actor); err != nil {
			return err
		}
		if err := repos.Invoices().Update(ctx, invoice); err != nil {
			return fmt.Errorf("delete invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("invoice_id", id.String()))
	return nil
}

// GetInvoice returns a live invoice
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		invoice, err := repos.Invoices().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if invoice.IsDeleted {
			return shared.NewNotFoundError("Invoice not found")
		}
		resp = ToInvoiceResponse(invoice)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListInvoices lists live invoices, optionally for one vendor
func (s *InvoiceService) ListInvoices(ctx context.Context, vendorID *uuid.UUID, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	f := filter.Normalize()
	var page shared.Paginated[InvoiceResponse]
	err := s.scope.Execute(ctx, func(repos ledger.Repositories) error {
		invoices, total, err := repos.Invoices().List(ctx, vendorID, f)
		if err != nil {
			return err
		}
		items := make([]InvoiceResponse, len(invoices))
		for i := range invoices {
			items[i] = ToInvoiceResponse(&invoices[i])
		}
		page = shared.NewPaginated(items, total, f.Page, f.PageSize)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// SyncPayments replaces the payment list of an invoice
func (s *InvoiceService) SyncPayments(ctx context.Context, actor *uuid.UUID, invoiceID uuid.UUID, req SyncPaymentsRequest) (*ReconciliationResponse, error) {
	return syncPayments(ctx, s.scope, s.books, s.logger, actor, finance.DocumentRef{Type: finance.DocumentTypeInvoice, ID: invoiceID}, req)
}

// SavePayment adds a payment to an invoice, or edits one when req.ID is set
func (s *InvoiceService) SavePayment(ctx context.Context, actor *uuid.UUID, invoiceID uuid.UUID, req PaymentRequest) (*ReconciliationResponse, error) {
	return savePayment(ctx, s.scope, s.books, s.logger, actor, finance.DocumentRef{Type: finance.DocumentTypeInvoice, ID: invoiceID}, req)
}

// DeletePayment removes a payment from an invoice and reverses its ledger effect
func (s *InvoiceService) DeletePayment(ctx context.Context, actor *uuid.UUID, invoiceID, paymentID uuid.UUID) (*ReconciliationResponse, error) {
	return deletePayment(ctx, s.scope, s.books, s.logger, actor, finance.DocumentRef{Type: finance.DocumentTypeInvoice, ID: invoiceID}, paymentID)
}

// ListPayments lists the payments of an invoice
func (s *InvoiceService) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	return listPayments(ctx, s.scope, finance.DocumentRef{Type: finance.DocumentTypeInvoice, ID: invoiceID})
}
