package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/domain/trade"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Reconciliation is the outcome of recomputing a document's payment status
type Reconciliation struct {
	Document      finance.DocumentRef
	TotalPaid     decimal.Decimal
	DocumentTotal decimal.Decimal
	Status        finance.PaymentStatus
}

// PaymentInput is one entry of a payment list. A nil ID creates a payment.
type PaymentInput struct {
	ID      *uuid.UUID
	Details finance.PaymentDetails
}

// payable is the part of a document the reconciler reads and writes
type payable interface {
	PayableTotal() decimal.Decimal
	SetPaymentStatus(status finance.PaymentStatus)
	Reference() string
}

// PaymentReconciler keeps a document's payment records, their ledger effects,
// and its derived payment status consistent.
type PaymentReconciler struct {
	payments finance.PaymentRecordRepository
	orders   trade.SalesOrderRepository
	invoices trade.InvoiceRepository
	money    *MoneyLedger
}

// lockedDocument holds a document row locked for the rest of the transaction
type lockedDocument struct {
	ref     finance.DocumentRef
	doc     payable
	persist func(ctx context.Context) error
}

func (r *PaymentReconciler) lock(ctx context.Context, ref finance.DocumentRef) (*lockedDocument, error) {
	switch ref.Type {
	case finance.DocumentTypeSalesOrder:
		order, err := r.orders.FindByIDForUpdate(ctx, ref.ID)
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Sales order not found")
		}
		if err != nil {
			return nil, fmt.Errorf("lock sales order: %w", err)
		}
		return &lockedDocument{ref: ref, doc: order, persist: func(ctx context.Context) error {
			return r.orders.UpdateStatus(ctx, order)
		}}, nil
	case finance.DocumentTypeInvoice:
		invoice, err := r.invoices.FindByIDForUpdate(ctx, ref.ID)
		if errors.Is(err, shared.ErrNotFound) || (err == nil && invoice.IsDeleted) {
			return nil, shared.NewNotFoundError("Invoice not found")
		}
		if err != nil {
			return nil, fmt.Errorf("lock invoice: %w", err)
		}
		return &lockedDocument{ref: ref, doc: invoice, persist: func(ctx context.Context) error {
			return r.invoices.Update(ctx, invoice)
		}}, nil
	}
	return nil, shared.NewValidationError("Unknown document type")
}

// Recompute sums the document's payments and stores the derived status
func (r *PaymentReconciler) Recompute(ctx context.Context, ref finance.DocumentRef) (*Reconciliation, error) {
	locked, err := r.lock(ctx, ref)
	if err != nil {
		return nil, err
	}
	return r.recompute(ctx, locked)
}

func (r *PaymentReconciler) recompute(ctx context.Context, locked *lockedDocument) (*Reconciliation, error) {
	payments, err := r.payments.ListByDocument(ctx, locked.ref)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	paid := finance.SumPayments(payments)
	total := locked.doc.PayableTotal()
	status := finance.DerivePaymentStatus(paid, total)
	locked.doc.SetPaymentStatus(status)
	if err := locked.persist(ctx); err != nil {
		return nil, fmt.Errorf("store payment status: %w", err)
	}
	return &Reconciliation{
		Document:      locked.ref,
		TotalPaid:     paid,
		DocumentTotal: total,
		Status:        status,
	}, nil
}

// Sync replaces the payment list of a document. Records missing from inputs are
// removed, records named by ID are updated, and records without an ID are created.
// Each affected record's ledger effect is settled by its net change, then the
// document's payment status is recomputed.
func (r *PaymentReconciler) Sync(ctx context.Context, ref finance.DocumentRef, partyID *uuid.UUID, inputs []PaymentInput, actor *uuid.UUID) (*Reconciliation, error) {
	locked, err := r.lock(ctx, ref)
	if err != nil {
		return nil, err
	}
	existing, err := r.payments.ListByDocument(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	byID := make(map[uuid.UUID]*finance.PaymentRecord, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	seen := make(map[uuid.UUID]struct{}, len(inputs))
	var settle []SettleRequest
	for _, in := range inputs {
		var p *finance.PaymentRecord
		if in.ID != nil {
			if _, dup := seen[*in.ID]; dup {
				return nil, shared.NewValidationError("Payment " + in.ID.String() + " appears more than once")
			}
			seen[*in.ID] = struct{}{}
			var ok bool
			if p, ok = byID[*in.ID]; !ok {
				return nil, shared.NewNotFoundError("Payment " + in.ID.String() + " not found on this document")
			}
			if err := p.Update(in.Details, actor); err != nil {
				return nil, err
			}
			if err := r.payments.Update(ctx, p); err != nil {
				return nil, fmt.Errorf("update payment: %w", err)
			}
		} else {
			if p, err = finance.NewPaymentRecord(ref, partyID, in.Details, actor); err != nil {
				return nil, err
			}
			if err := r.payments.Insert(ctx, p); err != nil {
				return nil, fmt.Errorf("insert payment: %w", err)
			}
		}
		settle = append(settle, r.settleRequest(locked, p, p.LedgerEffect(), actor))
	}

	var removed []uuid.UUID
	for i := range existing {
		p := &existing[i]
		if _, kept := seen[p.ID]; kept {
			continue
		}
		removed = append(removed, p.ID)
		settle = append(settle, r.settleRequest(locked, p, nil, actor))
	}

	if _, err := r.money.SettlePayments(ctx, settle...); err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		if err := r.payments.DeleteByIDs(ctx, removed); err != nil {
			return nil, fmt.Errorf("delete payments: %w", err)
		}
	}
	return r.recompute(ctx, locked)
}

// Save creates a payment when id is nil, otherwise updates the named payment
func (r *PaymentReconciler) Save(ctx context.Context, ref finance.DocumentRef, partyID *uuid.UUID, id *uuid.UUID, details finance.PaymentDetails, actor *uuid.UUID) (*finance.PaymentRecord, *Reconciliation, error) {
	locked, err := r.lock(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	var p *finance.PaymentRecord
	if id == nil {
		if p, err = finance.NewPaymentRecord(ref, partyID, details, actor); err != nil {
			return nil, nil, err
		}
		if err := r.payments.Insert(ctx, p); err != nil {
			return nil, nil, fmt.Errorf("insert payment: %w", err)
		}
	} else {
		if p, err = r.find(ctx, ref, *id); err != nil {
			return nil, nil, err
		}
		if err := p.Update(details, actor); err != nil {
			return nil, nil, err
		}
		if err := r.payments.Update(ctx, p); err != nil {
			return nil, nil, fmt.Errorf("update payment: %w", err)
		}
	}
	if _, err := r.money.SettlePayments(ctx, r.settleRequest(locked, p, p.LedgerEffect(), actor)); err != nil {
		return nil, nil, err
	}
	rec, err := r.recompute(ctx, locked)
	if err != nil {
		return nil, nil, err
	}
	return p, rec, nil
}

// Delete removes a payment after settling its ledger effect to zero
func (r *PaymentReconciler) Delete(ctx context.Context, ref finance.DocumentRef, id uuid.UUID, actor *uuid.UUID) (*Reconciliation, error) {
	locked, err := r.lock(ctx, ref)
	if err != nil {
		return nil, err
	}
	p, err := r.find(ctx, ref, id)
	if err != nil {
		return nil, err
	}
	if _, err := r.money.SettlePayments(ctx, r.settleRequest(locked, p, nil, actor)); err != nil {
		return nil, err
	}
	if err := r.payments.DeleteByIDs(ctx, []uuid.UUID{p.ID}); err != nil {
		return nil, fmt.Errorf("delete payment: %w", err)
	}
	return r.recompute(ctx, locked)
}

func (r *PaymentReconciler) find(ctx context.Context, ref finance.DocumentRef, id uuid.UUID) (*finance.PaymentRecord, error) {
	p, err := r.payments.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) || (err == nil && p.Document() != ref) {
		return nil, shared.NewNotFoundError("Payment not found")
	}
	if err != nil {
		return nil, fmt.Errorf("load payment: %w", err)
	}
	return p, nil
}

func (r *PaymentReconciler) settleRequest(locked *lockedDocument, p *finance.PaymentRecord, desired map[string]finance.AccountEffect, actor *uuid.UUID) SettleRequest {
	docID := locked.ref.ID
	return SettleRequest{
		PaymentID:   p.ID,
		Source:      locked.ref.Type.EntrySource(),
		SourceID:    &docID,
		Desired:     desired,
		EntryDate:   p.PaymentDate,
		Description: fmt.Sprintf("Payment %s for %s", p.Mode, locked.doc.Reference()),
		Reference:   p.Reference,
		Actor:       actor,
	}
}
