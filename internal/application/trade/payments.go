package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/ledgercore/internal/application/ledger"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// partyOf returns the counterparty a document's payments are made with
func partyOf(ctx context.Context, repos ledger.Repositories, ref finance.DocumentRef) (*uuid.UUID, error) {
	switch ref.Type {
	case finance.DocumentTypeSalesOrder:
		order, err := repos.SalesOrders().FindByID(ctx, ref.ID)
		if err != nil {
			return nil, notFoundAs(err, "Sales order not found")
		}
		return order.CustomerID, nil
	case finance.DocumentTypeInvoice:
		invoice, err := repos.Invoices().FindByID(ctx, ref.ID)
		if err != nil {
			return nil, notFoundAs(err, "Invoice not found")
		}
		vendor := invoice.VendorID
		return &vendor, nil
	}
	return nil, shared.NewValidationError("Unknown document type")
}

func notFoundAs(err error, message string) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shared.NewNotFoundError(message)
	}
	return err
}

func syncPayments(ctx context.Context, scope ledger.TransactionScope, books *ledger.Factory, logger *zap.Logger, actor *uuid.UUID, ref finance.DocumentRef, req SyncPaymentsRequest) (*ReconciliationResponse, error) {
	inputs, err := paymentInputs(req.Payments)
	if err != nil {
		return nil, err
	}
	var resp ReconciliationResponse
	err = scope.Execute(ctx, func(repos ledger.Repositories) error {
		party, err := partyOf(ctx, repos, ref)
		if err != nil {
			return err
		}
		rec, err := books.Open(repos).Payments.Sync(ctx, ref, party, inputs, actor)
		if err != nil {
			return err
		}
		resp, err = reconciliationWithPayments(ctx, repos, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("payments synced",
		zap.String("document_type", string(ref.Type)),
		zap.String("document_id", ref.ID.String()),
		zap.Int("payments", len(resp.Payments)),
		zap.String("payment_status", resp.PaymentStatus),
	)
	return &resp, nil
}

func savePayment(ctx context.Context, scope ledger.TransactionScope, books *ledger.Factory, logger *zap.Logger, actor *uuid.UUID, ref finance.DocumentRef, req PaymentRequest) (*ReconciliationResponse, error) {
	details, err := req.details()
	if err != nil {
		return nil, err
	}
	var resp ReconciliationResponse
	err = scope.Execute(ctx, func(repos ledger.Repositories) error {
		party, err := partyOf(ctx, repos, ref)
		if err != nil {
			return err
		}
		_, rec, err := books.Open(repos).Payments.Save(ctx, ref, party, req.ID, details, actor)
		if err != nil {
			return err
		}
		resp, err = reconciliationWithPayments(ctx, repos, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("payment saved",
		zap.String("document_type", string(ref.Type)),
		zap.String("document_id", ref.ID.String()),
		zap.String("amount", details.Amount.String()),
		zap.String("payment_status", resp.PaymentStatus),
	)
	return &resp, nil
}

func deletePayment(ctx context.Context, scope ledger.TransactionScope, books *ledger.Factory, logger *zap.Logger, actor *uuid.UUID, ref finance.DocumentRef, paymentID uuid.UUID) (*ReconciliationResponse, error) {
	var resp ReconciliationResponse
	err := scope.Execute(ctx, func(repos ledger.Repositories) error {
		rec, err := books.Open(repos).Payments.Delete(ctx, ref, paymentID, actor)
		if err != nil {
			return err
		}
		resp, err = reconciliationWithPayments(ctx, repos, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("payment deleted",
		zap.String("document_type", string(ref.Type)),
		zap.String("document_id", ref.ID.String()),
		zap.String("payment_id", paymentID.String()),
		zap.String("payment_status", resp.PaymentStatus),
	)
	return &resp, nil
}

func listPayments(ctx context.Context, scope ledger.TransactionScope, ref finance.DocumentRef) ([]PaymentResponse, error) {
	var out []PaymentResponse
	err := scope.Execute(ctx, func(repos ledger.Repositories) error {
		if _, err := partyOf(ctx, repos, ref); err != nil {
			return err
		}
		payments, err := repos.PaymentRecords().ListByDocument(ctx, ref)
		if err != nil {
			return fmt.Errorf("list payments: %w", err)
		}
		out = make([]PaymentResponse, len(payments))
		for i := range payments {
			out[i] = ToPaymentResponse(&payments[i])
		}
		return nil
	})
	return out, err
}

func reconciliationWithPayments(ctx context.Context, repos ledger.Repositories, rec *ledger.Reconciliation) (ReconciliationResponse, error) {
	resp := ToReconciliationResponse(rec)
	payments, err := repos.PaymentRecords().ListByDocument(ctx, rec.Document)
	if err != nil {
		return resp, fmt.Errorf("list payments: %w", err)
	}
	resp.Payments = make([]PaymentResponse, len(payments))
	for i := range payments {
		resp.Payments[i] = ToPaymentResponse(&payments[i])
	}
	return resp, nil
}
