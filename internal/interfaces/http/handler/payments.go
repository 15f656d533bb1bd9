package handler

import (
	"context"

	apptrade "github.com/erp/ledgercore/internal/application/trade"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// paymentBook is the payment surface shared by sales orders and invoices
type paymentBook interface {
	SyncPayments(ctx context.Context, actor *uuid.UUID, documentID uuid.UUID, req apptrade.SyncPaymentsRequest) (*apptrade.ReconciliationResponse, error)
	SavePayment(ctx context.Context, actor *uuid.UUID, documentID uuid.UUID, req apptrade.PaymentRequest) (*apptrade.ReconciliationResponse, error)
	DeletePayment(ctx context.Context, actor *uuid.UUID, documentID, paymentID uuid.UUID) (*apptrade.ReconciliationResponse, error)
	ListPayments(ctx context.Context, documentID uuid.UUID) ([]apptrade.PaymentResponse, error)
}

// paymentRoutes serves /:id/payments under a document group
type paymentRoutes struct {
	BaseHandler
	book paymentBook
}

func (p *paymentRoutes) register(rg *gin.RouterGroup) {
	rg.GET("/:id/payments", p.list)
	rg.PUT("/:id/payments", p.sync)
	rg.POST("/:id/payments", p.save)
	rg.PUT("/:id/payments/:payment_id", p.save)
	rg.DELETE("/:id/payments/:payment_id", p.remove)
}

func (p *paymentRoutes) list(c *gin.Context) {
	id, ok := p.pathID(c, "id")
	if !ok {
		return
	}
	payments, err := p.book.ListPayments(c.Request.Context(), id)
	if err != nil {
		p.HandleError(c, err)
		return
	}
	if payments == nil {
		payments = []apptrade.PaymentResponse{}
	}
	p.Success(c, payments)
}

// sync replaces the document's payment list; payments not listed are removed
func (p *paymentRoutes) sync(c *gin.Context) {
	id, ok := p.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.SyncPaymentsRequest
	if !p.bindJSON(c, &req) {
		return
	}
	result, err := p.book.SyncPayments(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		p.HandleError(c, err)
		return
	}
	p.Success(c, result)
}

func (p *paymentRoutes) save(c *gin.Context) {
	id, ok := p.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.PaymentRequest
	if !p.bindJSON(c, &req) {
		return
	}
	creating := c.Param("payment_id") == ""
	if !creating {
		paymentID, ok := p.pathID(c, "payment_id")
		if !ok {
			return
		}
		req.ID = &paymentID
	}
	result, err := p.book.SavePayment(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		p.HandleError(c, err)
		return
	}
	if creating {
		p.Created(c, result)
		return
	}
	p.Success(c, result)
}

func (p *paymentRoutes) remove(c *gin.Context) {
	id, ok := p.pathID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := p.pathID(c, "payment_id")
	if !ok {
		return
	}
	result, err := p.book.DeletePayment(c.Request.Context(), middleware.GetActor(c), id, paymentID)
	if err != nil {
		p.HandleError(c, err)
		return
	}
	p.Success(c, result)
}
