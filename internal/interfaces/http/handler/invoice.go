package handler

import (
	"net/http"

	apptrade "github.com/erp/ledgercore/internal/application/trade"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler serves vendor invoices and their payments
type InvoiceHandler struct {
	BaseHandler
	service  *apptrade.InvoiceService
	payments *paymentRoutes
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(service *apptrade.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{service: service, payments: &paymentRoutes{book: service}}
}

// RegisterRoutes mounts the invoice endpoints
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	invoices.POST("", h.SaveInvoice)
	invoices.GET("", h.ListInvoices)
	invoices.GET("/:id", h.GetInvoice)
	invoices.PUT("/:id", h.SaveInvoice)
	invoices.DELETE("/:id", h.DeleteInvoice)
	h.payments.register(invoices)
}

// SaveInvoice POST /invoices, PUT /invoices/:id
func (h *InvoiceHandler) SaveInvoice(c *gin.Context) {
	var req apptrade.SaveInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	revising := c.Param("id") != ""
	if revising {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		req.ID = &id
	}

	invoice, err := h.service.SaveInvoice(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if revising || req.ID != nil {
		h.Success(c, invoice)
		return
	}
	h.Created(c, invoice)
}

// DeleteInvoice soft deletes an invoice that has no live payments
// DELETE /invoices/:id
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteInvoice(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetInvoice GET /invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	invoice, err := h.service.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ListInvoices GET /invoices?vendor_id=
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	vendorID, ok := h.queryID(c, "vendor_id")
	if !ok {
		return
	}
	var q pageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.service.ListInvoices(c.Request.Context(), vendorID, q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
