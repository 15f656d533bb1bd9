package handler

import (
	"net/http"

	apptrade "github.com/erp/ledgercore/internal/application/trade"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// SalesOrderHandler serves sales orders and their payments
type SalesOrderHandler struct {
	BaseHandler
	service  *apptrade.SalesOrderService
	payments *paymentRoutes
}

// NewSalesOrderHandler creates a new SalesOrderHandler
func NewSalesOrderHandler(service *apptrade.SalesOrderService) *SalesOrderHandler {
	return &SalesOrderHandler{service: service, payments: &paymentRoutes{book: service}}
}

// RegisterRoutes mounts the sales order endpoints
func (h *SalesOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/sales-orders")
	orders.POST("", h.SaveOrder)
	orders.GET("", h.ListOrders)
	orders.GET("/:id", h.GetOrder)
	orders.PUT("/:id", h.SaveOrder)
	orders.POST("/:id/cancel", h.CancelOrder)
	h.payments.register(orders)
}

// SaveOrder creates an order, or revises the one named by the path. Stock,
// serials and an optional payment list are reconciled in one transaction.
// POST /sales-orders, PUT /sales-orders/:id
func (h *SalesOrderHandler) SaveOrder(c *gin.Context) {
	var req apptrade.SaveSalesOrderRequest
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

	order, err := h.service.SaveOrder(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if revising || req.ID != nil {
		h.Success(c, order)
		return
	}
	h.Created(c, order)
}

// CancelOrder POST /sales-orders/:id/cancel
func (h *SalesOrderHandler) CancelOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req apptrade.CancelSalesOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.service.CancelOrder(c.Request.Context(), middleware.GetActor(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// GetOrder GET /sales-orders/:id
func (h *SalesOrderHandler) GetOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.service.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ListOrders GET /sales-orders
func (h *SalesOrderHandler) ListOrders(c *gin.Context) {
	var q pageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.service.ListOrders(c.Request.Context(), q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
