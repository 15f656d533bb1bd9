package handler

import (
	"net/http"

	appinventory "github.com/erp/ledgercore/internal/application/inventory"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InventoryHandler serves purchase orders, goods receipts, issues, adjustments and stock queries
type InventoryHandler struct {
	BaseHandler
	service *appinventory.InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service *appinventory.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// RegisterRoutes mounts the inventory endpoints
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	po := rg.Group("/purchase-orders")
	po.POST("", h.SavePurchaseOrder)
	po.GET("", h.ListPurchaseOrders)
	po.GET("/:id", h.GetPurchaseOrder)
	po.PUT("/:id", h.SavePurchaseOrder)
	po.PUT("/:id/status", h.UpdatePurchaseOrderStatus)

	grn := rg.Group("/goods-receipts")
	grn.POST("", h.SaveGoodsReceipt)
	grn.GET("", h.ListGoodsReceipts)
	grn.GET("/:id", h.GetGoodsReceipt)
	grn.PUT("/:id", h.SaveGoodsReceipt)

	issues := rg.Group("/inventory-issues")
	issues.POST("", h.CreateIssue)
	issues.GET("", h.ListIssues)
	issues.GET("/:id", h.GetIssue)

	adjustments := rg.Group("/inventory-adjustments")
	adjustments.POST("", h.ApplyAdjustments)
	adjustments.GET("", h.ListAdjustments)
	adjustments.GET("/batches/:id", h.GetAdjustmentBatch)

	stock := rg.Group("/stock")
	stock.GET("/positions", h.ListStockPositions)
	stock.GET("/positions/:product_id/:location_id", h.GetStockPosition)
	stock.GET("/positions/:product_id/:location_id/movements", h.ListStockMovements)
	stock.GET("/positions/:product_id/:location_id/serials", h.ListSerials)
	stock.GET("/documents/:source_type/:id/movements", h.ListDocumentMovements)
}

// SavePurchaseOrder creates a purchase order, or edits the one named by the path
// POST /purchase-orders, PUT /purchase-orders/:id
func (h *InventoryHandler) SavePurchaseOrder(c *gin.Context) {
	var req appinventory.SavePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	editing := c.Param("id") != ""
	if editing {
		id, ok := h.pathID(c, "id")
		if !ok {
			return
		}
		req.ID = &id
	}

	po, err := h.service.SavePurchaseOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if editing || req.ID != nil {
		h.Success(c, po)
		return
	}
	h.Created(c, po)
}

// UpdatePurchaseOrderStatus PUT /purchase-orders/:id/status
func (h *InventoryHandler) UpdatePurchaseOrderStatus(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appinventory.UpdatePurchaseOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	po, err := h.service.UpdatePurchaseOrderStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// GetPurchaseOrder GET /purchase-orders/:id
func (h *InventoryHandler) GetPurchaseOrder(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	po, err := h.service.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, po)
}

// ListPurchaseOrders GET /purchase-orders?vendor_id=&status=
func (h *InventoryHandler) ListPurchaseOrders(c *gin.Context) {
	vendorID, ok := h.queryID(c, "vendor_id")
	if !ok {
		return
	}
	var q pageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.service.ListPurchaseOrders(c.Request.Context(), vendorID, c.Query("status"), q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// SaveGoodsReceipt creates a GRN, or revises the one named by the path
// POST /goods-receipts, PUT /goods-receipts/:id
func (h *InventoryHandler) SaveGoodsReceipt(c *gin.Context) {
	var req appinventory.SaveGoodsReceiptRequest
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

	grn, err := h.service.SaveGoodsReceipt(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if revising || req.ID != nil {
		h.Success(c, grn)
		return
	}
	h.Created(c, grn)
}

// GetGoodsReceipt GET /goods-receipts/:id
func (h *InventoryHandler) GetGoodsReceipt(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	grn, err := h.service.GetGoodsReceipt(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, grn)
}

// ListGoodsReceipts GET /goods-receipts
func (h *InventoryHandler) ListGoodsReceipts(c *gin.Context) {
	var filter appinventory.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.ListGoodsReceipts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// CreateIssue POST /inventory-issues
func (h *InventoryHandler) CreateIssue(c *gin.Context) {
	var req appinventory.CreateIssueRequest
	if !h.bindJSON(c, &req) {
		return
	}
	issue, err := h.service.CreateIssue(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, issue)
}

// GetIssue GET /inventory-issues/:id
func (h *InventoryHandler) GetIssue(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	issue, err := h.service.GetIssue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, issue)
}

// ListIssues GET /inventory-issues
func (h *InventoryHandler) ListIssues(c *gin.Context) {
	var filter appinventory.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.ListIssues(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// ApplyAdjustments applies a batch of adjustments atomically
// POST /inventory-adjustments
func (h *InventoryHandler) ApplyAdjustments(c *gin.Context) {
	var req appinventory.ApplyAdjustmentsRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.service.ApplyAdjustments(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// ListAdjustments lists the adjustment log of one position
// GET /inventory-adjustments?product_id=&location_id=
func (h *InventoryHandler) ListAdjustments(c *gin.Context) {
	productID, locationID, ok := h.positionQuery(c)
	if !ok {
		return
	}
	var filter appinventory.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.ListAdjustments(c.Request.Context(), productID, locationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// GetAdjustmentBatch GET /inventory-adjustments/batches/:id
func (h *InventoryHandler) GetAdjustmentBatch(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	batch, err := h.service.GetAdjustmentBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// GetStockPosition GET /stock/positions/:product_id/:location_id
func (h *InventoryHandler) GetStockPosition(c *gin.Context) {
	productID, locationID, ok := h.positionPath(c)
	if !ok {
		return
	}
	pos, err := h.service.GetStockPosition(c.Request.Context(), productID, locationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pos)
}

// ListStockPositions GET /stock/positions?product_id=&location_id=
func (h *InventoryHandler) ListStockPositions(c *gin.Context) {
	productID, ok := h.queryID(c, "product_id")
	if !ok {
		return
	}
	locationID, ok := h.queryID(c, "location_id")
	if !ok {
		return
	}
	var q pageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.service.ListStockPositions(c.Request.Context(), appinventory.StockPositionListFilter{
		ProductID:  productID,
		LocationID: locationID,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// ListStockMovements GET /stock/positions/:product_id/:location_id/movements
func (h *InventoryHandler) ListStockMovements(c *gin.Context) {
	productID, locationID, ok := h.positionPath(c)
	if !ok {
		return
	}
	var filter appinventory.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.service.ListStockMovements(c.Request.Context(), productID, locationID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// ListSerials GET /stock/positions/:product_id/:location_id/serials?status=
func (h *InventoryHandler) ListSerials(c *gin.Context) {
	productID, locationID, ok := h.positionPath(c)
	if !ok {
		return
	}
	units, err := h.service.ListSerials(c.Request.Context(), productID, locationID, c.Query("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}

// ListDocumentMovements lists what a document did to stock
// GET /stock/documents/:source_type/:id/movements
func (h *InventoryHandler) ListDocumentMovements(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	movements, err := h.service.ListDocumentMovements(c.Request.Context(), c.Param("source_type"), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if movements == nil {
		movements = []appinventory.StockMovementResponse{}
	}
	h.Success(c, movements)
}

func (h *InventoryHandler) positionPath(c *gin.Context) (productID, locationID uuid.UUID, ok bool) {
	if productID, ok = h.pathID(c, "product_id"); !ok {
		return
	}
	locationID, ok = h.pathID(c, "location_id")
	return
}

func (h *InventoryHandler) positionQuery(c *gin.Context) (productID, locationID uuid.UUID, ok bool) {
	p, ok := h.queryID(c, "product_id")
	if !ok {
		return
	}
	l, ok := h.queryID(c, "location_id")
	if !ok {
		return
	}
	if p == nil || l == nil {
		h.BadRequest(c, "product_id and location_id are required")
		return uuid.Nil, uuid.Nil, false
	}
	return *p, *l, true
}
