package handler

import (
	"net/http"
	"strconv"

	appfinance "github.com/erp/ledgercore/internal/application/finance"
	"github.com/erp/ledgercore/internal/domain/finance"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// FinanceHandler serves the cashbook, bank ledgers, party payments and party discounts
type FinanceHandler struct {
	BaseHandler
	ledger    *appfinance.LedgerService
	parties   *appfinance.PartyPaymentService
	discounts *appfinance.PartyDiscountService
}

// NewFinanceHandler creates a new FinanceHandler
func NewFinanceHandler(ledger *appfinance.LedgerService, parties *appfinance.PartyPaymentService, discounts *appfinance.PartyDiscountService) *FinanceHandler {
	return &FinanceHandler{ledger: ledger, parties: parties, discounts: discounts}
}

// RegisterRoutes mounts the finance endpoints
func (h *FinanceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cash := rg.Group("/cash")
	cash.GET("/balance", h.GetCashBalance)
	cash.GET("/entries", h.ListCashEntries)
	cash.POST("/entries", h.AddCashEntry)
	cash.DELETE("/entries/:entry_id", h.DeleteCashEntry)

	banks := rg.Group("/banks")
	banks.POST("", h.CreateBankAccount)
	banks.GET("", h.ListBanks)
	banks.GET("/:id/balance", h.GetBankBalance)
	banks.GET("/:id/transactions", h.ListBankTransactions)
	banks.POST("/:id/transactions", h.AddBankTransaction)
	banks.DELETE("/:id/transactions/:entry_id", h.DeleteBankTransaction)

	rg.POST("/vendor-payments", h.CreateVendorPayment)
	rg.GET("/vendor-payments", h.listPartyPayments(finance.PartyTypeVendor))
	rg.POST("/customer-payments", h.CreateCustomerPayment)
	rg.GET("/customer-payments", h.listPartyPayments(finance.PartyTypeCustomer))
	rg.DELETE("/party-payments/:id", h.DeletePartyPayment)

	rg.POST("/party-discounts", h.CreatePartyDiscount)
	rg.GET("/party-discounts", h.ListPartyDiscounts)
	rg.DELETE("/party-discounts/:id", h.DeletePartyDiscount)
}

// GetCashBalance GET /cash/balance
func (h *FinanceHandler) GetCashBalance(c *gin.Context) {
	balance, err := h.ledger.GetCashBalance(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ListCashEntries GET /cash/entries
func (h *FinanceHandler) ListCashEntries(c *gin.Context) {
	var filter appfinance.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.ledger.ListCashEntries(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// AddCashEntry POST /cash/entries
func (h *FinanceHandler) AddCashEntry(c *gin.Context) {
	var req appfinance.LedgerEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.ledger.AddCashEntry(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// DeleteCashEntry reverses a manual cashbook entry and returns the new balance
// DELETE /cash/entries/:entry_id
func (h *FinanceHandler) DeleteCashEntry(c *gin.Context) {
	entryID, ok := h.pathID(c, "entry_id")
	if !ok {
		return
	}
	balance, err := h.ledger.DeleteCashEntry(c.Request.Context(), middleware.GetActor(c), entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// CreateBankAccount POST /banks
func (h *FinanceHandler) CreateBankAccount(c *gin.Context) {
	var req appfinance.CreateBankAccountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	account, err := h.ledger.CreateBankAccount(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}

// ListBanks GET /banks?active_only=true
func (h *FinanceHandler) ListBanks(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active_only"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "Invalid active_only: must be a boolean")
			return
		}
		activeOnly = v
	}
	banks, err := h.ledger.ListBanksWithBalance(c.Request.Context(), activeOnly)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if banks == nil {
		banks = []appfinance.BankAccountResponse{}
	}
	h.Success(c, banks)
}

// GetBankBalance GET /banks/:id/balance
func (h *FinanceHandler) GetBankBalance(c *gin.Context) {
	bankID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	balance, err := h.ledger.GetBankBalance(c.Request.Context(), bankID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// ListBankTransactions GET /banks/:id/transactions
func (h *FinanceHandler) ListBankTransactions(c *gin.Context) {
	bankID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var filter appfinance.EntryListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	page, err := h.ledger.ListBankTransactions(c.Request.Context(), bankID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}

// AddBankTransaction POST /banks/:id/transactions
func (h *FinanceHandler) AddBankTransaction(c *gin.Context) {
	bankID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req appfinance.LedgerEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.ledger.AddBankTransaction(c.Request.Context(), middleware.GetActor(c), bankID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// DeleteBankTransaction DELETE /banks/:id/transactions/:entry_id
func (h *FinanceHandler) DeleteBankTransaction(c *gin.Context) {
	bankID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	entryID, ok := h.pathID(c, "entry_id")
	if !ok {
		return
	}
	balance, err := h.ledger.DeleteBankTransaction(c.Request.Context(), middleware.GetActor(c), bankID, entryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, balance)
}

// CreateVendorPayment records money paid to a vendor
// POST /vendor-payments
func (h *FinanceHandler) CreateVendorPayment(c *gin.Context) {
	var req appfinance.CreatePartyPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	payment, err := h.parties.CreateVendorPayment(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// CreateCustomerPayment records money received from a customer
// POST /customer-payments
func (h *FinanceHandler) CreateCustomerPayment(c *gin.Context) {
	var req appfinance.CreatePartyPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	payment, err := h.parties.CreateCustomerPayment(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

// DeletePartyPayment soft deletes a party payment and reverses its ledger entry
// DELETE /party-payments/:id
func (h *FinanceHandler) DeletePartyPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.parties.SoftDelete(c.Request.Context(), middleware.GetActor(c), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, payment)
}

// listPartyPayments GET /vendor-payments?party_id=, GET /customer-payments?party_id=
func (h *FinanceHandler) listPartyPayments(partyType finance.PartyType) gin.HandlerFunc {
	return func(c *gin.Context) {
		partyID, ok := h.queryID(c, "party_id")
		if !ok {
			return
		}
		if partyID == nil {
			h.BadRequest(c, "party_id is required")
			return
		}
		var q pageQuery
		if !h.bindQuery(c, &q) {
			return
		}
		page, err := h.parties.ListPayments(c.Request.Context(), partyType, *partyID, q.filter())
		if err != nil {
			h.HandleError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewPageResponse(page))
	}
}

// CreatePartyDiscount POST /party-discounts
func (h *FinanceHandler) CreatePartyDiscount(c *gin.Context) {
	var req appfinance.CreatePartyDiscountRequest
	if !h.bindJSON(c, &req) {
		return
	}
	discount, err := h.discounts.CreateDiscount(c.Request.Context(), middleware.GetActor(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, discount)
}

// DeletePartyDiscount DELETE /party-discounts/:id
func (h *FinanceHandler) DeletePartyDiscount(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.discounts.DeleteDiscount(c.Request.Context(), middleware.GetActor(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListPartyDiscounts GET /party-discounts?party_type=&party_id=
func (h *FinanceHandler) ListPartyDiscounts(c *gin.Context) {
	partyID, ok := h.queryID(c, "party_id")
	if !ok {
		return
	}
	if partyID == nil {
		h.BadRequest(c, "party_id is required")
		return
	}
	var q pageQuery
	if !h.bindQuery(c, &q) {
		return
	}
	partyType := finance.DiscountParty(c.Query("party_type"))
	page, err := h.discounts.ListDiscounts(c.Request.Context(), partyType, *partyID, q.filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
