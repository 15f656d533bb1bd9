// Package handler exposes the application services over HTTP.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/erp/ledgercore/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// detailed is implemented by domain errors that carry correction context
type detailed interface {
	Details() map[string]any
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message, middleware.GetRequestID(c)))
}

// HandleError converts an error to a response. Domain errors keep their code
// and details; anything else is logged and reported as an internal error.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		resp := dto.NewErrorResponse(domainErr.Code, domainErr.Message, requestID)
		var d detailed
		if errors.As(err, &d) {
			resp.Error.Details = d.Details()
		}
		c.JSON(dto.GetHTTPStatus(domainErr.Code), resp)
		return
	}

	logger.L(c.Request.Context()).Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(
		dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}

// bindJSON binds the body into req. On failure it writes the 400 response
// and returns false.
func (h *BaseHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		h.bindFailed(c, err)
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings
func (h *BaseHandler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.bindFailed(c, err)
		return false
	}
	return true
}

func (h *BaseHandler) bindFailed(c *gin.Context, err error) {
	if fields := middleware.ValidationDetails(err); fields != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed", middleware.GetRequestID(c), fields))
		return
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, dto.NewErrorResponse(
			dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size", middleware.GetRequestID(c)))
		return
	}
	h.BadRequest(c, "Malformed request: "+err.Error())
}

// pathID parses a UUID path parameter, writing a 400 when it is invalid
func (h *BaseHandler) pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// queryID parses an optional UUID query parameter
func (h *BaseHandler) queryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.BadRequest(c, "Invalid "+name+": must be a UUID")
		return nil, false
	}
	return &id, true
}

// pageQuery is the common paging and date window of list endpoints
type pageQuery struct {
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=500"`
}

func (q pageQuery) filter() shared.Filter {
	return shared.Filter{Page: q.Page, PageSize: q.PageSize, From: q.From, To: q.To}.Normalize()
}
