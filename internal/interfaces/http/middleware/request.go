// Package middleware provides the gin middleware of the ledger HTTP surface.
package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header and context keys
const (
	RequestIDHeader = "X-Request-ID"
	ActorHeader     = "X-User-ID"

	requestIDKey = "request_id"
	actorKey     = "actor_id"

	maxRequestIDLength = 128
)

// RequestID accepts a caller supplied X-Request-ID or generates one, echoes it
// back and stores it on both the gin and request contexts.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = generateRequestID()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), requestID))
		c.Next()
	}
}

// GetRequestID returns the request ID set by RequestID
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

func generateRequestID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()
	}
	return hex.EncodeToString(b)
}

// Actor reads the acting user from X-User-ID. The header is optional; when
// present it must be a UUID. Authentication happens upstream of this service.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(ActorHeader))
		if raw == "" {
			c.Next()
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, "X-User-ID must be a UUID", GetRequestID(c)))
			return
		}
		c.Set(actorKey, id)
		c.Request = c.Request.WithContext(logger.WithActor(c.Request.Context(), id.String()))
		c.Next()
	}
}

// GetActor returns the acting user, or nil for anonymous requests
func GetActor(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	id := v.(uuid.UUID)
	return &id
}
