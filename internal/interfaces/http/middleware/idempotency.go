package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/erp/ledgercore/internal/domain/shared"
	"github.com/erp/ledgercore/internal/infrastructure/logger"
	"github.com/erp/ledgercore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader carries the client's submission key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 200

// Idempotency rejects a repeated submission of the same Idempotency-Key with
// 409 DUPLICATE_SUBMISSION before the handler opens a transaction. A request
// that fails or panics releases its key so the client may retry it. Requests without
// the header, and reads, pass through. If the store is unreachable the
// request proceeds; the database constraints still hold.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		ctx := c.Request.Context()
		scoped := c.Request.Method + " " + c.Request.URL.Path + " " + key
		fresh, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			logger.L(ctx).Warn("idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponse(
				shared.CodeDuplicateSubmission, shared.ErrDuplicateSubmission.Message, GetRequestID(c)))
			return
		}

		completed := false
		defer func() {
			if completed && c.Writer.Status() < http.StatusBadRequest {
				return
			}
			if err := store.Forget(ctx, scoped); err != nil {
				logger.L(ctx).Warn("failed to release idempotency key", zap.Error(err))
			}
		}()

		c.Next()
		completed = true
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
