package middleware

import (
	"log/slog"
	"net/http"

	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

const idempotencyKeyHeader = "Idempotency-Key"

// IdempotencyGate guards mutating routes with the idempotency key store.
// Requests carrying an Idempotency-Key header are admitted only when
// TryAcquire succeeds; a key already marked successfully-used short-circuits
// with 409 and the stored result hash instead of re-executing the operation.
// After the handler runs, the outcome is recorded against the key: any 2xx
// status marks it successfully used, anything else marks it failed so a
// retry stays possible. Requests without the header pass through untouched.
func IdempotencyGate(store portssvc.IdempotencySvcFacade, operation string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		logger := GetLoggerFromCtx(c.Request.Context())
		acquired, err := store.TryAcquire(c.Request.Context(), key, operation, c.Param("orgID"))
		if err != nil {
			logger.Error("Idempotency acquire failed", slog.String("key", key), slog.String("error", err.Error()))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check idempotency key"})
			return
		}
		if !acquired {
			status, err := store.CheckKey(c.Request.Context(), key)
			if err != nil {
				logger.Error("Idempotency check failed", slog.String("key", key), slog.String("error", err.Error()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to check idempotency key"})
				return
			}
			logger.Info("Replay refused for successfully-used idempotency key", slog.String("key", key), slog.String("operation", operation))
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":      "operation already completed for this idempotency key",
				"resultHash": status.ResultHash,
			})
			return
		}

		c.Next()

		successful := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		if err := store.MarkKeyUsed(c.Request.Context(), key, successful, ""); err != nil {
			logger.Error("Failed to mark idempotency key used", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}
