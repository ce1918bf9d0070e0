package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/middleware"
)

// idempotencyHandler exposes the idempotency key store for clients that mint
// keys up front or inspect key state.
type idempotencyHandler struct {
	idempotencyService portssvc.IdempotencySvcFacade
}

// newIdempotencyHandler creates a new idempotencyHandler.
func newIdempotencyHandler(is portssvc.IdempotencySvcFacade) *idempotencyHandler {
	return &idempotencyHandler{idempotencyService: is}
}

// registerIdempotencyRoutes registers routes related to idempotency keys.
func registerIdempotencyRoutes(rg *gin.RouterGroup, idempotencyService portssvc.IdempotencySvcFacade) {
	h := newIdempotencyHandler(idempotencyService)

	keys := rg.Group("/idempotency-keys")
	{
		keys.POST("", h.generateKey)
		keys.GET("/:key", h.checkKey)
		keys.POST("/:key/used", h.markKeyUsed)
		keys.DELETE("/expired", h.cleanupExpired)
	}
}

func (h *idempotencyHandler) generateKey(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.GenerateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for GenerateKey", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	key, err := h.idempotencyService.GenerateKey(c.Request.Context(), req.Operation, req.RelatedEntityID, time.Duration(req.TTLSeconds)*time.Second)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to generate idempotency key")
		return
	}
	c.JSON(http.StatusCreated, key)
}

func (h *idempotencyHandler) checkKey(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	status, err := h.idempotencyService.CheckKey(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to check idempotency key")
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *idempotencyHandler) markKeyUsed(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.MarkKeyUsedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for MarkKeyUsed", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	if err := h.idempotencyService.MarkKeyUsed(c.Request.Context(), c.Param("key"), req.Successful, req.ResultHash); err != nil {
		respondServiceError(c, logger, err, "Failed to mark idempotency key used")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *idempotencyHandler) cleanupExpired(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	removed, err := h.idempotencyService.CleanupExpiredKeys(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to clean up expired idempotency keys")
		return
	}
	c.JSON(http.StatusOK, dto.CleanupResponse{Removed: removed})
}
