package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/payments"
)

// processorHandler lets the calling payment workflow report external
// processor outcomes and ask for retry advice. The ledger core never calls a
// processor itself; it only records what the caller observed.
type processorHandler struct {
	breaker *payments.CircuitBreaker
	policy  *payments.RetryPolicy
}

// registerProcessorRoutes registers routes for processor circuit state and
// retry advice.
func registerProcessorRoutes(rg *gin.RouterGroup, breaker *payments.CircuitBreaker, policy *payments.RetryPolicy) {
	h := &processorHandler{breaker: breaker, policy: policy}

	processors := rg.Group("/processors/:processor")
	{
		processors.POST("/outcomes/failure", h.recordFailure)
		processors.POST("/outcomes/success", h.recordSuccess)
		processors.GET("/circuit", h.getCircuit)
		processors.POST("/circuit/reset", h.resetCircuit)
		processors.GET("/retry-advice", h.retryAdvice)
	}
}

func (h *processorHandler) recordFailure(c *gin.Context) {
	processor := c.Param("processor")
	h.breaker.RecordFailure(processor)
	c.JSON(http.StatusOK, h.breaker.GetCircuitState(processor))
}

func (h *processorHandler) recordSuccess(c *gin.Context) {
	processor := c.Param("processor")
	h.breaker.RecordSuccess(processor)
	c.JSON(http.StatusOK, h.breaker.GetCircuitState(processor))
}

func (h *processorHandler) getCircuit(c *gin.Context) {
	c.JSON(http.StatusOK, h.breaker.GetCircuitState(c.Param("processor")))
}

func (h *processorHandler) resetCircuit(c *gin.Context) {
	processor := c.Param("processor")
	h.breaker.ResetCircuit(processor)
	c.JSON(http.StatusOK, h.breaker.GetCircuitState(processor))
}

func (h *processorHandler) retryAdvice(c *gin.Context) {
	processor := c.Param("processor")
	attempt, err := strconv.Atoi(c.DefaultQuery("attempt", "0"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid attempt number: " + err.Error()})
		return
	}
	errorCode := c.Query("errorCode")

	advice := dto.RetryAdviceResponse{
		Processor:   processor,
		Attempt:     attempt,
		Terminal:    payments.IsTerminalError(errorCode),
		Retryable:   payments.IsRetryableError(errorCode),
		CircuitOpen: h.breaker.IsCircuitOpen(processor),
	}
	advice.ShouldRetry = h.policy.ShouldRetry(attempt, errorCode) && !advice.CircuitOpen
	if advice.ShouldRetry {
		advice.DelaySeconds = h.policy.GetRetryDelay(attempt).Seconds()
	}
	c.JSON(http.StatusOK, advice)
}
