package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/payments"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// using interfaces.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	breaker *payments.CircuitBreaker,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services, breaker)
}

// setupAPIV1Routes configures the organization-scoped /api/v1 group and
// delegates to specific entity route registrations.
func setupAPIV1Routes(
	r *gin.Engine,
	services *portssvc.ServiceContainer,
	breaker *payments.CircuitBreaker,
) {
	v1 := r.Group("/api/v1")

	org := v1.Group("/organizations/:orgID")
	registerAccountRoutes(org, services.Ledger, services.Idempotency)
	registerJournalRoutes(org, services.Journal, services.Idempotency)
	registerFiscalYearRoutes(org, services.FiscalYear, services.Idempotency)

	registerIdempotencyRoutes(v1, services.Idempotency)
	registerProcessorRoutes(v1, breaker, payments.NewRetryPolicy())
}
