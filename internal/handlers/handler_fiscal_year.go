package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/domain"
	portssvc "github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/core/ports/services"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/dto"
	"github.com/dave-hillier-co/darkvelocity-pos-sub004/internal/middleware"
)

// fiscalYearHandler handles HTTP requests related to fiscal years and periods.
type fiscalYearHandler struct {
	fiscalYearService portssvc.FiscalYearSvcFacade
}

// newFiscalYearHandler creates a new fiscalYearHandler.
func newFiscalYearHandler(fs portssvc.FiscalYearSvcFacade) *fiscalYearHandler {
	return &fiscalYearHandler{fiscalYearService: fs}
}

// registerFiscalYearRoutes registers routes related to fiscal years.
func registerFiscalYearRoutes(rg *gin.RouterGroup, fiscalYearService portssvc.FiscalYearSvcFacade, idempotency portssvc.IdempotencySvcFacade) {
	h := newFiscalYearHandler(fiscalYearService)

	years := rg.Group("/fiscal-years")
	{
		years.POST("", middleware.IdempotencyGate(idempotency, "fiscal_year_init"), h.initializeFiscalYear)
		years.GET("", h.listFiscalYears)
		years.GET("/:year", h.getFiscalYear)
		years.POST("/:year/close", middleware.IdempotencyGate(idempotency, "year_end_close"), h.yearEndClose)
		years.POST("/:year/periods/:periodNumber/open", h.openPeriod)
		years.POST("/:year/periods/:periodNumber/close", h.closePeriod)
		years.POST("/:year/periods/:periodNumber/lock", h.lockPeriod)
		years.POST("/:year/periods/:periodNumber/reopen", h.reopenPeriod)
	}
	rg.GET("/postable", h.canPostToDate)
}

func (h *fiscalYearHandler) initializeFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID := c.Param("orgID")

	var req dto.InitializeFiscalYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for InitializeFiscalYear", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	fy, err := h.fiscalYearService.InitializeFiscalYear(c.Request.Context(), orgID, req, performer)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to initialize fiscal year")
		return
	}

	logger.Info("Fiscal year initialized", slog.Int("year", fy.Year))
	c.JSON(http.StatusCreated, dto.ToFiscalYearResponse(fy))
}

func (h *fiscalYearHandler) listFiscalYears(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	years, err := h.fiscalYearService.ListFiscalYears(c.Request.Context(), c.Param("orgID"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list fiscal years")
		return
	}

	resp := make([]dto.FiscalYearResponse, len(years))
	for i := range years {
		resp[i] = dto.ToFiscalYearResponse(&years[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *fiscalYearHandler) getFiscalYear(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	year, ok := h.yearParam(c)
	if !ok {
		return
	}

	fy, err := h.fiscalYearService.GetFiscalYear(c.Request.Context(), c.Param("orgID"), year)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve fiscal year")
		return
	}
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}

func (h *fiscalYearHandler) yearEndClose(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	year, ok := h.yearParam(c)
	if !ok {
		return
	}

	var req dto.YearEndCloseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for YearEndClose", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	fy, err := h.fiscalYearService.YearEndClose(c.Request.Context(), c.Param("orgID"), year, req, performer)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to close fiscal year")
		return
	}

	logger.Info("Fiscal year closed", slog.Int("year", fy.Year))
	c.JSON(http.StatusOK, dto.ToFiscalYearResponse(fy))
}

func (h *fiscalYearHandler) openPeriod(c *gin.Context) {
	h.transition(c, func(orgID string, year, periodNumber int, performer string) (*domain.Period, error) {
		return h.fiscalYearService.OpenPeriod(c.Request.Context(), orgID, year, periodNumber, performer)
	})
}

func (h *fiscalYearHandler) closePeriod(c *gin.Context) {
	var req dto.ClosePeriodRequest
	// Body is optional; force defaults to false.
	_ = c.ShouldBindJSON(&req)

	h.transition(c, func(orgID string, year, periodNumber int, performer string) (*domain.Period, error) {
		return h.fiscalYearService.ClosePeriod(c.Request.Context(), orgID, year, periodNumber, req.Force, performer)
	})
}

func (h *fiscalYearHandler) lockPeriod(c *gin.Context) {
	h.transition(c, func(orgID string, year, periodNumber int, performer string) (*domain.Period, error) {
		return h.fiscalYearService.LockPeriod(c.Request.Context(), orgID, year, periodNumber, performer)
	})
}

func (h *fiscalYearHandler) reopenPeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReopenPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReopenPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	h.transition(c, func(orgID string, year, periodNumber int, performer string) (*domain.Period, error) {
		return h.fiscalYearService.ReopenPeriod(c.Request.Context(), orgID, year, periodNumber, req.Reason, performer)
	})
}

func (h *fiscalYearHandler) transition(c *gin.Context, fn func(orgID string, year, periodNumber int, performer string) (*domain.Period, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	year, ok := h.yearParam(c)
	if !ok {
		return
	}
	periodNumber, err := strconv.Atoi(c.Param("periodNumber"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid period number"})
		return
	}

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	period, err := fn(c.Param("orgID"), year, periodNumber, performer)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to transition period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodResponse(*period))
}

func (h *fiscalYearHandler) yearParam(c *gin.Context) (int, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return 0, false
	}
	return year, true
}

// canPostToDate answers whether the ledger currently accepts postings dated
// on the given day.
func (h *fiscalYearHandler) canPostToDate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter 'date' is required"})
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'date', expected YYYY-MM-DD"})
		return
	}

	postable, reason, err := h.fiscalYearService.CanPostToDate(c.Request.Context(), c.Param("orgID"), date)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to check postability")
		return
	}
	c.JSON(http.StatusOK, dto.PostableResponse{Date: date, Postable: postable, Reason: reason})
}
