package handlers

import (
	"context"
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

// accountHandler handles HTTP requests related to ledger accounts.
type accountHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(ls portssvc.LedgerSvcFacade) *accountHandler {
	return &accountHandler{ledgerService: ls}
}

// registerAccountRoutes registers routes related to ledger accounts.
func registerAccountRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, idempotency portssvc.IdempotencySvcFacade) {
	h := newAccountHandler(ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", middleware.IdempotencyGate(idempotency, "account_create"), h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountCode", h.getAccount)
		accounts.POST("/:accountCode/debit", middleware.IdempotencyGate(idempotency, "account_debit"), h.postDebit)
		accounts.POST("/:accountCode/credit", middleware.IdempotencyGate(idempotency, "account_credit"), h.postCredit)
		accounts.POST("/:accountCode/adjust", middleware.IdempotencyGate(idempotency, "account_adjust"), h.adjustBalance)
		accounts.POST("/:accountCode/entries/:entryID/reverse", middleware.IdempotencyGate(idempotency, "entry_reverse"), h.reverseEntry)
		accounts.POST("/:accountCode/close-period", h.closePeriod)
		accounts.POST("/:accountCode/deactivate", h.deactivate)
		accounts.POST("/:accountCode/reactivate", h.reactivate)
		accounts.GET("/:accountCode/balance", h.getBalance)
		accounts.GET("/:accountCode/entries", h.listEntries)
		accounts.GET("/:accountCode/period-summaries", h.listPeriodSummaries)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID := c.Param("orgID")

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	account, err := h.ledgerService.CreateAccount(c.Request.Context(), orgID, req, performer)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_code", account.AccountCode))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	account, err := h.ledgerService.GetAccount(c.Request.Context(), c.Param("orgID"), c.Param("accountCode"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	activeOnly := c.Query("activeOnly") == "true"

	accounts, err := h.ledgerService.ListAccounts(c.Request.Context(), c.Param("orgID"), activeOnly)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list accounts")
		return
	}

	resp := make([]dto.AccountResponse, len(accounts))
	for i := range accounts {
		resp[i] = dto.ToAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *accountHandler) postDebit(c *gin.Context) {
	h.post(c, h.ledgerService.PostDebit)
}

func (h *accountHandler) postCredit(c *gin.Context) {
	h.post(c, h.ledgerService.PostCredit)
}

func (h *accountHandler) post(c *gin.Context, fn func(ctx context.Context, orgID, accountCode string, req dto.PostingRequest, performedBy string) (*domain.LedgerEntry, error)) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.PostingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for posting", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	entry, err := fn(c.Request.Context(), c.Param("orgID"), c.Param("accountCode"), req, performer)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to post entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(*entry))
}

func (h *accountHandler) adjustBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for AdjustBalance", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	entry, err := h.ledgerService.AdjustBalance(c.Request.Context(), c.Param("orgID"), c.Param("accountCode"), req, performer)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to adjust balance")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(*entry))
}

func (h *accountHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	entry, err := h.ledgerService.ReverseEntry(c.Request.Context(), c.Param("orgID"), c.Param("accountCode"), c.Param("entryID"), req, performer)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to reverse entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(*entry))
}

func (h *accountHandler) closePeriod(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CloseAccountPeriodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CloseAccountPeriod", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	summary, err := h.ledgerService.CloseAccountPeriod(c.Request.Context(), c.Param("orgID"), c.Param("accountCode"), req, performer)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to close account period")
		return
	}
	c.JSON(http.StatusOK, dto.ToPeriodSummaryResponse(*summary))
}

func (h *accountHandler) deactivate(c *gin.Context) {
	h.setActive(c, h.ledgerService.DeactivateAccount)
}

func (h *accountHandler) reactivate(c *gin.Context) {
	h.setActive(c, h.ledgerService.ReactivateAccount)
}

func (h *accountHandler) setActive(c *gin.Context, fn func(ctx context.Context, orgID, accountCode, performedBy string) error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	performer, ok := middleware.GetPerformerFromContext(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "X-Performed-By header is required"})
		return
	}

	if err := fn(c.Request.Context(), c.Param("orgID"), c.Param("accountCode"), performer); err != nil {
		respondServiceError(c, logger, err, "Failed to change account state")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID := c.Param("orgID")
	accountCode := c.Param("accountCode")

	if at := c.Query("at"); at != "" {
		cutoff, err := time.Parse(time.RFC3339, at)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'at' timestamp, expected RFC3339"})
			return
		}
		balance, err := h.ledgerService.GetBalanceAt(c.Request.Context(), orgID, accountCode, cutoff)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to compute historical balance")
			return
		}
		c.JSON(http.StatusOK, balance)
		return
	}

	balance, err := h.ledgerService.GetBalance(c.Request.Context(), orgID, accountCode)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, balance)
}

// listEntries serves three query shapes: a from/to range, a reference lookup,
// or the most recent n entries.
func (h *accountHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	ctx := c.Request.Context()
	orgID := c.Param("orgID")
	accountCode := c.Param("accountCode")

	if refType := c.Query("referenceType"); refType != "" {
		entries, err := h.ledgerService.GetEntriesByReference(ctx, orgID, accountCode, refType, c.Query("referenceID"))
		if err != nil {
			respondServiceError(c, logger, err, "Failed to list entries")
			return
		}
		c.JSON(http.StatusOK, toEntryResponses(entries))
		return
	}

	if fromStr := c.Query("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'from' timestamp, expected RFC3339"})
			return
		}
		to := time.Now().UTC()
		if toStr := c.Query("to"); toStr != "" {
			to, err = time.Parse(time.RFC3339, toStr)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'to' timestamp, expected RFC3339"})
				return
			}
		}
		entries, err := h.ledgerService.GetEntriesInRange(ctx, orgID, accountCode, from, to)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to list entries")
			return
		}
		c.JSON(http.StatusOK, toEntryResponses(entries))
		return
	}

	n := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit', expected a positive integer"})
			return
		}
		n = parsed
	}
	entries, err := h.ledgerService.GetRecentEntries(ctx, orgID, accountCode, n)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, toEntryResponses(entries))
}

func toEntryResponses(entries []domain.LedgerEntry) []dto.EntryResponse {
	resp := make([]dto.EntryResponse, len(entries))
	for i, e := range entries {
		resp[i] = dto.ToEntryResponse(e)
	}
	return resp
}

func (h *accountHandler) listPeriodSummaries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summaries, err := h.ledgerService.GetPeriodSummaries(c.Request.Context(), c.Param("orgID"), c.Param("accountCode"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list period summaries")
		return
	}

	resp := make([]dto.PeriodSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = dto.ToPeriodSummaryResponse(s)
	}
	c.JSON(http.StatusOK, resp)
}
