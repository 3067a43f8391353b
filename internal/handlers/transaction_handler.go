package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
	"budgetbook/internal/pagination"
	"budgetbook/internal/services"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction.
// Status defaults to PLANNED.
type CreateTransactionRequest struct {
	Type          models.TransactionType   `json:"type" binding:"required,transaction_type"`
	Date          string                   `json:"date" binding:"required" example:"2024-05-01"`
	Amount        decimal.Decimal          `json:"amount" swaggertype:"string" example:"42.50"`
	Description   string                   `json:"description" binding:"max=500"`
	Status        models.TransactionStatus `json:"status" binding:"omitempty,transaction_status"`
	CategoryID    string                   `json:"category_id" binding:"required,uuid"`
	ToCategoryID  *string                  `json:"to_category_id" binding:"omitempty,uuid_ref"`
	MonthID       string                   `json:"month_id" binding:"required,uuid"`
	FromAccountID *string                  `json:"from_account_id" binding:"omitempty,uuid_ref"`
	ToAccountID   *string                  `json:"to_account_id" binding:"omitempty,uuid_ref"`
}

// UpdateTransactionRequest represents a partial transaction update.
type UpdateTransactionRequest struct {
	Type          *models.TransactionType   `json:"type" binding:"omitempty,transaction_type"`
	Date          *string                   `json:"date"`
	Amount        *decimal.Decimal          `json:"amount" swaggertype:"string"`
	Description   *string                   `json:"description" binding:"omitempty,max=500"`
	Status        *models.TransactionStatus `json:"status" binding:"omitempty,transaction_status"`
	CategoryID    *string                   `json:"category_id" binding:"omitempty,uuid"`
	ToCategoryID  *string                   `json:"to_category_id" binding:"omitempty,uuid_ref"`
	MonthID       *string                   `json:"month_id" binding:"omitempty,uuid"`
	FromAccountID *string                   `json:"from_account_id" binding:"omitempty,uuid_ref"`
	ToAccountID   *string                   `json:"to_account_id" binding:"omitempty,uuid_ref"`
}

// UpdateStatusRequest represents the request payload for setting a status.
type UpdateStatusRequest struct {
	Status models.TransactionStatus `json:"status" binding:"required"`
}

// TransactionListQuery holds the list filters.
type TransactionListQuery struct {
	MonthID    string                   `form:"month_id" binding:"omitempty,uuid"`
	CategoryID string                   `form:"category_id" binding:"omitempty,uuid"`
	AccountID  string                   `form:"account_id" binding:"omitempty,uuid"`
	Type       models.TransactionType   `form:"type" binding:"omitempty,transaction_type"`
	Status     models.TransactionStatus `form:"status" binding:"omitempty,transaction_status"`
}

// ListTransactions returns a page of transactions, newest first.
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       month_id    query string false "Month ID"
// @Param       category_id query string false "Category ID"
// @Param       account_id  query string false "Account ID (either leg)"
// @Param       type        query string false "INCOME, SPENDING or TRANSFER"
// @Param       status      query string false "PLANNED, PAID, PENDING or SKIPPED"
// @Param       page        query int    false "Page number"
// @Param       page_size   query int    false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query TransactionListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.transactionService.ListTransactions(userID, page, services.TransactionFilter{
		MonthID:    query.MonthID,
		CategoryID: query.CategoryID,
		AccountID:  query.AccountID,
		Type:       query.Type,
		Status:     query.Status,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetTransaction returns a single transaction.
// @Summary     Get a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// CreateTransaction creates a transaction inside a month.
// @Summary     Create a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction"
// @Success     201 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Month, account or category not found"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	date, err := parseFlexibleTime(req.Date)
	if err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	transaction, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		Type:          req.Type,
		Date:          date,
		Amount:        req.Amount,
		Description:   req.Description,
		Status:        req.Status,
		CategoryID:    req.CategoryID,
		ToCategoryID:  req.ToCategoryID,
		MonthID:       req.MonthID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": transaction.Type, "amount": transaction.Amount.String(), "month_id": transaction.MonthID})

	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction applies a partial update. The merged transaction is
// validated as a whole.
// @Summary     Update a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                   true "Transaction ID"
// @Param       request body UpdateTransactionRequest true "Changes"
// @Success     200 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	var date *time.Time
	if req.Date != nil {
		parsed, parseErr := parseFlexibleTime(*req.Date)
		if parseErr != nil {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, parseErr.Error()))
			return
		}
		date = &parsed
	}

	transaction, err := h.transactionService.UpdateTransaction(userID, transactionID, services.TransactionUpdate{
		Type:          req.Type,
		Date:          date,
		Amount:        req.Amount,
		Description:   req.Description,
		Status:        req.Status,
		CategoryID:    req.CategoryID,
		ToCategoryID:  req.ToCategoryID,
		MonthID:       req.MonthID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"type": transaction.Type, "amount": transaction.Amount.String(), "status": transaction.Status})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// UpdateStatus sets a transaction's status.
// @Summary     Set a transaction status
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Transaction ID"
// @Param       request body UpdateStatusRequest true "Status"
// @Success     200 {object} models.Transaction
// @Failure     400 {object} ErrorResponse "Invalid status"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/status [patch]
func (h *TransactionHandler) UpdateStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	// The service owns the closed-set check so the error code is INVALID_STATUS.
	transaction, err := h.transactionService.UpdateStatus(userID, transactionID, req.Status)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION_STATUS", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"status": transaction.Status})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// CycleStatus advances a transaction to the next status in the cycle
// PLANNED, PAID, PENDING, SKIPPED.
// @Summary     Cycle a transaction status
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} models.Transaction
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id}/cycle-status [post]
func (h *TransactionHandler) CycleStatus(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CycleStatus(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_TRANSACTION_STATUS", "transaction", transaction.ID, c.ClientIP(),
		map[string]interface{}{"status": transaction.Status})

	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction removes a transaction.
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_TRANSACTION", "transaction", transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Transaction deleted"})
}
