package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/services"
)

// MonthHandler handles monthly ledger requests.
type MonthHandler struct {
	monthService services.MonthServicer
	auditService services.AuditServicer
}

// NewMonthHandler creates a new MonthHandler.
func NewMonthHandler(monthService services.MonthServicer, auditService services.AuditServicer) *MonthHandler {
	return &MonthHandler{monthService: monthService, auditService: auditService}
}

// CreateMonthRequest represents the request payload for creating a month.
type CreateMonthRequest struct {
	Month            int     `json:"month" binding:"required,month_number"`
	Year             int     `json:"year" binding:"required,min=1900,max=9999"`
	BudgetTemplateID *string `json:"budget_template_id" binding:"omitempty,uuid_ref"`
}

// UpdateMonthRequest represents the request payload for updating a month.
// An empty budget_template_id detaches the template.
type UpdateMonthRequest struct {
	Month            *int    `json:"month" binding:"omitempty,month_number"`
	Year             *int    `json:"year" binding:"omitempty,min=1900,max=9999"`
	BudgetTemplateID *string `json:"budget_template_id" binding:"omitempty,uuid_ref"`
}

// ApplyBudgetRequest represents the request payload for applying a template.
type ApplyBudgetRequest struct {
	BudgetTemplateID string `json:"budget_template_id" binding:"required,uuid"`
}

// ListMonths returns the user's months, newest first, with overview figures.
// @Summary     List months
// @Tags        months
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]services.MonthWithOverview
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /months [get]
func (h *MonthHandler) ListMonths(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	months, err := h.monthService.ListMonths(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"months": months})
}

// GetMonth returns a month with its template and transactions.
// @Summary     Get a month
// @Tags        months
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Month ID"
// @Success     200 {object} models.Month
// @Failure     404 {object} ErrorResponse "Month not found"
// @Router      /months/{id} [get]
func (h *MonthHandler) GetMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	month, err := h.monthService.GetMonth(userID, monthID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"month": month})
}

// CreateMonth creates a month, expanding the template when one is given.
// @Summary     Create a month
// @Tags        months
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateMonthRequest true "Month"
// @Success     201 {object} models.Month
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Month already exists"
// @Router      /months [post]
func (h *MonthHandler) CreateMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	month, err := h.monthService.CreateMonth(userID, services.MonthInput{
		Month:            req.Month,
		Year:             req.Year,
		BudgetTemplateID: req.BudgetTemplateID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_MONTH", "month", month.ID, c.ClientIP(),
		map[string]interface{}{"month": month.Month, "year": month.Year, "transactions": len(month.Transactions)})

	c.JSON(http.StatusCreated, gin.H{"month": month})
}

// UpdateMonth changes a month's period or template link.
// @Summary     Update a month
// @Tags        months
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Month ID"
// @Param       request body UpdateMonthRequest true "Changes"
// @Success     200 {object} models.Month
// @Failure     404 {object} ErrorResponse "Month not found"
// @Failure     409 {object} ErrorResponse "Month already exists"
// @Router      /months/{id} [put]
func (h *MonthHandler) UpdateMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	month, err := h.monthService.UpdateMonth(userID, monthID, services.MonthUpdate{
		Month:            req.Month,
		Year:             req.Year,
		BudgetTemplateID: req.BudgetTemplateID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_MONTH", "month", month.ID, c.ClientIP(),
		map[string]interface{}{"month": month.Month, "year": month.Year})

	c.JSON(http.StatusOK, gin.H{"month": month})
}

// DeleteMonth removes a month together with its transactions.
// @Summary     Delete a month
// @Tags        months
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Month ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Month not found"
// @Router      /months/{id} [delete]
func (h *MonthHandler) DeleteMonth(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.monthService.DeleteMonth(userID, monthID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_MONTH", "month", monthID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Month deleted"})
}

// ApplyBudget adds one PLANNED transaction per template definition to the
// month. Applying a template twice adds its rows twice.
// @Summary     Apply a budget template to a month
// @Tags        months
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string             true "Month ID"
// @Param       request body ApplyBudgetRequest true "Template"
// @Success     200 {object} models.Month
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Month or template not found"
// @Router      /months/{id}/apply-budget [post]
func (h *MonthHandler) ApplyBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ApplyBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	month, err := h.monthService.ApplyBudget(userID, monthID, req.BudgetTemplateID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "APPLY_BUDGET", "month", month.ID, c.ClientIP(),
		map[string]interface{}{"budget_template_id": req.BudgetTemplateID})

	c.JSON(http.StatusOK, gin.H{"month": month})
}
