package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/services"
)

// ReportHandler serves the read-only reports.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// CategoryDetailQuery holds the category detail parameters.
type CategoryDetailQuery struct {
	AccountID  string `form:"account_id" binding:"required,uuid"`
	CategoryID string `form:"category_id" binding:"required,uuid"`
}

// AccountSummary returns every account with its per-category balances.
// @Summary     Account summary
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} map[string][]ledger.AccountSummary
// @Router      /reports/account-summary [get]
func (h *ReportHandler) AccountSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	accounts, err := h.reportService.AccountSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

// CategoryDetail lists the PAID movements of a category on an account.
// @Summary     Category detail
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       account_id  query string true "Account ID"
// @Param       category_id query string true "Category ID"
// @Success     200 {object} ledger.CategoryDetail
// @Failure     400 {object} ErrorResponse "Missing parameters"
// @Failure     404 {object} ErrorResponse "Account or category not found"
// @Router      /reports/category-detail [get]
func (h *ReportHandler) CategoryDetail(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var query CategoryDetailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	detail, err := h.reportService.CategoryDetail(userID, query.AccountID, query.CategoryID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// MonthlySummary reports the PAID, PLANNED and overall totals of a month.
// @Summary     Monthly summary
// @Tags        reports
// @Produce     json
// @Security    BearerAuth
// @Param       monthId path string true "Month ID"
// @Success     200 {object} ledger.MonthlySummary
// @Failure     404 {object} ErrorResponse "Month not found"
// @Router      /reports/monthly-summary/{monthId} [get]
func (h *ReportHandler) MonthlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	monthID, err := parsePathID(c, "monthId")
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.reportService.MonthlySummary(userID, monthID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
