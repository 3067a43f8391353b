package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/models"
	"budgetbook/internal/services"
)

// SearchHandler serves transaction search.
type SearchHandler struct {
	searchService services.SearchServicer
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(searchService services.SearchServicer) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// SearchParams holds the non-range search parameters.
type SearchParams struct {
	Query      string                   `form:"query" binding:"max=200"`
	AccountID  string                   `form:"account_id" binding:"omitempty,uuid"`
	CategoryID string                   `form:"category_id" binding:"omitempty,uuid"`
	MonthID    string                   `form:"month_id" binding:"omitempty,uuid"`
	Type       models.TransactionType   `form:"type" binding:"omitempty,transaction_type"`
	Status     models.TransactionStatus `form:"status" binding:"omitempty,transaction_status"`
}

// Search finds transactions by description and filters.
// @Summary     Search transactions
// @Description Case-insensitive description search with optional filters; newest first, at most 100 rows
// @Tags        search
// @Produce     json
// @Security    BearerAuth
// @Param       query       query string false "Description substring"
// @Param       account_id  query string false "Account ID (either leg)"
// @Param       category_id query string false "Category ID"
// @Param       month_id    query string false "Month ID"
// @Param       type        query string false "Transaction type"
// @Param       status      query string false "Transaction status"
// @Param       date_from   query string false "First day, YYYY-MM-DD"
// @Param       date_to     query string false "Last day, YYYY-MM-DD"
// @Param       amount_min  query string false "Minimum amount"
// @Param       amount_max  query string false "Maximum amount"
// @Success     200 {object} services.SearchResult
// @Failure     400 {object} ErrorResponse "Invalid parameter"
// @Router      /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var params SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	q := services.SearchQuery{
		Query:      params.Query,
		AccountID:  params.AccountID,
		CategoryID: params.CategoryID,
		MonthID:    params.MonthID,
		Type:       params.Type,
		Status:     params.Status,
	}
	if q.DateFrom, err = optionalTime(c, "date_from"); err != nil {
		respondWithError(c, err)
		return
	}
	if q.DateTo, err = optionalTime(c, "date_to"); err != nil {
		respondWithError(c, err)
		return
	}
	if q.AmountMin, err = optionalDecimal(c, "amount_min"); err != nil {
		respondWithError(c, err)
		return
	}
	if q.AmountMax, err = optionalDecimal(c, "amount_max"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.searchService.Search(userID, q)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
