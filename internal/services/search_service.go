package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
)

// searchService runs ad-hoc transaction searches.
type searchService struct {
	db *gorm.DB
}

// NewSearchService creates a new SearchServicer.
func NewSearchService(db *gorm.DB) SearchServicer {
	return &searchService{db: db}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns at most SearchLimit of the user's transactions matching q,
// newest first. Date bounds are whole days, both inclusive.
func (s *searchService) Search(userID string, q SearchQuery) (*SearchResult, error) {
	query := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if text := strings.TrimSpace(q.Query); text != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
		query = query.Where(`LOWER(description) LIKE ? ESCAPE '\'`, pattern)
	}
	query = applyTransactionFilters(query, TransactionFilter{
		MonthID:    q.MonthID,
		CategoryID: q.CategoryID,
		AccountID:  q.AccountID,
		Type:       q.Type,
		Status:     q.Status,
	})
	if q.DateFrom != nil {
		query = query.Where("date >= ?", startOfDay(*q.DateFrom))
	}
	if q.DateTo != nil {
		query = query.Where("date < ?", startOfDay(*q.DateTo).AddDate(0, 0, 1))
	}
	if q.AmountMin != nil {
		query = query.Where("amount >= ?", *q.AmountMin)
	}
	if q.AmountMax != nil {
		query = query.Where("amount <= ?", *q.AmountMax)
	}

	var transactions []models.Transaction
	if err := withTransactionAssociations(query).
		Order("date DESC").Order("created_at DESC").
		Limit(SearchLimit).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	return &SearchResult{Count: len(transactions), Transactions: transactions}, nil
}
