package ledger

import (
	"time"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
)

// ExpandTarget identifies the month a template is materialized into.
type ExpandTarget struct {
	UserID  string
	MonthID string
	Month   int
	Year    int
}

// FirstOfMonth returns midnight UTC on day one of the given month.
func FirstOfMonth(month, year int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// ExpandTemplate materializes one PLANNED transaction per definition, dated
// the first day of the target month. Amount, description, category and
// account legs are copied verbatim; to-category is kept only for transfers,
// falling back to the category. The caller persists the batch atomically.
//
// Expansion never looks at what the month already holds, so applying the
// same template twice yields the rows twice.
func ExpandTemplate(defs []models.BudgetTransactionDefinition, target ExpandTarget) ([]models.Transaction, error) {
	if target.Month < 1 || target.Month > 12 {
		return nil, apperrors.ErrInvalidMonth
	}

	date := FirstOfMonth(target.Month, target.Year)
	out := make([]models.Transaction, 0, len(defs))
	for i := range defs {
		def := &defs[i]

		var toCategory *string
		if def.Type == models.TransactionTypeTransfer {
			id := def.CategoryID
			if def.ToCategoryID != nil && *def.ToCategoryID != "" {
				id = *def.ToCategoryID
			}
			toCategory = &id
		}

		out = append(out, models.Transaction{
			UserID:        target.UserID,
			Type:          def.Type,
			Date:          date,
			Amount:        def.Amount,
			Description:   def.Description,
			Status:        models.TransactionStatusPlanned,
			CategoryID:    def.CategoryID,
			ToCategoryID:  toCategory,
			MonthID:       target.MonthID,
			FromAccountID: copyRef(def.FromAccountID),
			ToAccountID:   copyRef(def.ToAccountID),
		})
	}
	return out, nil
}

func copyRef(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
