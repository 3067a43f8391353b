package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/ledger"
	"budgetbook/internal/models"
)

// findOwned loads a row of T by id scoped to userID. A row owned by someone
// else is reported exactly like a missing one.
func findOwned[T any](db *gorm.DB, userID, id string, notFound *apperrors.AppError) (*T, error) {
	var row T
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &row, nil
}

// countOwned counts rows of model matching ids scoped to userID.
func countOwned(db *gorm.DB, model interface{}, userID string, ids []string) (int64, error) {
	var n int64
	if err := db.Model(model).Where("user_id = ? AND id IN ?", userID, ids).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return n, nil
}

// checkReferences verifies that every category and account a transaction or
// definition points at belongs to userID.
func checkReferences(db *gorm.DB, userID, categoryID string, legs ledger.Legs) error {
	categories := uniqueIDs(categoryID, legs.ToCategoryID)
	n, err := countOwned(db, &models.Category{}, userID, categories)
	if err != nil {
		return err
	}
	if n != int64(len(categories)) {
		return apperrors.ErrCategoryNotFound
	}

	accounts := uniqueIDs("", legs.FromAccountID, legs.ToAccountID)
	if len(accounts) == 0 {
		return nil
	}
	n, err = countOwned(db, &models.Account{}, userID, accounts)
	if err != nil {
		return err
	}
	if n != int64(len(accounts)) {
		return apperrors.ErrAccountNotFound
	}
	return nil
}

func uniqueIDs(first string, rest ...*string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id != "" && !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	add(first)
	for _, id := range rest {
		if id != nil {
			add(*id)
		}
	}
	return out
}

// categoryNames resolves category names for ids owned by userID in one query.
func categoryNames(db *gorm.DB, userID string) ledger.CategoryNameLookup {
	return func(ids []string) (map[string]string, error) {
		var rows []models.Category
		if err := db.Select("id", "name").Where("user_id = ? AND id IN ?", userID, ids).Find(&rows).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		out := make(map[string]string, len(rows))
		for _, c := range rows {
			out[c.ID] = c.Name
		}
		return out, nil
	}
}

// paidTransactionsFor returns the caller's PAID transactions, optionally
// limited to those touching accountID on either leg.
func paidTransactionsFor(db *gorm.DB, userID, accountID string) ([]models.Transaction, error) {
	q := db.Where("user_id = ? AND status = ?", userID, models.TransactionStatusPaid)
	if accountID != "" {
		q = q.Where("(from_account_id = ? OR to_account_id = ?)", accountID, accountID)
	}
	var txns []models.Transaction
	if err := q.Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return txns, nil
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.ErrInvalidAmount
	}
	return nil
}
