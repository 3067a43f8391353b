package services

import (
	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/ledger"
	"budgetbook/internal/models"
)

// reportService assembles read-only reports from the ledger.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

// AccountSummary returns every account, by name, with its balance breakdown.
func (s *reportService) AccountSummary(userID string) ([]ledger.AccountSummary, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	txns, err := paidTransactionsFor(s.db, userID, "")
	if err != nil {
		return nil, err
	}
	return ledger.BuildAccountSummaries(accounts, txns, categoryNames(s.db, userID))
}

// CategoryDetail lists the PAID movements of a category on an account.
func (s *reportService) CategoryDetail(userID, accountID, categoryID string) (*ledger.CategoryDetail, error) {
	if accountID == "" || categoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "account_id and category_id are required")
	}
	if _, err := findOwned[models.Account](s.db, userID, accountID, apperrors.ErrAccountNotFound); err != nil {
		return nil, err
	}
	if _, err := findOwned[models.Category](s.db, userID, categoryID, apperrors.ErrCategoryNotFound); err != nil {
		return nil, err
	}

	var txns []models.Transaction
	err := withTransactionAssociations(s.db).
		Where("user_id = ? AND status = ?", userID, models.TransactionStatusPaid).
		Where("((from_account_id = ? AND category_id = ?) OR (to_account_id = ? AND (category_id = ? OR to_category_id = ?)))",
			accountID, categoryID, accountID, categoryID, categoryID).
		Find(&txns).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ledger.BuildCategoryDetail(accountID, categoryID, txns), nil
}

// MonthlySummary reports PAID, PLANNED and overall totals for a month.
func (s *reportService) MonthlySummary(userID, monthID string) (*ledger.MonthlySummary, error) {
	month, err := findOwned[models.Month](s.db, userID, monthID, apperrors.ErrMonthNotFound)
	if err != nil {
		return nil, err
	}

	var txns []models.Transaction
	if err := s.db.Where("month_id = ? AND user_id = ?", month.ID, userID).Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ledger.BuildMonthlySummary(month, txns, categoryNames(s.db, userID))
}
