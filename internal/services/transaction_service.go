package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/ledger"
	"budgetbook/internal/models"
	"budgetbook/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db *gorm.DB
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db}
}

// ListTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) ListTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := withTransactionAssociations(base).
		Scopes(pagination.Paginate(page)).
		Order("date DESC").Order("created_at DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.MonthID != "" {
		q = q.Where("month_id = ?", f.MonthID)
	}
	if f.CategoryID != "" {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.AccountID != "" {
		q = q.Where("(from_account_id = ? OR to_account_id = ?)", f.AccountID, f.AccountID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	return q
}

func withTransactionAssociations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Category").
		Preload("ToCategory").
		Preload("FromAccount").
		Preload("ToAccount").
		Preload("Month")
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	err := withTransactionAssociations(s.db).
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// CreateTransaction records a transaction in one of the user's months.
// Status defaults to PLANNED.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	if in.Status == "" {
		in.Status = models.TransactionStatusPlanned
	}
	if in.Date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}

	legs, err := s.validate(userID, &in)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:        userID,
		Type:          in.Type,
		Date:          in.Date.UTC(),
		Amount:        in.Amount,
		Description:   strings.TrimSpace(in.Description),
		Status:        in.Status,
		CategoryID:    in.CategoryID,
		ToCategoryID:  legs.ToCategoryID,
		MonthID:       in.MonthID,
		FromAccountID: legs.FromAccountID,
		ToAccountID:   legs.ToAccountID,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTransactionByID(userID, transaction.ID)
}

// UpdateTransaction applies the given changes and validates the merged row
// with the same rules as create.
func (s *transactionService) UpdateTransaction(userID, transactionID string, in TransactionUpdate) (*models.Transaction, error) {
	existing, err := s.findOwned(userID, transactionID)
	if err != nil {
		return nil, err
	}

	merged := TransactionInput{
		Type:          existing.Type,
		Date:          existing.Date,
		Amount:        existing.Amount,
		Description:   existing.Description,
		Status:        existing.Status,
		CategoryID:    existing.CategoryID,
		ToCategoryID:  existing.ToCategoryID,
		MonthID:       existing.MonthID,
		FromAccountID: existing.FromAccountID,
		ToAccountID:   existing.ToAccountID,
	}
	if in.Type != nil {
		merged.Type = *in.Type
	}
	if in.Date != nil {
		merged.Date = in.Date.UTC()
	}
	if in.Amount != nil {
		merged.Amount = *in.Amount
	}
	if in.Description != nil {
		merged.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		merged.Status = *in.Status
	}
	if in.CategoryID != nil {
		merged.CategoryID = *in.CategoryID
	}
	if in.ToCategoryID != nil {
		merged.ToCategoryID = in.ToCategoryID
	}
	if in.MonthID != nil {
		merged.MonthID = *in.MonthID
	}
	if in.FromAccountID != nil {
		merged.FromAccountID = in.FromAccountID
	}
	if in.ToAccountID != nil {
		merged.ToAccountID = in.ToAccountID
	}

	legs, err := s.validate(userID, &merged)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"type":            merged.Type,
		"date":            merged.Date,
		"amount":          merged.Amount,
		"description":     merged.Description,
		"status":          merged.Status,
		"category_id":     merged.CategoryID,
		"to_category_id":  legs.ToCategoryID,
		"month_id":        merged.MonthID,
		"from_account_id": legs.FromAccountID,
		"to_account_id":   legs.ToAccountID,
	}
	if err := s.db.Model(existing).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTransactionByID(userID, transactionID)
}

// UpdateStatus sets the status of a transaction. An unknown status is
// rejected before anything is read or written.
func (s *transactionService) UpdateStatus(userID, transactionID string, status models.TransactionStatus) (*models.Transaction, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}
	existing, err := s.findOwned(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(existing).Update("status", status).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTransactionByID(userID, transactionID)
}

// CycleStatus advances the status one step through
// PLANNED -> PAID -> PENDING -> SKIPPED -> PLANNED.
func (s *transactionService) CycleStatus(userID, transactionID string) (*models.Transaction, error) {
	existing, err := s.findOwned(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(existing).Update("status", existing.Status.Next()).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction removes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	existing, err := s.findOwned(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(existing).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *transactionService) findOwned(userID, transactionID string) (*models.Transaction, error) {
	return findOwned[models.Transaction](s.db, userID, transactionID, apperrors.ErrTransactionNotFound)
}

// validate checks required fields, the status enum, the per-type legs and
// that the month, categories and accounts referenced belong to the user.
func (s *transactionService) validate(userID string, in *TransactionInput) (ledger.Legs, error) {
	if in.CategoryID == "" || in.MonthID == "" {
		return ledger.Legs{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id and month_id are required")
	}
	if !in.Status.Valid() {
		return ledger.Legs{}, apperrors.ErrInvalidStatus
	}
	if err := validateAmount(in.Amount); err != nil {
		return ledger.Legs{}, err
	}

	legs, err := ledger.ResolveLegs(ledger.LegInput{
		Type:          in.Type,
		CategoryID:    in.CategoryID,
		FromAccountID: in.FromAccountID,
		ToAccountID:   in.ToAccountID,
		ToCategoryID:  in.ToCategoryID,
	})
	if err != nil {
		return ledger.Legs{}, err
	}

	if _, err := findOwned[models.Month](s.db, userID, in.MonthID, apperrors.ErrMonthNotFound); err != nil {
		return ledger.Legs{}, err
	}
	if err := checkReferences(s.db, userID, in.CategoryID, legs); err != nil {
		return ledger.Legs{}, err
	}
	return legs, nil
}

// startOfDay truncates t to midnight UTC.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
