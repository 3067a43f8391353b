package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/ledger"
	"budgetbook/internal/logger"
	"budgetbook/internal/models"
)

// expandBatchSize bounds the rows per INSERT when materializing a template.
const expandBatchSize = 100

// monthService manages monthly ledgers and template expansion.
type monthService struct {
	db *gorm.DB
}

// NewMonthService creates a new MonthServicer.
func NewMonthService(db *gorm.DB) MonthServicer {
	return &monthService{db: db}
}

// ListMonths returns the user's months, newest first, with overview figures.
func (s *monthService) ListMonths(userID string) ([]MonthWithOverview, error) {
	var months []models.Month
	err := s.db.Preload("BudgetTemplate").
		Where("user_id = ?", userID).
		Order("year DESC").Order("month DESC").
		Find(&months).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var txns []models.Transaction
	if err := s.db.Select("month_id", "type", "amount", "status").
		Where("user_id = ?", userID).
		Find(&txns).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	byMonth := make(map[string][]models.Transaction, len(months))
	for _, t := range txns {
		byMonth[t.MonthID] = append(byMonth[t.MonthID], t)
	}

	out := make([]MonthWithOverview, 0, len(months))
	for _, m := range months {
		out = append(out, MonthWithOverview{Month: m, MonthOverview: ledger.BuildMonthOverview(byMonth[m.ID])})
	}
	return out, nil
}

// GetMonth returns a month with its template and transactions by date.
func (s *monthService) GetMonth(userID, monthID string) (*models.Month, error) {
	return loadMonth(s.db, userID, monthID)
}

// CreateMonth creates a month. When a template is given, the month and its
// expanded transactions are written in one database transaction.
func (s *monthService) CreateMonth(userID string, in MonthInput) (*models.Month, error) {
	if in.Month < 1 || in.Month > 12 {
		return nil, apperrors.ErrInvalidMonth
	}
	templateID := derefID(in.BudgetTemplateID)

	var monthID string
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := ensureMonthAvailable(tx, userID, in.Month, in.Year, ""); err != nil {
			return err
		}

		month := &models.Month{UserID: userID, Month: in.Month, Year: in.Year}
		var tmpl *models.BudgetTemplate
		if templateID != "" {
			var err error
			if tmpl, err = findOwned[models.BudgetTemplate](tx, userID, templateID, apperrors.ErrBudgetTemplateNotFound); err != nil {
				return err
			}
			month.BudgetTemplateID = &tmpl.ID
		}

		if err := tx.Create(month).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		monthID = month.ID

		if tmpl != nil {
			return expandInto(tx, tmpl.ID, month)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loadMonth(s.db, userID, monthID)
}

// UpdateMonth changes the month number, year or template reference.
// Reassigning a template does not touch existing transactions.
func (s *monthService) UpdateMonth(userID, monthID string, in MonthUpdate) (*models.Month, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		month, err := findOwned[models.Month](tx, userID, monthID, apperrors.ErrMonthNotFound)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		newMonth, newYear := month.Month, month.Year
		if in.Month != nil {
			newMonth = *in.Month
			updates["month"] = newMonth
		}
		if in.Year != nil {
			newYear = *in.Year
			updates["year"] = newYear
		}
		if newMonth < 1 || newMonth > 12 {
			return apperrors.ErrInvalidMonth
		}
		if newMonth != month.Month || newYear != month.Year {
			if err := ensureMonthAvailable(tx, userID, newMonth, newYear, month.ID); err != nil {
				return err
			}
		}

		if in.BudgetTemplateID != nil {
			if *in.BudgetTemplateID == "" {
				updates["budget_template_id"] = nil
			} else {
				if _, err := findOwned[models.BudgetTemplate](tx, userID, *in.BudgetTemplateID, apperrors.ErrBudgetTemplateNotFound); err != nil {
					return err
				}
				updates["budget_template_id"] = *in.BudgetTemplateID
			}
		}

		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(month).Updates(updates).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loadMonth(s.db, userID, monthID)
}

// DeleteMonth removes a month and all of its transactions atomically.
func (s *monthService) DeleteMonth(userID, monthID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		month, err := findOwned[models.Month](tx, userID, monthID, apperrors.ErrMonthNotFound)
		if err != nil {
			return err
		}
		if err := tx.Where("month_id = ?", month.ID).Delete(&models.Transaction{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(month).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// ApplyBudget expands a template into an existing month and records the
// template on the month. Rows already in the month are left alone, so
// applying twice doubles the planned transactions.
func (s *monthService) ApplyBudget(userID, monthID, templateID string) (*models.Month, error) {
	if templateID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget_template_id is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		month, err := findOwned[models.Month](tx, userID, monthID, apperrors.ErrMonthNotFound)
		if err != nil {
			return err
		}
		tmpl, err := findOwned[models.BudgetTemplate](tx, userID, templateID, apperrors.ErrBudgetTemplateNotFound)
		if err != nil {
			return err
		}
		if err := expandInto(tx, tmpl.ID, month); err != nil {
			return err
		}
		if err := tx.Model(month).Update("budget_template_id", tmpl.ID).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loadMonth(s.db, userID, monthID)
}

// expandInto materializes the template's definitions into month using tx.
func expandInto(tx *gorm.DB, templateID string, month *models.Month) error {
	var defs []models.BudgetTransactionDefinition
	if err := tx.Where("budget_template_id = ?", templateID).Order("created_at ASC").Find(&defs).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	txns, err := ledger.ExpandTemplate(defs, ledger.ExpandTarget{
		UserID:  month.UserID,
		MonthID: month.ID,
		Month:   month.Month,
		Year:    month.Year,
	})
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		return nil
	}
	if err := tx.CreateInBatches(&txns, expandBatchSize).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	logger.Named("months").Infow("budget template expanded",
		"month_id", month.ID,
		"template_id", templateID,
		"transactions", len(txns),
	)
	return nil
}

func ensureMonthAvailable(tx *gorm.DB, userID string, month, year int, exceptID string) error {
	q := tx.Model(&models.Month{}).Where("user_id = ? AND month = ? AND year = ?", userID, month, year)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateMonth
	}
	return nil
}

func loadMonth(db *gorm.DB, userID, monthID string) (*models.Month, error) {
	var month models.Month
	err := db.
		Preload("BudgetTemplate").
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC").Order("created_at ASC") }).
		Preload("Transactions.Category").
		Preload("Transactions.ToCategory").
		Preload("Transactions.FromAccount").
		Preload("Transactions.ToAccount").
		Where("id = ? AND user_id = ?", monthID, userID).
		First(&month).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMonthNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &month, nil
}

func derefID(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}
