package services

import (
	"strings"

	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// ListCategories returns the user's categories ordered by name with the
// number of transactions and budget definitions referencing each.
func (s *categoryService) ListCategories(userID string) ([]CategoryWithCounts, error) {
	var categories []models.Category
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	txnCounts, err := countByCategory(s.db, &models.Transaction{}, userID)
	if err != nil {
		return nil, err
	}
	defCounts, err := countByCategory(s.db, &models.BudgetTransactionDefinition{}, userID)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryWithCounts, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryWithCounts{
			Category:              c,
			TransactionCount:      txnCounts[c.ID],
			BudgetDefinitionCount: defCounts[c.ID],
		})
	}
	return out, nil
}

// GetCategoryByID retrieves a category owned by the user.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	return findOwned[models.Category](s.db, userID, categoryID, apperrors.ErrCategoryNotFound)
}

// CreateCategory creates a category whose name is unique for the user.
func (s *categoryService) CreateCategory(userID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if err := s.ensureUniqueName(userID, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{UserID: userID, Name: name}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// UpdateCategory renames a category.
func (s *categoryService) UpdateCategory(userID, categoryID, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}

	category, err := s.GetCategoryByID(userID, categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUniqueName(userID, name, categoryID); err != nil {
		return nil, err
	}

	if err := s.db.Model(category).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	category.Name = name
	return category, nil
}

// DeleteCategory removes a category no transaction or definition references.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		category, err := findOwned[models.Category](tx, userID, categoryID, apperrors.ErrCategoryNotFound)
		if err != nil {
			return err
		}

		var txnCount int64
		if err := tx.Model(&models.Transaction{}).
			Where("category_id = ? OR to_category_id = ?", categoryID, categoryID).
			Count(&txnCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if txnCount > 0 {
			return apperrors.WithDetails(apperrors.ErrCategoryInUse, map[string]any{"transaction_count": txnCount})
		}

		var defCount int64
		if err := tx.Model(&models.BudgetTransactionDefinition{}).
			Where("category_id = ? OR to_category_id = ?", categoryID, categoryID).
			Count(&defCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if defCount > 0 {
			return apperrors.WithDetails(
				apperrors.WithMessage(apperrors.ErrCategoryInUse, "Cannot delete category used by budget definitions"),
				map[string]any{"definition_count": defCount},
			)
		}

		if err := tx.Delete(category).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func (s *categoryService) ensureUniqueName(userID, name, exceptID string) error {
	q := s.db.Model(&models.Category{}).Where("user_id = ? AND name = ?", userID, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateCategory
	}
	return nil
}

type categoryCount struct {
	CategoryID string
	Count      int64
}

// countByCategory counts rows of model per category for the user. A row
// counts toward its category and, when different, its to-category, which
// matches the references that block DeleteCategory.
func countByCategory(db *gorm.DB, model interface{}, userID string) (map[string]int64, error) {
	var direct, credited []categoryCount
	err := db.Model(model).
		Select("category_id, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("category_id").
		Scan(&direct).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	err = db.Model(model).
		Select("to_category_id AS category_id, COUNT(*) AS count").
		Where("user_id = ? AND to_category_id IS NOT NULL AND to_category_id <> category_id", userID).
		Group("to_category_id").
		Scan(&credited).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	out := make(map[string]int64, len(direct)+len(credited))
	for _, r := range direct {
		out[r.CategoryID] += r.Count
	}
	for _, r := range credited {
		out[r.CategoryID] += r.Count
	}
	return out, nil
}
