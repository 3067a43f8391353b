package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/ledger"
	"budgetbook/internal/models"
)

// budgetService manages budget templates and their transaction definitions.
type budgetService struct {
	db *gorm.DB
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// ListTemplates returns the user's templates ordered by name with their
// definition and month usage counts.
func (s *budgetService) ListTemplates(userID string) ([]TemplateSummary, error) {
	var templates []models.BudgetTemplate
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&templates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	defCounts, err := countByTemplate(s.db, &models.BudgetTransactionDefinition{}, userID)
	if err != nil {
		return nil, err
	}
	monthCounts, err := countByTemplate(s.db, &models.Month{}, userID)
	if err != nil {
		return nil, err
	}

	out := make([]TemplateSummary, 0, len(templates))
	for _, t := range templates {
		out = append(out, TemplateSummary{
			BudgetTemplate:  t,
			DefinitionCount: defCounts[t.ID],
			MonthsUsedCount: monthCounts[t.ID],
		})
	}
	return out, nil
}

// GetTemplate returns a template with its definitions (by type) and the
// months that use it (newest first).
func (s *budgetService) GetTemplate(userID, templateID string) (*models.BudgetTemplate, error) {
	var tmpl models.BudgetTemplate
	err := s.db.
		Preload("Definitions", func(db *gorm.DB) *gorm.DB { return db.Order("type ASC").Order("created_at ASC") }).
		Preload("Definitions.Category").
		Preload("Definitions.ToCategory").
		Preload("Definitions.FromAccount").
		Preload("Definitions.ToAccount").
		Preload("Months", func(db *gorm.DB) *gorm.DB { return db.Order("year DESC").Order("month DESC") }).
		Where("id = ? AND user_id = ?", templateID, userID).
		First(&tmpl).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetTemplateNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &tmpl, nil
}

// CreateTemplate creates an empty template.
func (s *budgetService) CreateTemplate(userID, name string) (*models.BudgetTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "template name is required")
	}
	tmpl := &models.BudgetTemplate{UserID: userID, Name: name}
	if err := s.db.Create(tmpl).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tmpl, nil
}

// UpdateTemplate renames a template.
func (s *budgetService) UpdateTemplate(userID, templateID, name string) (*models.BudgetTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "template name is required")
	}
	tmpl, err := findOwned[models.BudgetTemplate](s.db, userID, templateID, apperrors.ErrBudgetTemplateNotFound)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(tmpl).Update("name", name).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	tmpl.Name = name
	return tmpl, nil
}

// DeleteTemplate removes a template and its definitions. Months created from
// it keep their transactions and lose the template reference.
func (s *budgetService) DeleteTemplate(userID, templateID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		tmpl, err := findOwned[models.BudgetTemplate](tx, userID, templateID, apperrors.ErrBudgetTemplateNotFound)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Month{}).
			Where("budget_template_id = ?", templateID).
			Update("budget_template_id", nil).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Where("budget_template_id = ?", templateID).
			Delete(&models.BudgetTransactionDefinition{}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := tx.Delete(tmpl).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

// CreateDefinition adds a transaction definition to a template.
func (s *budgetService) CreateDefinition(userID, templateID string, in DefinitionInput) (*models.BudgetTransactionDefinition, error) {
	if _, err := findOwned[models.BudgetTemplate](s.db, userID, templateID, apperrors.ErrBudgetTemplateNotFound); err != nil {
		return nil, err
	}
	legs, err := s.validateDefinition(userID, &in)
	if err != nil {
		return nil, err
	}

	def := &models.BudgetTransactionDefinition{
		UserID:           userID,
		BudgetTemplateID: templateID,
		Type:             in.Type,
		Amount:           in.Amount,
		Description:      strings.TrimSpace(in.Description),
		CategoryID:       in.CategoryID,
		ToCategoryID:     legs.ToCategoryID,
		FromAccountID:    legs.FromAccountID,
		ToAccountID:      legs.ToAccountID,
	}
	if err := s.db.Create(def).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.loadDefinition(def.ID)
}

// UpdateDefinition replaces every field of a definition.
func (s *budgetService) UpdateDefinition(userID, templateID, definitionID string, in DefinitionInput) (*models.BudgetTransactionDefinition, error) {
	def, err := s.findDefinition(userID, templateID, definitionID)
	if err != nil {
		return nil, err
	}
	legs, err := s.validateDefinition(userID, &in)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"type":            in.Type,
		"amount":          in.Amount,
		"description":     strings.TrimSpace(in.Description),
		"category_id":     in.CategoryID,
		"to_category_id":  legs.ToCategoryID,
		"from_account_id": legs.FromAccountID,
		"to_account_id":   legs.ToAccountID,
	}
	if err := s.db.Model(def).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.loadDefinition(def.ID)
}

// DeleteDefinition removes a definition from its template.
func (s *budgetService) DeleteDefinition(userID, templateID, definitionID string) error {
	def, err := s.findDefinition(userID, templateID, definitionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(def).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *budgetService) findDefinition(userID, templateID, definitionID string) (*models.BudgetTransactionDefinition, error) {
	var def models.BudgetTransactionDefinition
	err := s.db.Where("id = ? AND budget_template_id = ? AND user_id = ?", definitionID, templateID, userID).First(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrDefinitionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &def, nil
}

func (s *budgetService) loadDefinition(id string) (*models.BudgetTransactionDefinition, error) {
	var def models.BudgetTransactionDefinition
	err := s.db.
		Preload("Category").
		Preload("ToCategory").
		Preload("FromAccount").
		Preload("ToAccount").
		Where("id = ?", id).
		First(&def).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &def, nil
}

// validateDefinition applies the same per-type leg rules as transactions and
// checks that referenced rows belong to the user.
func (s *budgetService) validateDefinition(userID string, in *DefinitionInput) (ledger.Legs, error) {
	if in.CategoryID == "" {
		return ledger.Legs{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "category_id is required")
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
	if err := checkReferences(s.db, userID, in.CategoryID, legs); err != nil {
		return ledger.Legs{}, err
	}
	return legs, nil
}

type templateCount struct {
	BudgetTemplateID string
	Count            int64
}

func countByTemplate(db *gorm.DB, model interface{}, userID string) (map[string]int64, error) {
	var rows []templateCount
	err := db.Model(model).
		Select("budget_template_id, COUNT(*) AS count").
		Where("user_id = ? AND budget_template_id IS NOT NULL", userID).
		Group("budget_template_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.BudgetTemplateID] = r.Count
	}
	return out, nil
}
