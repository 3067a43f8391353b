package models

import "github.com/shopspring/decimal"

// BudgetTemplate is a reusable monthly plan made of transaction definitions.
type BudgetTemplate struct {
	Base
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`

	// Relationships
	Definitions []BudgetTransactionDefinition `gorm:"foreignKey:BudgetTemplateID;constraint:OnDelete:CASCADE" json:"definitions,omitempty"`
	Months      []Month                       `gorm:"foreignKey:BudgetTemplateID;constraint:OnDelete:SET NULL" json:"months,omitempty"`
}

// BudgetTransactionDefinition describes one recurring transaction of a
// template. It is a plan row, never a ledger entry.
type BudgetTransactionDefinition struct {
	Base
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	BudgetTemplateID string          `gorm:"type:uuid;not null;index" json:"budget_template_id"`
	Type             TransactionType `gorm:"not null" json:"type"`
	Amount           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description      string          `json:"description"`
	CategoryID       string          `gorm:"type:uuid;not null;index" json:"category_id"`
	ToCategoryID     *string         `gorm:"type:uuid" json:"to_category_id,omitempty"`
	FromAccountID    *string         `gorm:"type:uuid;index" json:"from_account_id,omitempty"`
	ToAccountID      *string         `gorm:"type:uuid;index" json:"to_account_id,omitempty"`

	// Relationships
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ToCategory  *Category `gorm:"foreignKey:ToCategoryID" json:"to_category,omitempty"`
	FromAccount *Account  `gorm:"foreignKey:FromAccountID" json:"from_account,omitempty"`
	ToAccount   *Account  `gorm:"foreignKey:ToAccountID" json:"to_account,omitempty"`
}
