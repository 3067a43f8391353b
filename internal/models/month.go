package models

import "time"

// Month is a calendar month ledger. Each user has at most one per (month, year).
type Month struct {
	Base
	UserID           string  `gorm:"type:uuid;not null;uniqueIndex:uq_months_user_month_year" json:"user_id"`
	Month            int     `gorm:"not null;uniqueIndex:uq_months_user_month_year" json:"month"`
	Year             int     `gorm:"not null;uniqueIndex:uq_months_user_month_year" json:"year"`
	BudgetTemplateID *string `gorm:"type:uuid;index" json:"budget_template_id,omitempty"`

	// Relationships
	BudgetTemplate *BudgetTemplate `gorm:"foreignKey:BudgetTemplateID" json:"budget_template,omitempty"`
	Transactions   []Transaction   `gorm:"foreignKey:MonthID;constraint:OnDelete:CASCADE" json:"transactions,omitempty"`
}

// FirstDay returns midnight UTC on the first day of the month.
func (m *Month) FirstDay() time.Time {
	return time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC)
}
