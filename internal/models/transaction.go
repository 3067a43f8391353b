package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the direction of a money movement
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeSpending TransactionType = "SPENDING"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeIncome, TransactionTypeSpending, TransactionTypeTransfer:
		return true
	}
	return false
}

// TransactionStatus represents how far a transaction has been realized.
type TransactionStatus string

const (
	TransactionStatusPlanned TransactionStatus = "PLANNED"
	TransactionStatusPending TransactionStatus = "PENDING"
	TransactionStatusPaid    TransactionStatus = "PAID"
	TransactionStatusSkipped TransactionStatus = "SKIPPED"
)

// TransactionStatuses lists every accepted status.
var TransactionStatuses = []TransactionStatus{
	TransactionStatusPlanned,
	TransactionStatusPaid,
	TransactionStatusPending,
	TransactionStatusSkipped,
}

// Valid reports whether s is one of the known statuses.
func (s TransactionStatus) Valid() bool {
	for _, known := range TransactionStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Next returns the status that follows s in the display cycle
// PLANNED -> PAID -> PENDING -> SKIPPED -> PLANNED.
func (s TransactionStatus) Next() TransactionStatus {
	switch s {
	case TransactionStatusPlanned:
		return TransactionStatusPaid
	case TransactionStatusPaid:
		return TransactionStatusPending
	case TransactionStatusPending:
		return TransactionStatusSkipped
	default:
		return TransactionStatusPlanned
	}
}

// Transaction is a single ledger entry inside a Month. Amount is always a
// positive magnitude; direction comes from Type and the populated account legs.
type Transaction struct {
	Base
	UserID        string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Type          TransactionType   `gorm:"not null" json:"type"`
	Date          time.Time         `gorm:"not null;index" json:"date"`
	Amount        decimal.Decimal   `gorm:"type:decimal(14,2);not null" json:"amount"`
	Description   string            `json:"description"`
	Status        TransactionStatus `gorm:"not null;default:PLANNED;index" json:"status"`
	CategoryID    string            `gorm:"type:uuid;not null;index" json:"category_id"`
	ToCategoryID  *string           `gorm:"type:uuid" json:"to_category_id,omitempty"`
	MonthID       string            `gorm:"type:uuid;not null;index" json:"month_id"`
	FromAccountID *string           `gorm:"type:uuid;index" json:"from_account_id,omitempty"`
	ToAccountID   *string           `gorm:"type:uuid;index" json:"to_account_id,omitempty"`

	// Relationships
	Category    *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	ToCategory  *Category `gorm:"foreignKey:ToCategoryID" json:"to_category,omitempty"`
	Month       *Month    `gorm:"foreignKey:MonthID" json:"month,omitempty"`
	FromAccount *Account  `gorm:"foreignKey:FromAccountID" json:"from_account,omitempty"`
	ToAccount   *Account  `gorm:"foreignKey:ToAccountID" json:"to_account,omitempty"`
}

// IsSettled reports whether the transaction counts toward realized balances.
func (t *Transaction) IsSettled() bool {
	return t.Status == TransactionStatusPaid
}

// CreditCategoryID returns the category credited on the destination side:
// the to-category of a transfer when set, otherwise the main category.
func (t *Transaction) CreditCategoryID() string {
	if t.Type == TransactionTypeTransfer && t.ToCategoryID != nil && *t.ToCategoryID != "" {
		return *t.ToCategoryID
	}
	return t.CategoryID
}

// IsFrom reports whether accountID is the debited leg.
func (t *Transaction) IsFrom(accountID string) bool {
	return t.FromAccountID != nil && *t.FromAccountID == accountID
}

// IsTo reports whether accountID is the credited leg.
func (t *Transaction) IsTo(accountID string) bool {
	return t.ToAccountID != nil && *t.ToAccountID == accountID
}
