package models

// AccountType represents the kind of account
type AccountType string

const (
	AccountTypeChecking   AccountType = "checking"
	AccountTypeSavings    AccountType = "savings"
	AccountTypeCreditCard AccountType = "credit-card"
	AccountTypeCash       AccountType = "cash"
	AccountTypeInvestment AccountType = "investment"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeChecking, AccountTypeSavings, AccountTypeCreditCard, AccountTypeCash, AccountTypeInvestment:
		return true
	}
	return false
}

// Account represents a place money lives. Balances are never stored; they
// are derived from PAID transactions on every read.
type Account struct {
	Base
	UserID string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Name   string      `gorm:"not null" json:"name"`
	Type   AccountType `gorm:"not null" json:"type"`
	Notes  string      `json:"notes"`
}
