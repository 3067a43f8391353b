package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetbook/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// Ptr returns a pointer to s.
func Ptr(s string) *string {
	return &s
}

// CreateTestUser creates a user with a unique subject and email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	user := &models.User{
		Subject: fmt.Sprintf("test|%d", n),
		Email:   fmt.Sprintf("user%d@test.com", n),
		Name:    fmt.Sprintf("User %d", n),
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestAccount creates an account of the given type.
func CreateTestAccount(t *testing.T, db *gorm.DB, userID, name string, accountType models.AccountType) *models.Account {
	t.Helper()
	account := &models.Account{UserID: userID, Name: name, Type: accountType}
	if err := db.Create(account).Error; err != nil {
		t.Fatalf("failed to create test account: %v", err)
	}
	return account
}

// CreateTestCategory creates a category with the given name.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID, name string) *models.Category {
	t.Helper()
	category := &models.Category{UserID: userID, Name: name}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestMonth creates a month without a template.
func CreateTestMonth(t *testing.T, db *gorm.DB, userID string, month, year int) *models.Month {
	t.Helper()
	m := &models.Month{UserID: userID, Month: month, Year: year}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test month: %v", err)
	}
	return m
}

// CreateTestTemplate creates an empty budget template.
func CreateTestTemplate(t *testing.T, db *gorm.DB, userID, name string) *models.BudgetTemplate {
	t.Helper()
	tmpl := &models.BudgetTemplate{UserID: userID, Name: name}
	if err := db.Create(tmpl).Error; err != nil {
		t.Fatalf("failed to create test budget template: %v", err)
	}
	return tmpl
}

// CreateTestDefinition adds a definition to a template. from and to may be nil.
func CreateTestDefinition(t *testing.T, db *gorm.DB, tmpl *models.BudgetTemplate, txType models.TransactionType,
	amount int64, categoryID string, from, to *string) *models.BudgetTransactionDefinition {
	t.Helper()
	def := &models.BudgetTransactionDefinition{
		UserID:           tmpl.UserID,
		BudgetTemplateID: tmpl.ID,
		Type:             txType,
		Amount:           decimal.NewFromInt(amount),
		Description:      fmt.Sprintf("%s definition", txType),
		CategoryID:       categoryID,
		FromAccountID:    from,
		ToAccountID:      to,
	}
	if err := db.Create(def).Error; err != nil {
		t.Fatalf("failed to create test definition: %v", err)
	}
	return def
}

// TxOpts describes a transaction fixture. Zero values fall back to PAID,
// the first of the month and a generated description.
type TxOpts struct {
	Type          models.TransactionType
	Status        models.TransactionStatus
	Amount        int64
	CategoryID    string
	ToCategoryID  *string
	FromAccountID *string
	ToAccountID   *string
	Date          time.Time
	Description   string
}

// CreateTestTransaction inserts a transaction into month.
func CreateTestTransaction(t *testing.T, db *gorm.DB, month *models.Month, opts TxOpts) *models.Transaction {
	t.Helper()
	if opts.Status == "" {
		opts.Status = models.TransactionStatusPaid
	}
	if opts.Date.IsZero() {
		opts.Date = month.FirstDay()
	}
	if opts.Description == "" {
		opts.Description = fmt.Sprintf("txn %d", nextID())
	}
	txn := &models.Transaction{
		UserID:        month.UserID,
		Type:          opts.Type,
		Date:          opts.Date,
		Amount:        decimal.NewFromInt(opts.Amount),
		Description:   opts.Description,
		Status:        opts.Status,
		CategoryID:    opts.CategoryID,
		ToCategoryID:  opts.ToCategoryID,
		MonthID:       month.ID,
		FromAccountID: opts.FromAccountID,
		ToAccountID:   opts.ToAccountID,
	}
	if err := db.Create(txn).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return txn
}
