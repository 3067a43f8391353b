// Package seed loads a demo ledger for a user: three accounts, a standard
// monthly budget template and three months in different stages of payment.
package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetbook/internal/logger"
	"budgetbook/internal/models"
	"budgetbook/internal/services"
)

// ErrNotEmpty is returned when the user already owns accounts.
var ErrNotEmpty = errors.New("user already has ledger data")

// Stats counts the rows created by Run.
type Stats struct {
	Accounts     int
	Categories   int
	Templates    int
	Months       int
	Transactions int
}

// Run ensures a user for subject and fills their ledger with demo data. All
// rows are written in one database transaction through the regular services,
// so the same validation applies as for API writes.
func Run(db *gorm.DB, subject, email string) (*Stats, error) {
	log := logger.Named("seed")

	user, err := services.NewUserService(db).EnsureUser(subject, email, "Demo User")
	if err != nil {
		return nil, fmt.Errorf("failed to ensure user: %w", err)
	}

	var existing int64
	if err := db.Model(&models.Account{}).Where("user_id = ?", user.ID).Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, ErrNotEmpty
	}

	stats := &Stats{}
	err = db.Transaction(func(tx *gorm.DB) error {
		s := &seeder{
			userID:       user.ID,
			accounts:     services.NewAccountService(tx),
			categories:   services.NewCategoryService(tx),
			budgets:      services.NewBudgetService(tx),
			months:       services.NewMonthService(tx),
			transactions: services.NewTransactionService(tx),
			stats:        stats,
		}
		return s.run()
	})
	if err != nil {
		return nil, err
	}

	log.Infow("Seeded demo ledger",
		"user_id", user.ID,
		"accounts", stats.Accounts,
		"categories", stats.Categories,
		"months", stats.Months,
		"transactions", stats.Transactions,
	)
	return stats, nil
}

type seeder struct {
	userID       string
	accounts     services.AccountServicer
	categories   services.CategoryServicer
	budgets      services.BudgetServicer
	months       services.MonthServicer
	transactions services.TransactionServicer
	stats        *Stats

	account  map[string]string
	category map[string]string
	err      error
}

// row is a compact description of a definition or transaction.
type row struct {
	typ      models.TransactionType
	day      int
	amount   int64
	desc     string
	status   models.TransactionStatus
	category string
	from     string
	to       string
}

func (s *seeder) run() error {
	s.account = map[string]string{}
	s.category = map[string]string{}

	s.addAccount("Main Checking", models.AccountTypeChecking, "Primary bank account")
	s.addAccount("Savings", models.AccountTypeSavings, "Emergency fund and goals")
	s.addAccount("Credit Card", models.AccountTypeCreditCard, "Visa rewards card")

	for _, name := range []string{"Salary", "Rent", "Groceries", "Utilities", "Car",
		"House Savings", "Investing", "Entertainment", "Dining Out", "Transportation"} {
		s.addCategory(name)
	}
	if s.err != nil {
		return s.err
	}

	tmpl, err := s.budgets.CreateTemplate(s.userID, "Standard Monthly Budget")
	if err != nil {
		return err
	}
	s.stats.Templates++

	for _, d := range []row{
		{typ: models.TransactionTypeIncome, amount: 3000, desc: "Monthly salary", category: "Salary", to: "Main Checking"},
		{typ: models.TransactionTypeSpending, amount: 1000, desc: "Monthly rent", category: "Rent", from: "Main Checking"},
		{typ: models.TransactionTypeSpending, amount: 300, desc: "Groceries budget", category: "Groceries", from: "Main Checking"},
		{typ: models.TransactionTypeSpending, amount: 150, desc: "Utilities", category: "Utilities", from: "Main Checking"},
		{typ: models.TransactionTypeTransfer, amount: 500, desc: "Car savings transfer", category: "Car", from: "Main Checking", to: "Savings"},
		{typ: models.TransactionTypeTransfer, amount: 300, desc: "House savings transfer", category: "House Savings", from: "Main Checking", to: "Savings"},
	} {
		if _, err := s.budgets.CreateDefinition(s.userID, tmpl.ID, services.DefinitionInput{
			Type:          d.typ,
			Amount:        decimal.NewFromInt(d.amount),
			Description:   d.desc,
			CategoryID:    s.category[d.category],
			FromAccountID: s.ref(s.account, d.from),
			ToAccountID:   s.ref(s.account, d.to),
		}); err != nil {
			return err
		}
	}

	// January is fully paid, entered by hand against the template.
	jan := s.addMonth(1, 2024, &tmpl.ID)
	s.addTransactions(jan, 1, 2024, []row{
		{typ: models.TransactionTypeIncome, day: 5, amount: 3000, desc: "Monthly salary", status: models.TransactionStatusPaid, category: "Salary", to: "Main Checking"},
		{typ: models.TransactionTypeSpending, day: 1, amount: 1000, desc: "Monthly rent", status: models.TransactionStatusPaid, category: "Rent", from: "Main Checking"},
		{typ: models.TransactionTypeSpending, day: 10, amount: 280, desc: "Groceries", status: models.TransactionStatusPaid, category: "Groceries", from: "Main Checking"},
		{typ: models.TransactionTypeSpending, day: 15, amount: 145, desc: "Electric + Water", status: models.TransactionStatusPaid, category: "Utilities", from: "Main Checking"},
		{typ: models.TransactionTypeSpending, day: 20, amount: 60, desc: "Movie night", status: models.TransactionStatusPaid, category: "Entertainment", from: "Main Checking"},
		{typ: models.TransactionTypeTransfer, day: 6, amount: 500, desc: "Car savings", status: models.TransactionStatusPaid, category: "Car", from: "Main Checking", to: "Savings"},
		{typ: models.TransactionTypeTransfer, day: 6, amount: 300, desc: "House savings", status: models.TransactionStatusPaid, category: "House Savings", from: "Main Checking", to: "Savings"},
	})

	// February is partly paid.
	feb := s.addMonth(2, 2024, &tmpl.ID)
	s.addTransactions(feb, 2, 2024, []row{
		{typ: models.TransactionTypeIncome, day: 5, amount: 3000, desc: "Monthly salary", status: models.TransactionStatusPaid, category: "Salary", to: "Main Checking"},
		{typ: models.TransactionTypeSpending, day: 1, amount: 1000, desc: "Monthly rent", status: models.TransactionStatusPaid, category: "Rent", from: "Main Checking"},
		{typ: models.TransactionTypeSpending, day: 1, amount: 300, desc: "Groceries budget", status: models.TransactionStatusPlanned, category: "Groceries", from: "Main Checking"},
		{typ: models.TransactionTypeSpending, day: 1, amount: 150, desc: "Utilities", status: models.TransactionStatusPlanned, category: "Utilities", from: "Main Checking"},
		{typ: models.TransactionTypeSpending, day: 14, amount: 85, desc: "Valentine dinner", status: models.TransactionStatusPending, category: "Dining Out", from: "Credit Card"},
		{typ: models.TransactionTypeTransfer, day: 6, amount: 500, desc: "Car savings", status: models.TransactionStatusPlanned, category: "Car", from: "Main Checking", to: "Savings"},
		{typ: models.TransactionTypeTransfer, day: 6, amount: 300, desc: "House savings", status: models.TransactionStatusPlanned, category: "House Savings", from: "Main Checking", to: "Savings"},
	})

	// March is empty.
	s.addMonth(3, 2024, nil)

	return s.err
}

func (s *seeder) addAccount(name string, typ models.AccountType, notes string) {
	if s.err != nil {
		return
	}
	a, err := s.accounts.CreateAccount(s.userID, services.AccountInput{Name: name, Type: typ, Notes: notes})
	if err != nil {
		s.err = fmt.Errorf("account %q: %w", name, err)
		return
	}
	s.account[name] = a.ID
	s.stats.Accounts++
}

func (s *seeder) addCategory(name string) {
	if s.err != nil {
		return
	}
	c, err := s.categories.CreateCategory(s.userID, name)
	if err != nil {
		s.err = fmt.Errorf("category %q: %w", name, err)
		return
	}
	s.category[name] = c.ID
	s.stats.Categories++
}

// addMonth records the template reference without expanding it; the rows
// are added explicitly afterwards.
func (s *seeder) addMonth(month, year int, templateID *string) string {
	if s.err != nil {
		return ""
	}
	m, err := s.months.CreateMonth(s.userID, services.MonthInput{Month: month, Year: year})
	if err != nil {
		s.err = fmt.Errorf("month %d/%d: %w", month, year, err)
		return ""
	}
	if templateID != nil {
		if _, err := s.months.UpdateMonth(s.userID, m.ID, services.MonthUpdate{BudgetTemplateID: templateID}); err != nil {
			s.err = fmt.Errorf("month %d/%d: %w", month, year, err)
			return ""
		}
	}
	s.stats.Months++
	return m.ID
}

func (s *seeder) addTransactions(monthID string, month, year int, rows []row) {
	for _, r := range rows {
		if s.err != nil {
			return
		}
		_, err := s.transactions.CreateTransaction(s.userID, services.TransactionInput{
			Type:          r.typ,
			Date:          time.Date(year, time.Month(month), r.day, 0, 0, 0, 0, time.UTC),
			Amount:        decimal.NewFromInt(r.amount),
			Description:   r.desc,
			Status:        r.status,
			CategoryID:    s.category[r.category],
			MonthID:       monthID,
			FromAccountID: s.ref(s.account, r.from),
			ToAccountID:   s.ref(s.account, r.to),
		})
		if err != nil {
			s.err = fmt.Errorf("transaction %q: %w", r.desc, err)
			return
		}
		s.stats.Transactions++
	}
}

func (s *seeder) ref(ids map[string]string, name string) *string {
	if name == "" {
		return nil
	}
	id := ids[name]
	return &id
}
