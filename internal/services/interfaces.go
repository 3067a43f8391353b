package services

import (
	"time"

	"github.com/shopspring/decimal"

	"budgetbook/internal/ledger"
	"budgetbook/internal/models"
	"budgetbook/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	EnsureUser(subject, email, name string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
}

// AccountInput carries the writable fields of an account.
type AccountInput struct {
	Name  string
	Type  models.AccountType
	Notes string
}

// AccountWithBalance is an account row with its realized balance.
type AccountWithBalance struct {
	models.Account
	Balance decimal.Decimal `json:"balance"`
}

// AccountDetail is an account with its balance breakdown and every
// transaction touching it, newest first.
type AccountDetail struct {
	models.Account
	Balance          decimal.Decimal          `json:"balance"`
	TotalIn          decimal.Decimal          `json:"total_in"`
	TotalOut         decimal.Decimal          `json:"total_out"`
	CategoryBalances []ledger.CategoryBalance `json:"category_balances"`
	Transactions     []models.Transaction     `json:"transactions"`
}

// AccountServicer defines the contract for account-related business logic.
type AccountServicer interface {
	ListAccounts(userID string) ([]AccountWithBalance, error)
	GetAccountByID(userID, accountID string) (*models.Account, error)
	GetAccountDetail(userID, accountID string) (*AccountDetail, error)
	CreateAccount(userID string, in AccountInput) (*models.Account, error)
	UpdateAccount(userID, accountID string, in AccountInput) (*models.Account, error)
	DeleteAccount(userID, accountID string) error
}

// CategoryWithCounts is a category with the number of rows referencing it.
type CategoryWithCounts struct {
	models.Category
	TransactionCount      int64 `json:"transaction_count"`
	BudgetDefinitionCount int64 `json:"budget_definition_count"`
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	ListCategories(userID string) ([]CategoryWithCounts, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	CreateCategory(userID, name string) (*models.Category, error)
	UpdateCategory(userID, categoryID, name string) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// DefinitionInput carries the writable fields of a budget definition.
type DefinitionInput struct {
	Type          models.TransactionType
	Amount        decimal.Decimal
	Description   string
	CategoryID    string
	ToCategoryID  *string
	FromAccountID *string
	ToAccountID   *string
}

// TemplateSummary is a budget template with usage counts.
type TemplateSummary struct {
	models.BudgetTemplate
	DefinitionCount int64 `json:"definition_count"`
	MonthsUsedCount int64 `json:"months_used_count"`
}

// BudgetServicer defines the contract for budget templates and their
// transaction definitions.
type BudgetServicer interface {
	ListTemplates(userID string) ([]TemplateSummary, error)
	GetTemplate(userID, templateID string) (*models.BudgetTemplate, error)
	CreateTemplate(userID, name string) (*models.BudgetTemplate, error)
	UpdateTemplate(userID, templateID, name string) (*models.BudgetTemplate, error)
	DeleteTemplate(userID, templateID string) error
	CreateDefinition(userID, templateID string, in DefinitionInput) (*models.BudgetTransactionDefinition, error)
	UpdateDefinition(userID, templateID, definitionID string, in DefinitionInput) (*models.BudgetTransactionDefinition, error)
	DeleteDefinition(userID, templateID, definitionID string) error
}

// MonthInput carries the fields used to create a month.
type MonthInput struct {
	Month            int
	Year             int
	BudgetTemplateID *string
}

// MonthUpdate carries optional month changes. A non-nil empty
// BudgetTemplateID detaches the template.
type MonthUpdate struct {
	Month            *int
	Year             *int
	BudgetTemplateID *string
}

// MonthWithOverview is a month with its list-view figures.
type MonthWithOverview struct {
	models.Month
	ledger.MonthOverview
}

// MonthServicer defines the contract for monthly ledgers.
type MonthServicer interface {
	ListMonths(userID string) ([]MonthWithOverview, error)
	GetMonth(userID, monthID string) (*models.Month, error)
	CreateMonth(userID string, in MonthInput) (*models.Month, error)
	UpdateMonth(userID, monthID string, in MonthUpdate) (*models.Month, error)
	DeleteMonth(userID, monthID string) error
	ApplyBudget(userID, monthID, templateID string) (*models.Month, error)
}

// TransactionInput carries the fields used to create a transaction.
type TransactionInput struct {
	Type          models.TransactionType
	Date          time.Time
	Amount        decimal.Decimal
	Description   string
	Status        models.TransactionStatus
	CategoryID    string
	ToCategoryID  *string
	MonthID       string
	FromAccountID *string
	ToAccountID   *string
}

// TransactionUpdate carries optional transaction changes. The merged row is
// validated again as a whole.
type TransactionUpdate struct {
	Type          *models.TransactionType
	Date          *time.Time
	Amount        *decimal.Decimal
	Description   *string
	Status        *models.TransactionStatus
	CategoryID    *string
	ToCategoryID  *string
	MonthID       *string
	FromAccountID *string
	ToAccountID   *string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	MonthID    string
	CategoryID string
	AccountID  string
	Type       models.TransactionType
	Status     models.TransactionStatus
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	ListTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, in TransactionUpdate) (*models.Transaction, error)
	UpdateStatus(userID, transactionID string, status models.TransactionStatus) (*models.Transaction, error)
	CycleStatus(userID, transactionID string) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// ReportServicer defines the contract for read-only reports.
type ReportServicer interface {
	AccountSummary(userID string) ([]ledger.AccountSummary, error)
	CategoryDetail(userID, accountID, categoryID string) (*ledger.CategoryDetail, error)
	MonthlySummary(userID, monthID string) (*ledger.MonthlySummary, error)
}

// SearchLimit caps the number of rows a search returns.
const SearchLimit = 100

// SearchQuery holds the optional search criteria. Query matches the
// description case-insensitively.
type SearchQuery struct {
	Query      string
	AccountID  string
	CategoryID string
	MonthID    string
	Type       models.TransactionType
	Status     models.TransactionStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	AmountMin  *decimal.Decimal
	AmountMax  *decimal.Decimal
}

// SearchResult is the response of a transaction search.
type SearchResult struct {
	Count        int                  `json:"count"`
	Transactions []models.Transaction `json:"transactions"`
}

// SearchServicer defines the contract for transaction search.
type SearchServicer interface {
	Search(userID string, q SearchQuery) (*SearchResult, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
