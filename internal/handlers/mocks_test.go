package handlers

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"budgetbook/internal/ledger"
	"budgetbook/internal/models"
	"budgetbook/internal/pagination"
	"budgetbook/internal/services"
	"budgetbook/internal/validator"
)

const (
	testUserID  = "0190b3a4-0000-7000-8000-000000000001"
	testID      = "0190b3a4-7c6e-7a1b-9c2d-3e4f5a6b7c8d"
	otherTestID = "0190b3a4-7c6e-7a1b-9c2d-3e4f5a6b7c8e"
)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

func strPtr(s string) *string { return &s }

// --- mock audit service ---

type auditEntry struct {
	action, resourceType, resourceID string
}

type mockAuditService struct {
	entries []auditEntry
}

func (m *mockAuditService) Log(_, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.entries = append(m.entries, auditEntry{action: action, resourceType: resourceType, resourceID: resourceID})
}

// --- mock user service ---

type mockUserService struct {
	getUserByIDFn func(id string) (*models.User, error)
}

func (m *mockUserService) EnsureUser(subject, email, name string) (*models.User, error) {
	return &models.User{Subject: subject, Email: email, Name: name}, nil
}

func (m *mockUserService) GetUserByID(id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{Base: models.Base{ID: id}}, nil
}

// --- mock account service ---

type mockAccountService struct {
	listAccountsFn     func(userID string) ([]services.AccountWithBalance, error)
	getAccountDetailFn func(userID, accountID string) (*services.AccountDetail, error)
	createAccountFn    func(userID string, in services.AccountInput) (*models.Account, error)
	updateAccountFn    func(userID, accountID string, in services.AccountInput) (*models.Account, error)
	deleteAccountFn    func(userID, accountID string) error
}

func (m *mockAccountService) ListAccounts(userID string) ([]services.AccountWithBalance, error) {
	if m.listAccountsFn != nil {
		return m.listAccountsFn(userID)
	}
	return []services.AccountWithBalance{}, nil
}

func (m *mockAccountService) GetAccountByID(_, accountID string) (*models.Account, error) {
	return &models.Account{Base: models.Base{ID: accountID}}, nil
}

func (m *mockAccountService) GetAccountDetail(userID, accountID string) (*services.AccountDetail, error) {
	if m.getAccountDetailFn != nil {
		return m.getAccountDetailFn(userID, accountID)
	}
	return &services.AccountDetail{}, nil
}

func (m *mockAccountService) CreateAccount(userID string, in services.AccountInput) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, in)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) UpdateAccount(userID, accountID string, in services.AccountInput) (*models.Account, error) {
	if m.updateAccountFn != nil {
		return m.updateAccountFn(userID, accountID, in)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) DeleteAccount(userID, accountID string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(userID, accountID)
	}
	return nil
}

// --- mock category service ---

type mockCategoryService struct {
	listCategoriesFn func(userID string) ([]services.CategoryWithCounts, error)
	createCategoryFn func(userID, name string) (*models.Category, error)
	updateCategoryFn func(userID, categoryID, name string) (*models.Category, error)
	deleteCategoryFn func(userID, categoryID string) error
}

func (m *mockCategoryService) ListCategories(userID string) ([]services.CategoryWithCounts, error) {
	if m.listCategoriesFn != nil {
		return m.listCategoriesFn(userID)
	}
	return []services.CategoryWithCounts{}, nil
}

func (m *mockCategoryService) GetCategoryByID(_, categoryID string) (*models.Category, error) {
	return &models.Category{Base: models.Base{ID: categoryID}}, nil
}

func (m *mockCategoryService) CreateCategory(userID, name string) (*models.Category, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, name)
	}
	return &models.Category{Name: name}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID, name string) (*models.Category, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, name)
	}
	return &models.Category{Base: models.Base{ID: categoryID}, Name: name}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

// --- mock budget service ---

type mockBudgetService struct {
	getTemplateFn      func(userID, templateID string) (*models.BudgetTemplate, error)
	createDefinitionFn func(userID, templateID string, in services.DefinitionInput) (*models.BudgetTransactionDefinition, error)
	updateDefinitionFn func(userID, templateID, definitionID string, in services.DefinitionInput) (*models.BudgetTransactionDefinition, error)
	deleteTemplateFn   func(userID, templateID string) error
}

func (m *mockBudgetService) ListTemplates(string) ([]services.TemplateSummary, error) {
	return []services.TemplateSummary{}, nil
}

func (m *mockBudgetService) GetTemplate(userID, templateID string) (*models.BudgetTemplate, error) {
	if m.getTemplateFn != nil {
		return m.getTemplateFn(userID, templateID)
	}
	return &models.BudgetTemplate{Base: models.Base{ID: templateID}}, nil
}

func (m *mockBudgetService) CreateTemplate(_, name string) (*models.BudgetTemplate, error) {
	return &models.BudgetTemplate{Base: models.Base{ID: testID}, Name: name}, nil
}

func (m *mockBudgetService) UpdateTemplate(_, templateID, name string) (*models.BudgetTemplate, error) {
	return &models.BudgetTemplate{Base: models.Base{ID: templateID}, Name: name}, nil
}

func (m *mockBudgetService) DeleteTemplate(userID, templateID string) error {
	if m.deleteTemplateFn != nil {
		return m.deleteTemplateFn(userID, templateID)
	}
	return nil
}

func (m *mockBudgetService) CreateDefinition(userID, templateID string, in services.DefinitionInput) (*models.BudgetTransactionDefinition, error) {
	if m.createDefinitionFn != nil {
		return m.createDefinitionFn(userID, templateID, in)
	}
	return &models.BudgetTransactionDefinition{}, nil
}

func (m *mockBudgetService) UpdateDefinition(userID, templateID, definitionID string, in services.DefinitionInput) (*models.BudgetTransactionDefinition, error) {
	if m.updateDefinitionFn != nil {
		return m.updateDefinitionFn(userID, templateID, definitionID, in)
	}
	return &models.BudgetTransactionDefinition{Base: models.Base{ID: definitionID}}, nil
}

func (m *mockBudgetService) DeleteDefinition(string, string, string) error {
	return nil
}

// --- mock month service ---

type mockMonthService struct {
	listMonthsFn  func(userID string) ([]services.MonthWithOverview, error)
	createMonthFn func(userID string, in services.MonthInput) (*models.Month, error)
	updateMonthFn func(userID, monthID string, in services.MonthUpdate) (*models.Month, error)
	applyBudgetFn func(userID, monthID, templateID string) (*models.Month, error)
	deleteMonthFn func(userID, monthID string) error
}

func (m *mockMonthService) ListMonths(userID string) ([]services.MonthWithOverview, error) {
	if m.listMonthsFn != nil {
		return m.listMonthsFn(userID)
	}
	return []services.MonthWithOverview{}, nil
}

func (m *mockMonthService) GetMonth(_, monthID string) (*models.Month, error) {
	return &models.Month{Base: models.Base{ID: monthID}}, nil
}

func (m *mockMonthService) CreateMonth(userID string, in services.MonthInput) (*models.Month, error) {
	if m.createMonthFn != nil {
		return m.createMonthFn(userID, in)
	}
	return &models.Month{Month: in.Month, Year: in.Year}, nil
}

func (m *mockMonthService) UpdateMonth(userID, monthID string, in services.MonthUpdate) (*models.Month, error) {
	if m.updateMonthFn != nil {
		return m.updateMonthFn(userID, monthID, in)
	}
	return &models.Month{Base: models.Base{ID: monthID}}, nil
}

func (m *mockMonthService) DeleteMonth(userID, monthID string) error {
	if m.deleteMonthFn != nil {
		return m.deleteMonthFn(userID, monthID)
	}
	return nil
}

func (m *mockMonthService) ApplyBudget(userID, monthID, templateID string) (*models.Month, error) {
	if m.applyBudgetFn != nil {
		return m.applyBudgetFn(userID, monthID, templateID)
	}
	return &models.Month{Base: models.Base{ID: monthID}}, nil
}

// --- mock transaction service ---

type mockTransactionService struct {
	listTransactionsFn  func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	createTransactionFn func(userID string, in services.TransactionInput) (*models.Transaction, error)
	updateTransactionFn func(userID, transactionID string, in services.TransactionUpdate) (*models.Transaction, error)
	updateStatusFn      func(userID, transactionID string, status models.TransactionStatus) (*models.Transaction, error)
	cycleStatusFn       func(userID, transactionID string) (*models.Transaction, error)
	deleteTransactionFn func(userID, transactionID string) error
}

func (m *mockTransactionService) ListTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listTransactionsFn != nil {
		return m.listTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(_, transactionID string) (*models.Transaction, error) {
	return &models.Transaction{Base: models.Base{ID: transactionID}}, nil
}

func (m *mockTransactionService) CreateTransaction(userID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID string, in services.TransactionUpdate) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, in)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}}, nil
}

func (m *mockTransactionService) UpdateStatus(userID, transactionID string, status models.TransactionStatus) (*models.Transaction, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(userID, transactionID, status)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}, Status: status}, nil
}

func (m *mockTransactionService) CycleStatus(userID, transactionID string) (*models.Transaction, error) {
	if m.cycleStatusFn != nil {
		return m.cycleStatusFn(userID, transactionID)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

// --- mock report and search services ---

type mockReportService struct {
	categoryDetailFn func(userID, accountID, categoryID string) (*ledger.CategoryDetail, error)
	monthlySummaryFn func(userID, monthID string) (*ledger.MonthlySummary, error)
}

func (m *mockReportService) AccountSummary(string) ([]ledger.AccountSummary, error) {
	return []ledger.AccountSummary{}, nil
}

func (m *mockReportService) CategoryDetail(userID, accountID, categoryID string) (*ledger.CategoryDetail, error) {
	if m.categoryDetailFn != nil {
		return m.categoryDetailFn(userID, accountID, categoryID)
	}
	return &ledger.CategoryDetail{AccountID: accountID, CategoryID: categoryID}, nil
}

func (m *mockReportService) MonthlySummary(userID, monthID string) (*ledger.MonthlySummary, error) {
	if m.monthlySummaryFn != nil {
		return m.monthlySummaryFn(userID, monthID)
	}
	return &ledger.MonthlySummary{MonthID: monthID}, nil
}

type mockSearchService struct {
	searchFn func(userID string, q services.SearchQuery) (*services.SearchResult, error)
}

func (m *mockSearchService) Search(userID string, q services.SearchQuery) (*services.SearchResult, error) {
	if m.searchFn != nil {
		return m.searchFn(userID, q)
	}
	return &services.SearchResult{Transactions: []models.Transaction{}}, nil
}

// verify interface compliance
var (
	_ services.UserServicer        = (*mockUserService)(nil)
	_ services.AccountServicer     = (*mockAccountService)(nil)
	_ services.CategoryServicer    = (*mockCategoryService)(nil)
	_ services.BudgetServicer      = (*mockBudgetService)(nil)
	_ services.MonthServicer       = (*mockMonthService)(nil)
	_ services.TransactionServicer = (*mockTransactionService)(nil)
	_ services.ReportServicer      = (*mockReportService)(nil)
	_ services.SearchServicer      = (*mockSearchService)(nil)
	_ services.AuditServicer       = (*mockAuditService)(nil)
)
