package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
	"budgetbook/internal/services"
)

func setupAccountRouter(handler *AccountHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.GET("/accounts", handler.ListAccounts)
	auth.GET("/accounts/:id", handler.GetAccount)
	auth.POST("/accounts", handler.CreateAccount)
	auth.PUT("/accounts/:id", handler.UpdateAccount)
	auth.DELETE("/accounts/:id", handler.DeleteAccount)
	return r
}

func TestAccountHandler_CreateAccount(t *testing.T) {
	t.Run("returns 201 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		acctSvc := &mockAccountService{
			createAccountFn: func(userID string, in services.AccountInput) (*models.Account, error) {
				if userID != testUserID {
					t.Errorf("expected user %s, got %s", testUserID, userID)
				}
				return &models.Account{Base: models.Base{ID: testID}, UserID: userID, Name: in.Name, Type: in.Type}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, audit))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Checking","type":"checking"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		acct := parseJSON(t, rec)["account"].(map[string]interface{})
		if acct["name"] != "Checking" || acct["type"] != "checking" {
			t.Errorf("unexpected account: %v", acct)
		}
		if len(audit.entries) != 1 || audit.entries[0].action != "CREATE_ACCOUNT" {
			t.Errorf("expected CREATE_ACCOUNT audit entry, got %v", audit.entries)
		}
	})

	t.Run("returns 400 on unknown type", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/accounts", `{"name":"Pocket","type":"crypto"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on missing name", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/accounts", `{"type":"cash"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 401 without auth", func(t *testing.T) {
		handler := NewAccountHandler(&mockAccountService{}, &mockAuditService{})
		r := gin.New()
		r.POST("/accounts", handler.CreateAccount)

		rec := doRequest(r, "POST", "/accounts", `{"name":"Test","type":"cash"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAccountHandler_GetAccount(t *testing.T) {
	t.Run("returns 200 with balance breakdown", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getAccountDetailFn: func(_, accountID string) (*services.AccountDetail, error) {
				return &services.AccountDetail{
					Account: models.Account{Base: models.Base{ID: accountID}, Name: "Checking"},
					Balance: decimal.NewFromInt(2500),
				}, nil
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/accounts/"+testID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		acct := parseJSON(t, rec)["account"].(map[string]interface{})
		if acct["id"] != testID || acct["balance"] != "2500" {
			t.Errorf("unexpected account detail: %v", acct)
		}
	})

	t.Run("returns 400 on malformed id", func(t *testing.T) {
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/accounts/42", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		acctSvc := &mockAccountService{
			getAccountDetailFn: func(string, string) (*services.AccountDetail, error) {
				return nil, apperrors.ErrAccountNotFound
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/accounts/"+testID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "ACCOUNT_NOT_FOUND")
	})
}

func TestAccountHandler_ListAccounts(t *testing.T) {
	acctSvc := &mockAccountService{
		listAccountsFn: func(string) ([]services.AccountWithBalance, error) {
			return []services.AccountWithBalance{
				{Account: models.Account{Name: "Checking"}, Balance: decimal.NewFromInt(10)},
				{Account: models.Account{Name: "Savings"}, Balance: decimal.NewFromInt(20)},
			}, nil
		},
	}
	r := setupAccountRouter(NewAccountHandler(acctSvc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/accounts", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	accounts := parseJSON(t, rec)["accounts"].([]interface{})
	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(accounts))
	}
}

func TestAccountHandler_DeleteAccount(t *testing.T) {
	t.Run("returns 409 with counts when in use", func(t *testing.T) {
		acctSvc := &mockAccountService{
			deleteAccountFn: func(string, string) error {
				return apperrors.WithDetails(apperrors.ErrAccountInUse, map[string]any{"transaction_count": 3})
			},
		}
		r := setupAccountRouter(NewAccountHandler(acctSvc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/accounts/"+testID, "")

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		assertErrorCode(t, result, "ACCOUNT_IN_USE")
		details := result["error"].(map[string]interface{})["details"].(map[string]interface{})
		if details["transaction_count"] != float64(3) {
			t.Errorf("expected transaction_count 3, got %v", details)
		}
	})

	t.Run("returns 200 and audits", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAccountRouter(NewAccountHandler(&mockAccountService{}, audit))

		rec := doRequest(r, "DELETE", "/accounts/"+testID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if len(audit.entries) != 1 || audit.entries[0].resourceID != testID {
			t.Errorf("expected delete audit for %s, got %v", testID, audit.entries)
		}
	})
}
