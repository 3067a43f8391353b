package testutil_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"budgetbook/internal/errors"
	"budgetbook/internal/models"
	"budgetbook/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "accounts", "categories", "budget_templates", "budget_transaction_definitions", "months", "transactions", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_Isolated(t *testing.T) {
	first := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, first)
	second := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, second)

	testutil.CreateTestUser(t, first)

	var count int64
	if err := second.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected second database to be empty, got %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	account := testutil.CreateTestAccount(t, db, user.ID, "Checking", models.AccountTypeChecking)
	category := testutil.CreateTestCategory(t, db, user.ID, "Salary")
	month := testutil.CreateTestMonth(t, db, user.ID, 3, 2024)

	txn := testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type:        models.TransactionTypeIncome,
		Amount:      3000,
		CategoryID:  category.ID,
		ToAccountID: &account.ID,
	})
	if txn.Status != models.TransactionStatusPaid {
		t.Errorf("expected default status PAID, got %s", txn.Status)
	}

	var stored models.Transaction
	if err := db.First(&stored, "id = ?", txn.ID).Error; err != nil {
		t.Fatalf("failed to reload transaction: %v", err)
	}
	if !stored.Amount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected amount 3000, got %s", stored.Amount)
	}

	tmpl := testutil.CreateTestTemplate(t, db, user.ID, "Standard")
	def := testutil.CreateTestDefinition(t, db, tmpl, models.TransactionTypeIncome, 100, category.ID, nil, &account.ID)
	if def.BudgetTemplateID != tmpl.ID {
		t.Errorf("expected definition to belong to template %s", tmpl.ID)
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrAccountNotFound, "custom message")
	testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
