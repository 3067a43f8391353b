package services

import (
	"testing"

	"budgetbook/internal/models"
	"budgetbook/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "Groceries")
		testutil.AssertNoError(t, err)

		if cat.ID == "" {
			t.Fatal("expected category ID to be set")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected name Groceries, got %s", cat.Name)
		}
	})

	t.Run("duplicate_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Food")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Food")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("same_name_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		first := testutil.CreateTestUser(t, db)
		second := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(first.ID, "Food")
		testutil.AssertNoError(t, err)
		_, err = svc.CreateCategory(second.ID, "Food")
		testutil.AssertNoError(t, err)
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("rename", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, "Food")

		updated, err := svc.UpdateCategory(user.ID, cat.ID, "Groceries")
		testutil.AssertNoError(t, err)
		if updated.Name != "Groceries" {
			t.Errorf("expected Groceries, got %s", updated.Name)
		}
	})

	t.Run("rename_to_existing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestCategory(t, db, user.ID, "Food")
		cat := testutil.CreateTestCategory(t, db, user.ID, "Fun")

		_, err := svc.UpdateCategory(user.ID, cat.ID, "Food")
		testutil.AssertAppError(t, err, "DUPLICATE_CATEGORY")
	})

	t.Run("keep_own_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, "Food")

		_, err := svc.UpdateCategory(user.ID, cat.ID, "Food")
		testutil.AssertNoError(t, err)
	})
}

func TestListCategories(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	rent := testutil.CreateTestCategory(t, db, user.ID, "Rent")
	testutil.CreateTestCategory(t, db, user.ID, "Car")
	account := testutil.CreateTestAccount(t, db, user.ID, "Checking", models.AccountTypeChecking)
	month := testutil.CreateTestMonth(t, db, user.ID, 1, 2024)
	tmpl := testutil.CreateTestTemplate(t, db, user.ID, "Standard")
	testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type: models.TransactionTypeSpending, Amount: 900, CategoryID: rent.ID, FromAccountID: &account.ID,
	})
	testutil.CreateTestDefinition(t, db, tmpl, models.TransactionTypeSpending, 900, rent.ID, &account.ID, nil)

	categories, err := svc.ListCategories(user.ID)
	testutil.AssertNoError(t, err)

	if len(categories) != 2 || categories[0].Name != "Car" {
		t.Fatalf("expected [Car Rent], got %+v", categories)
	}
	if categories[1].TransactionCount != 1 || categories[1].BudgetDefinitionCount != 1 {
		t.Errorf("expected Rent counts 1/1, got %d/%d", categories[1].TransactionCount, categories[1].BudgetDefinitionCount)
	}
	if categories[0].TransactionCount != 0 {
		t.Errorf("expected Car to be unused, got %d", categories[0].TransactionCount)
	}
}

func TestListCategories_CountsToCategoryUsage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewCategoryService(db)
	user := testutil.CreateTestUser(t, db)
	misc := testutil.CreateTestCategory(t, db, user.ID, "Misc")
	car := testutil.CreateTestCategory(t, db, user.ID, "Car")
	checking := testutil.CreateTestAccount(t, db, user.ID, "Checking", models.AccountTypeChecking)
	savings := testutil.CreateTestAccount(t, db, user.ID, "Savings", models.AccountTypeSavings)
	month := testutil.CreateTestMonth(t, db, user.ID, 1, 2024)
	tmpl := testutil.CreateTestTemplate(t, db, user.ID, "Standard")

	// Misc -> Car, and a transfer whose to-category is its own category.
	testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type: models.TransactionTypeTransfer, Amount: 100, CategoryID: misc.ID, ToCategoryID: &car.ID,
		FromAccountID: &checking.ID, ToAccountID: &savings.ID,
	})
	testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type: models.TransactionTypeTransfer, Amount: 50, CategoryID: misc.ID, ToCategoryID: &misc.ID,
		FromAccountID: &checking.ID, ToAccountID: &savings.ID,
	})
	def := testutil.CreateTestDefinition(t, db, tmpl, models.TransactionTypeTransfer, 100, misc.ID, &checking.ID, &savings.ID)
	if err := db.Model(def).Update("to_category_id", car.ID).Error; err != nil {
		t.Fatalf("failed to set to-category: %v", err)
	}

	categories, err := svc.ListCategories(user.ID)
	testutil.AssertNoError(t, err)

	counts := map[string][2]int64{}
	for _, c := range categories {
		counts[c.Name] = [2]int64{c.TransactionCount, c.BudgetDefinitionCount}
	}
	if counts["Car"] != [2]int64{1, 1} {
		t.Errorf("expected Car counts 1/1 from to-category usage, got %v", counts["Car"])
	}
	if counts["Misc"] != [2]int64{2, 1} {
		t.Errorf("expected Misc counts 2/1, got %v", counts["Misc"])
	}

	// A category the list reports as used is the one delete refuses.
	appErr := testutil.AssertAppError(t, svc.DeleteCategory(user.ID, car.ID), "CATEGORY_IN_USE")
	if appErr.Details["transaction_count"] != counts["Car"][0] {
		t.Errorf("expected delete to report %d transactions, got %v", counts["Car"][0], appErr.Details["transaction_count"])
	}
}

func TestDeleteCategory(t *testing.T) {
	t.Run("blocked_until_transaction_removed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		txSvc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, "Salary")
		account := testutil.CreateTestAccount(t, db, user.ID, "Checking", models.AccountTypeChecking)
		month := testutil.CreateTestMonth(t, db, user.ID, 1, 2024)
		txn := testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
			Type: models.TransactionTypeIncome, Amount: 3000, CategoryID: cat.ID, ToAccountID: &account.ID,
		})

		appErr := testutil.AssertAppError(t, svc.DeleteCategory(user.ID, cat.ID), "CATEGORY_IN_USE")
		if appErr.Details["transaction_count"] != int64(1) {
			t.Errorf("expected transaction_count 1, got %v", appErr.Details["transaction_count"])
		}

		testutil.AssertNoError(t, txSvc.DeleteTransaction(user.ID, txn.ID))
		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))
	})

	t.Run("blocked_by_to_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		source := testutil.CreateTestCategory(t, db, user.ID, "Misc")
		target := testutil.CreateTestCategory(t, db, user.ID, "Car")
		checking := testutil.CreateTestAccount(t, db, user.ID, "Checking", models.AccountTypeChecking)
		savings := testutil.CreateTestAccount(t, db, user.ID, "Savings", models.AccountTypeSavings)
		month := testutil.CreateTestMonth(t, db, user.ID, 1, 2024)
		testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
			Type: models.TransactionTypeTransfer, Amount: 100, CategoryID: source.ID, ToCategoryID: &target.ID,
			FromAccountID: &checking.ID, ToAccountID: &savings.ID,
		})

		testutil.AssertAppError(t, svc.DeleteCategory(user.ID, target.ID), "CATEGORY_IN_USE")
	})

	t.Run("blocked_by_definition", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID, "Rent")
		account := testutil.CreateTestAccount(t, db, user.ID, "Checking", models.AccountTypeChecking)
		tmpl := testutil.CreateTestTemplate(t, db, user.ID, "Standard")
		testutil.CreateTestDefinition(t, db, tmpl, models.TransactionTypeSpending, 900, cat.ID, &account.ID, nil)

		appErr := testutil.AssertAppError(t, svc.DeleteCategory(user.ID, cat.ID), "CATEGORY_IN_USE")
		if appErr.Details["definition_count"] != int64(1) {
			t.Errorf("expected definition_count 1, got %v", appErr.Details["definition_count"])
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.AssertAppError(t, svc.DeleteCategory(user.ID, "0190b3a4-7c6e-7a1b-9c2d-3e4f5a6b7c8d"), "CATEGORY_NOT_FOUND")
	})
}
