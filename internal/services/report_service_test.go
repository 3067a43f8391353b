package services

import (
	"testing"
	"time"

	"budgetbook/internal/ledger"
	"budgetbook/internal/models"
	"budgetbook/internal/testutil"
)

func TestMonthlySummary(t *testing.T) {
	t.Run("paid_and_planned", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		f := seedBudget(t, db)
		rent := testutil.CreateTestCategory(t, db, f.user.ID, "Rent")
		month := testutil.CreateTestMonth(t, db, f.user.ID, 5, 2024)

		testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
			Type: models.TransactionTypeIncome, Amount: 3000, CategoryID: f.salary.ID, ToAccountID: &f.checking.ID,
		})
		testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
			Type: models.TransactionTypeSpending, Amount: 1000, CategoryID: rent.ID, FromAccountID: &f.checking.ID,
		})
		testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
			Type: models.TransactionTypeSpending, Amount: 300, CategoryID: rent.ID, FromAccountID: &f.checking.ID,
			Status: models.TransactionStatusPlanned,
		})

		summary, err := svc.MonthlySummary(f.user.ID, month.ID)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "paid income", summary.Paid.Income, 3000)
		testutil.AssertDecimal(t, "paid spending", summary.Paid.Spending, 1000)
		testutil.AssertDecimal(t, "paid net", summary.Paid.Net, 2000)
		testutil.AssertDecimal(t, "planned income", summary.Planned.Income, 0)
		testutil.AssertDecimal(t, "planned spending", summary.Planned.Spending, 300)
		testutil.AssertDecimal(t, "planned net", summary.Planned.Net, -300)
		if len(summary.CategoryBreakdown) != 2 || summary.CategoryBreakdown[0].Name != "Rent" {
			t.Errorf("unexpected breakdown: %+v", summary.CategoryBreakdown)
		}
	})

	t.Run("other_users_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewReportService(db)
		owner := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		month := testutil.CreateTestMonth(t, db, owner.ID, 5, 2024)

		_, err := svc.MonthlySummary(other.ID, month.ID)
		testutil.AssertAppError(t, err, "MONTH_NOT_FOUND")
	})
}

func TestAccountSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReportService(db)
	f := seedBudget(t, db)
	month := testutil.CreateTestMonth(t, db, f.user.ID, 5, 2024)
	testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type: models.TransactionTypeIncome, Amount: 3000, CategoryID: f.salary.ID, ToAccountID: &f.checking.ID,
	})
	testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type: models.TransactionTypeTransfer, Amount: 500, CategoryID: f.car.ID,
		FromAccountID: &f.checking.ID, ToAccountID: &f.savings.ID,
	})

	summaries, err := svc.AccountSummary(f.user.ID)
	testutil.AssertNoError(t, err)

	if len(summaries) != 2 || summaries[0].Name != "Checking" {
		t.Fatalf("expected [Checking Savings], got %+v", summaries)
	}
	testutil.AssertDecimal(t, "checking", summaries[0].Balance, 2500)
	testutil.AssertDecimal(t, "savings", summaries[1].Balance, 500)
	if len(summaries[1].Categories) != 1 || summaries[1].Categories[0].Name != "Car" {
		t.Errorf("expected savings credited under Car, got %+v", summaries[1].Categories)
	}
}

func TestCategoryDetail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewReportService(db)
	f := seedBudget(t, db)
	month := testutil.CreateTestMonth(t, db, f.user.ID, 5, 2024)
	testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type: models.TransactionTypeTransfer, Amount: 500, CategoryID: f.car.ID,
		FromAccountID: &f.checking.ID, ToAccountID: &f.savings.ID, ToCategoryID: &f.car.ID,
		Date: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	})
	testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type: models.TransactionTypeSpending, Amount: 120, CategoryID: f.car.ID, FromAccountID: &f.savings.ID,
		Date: time.Date(2024, 5, 9, 0, 0, 0, 0, time.UTC),
	})
	testutil.CreateTestTransaction(t, db, month, testutil.TxOpts{
		Type: models.TransactionTypeSpending, Amount: 999, CategoryID: f.car.ID, FromAccountID: &f.savings.ID,
		Status: models.TransactionStatusPlanned,
	})

	detail, err := svc.CategoryDetail(f.user.ID, f.savings.ID, f.car.ID)
	testutil.AssertNoError(t, err)

	if len(detail.Transactions) != 2 {
		t.Fatalf("expected 2 PAID rows, got %d", len(detail.Transactions))
	}
	if detail.Transactions[0].Direction != ledger.DirectionOut || detail.Transactions[1].Direction != ledger.DirectionIn {
		t.Errorf("expected [out in] newest first, got [%s %s]", detail.Transactions[0].Direction, detail.Transactions[1].Direction)
	}
	testutil.AssertDecimal(t, "balance", detail.Balance, 380)

	_, err = svc.CategoryDetail(f.user.ID, "", f.car.ID)
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}
