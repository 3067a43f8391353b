package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"budgetbook/internal/models"
)

// Totals sums a set of transactions by type. Net excludes transfers since
// they move money between the user's own accounts.
type Totals struct {
	Income    decimal.Decimal `json:"income"`
	Spending  decimal.Decimal `json:"spending"`
	Transfers decimal.Decimal `json:"transfers"`
	Net       decimal.Decimal `json:"net"`
}

// CategoryFlow is the PAID income and spending of one category in a month.
type CategoryFlow struct {
	CategoryID string          `json:"id"`
	Name       string          `json:"name"`
	Income     decimal.Decimal `json:"income"`
	Spending   decimal.Decimal `json:"spending"`
	Net        decimal.Decimal `json:"net"`
}

// MonthlySummary is the report for a single month.
type MonthlySummary struct {
	MonthID           string         `json:"month_id"`
	Month             int            `json:"month"`
	Year              int            `json:"year"`
	TotalTransactions int            `json:"total_transactions"`
	Paid              Totals         `json:"paid"`
	Planned           Totals         `json:"planned"`
	All               Totals         `json:"all"`
	CategoryBreakdown []CategoryFlow `json:"category_breakdown"`
}

// MonthOverview holds the headline figures shown in a list of months.
type MonthOverview struct {
	TransactionCount int             `json:"transaction_count"`
	Income           decimal.Decimal `json:"income"`
	Spending         decimal.Decimal `json:"spending"`
	PlannedIncome    decimal.Decimal `json:"planned_income"`
	PlannedSpending  decimal.Decimal `json:"planned_spending"`
	Net              decimal.Decimal `json:"net"`
}

// AccountSummary is one account with its realized balance breakdown.
type AccountSummary struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Type       models.AccountType `json:"type"`
	Notes      string             `json:"notes"`
	Balance    decimal.Decimal    `json:"balance"`
	TotalIn    decimal.Decimal    `json:"total_in"`
	TotalOut   decimal.Decimal    `json:"total_out"`
	Categories []CategoryBalance  `json:"categories"`
}

// Direction tags a transaction relative to an account.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// DirectedTransaction is a transaction annotated with its direction.
type DirectedTransaction struct {
	models.Transaction
	Direction Direction `json:"direction"`
}

// CategoryDetail lists the PAID movements of one category on one account.
type CategoryDetail struct {
	AccountID    string                `json:"account_id"`
	CategoryID   string                `json:"category_id"`
	TotalIn      decimal.Decimal       `json:"total_in"`
	TotalOut     decimal.Decimal       `json:"total_out"`
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []DirectedTransaction `json:"transactions"`
}

// Summarize totals txns by type.
func Summarize(txns []models.Transaction) Totals {
	t := Totals{Income: decimal.Zero, Spending: decimal.Zero, Transfers: decimal.Zero}
	for i := range txns {
		switch txns[i].Type {
		case models.TransactionTypeIncome:
			t.Income = t.Income.Add(txns[i].Amount)
		case models.TransactionTypeSpending:
			t.Spending = t.Spending.Add(txns[i].Amount)
		case models.TransactionTypeTransfer:
			t.Transfers = t.Transfers.Add(txns[i].Amount)
		}
	}
	t.Net = t.Income.Sub(t.Spending)
	return t
}

// BuildMonthlySummary partitions a month's transactions into PAID and
// PLANNED and breaks PAID income and spending down by category.
func BuildMonthlySummary(month *models.Month, txns []models.Transaction, lookup CategoryNameLookup) (*MonthlySummary, error) {
	paid := filterStatus(txns, models.TransactionStatusPaid)
	planned := filterStatus(txns, models.TransactionStatusPlanned)

	flows := make(map[string]*CategoryFlow)
	var order []string
	for i := range paid {
		t := &paid[i]
		if t.Type == models.TransactionTypeTransfer {
			continue
		}
		f, ok := flows[t.CategoryID]
		if !ok {
			f = &CategoryFlow{CategoryID: t.CategoryID, Income: decimal.Zero, Spending: decimal.Zero}
			flows[t.CategoryID] = f
			order = append(order, t.CategoryID)
		}
		switch t.Type {
		case models.TransactionTypeIncome:
			f.Income = f.Income.Add(t.Amount)
		case models.TransactionTypeSpending:
			f.Spending = f.Spending.Add(t.Amount)
		}
	}

	names := map[string]string{}
	if len(order) > 0 && lookup != nil {
		var err error
		if names, err = lookup(order); err != nil {
			return nil, err
		}
	}

	breakdown := make([]CategoryFlow, 0, len(order))
	for _, id := range order {
		f := flows[id]
		f.Name = nameOrUnknown(names, id)
		f.Net = f.Income.Sub(f.Spending)
		breakdown = append(breakdown, *f)
	}
	sort.SliceStable(breakdown, func(i, j int) bool {
		return lessByName(breakdown[i].Name, breakdown[i].CategoryID, breakdown[j].Name, breakdown[j].CategoryID)
	})

	return &MonthlySummary{
		MonthID:           month.ID,
		Month:             month.Month,
		Year:              month.Year,
		TotalTransactions: len(txns),
		Paid:              Summarize(paid),
		Planned:           Summarize(planned),
		All:               Summarize(txns),
		CategoryBreakdown: breakdown,
	}, nil
}

// BuildMonthOverview computes the list-view figures of a month.
func BuildMonthOverview(txns []models.Transaction) MonthOverview {
	paid := Summarize(filterStatus(txns, models.TransactionStatusPaid))
	planned := Summarize(filterStatus(txns, models.TransactionStatusPlanned))
	return MonthOverview{
		TransactionCount: len(txns),
		Income:           paid.Income,
		Spending:         paid.Spending,
		PlannedIncome:    planned.Income,
		PlannedSpending:  planned.Spending,
		Net:              paid.Net,
	}
}

// BuildAccountSummaries runs the balance aggregation for every account over
// the user's PAID transactions. Category names are resolved at most once per
// id across all accounts.
func BuildAccountSummaries(accounts []models.Account, txns []models.Transaction, lookup CategoryNameLookup) ([]AccountSummary, error) {
	byAccount := make(map[string][]models.Transaction, len(accounts))
	for i := range txns {
		t := txns[i]
		if t.FromAccountID != nil {
			byAccount[*t.FromAccountID] = append(byAccount[*t.FromAccountID], t)
		}
		if t.ToAccountID != nil && (t.FromAccountID == nil || *t.ToAccountID != *t.FromAccountID) {
			byAccount[*t.ToAccountID] = append(byAccount[*t.ToAccountID], t)
		}
	}

	memo := memoize(lookup)
	out := make([]AccountSummary, 0, len(accounts))
	for i := range accounts {
		a := &accounts[i]
		bal, err := ComputeAccountBalance(a.ID, byAccount[a.ID], memo)
		if err != nil {
			return nil, err
		}
		out = append(out, AccountSummary{
			ID:         a.ID,
			Name:       a.Name,
			Type:       a.Type,
			Notes:      a.Notes,
			Balance:    bal.Balance,
			TotalIn:    bal.TotalIn,
			TotalOut:   bal.TotalOut,
			Categories: bal.CategoryBalances,
		})
	}
	return out, nil
}

// BuildCategoryDetail selects the PAID rows where the account is debited
// under the category, or credited under it (by category or to-category),
// tags each with a direction and orders them newest first.
func BuildCategoryDetail(accountID, categoryID string, txns []models.Transaction) *CategoryDetail {
	detail := &CategoryDetail{
		AccountID:    accountID,
		CategoryID:   categoryID,
		TotalIn:      decimal.Zero,
		TotalOut:     decimal.Zero,
		Transactions: []DirectedTransaction{},
	}

	for i := range txns {
		t := txns[i]
		if !t.IsSettled() || !matchesCategoryDetail(&t, accountID, categoryID) {
			continue
		}
		dir := DirectionOut
		if t.IsTo(accountID) {
			dir = DirectionIn
			detail.TotalIn = detail.TotalIn.Add(t.Amount)
		} else {
			detail.TotalOut = detail.TotalOut.Add(t.Amount)
		}
		detail.Transactions = append(detail.Transactions, DirectedTransaction{Transaction: t, Direction: dir})
	}

	sort.SliceStable(detail.Transactions, func(i, j int) bool {
		a, b := detail.Transactions[i], detail.Transactions[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	detail.Balance = detail.TotalIn.Sub(detail.TotalOut)
	return detail
}

func matchesCategoryDetail(t *models.Transaction, accountID, categoryID string) bool {
	if t.IsFrom(accountID) && t.CategoryID == categoryID {
		return true
	}
	if t.IsTo(accountID) {
		if t.CategoryID == categoryID {
			return true
		}
		if t.ToCategoryID != nil && *t.ToCategoryID == categoryID {
			return true
		}
	}
	return false
}

func filterStatus(txns []models.Transaction, status models.TransactionStatus) []models.Transaction {
	var out []models.Transaction
	for i := range txns {
		if txns[i].Status == status {
			out = append(out, txns[i])
		}
	}
	return out
}

// memoize wraps lookup so each id is resolved at most once for the lifetime
// of the returned function.
func memoize(lookup CategoryNameLookup) CategoryNameLookup {
	if lookup == nil {
		return nil
	}
	resolved := make(map[string]string)
	seen := make(map[string]bool)
	return func(ids []string) (map[string]string, error) {
		var missing []string
		for _, id := range ids {
			if !seen[id] {
				missing = append(missing, id)
			}
		}
		if len(missing) > 0 {
			names, err := lookup(missing)
			if err != nil {
				return nil, err
			}
			for _, id := range missing {
				seen[id] = true
				if name, ok := names[id]; ok {
					resolved[id] = name
				}
			}
		}
		out := make(map[string]string, len(ids))
		for _, id := range ids {
			if name, ok := resolved[id]; ok {
				out[id] = name
			}
		}
		return out, nil
	}
}
