package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"budgetbook/internal/models"
)

// UnknownCategoryName is shown for a category id that no longer resolves.
const UnknownCategoryName = "Unknown"

// CategoryNameLookup resolves category names for a set of distinct ids.
// Ids missing from the returned map are treated as dangling references.
type CategoryNameLookup func(ids []string) (map[string]string, error)

// CategoryBalance is the net movement of one category on one account.
type CategoryBalance struct {
	CategoryID string          `json:"id"`
	Name       string          `json:"name"`
	In         decimal.Decimal `json:"in"`
	Out        decimal.Decimal `json:"out"`
	Balance    decimal.Decimal `json:"balance"`
}

// AccountBalance is the realized position of an account.
type AccountBalance struct {
	AccountID        string            `json:"account_id"`
	Balance          decimal.Decimal   `json:"balance"`
	TotalIn          decimal.Decimal   `json:"total_in"`
	TotalOut         decimal.Decimal   `json:"total_out"`
	CategoryBalances []CategoryBalance `json:"category_balances"`
}

// ComputeAccountBalance derives an account's balance and per-category
// breakdown from transactions touching it. Only PAID rows count; other rows
// are ignored so callers may pass an unfiltered set.
//
// A debit is booked under the transaction's category; a credit under the
// transfer to-category when present, otherwise the category. Names are
// resolved with a single lookup over the distinct bucket ids and the result
// is sorted by name.
func ComputeAccountBalance(accountID string, txns []models.Transaction, lookup CategoryNameLookup) (*AccountBalance, error) {
	result := &AccountBalance{
		AccountID:        accountID,
		Balance:          decimal.Zero,
		TotalIn:          decimal.Zero,
		TotalOut:         decimal.Zero,
		CategoryBalances: []CategoryBalance{},
	}

	buckets := make(map[string]*CategoryBalance)
	var order []string
	bucket := func(id string) *CategoryBalance {
		b, ok := buckets[id]
		if !ok {
			b = &CategoryBalance{CategoryID: id, In: decimal.Zero, Out: decimal.Zero}
			buckets[id] = b
			order = append(order, id)
		}
		return b
	}

	for i := range txns {
		t := &txns[i]
		if !t.IsSettled() {
			continue
		}
		if t.IsFrom(accountID) {
			result.TotalOut = result.TotalOut.Add(t.Amount)
			b := bucket(t.CategoryID)
			b.Out = b.Out.Add(t.Amount)
		}
		if t.IsTo(accountID) {
			result.TotalIn = result.TotalIn.Add(t.Amount)
			b := bucket(t.CreditCategoryID())
			b.In = b.In.Add(t.Amount)
		}
	}
	result.Balance = result.TotalIn.Sub(result.TotalOut)

	if len(order) == 0 {
		return result, nil
	}

	names := map[string]string{}
	if lookup != nil {
		var err error
		if names, err = lookup(order); err != nil {
			return nil, err
		}
	}

	for _, id := range order {
		b := buckets[id]
		b.Name = nameOrUnknown(names, id)
		b.Balance = b.In.Sub(b.Out)
		result.CategoryBalances = append(result.CategoryBalances, *b)
	}
	sort.SliceStable(result.CategoryBalances, func(i, j int) bool {
		return lessByName(result.CategoryBalances[i].Name, result.CategoryBalances[i].CategoryID,
			result.CategoryBalances[j].Name, result.CategoryBalances[j].CategoryID)
	})

	return result, nil
}

// NamesFromPreloaded builds a lookup that serves names from the Category and
// ToCategory associations already loaded on txns, so no store round trip is
// needed when rows were fetched with those preloads.
func NamesFromPreloaded(txns []models.Transaction) CategoryNameLookup {
	known := make(map[string]string)
	for i := range txns {
		if c := txns[i].Category; c != nil {
			known[c.ID] = c.Name
		}
		if c := txns[i].ToCategory; c != nil {
			known[c.ID] = c.Name
		}
	}
	return func(ids []string) (map[string]string, error) {
		out := make(map[string]string, len(ids))
		for _, id := range ids {
			if name, ok := known[id]; ok {
				out[id] = name
			}
		}
		return out, nil
	}
}

// WithFallback resolves ids with primary and asks fallback only for the ids
// primary could not name. Errors from either lookup are returned.
func WithFallback(primary, fallback CategoryNameLookup) CategoryNameLookup {
	return func(ids []string) (map[string]string, error) {
		names, err := primary(ids)
		if err != nil {
			return nil, err
		}
		var missing []string
		for _, id := range ids {
			if _, ok := names[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(missing) == 0 || fallback == nil {
			return names, nil
		}
		more, err := fallback(missing)
		if err != nil {
			return nil, err
		}
		for id, n := range more {
			names[id] = n
		}
		return names, nil
	}
}

func nameOrUnknown(names map[string]string, id string) string {
	if name, ok := names[id]; ok && name != "" {
		return name
	}
	return UnknownCategoryName
}

func lessByName(nameA, idA, nameB, idB string) bool {
	la, lb := strings.ToLower(nameA), strings.ToLower(nameB)
	if la != lb {
		return la < lb
	}
	if nameA != nameB {
		return nameA < nameB
	}
	return idA < idB
}
