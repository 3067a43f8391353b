package services

import (
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/ledger"
	"budgetbook/internal/models"
)

// accountService handles account-related business logic.
type accountService struct {
	db *gorm.DB
}

// NewAccountService creates a new AccountServicer.
func NewAccountService(db *gorm.DB) AccountServicer {
	return &accountService{db: db}
}

// ListAccounts returns the user's accounts ordered by name, each with the
// balance derived from its PAID transactions.
func (s *accountService) ListAccounts(userID string) ([]AccountWithBalance, error) {
	var accounts []models.Account
	if err := s.db.Where("user_id = ?", userID).Order("name ASC").Find(&accounts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	txns, err := paidTransactionsFor(s.db, userID, "")
	if err != nil {
		return nil, err
	}

	balances := make(map[string]decimal.Decimal, len(accounts))
	for i := range txns {
		t := &txns[i]
		if t.FromAccountID != nil {
			balances[*t.FromAccountID] = balances[*t.FromAccountID].Sub(t.Amount)
		}
		if t.ToAccountID != nil {
			balances[*t.ToAccountID] = balances[*t.ToAccountID].Add(t.Amount)
		}
	}

	out := make([]AccountWithBalance, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountWithBalance{Account: a, Balance: balances[a.ID]})
	}
	return out, nil
}

// GetAccountByID retrieves an account owned by the user.
func (s *accountService) GetAccountByID(userID, accountID string) (*models.Account, error) {
	return findOwned[models.Account](s.db, userID, accountID, apperrors.ErrAccountNotFound)
}

// GetAccountDetail returns the account, its balance breakdown and all of its
// transactions regardless of status.
func (s *accountService) GetAccountDetail(userID, accountID string) (*AccountDetail, error) {
	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	var txns []models.Transaction
	err = s.db.
		Preload("Category").
		Preload("ToCategory").
		Preload("FromAccount").
		Preload("ToAccount").
		Preload("Month").
		Where("user_id = ? AND (from_account_id = ? OR to_account_id = ?)", userID, accountID, accountID).
		Order("date DESC").Order("created_at DESC").
		Find(&txns).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Names come from the preloads; only a dangling reference falls back to
	// the store lookup, which then yields "Unknown".
	lookup := ledger.WithFallback(ledger.NamesFromPreloaded(txns), categoryNames(s.db, userID))

	bal, err := ledger.ComputeAccountBalance(accountID, txns, lookup)
	if err != nil {
		return nil, err
	}

	return &AccountDetail{
		Account:          *account,
		Balance:          bal.Balance,
		TotalIn:          bal.TotalIn,
		TotalOut:         bal.TotalOut,
		CategoryBalances: bal.CategoryBalances,
		Transactions:     txns,
	}, nil
}

// CreateAccount creates a new account for a user.
func (s *accountService) CreateAccount(userID string, in AccountInput) (*models.Account, error) {
	if err := validateAccountInput(&in); err != nil {
		return nil, err
	}

	account := &models.Account{
		UserID: userID,
		Name:   in.Name,
		Type:   in.Type,
		Notes:  in.Notes,
	}
	if err := s.db.Create(account).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return account, nil
}

// UpdateAccount replaces the name, type and notes of an account.
func (s *accountService) UpdateAccount(userID, accountID string, in AccountInput) (*models.Account, error) {
	if err := validateAccountInput(&in); err != nil {
		return nil, err
	}

	account, err := s.GetAccountByID(userID, accountID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":  in.Name,
		"type":  in.Type,
		"notes": in.Notes,
	}
	if err := s.db.Model(account).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetAccountByID(userID, accountID)
}

// DeleteAccount removes an account that no transaction or budget definition
// references. The blocking counts are returned in the error details.
func (s *accountService) DeleteAccount(userID, accountID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		account, err := findOwned[models.Account](tx, userID, accountID, apperrors.ErrAccountNotFound)
		if err != nil {
			return err
		}

		var txnCount int64
		if err := tx.Model(&models.Transaction{}).
			Where("from_account_id = ? OR to_account_id = ?", accountID, accountID).
			Count(&txnCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if txnCount > 0 {
			return apperrors.WithDetails(apperrors.ErrAccountInUse, map[string]any{"transaction_count": txnCount})
		}

		var defCount int64
		if err := tx.Model(&models.BudgetTransactionDefinition{}).
			Where("from_account_id = ? OR to_account_id = ?", accountID, accountID).
			Count(&defCount).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if defCount > 0 {
			return apperrors.WithDetails(
				apperrors.WithMessage(apperrors.ErrAccountInUse, "Cannot delete account used by budget definitions"),
				map[string]any{"definition_count": defCount},
			)
		}

		if err := tx.Delete(account).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
}

func validateAccountInput(in *AccountInput) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "account name is required")
	}
	if !in.Type.Valid() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid account type")
	}
	return nil
}
