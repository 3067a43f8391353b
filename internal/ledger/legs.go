// Package ledger holds the pure computations over ledger rows: leg
// validation per transaction type, account balance aggregation, budget
// template expansion and report assembly. Nothing here touches the store.
package ledger

import (
	apperrors "budgetbook/internal/errors"
	"budgetbook/internal/models"
)

// Legs is the validated account and category routing of a transaction or
// definition. Exactly the fields required by the type are populated.
type Legs struct {
	FromAccountID *string
	ToAccountID   *string
	ToCategoryID  *string
}

// LegInput is the raw routing supplied by a caller before validation.
type LegInput struct {
	Type          models.TransactionType
	CategoryID    string
	FromAccountID *string
	ToAccountID   *string
	ToCategoryID  *string
}

// ResolveLegs checks the per-type required fields and normalizes the rest:
//
//	INCOME   needs to-account; from-account and to-category are dropped
//	SPENDING needs from-account; to-account and to-category are dropped
//	TRANSFER needs both accounts, distinct; to-category defaults to category
func ResolveLegs(in LegInput) (Legs, error) {
	from := nonEmpty(in.FromAccountID)
	to := nonEmpty(in.ToAccountID)

	switch in.Type {
	case models.TransactionTypeIncome:
		if to == nil {
			return Legs{}, apperrors.WithMessage(apperrors.ErrMissingAccount, "to_account_id is required for INCOME")
		}
		return Legs{ToAccountID: to}, nil

	case models.TransactionTypeSpending:
		if from == nil {
			return Legs{}, apperrors.WithMessage(apperrors.ErrMissingAccount, "from_account_id is required for SPENDING")
		}
		return Legs{FromAccountID: from}, nil

	case models.TransactionTypeTransfer:
		if from == nil || to == nil {
			return Legs{}, apperrors.WithMessage(apperrors.ErrMissingAccount, "from_account_id and to_account_id are required for TRANSFER")
		}
		if *from == *to {
			return Legs{}, apperrors.ErrSameAccountTransfer
		}
		toCategory := nonEmpty(in.ToCategoryID)
		if toCategory == nil {
			c := in.CategoryID
			toCategory = &c
		}
		return Legs{FromAccountID: from, ToAccountID: to, ToCategoryID: toCategory}, nil

	default:
		return Legs{}, apperrors.ErrInvalidTransactionType
	}
}

// AccountIDs returns the populated account ids.
func (l Legs) AccountIDs() []string {
	var ids []string
	if l.FromAccountID != nil {
		ids = append(ids, *l.FromAccountID)
	}
	if l.ToAccountID != nil {
		ids = append(ids, *l.ToAccountID)
	}
	return ids
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
