package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/apperr"
)

// Type represents the type of transaction (income or expense).
type Type string

const (
	TypeIncome  Type = "income"
	TypeExpense Type = "expense"
)

func (t Type) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense record owned by one user.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Type        Type
	Category    string
	Description string
	Date        time.Time // calendar date, time component is zero
	CreatedAt   time.Time
}

var (
	ErrNotFound        = apperr.New(apperr.KindNotFound, "transaction not found")
	ErrInvalidAmount   = apperr.Invalid("amount must be greater than zero")
	ErrAmountPrecision = apperr.Invalid("amount must have at most 2 decimal places")
	ErrInvalidType     = apperr.Invalid("type must be income or expense")
	ErrInvalidDate     = apperr.Invalid("date is required")
)

// DefaultCategories is offered to users who have not recorded any transactions yet.
var DefaultCategories = []string{
	"Food", "Rent", "Transport", "Entertainment", "Utilities",
	"Healthcare", "Shopping", "Salary", "Other",
}
