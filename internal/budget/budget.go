package budget

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/apperr"
)

// Budget caps spending in one category for one calendar month. At most one
// budget exists per (owner, category, month, year).
type Budget struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Category  string
	Limit     decimal.Decimal
	Month     int
	Year      int
	CreatedAt time.Time
}

var (
	ErrNotFound       = apperr.New(apperr.KindNotFound, "budget not found")
	ErrConflict       = apperr.New(apperr.KindConflict, "budget already exists for this category and period")
	ErrInvalidLimit   = apperr.Invalid("limit must be greater than zero")
	ErrLimitPrecision = apperr.Invalid("limit must have at most 2 decimal places")
)
