package budget

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/validation"
)

// Repository persists budgets. Uniqueness of (owner, category, month, year)
// is the store's responsibility: CreateBudget and UpdateBudget must fail with
// ErrConflict atomically rather than after a separate existence check.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	ListBudgets(ctx context.Context, owner uuid.UUID, filter ListFilter) ([]*Budget, error)
	UpdateBudget(ctx context.Context, b *Budget) error
	DeleteBudget(ctx context.Context, owner, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Params struct {
	Category string `validate:"required,max=64"`
	Limit    decimal.Decimal
	Month    int `validate:"min=1,max=12"`
	Year     int `validate:"min=1000,max=9999"`
}

type ListFilter struct {
	Month *int
	Year  *int
}

func (p *Params) Validate() error {
	p.Category = strings.TrimSpace(p.Category)

	if !p.Limit.IsPositive() {
		return ErrInvalidLimit
	}

	if !p.Limit.Equal(p.Limit.Truncate(2)) {
		return ErrLimitPrecision
	}

	return validation.Struct(p)
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, params Params) (*Budget, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := newBudget(owner, params)
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) List(ctx context.Context, owner uuid.UUID, filter ListFilter) ([]*Budget, error) {
	return s.repo.ListBudgets(ctx, owner, filter)
}

// Update replaces the budget's key and limit. Moving a budget onto a key that
// another of the owner's budgets already holds fails with ErrConflict.
func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, params Params) (*Budget, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	b := newBudget(owner, params)
	b.ID = id

	if err := s.repo.UpdateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.repo.DeleteBudget(ctx, owner, id)
}

func newBudget(owner uuid.UUID, p Params) *Budget {
	return &Budget{
		UserID:   owner,
		Category: p.Category,
		Limit:    p.Limit,
		Month:    p.Month,
		Year:     p.Year,
	}
}
