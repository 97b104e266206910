package transaction

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/validation"
)

// Repository persists transactions. Every method is scoped to an owner: a
// record belonging to another user must behave exactly like a missing one.
//
//go:generate mockgen -source=service.go -destination=repository_mock.go -package=transaction
type Repository interface {
	CreateTransaction(ctx context.Context, tx *Transaction) error
	GetTransaction(ctx context.Context, owner, id uuid.UUID) (*Transaction, error)
	UpdateTransaction(ctx context.Context, tx *Transaction) error
	DeleteTransaction(ctx context.Context, owner, id uuid.UUID) error

	ListTransactions(ctx context.Context, owner uuid.UUID, filter ListFilter) ([]*Transaction, error)
	ListCategories(ctx context.Context, owner uuid.UUID) ([]string, error)

	BeginImport(ctx context.Context, owner uuid.UUID) (ImportTx, error)
}

type ImportTx interface {
	CreateTransactions(ctx context.Context, txs []*Transaction) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Amount      decimal.Decimal
	Type        Type
	Category    string `validate:"required,max=64"`
	Description string `validate:"max=500"`
	Date        time.Time
}

// ListFilter narrows a listing. All set fields are combined with AND on top
// of the owner clause.
type ListFilter struct {
	Category  *string
	Type      *Type
	Search    *string // case-insensitive substring of the description
	StartDate *time.Time
	EndDate   *time.Time
}

// Validate normalizes p in place and reports the first invalid field.
func (p *CreateParams) Validate() error {
	p.Category = strings.TrimSpace(p.Category)
	p.Description = strings.TrimSpace(p.Description)

	if !p.Amount.IsPositive() {
		return ErrInvalidAmount
	}

	if !p.Amount.Equal(p.Amount.Truncate(2)) {
		return ErrAmountPrecision
	}

	if !p.Type.Valid() {
		return ErrInvalidType
	}

	if p.Date.IsZero() {
		return ErrInvalidDate
	}

	if !utf8.ValidString(p.Category) {
		return apperr.Invalid("category is not valid UTF-8")
	}

	if !utf8.ValidString(p.Description) {
		return apperr.Invalid("description is not valid UTF-8")
	}

	p.Date = time.Date(p.Date.Year(), p.Date.Month(), p.Date.Day(), 0, 0, 0, 0, time.UTC)

	return validation.Struct(p)
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tx := newTransaction(owner, params)
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*Transaction, error) {
	return s.repo.GetTransaction(ctx, owner, id)
}

// List returns the owner's transactions, newest date first.
func (s *Service) List(ctx context.Context, owner uuid.UUID, filter ListFilter) ([]*Transaction, error) {
	return s.repo.ListTransactions(ctx, owner, filter)
}

// Update replaces every mutable field of the owner's transaction id.
func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, params CreateParams) (*Transaction, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	tx := newTransaction(owner, params)
	tx.ID = id

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	return s.repo.DeleteTransaction(ctx, owner, id)
}

// Categories lists the distinct categories the owner has used, falling back
// to DefaultCategories for a user with no history.
func (s *Service) Categories(ctx context.Context, owner uuid.UUID) ([]string, error) {
	categories, err := s.repo.ListCategories(ctx, owner)
	if err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		return slices.Clone(DefaultCategories), nil
	}

	slices.Sort(categories)

	return slices.Compact(categories), nil
}

// CreateBatch validates every param and then stores all of them in a single
// store transaction. Nothing is written when any param is invalid.
func (s *Service) CreateBatch(ctx context.Context, owner uuid.UUID, params []CreateParams) ([]*Transaction, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for i := range params {
		if err := params[i].Validate(); err != nil {
			return nil, apperr.Invalid(fmt.Sprintf("item %d: %s", i+1, apperr.Message(err)))
		}
	}

	itx, err := s.repo.BeginImport(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	txs := make([]*Transaction, len(params))
	for i, p := range params {
		txs[i] = newTransaction(owner, p)
	}

	if err := itx.CreateTransactions(ctx, txs); err != nil {
		return nil, fmt.Errorf("create transactions: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	return txs, nil
}

func newTransaction(owner uuid.UUID, p CreateParams) *Transaction {
	return &Transaction{
		UserID:      owner,
		Amount:      p.Amount,
		Type:        p.Type,
		Category:    p.Category,
		Description: p.Description,
		Date:        p.Date,
	}
}
