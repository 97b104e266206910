package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/validation"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type Service struct {
	repo   Repository
	tokens TokenIssuer
}

func NewService(repo Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// unknownUserHash is compared against when Login finds no account, so both
// failure paths pay for a bcrypt comparison.
var unknownUserHash = sync.OnceValue(func() string {
	hash, _ := auth.HashPassword(uuid.NewString())
	return hash
})

type RegisterParams struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	FullName string `field:"full_name" validate:"required,max=128"`
}

// Session is an authenticated user together with a fresh access token.
type Session struct {
	User  *User
	Token string
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*Session, error) {
	params.Email = normalizeEmail(params.Email)
	params.FullName = strings.TrimSpace(params.FullName)

	if err := validation.Struct(params); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        params.Email,
		FullName:     params.FullName,
		PasswordHash: hash,
	}

	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return s.session(u)
}

// Login fails with ErrInvalidCredentials for an unknown email and for a
// wrong password alike.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_, _ = auth.CheckPassword(unknownUserHash(), password)
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	ok, err := auth.CheckPassword(u.PasswordHash, password)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *Service) Me(ctx context.Context, id auth.Identity) (*User, error) {
	u, err := s.repo.GetUser(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnknownUser
		}

		return nil, err
	}

	return u, nil
}

func (s *Service) session(u *User) (*Session, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: u.ID, Email: u.Email, DisplayName: u.FullName})
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &Session{User: u, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
