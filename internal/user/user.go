package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/apperr"
)

type User struct {
	ID           uuid.UUID
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

var (
	ErrNotFound           = apperr.New(apperr.KindNotFound, "user not found")
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "email already registered")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthorized, "invalid email or password")
	ErrUnknownUser        = apperr.New(apperr.KindUnauthorized, "user no longer exists")
)
