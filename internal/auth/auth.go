// Package auth verifies bearer tokens and carries the caller's identity
// through request contexts.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/http/respond"
)

var (
	ErrMissingToken = apperr.New(apperr.KindUnauthorized, "missing bearer token")
	ErrInvalidToken = apperr.New(apperr.KindUnauthorized, "invalid or expired token")
)

type Identity struct {
	UserID      uuid.UUID
	Email       string
	DisplayName string
}

type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

type contextKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// IdentityFrom returns the identity stored by Middleware.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}

// Middleware rejects requests that do not carry a valid bearer token.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respond.Error(w, r, ErrMissingToken)
				return
			}

			id, err := v.Verify(r.Context(), token)
			if err != nil {
				respond.Error(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// OwnerFrom returns the authenticated user's id, or ErrMissingToken when the
// request did not pass through Middleware.
func OwnerFrom(ctx context.Context) (uuid.UUID, error) {
	id, ok := IdentityFrom(ctx)
	if !ok {
		return uuid.Nil, ErrMissingToken
	}

	return id.UserID, nil
}
