package user_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/user"
)

func TestService_Register(t *testing.T) {
	tests := []struct {
		name      string
		params    user.RegisterParams
		setupMock func(repo *user.MockRepository, tokens *user.MockTokenIssuer)
		wantKind  apperr.Kind
	}{
		{
			name:   "Success",
			params: user.RegisterParams{Email: "  Ana@Example.COM ", Password: "secret1", FullName: " Ana Lima "},
			setupMock: func(repo *user.MockRepository, tokens *user.MockTokenIssuer) {
				repo.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *user.User) error {
						assert.Equal(t, "ana@example.com", u.Email)
						assert.Equal(t, "Ana Lima", u.FullName)
						assert.NotEqual(t, "secret1", u.PasswordHash)

						ok, err := auth.CheckPassword(u.PasswordHash, "secret1")
						assert.NoError(t, err)
						assert.True(t, ok)

						u.ID = uuid.New()

						return nil
					})
				tokens.EXPECT().Issue(gomock.Any()).Return("token", nil)
			},
		},
		{
			name:   "DuplicateEmail",
			params: user.RegisterParams{Email: "ana@example.com", Password: "secret1", FullName: "Ana"},
			setupMock: func(repo *user.MockRepository, _ *user.MockTokenIssuer) {
				repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(user.ErrEmailTaken)
			},
			wantKind: apperr.KindConflict,
		},
		{
			name:     "InvalidEmail",
			params:   user.RegisterParams{Email: "not-an-email", Password: "secret1", FullName: "Ana"},
			wantKind: apperr.KindInvalidInput,
		},
		{
			name:     "ShortPassword",
			params:   user.RegisterParams{Email: "ana@example.com", Password: "12345", FullName: "Ana"},
			wantKind: apperr.KindInvalidInput,
		},
		{
			name:     "PasswordOverBcryptLimit",
			params:   user.RegisterParams{Email: "ana@example.com", Password: strings.Repeat("x", 80), FullName: "Ana"},
			wantKind: apperr.KindInvalidInput,
		},
		{
			name:     "MissingName",
			params:   user.RegisterParams{Email: "ana@example.com", Password: "secret1", FullName: "  "},
			wantKind: apperr.KindInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			repo := user.NewMockRepository(ctrl)
			tokens := user.NewMockTokenIssuer(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(repo, tokens)
			}

			got, err := user.NewService(repo, tokens).Register(context.Background(), tt.params)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "token", got.Token)
			assert.Equal(t, "ana@example.com", got.User.Email)
		})
	}
}

func TestService_Login(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)

	stored := &user.User{ID: uuid.New(), Email: "ana@example.com", FullName: "Ana", PasswordHash: hash}

	t.Run("Success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)
		tokens := user.NewMockTokenIssuer(ctrl)

		repo.EXPECT().GetUserByEmail(gomock.Any(), "ana@example.com").Return(stored, nil)
		tokens.EXPECT().
			Issue(auth.Identity{UserID: stored.ID, Email: stored.Email, DisplayName: "Ana"}).
			Return("token", nil)

		got, err := user.NewService(repo, tokens).Login(context.Background(), "ANA@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, "token", got.Token)
	})

	t.Run("UnknownEmailAndWrongPasswordLookAlike", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)
		tokens := user.NewMockTokenIssuer(ctrl)

		repo.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").Return(nil, user.ErrNotFound)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "ana@example.com").Return(stored, nil)

		svc := user.NewService(repo, tokens)

		_, errUnknown := svc.Login(context.Background(), "ghost@example.com", "secret1")
		_, errWrong := svc.Login(context.Background(), "ana@example.com", "wrong-pass")

		assert.ErrorIs(t, errUnknown, user.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, user.ErrInvalidCredentials)
		assert.Equal(t, errUnknown.Error(), errWrong.Error())
	})

	t.Run("OverlongPasswordIsInvalidCredentials", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().GetUserByEmail(gomock.Any(), "ana@example.com").Return(stored, nil)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").Return(nil, user.ErrNotFound)

		svc := user.NewService(repo, user.NewMockTokenIssuer(ctrl))
		long := strings.Repeat("x", 80)

		_, err := svc.Login(context.Background(), "ana@example.com", long)
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)

		_, err = svc.Login(context.Background(), "ghost@example.com", long)
		assert.ErrorIs(t, err, user.ErrInvalidCredentials)
	})

	t.Run("UnknownEmailPaysForComparison", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").Return(nil, user.ErrNotFound).Times(2)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "ana@example.com").Return(stored, nil)

		svc := user.NewService(repo, user.NewMockTokenIssuer(ctrl))

		_, _ = svc.Login(context.Background(), "ghost@example.com", "warmup")

		start := time.Now()
		_, _ = svc.Login(context.Background(), "ana@example.com", "wrong-pass")
		wrongPassword := time.Since(start)

		start = time.Now()
		_, _ = svc.Login(context.Background(), "ghost@example.com", "wrong-pass")
		unknownEmail := time.Since(start)

		assert.Greater(t, unknownEmail, wrongPassword/4)
	})

	t.Run("StoreError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := user.NewMockRepository(ctrl)

		repo.EXPECT().GetUserByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("db down"))

		_, err := user.NewService(repo, user.NewMockTokenIssuer(ctrl)).Login(context.Background(), "ana@example.com", "x")
		assert.EqualError(t, err, "db down")
	})
}

func TestService_Me(t *testing.T) {
	id := uuid.New()

	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)
	repo.EXPECT().GetUser(gomock.Any(), id).Return(&user.User{ID: id, Email: "ana@example.com"}, nil)
	repo.EXPECT().GetUser(gomock.Any(), gomock.Not(id)).Return(nil, user.ErrNotFound)

	svc := user.NewService(repo, user.NewMockTokenIssuer(ctrl))

	got, err := svc.Me(context.Background(), auth.Identity{UserID: id})
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = svc.Me(context.Background(), auth.Identity{UserID: uuid.New()})
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}
