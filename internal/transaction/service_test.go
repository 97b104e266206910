package transaction_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/transaction"
)

func validParams() transaction.CreateParams {
	return transaction.CreateParams{
		Amount:      decimal.RequireFromString("45.50"),
		Type:        transaction.TypeExpense,
		Category:    "Food",
		Description: "Pizza night",
		Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestService_Create(t *testing.T) {
	owner := uuid.New()

	type args struct {
		params transaction.CreateParams
	}

	type testCase struct {
		name      string
		args      args
		setupMock func(m *transaction.MockRepository)
		wantErr   error
		wantKind  apperr.Kind
	}

	tests := []testCase{
		{
			name: "Success",
			args: args{params: validParams()},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						assert.Equal(t, owner, tx.UserID)
						tx.ID = uuid.New()
						tx.CreatedAt = time.Now()
						return nil
					})
			},
		},
		{
			name: "ZeroAmount",
			args: args{params: func() transaction.CreateParams {
				p := validParams()
				p.Amount = decimal.Zero
				return p
			}()},
			wantErr:  transaction.ErrInvalidAmount,
			wantKind: apperr.KindInvalidInput,
		},
		{
			name: "NegativeAmount",
			args: args{params: func() transaction.CreateParams {
				p := validParams()
				p.Amount = decimal.NewFromInt(-5)
				return p
			}()},
			wantErr:  transaction.ErrInvalidAmount,
			wantKind: apperr.KindInvalidInput,
		},
		{
			name: "SubCentAmount",
			args: args{params: func() transaction.CreateParams {
				p := validParams()
				p.Amount = decimal.RequireFromString("0.001")
				return p
			}()},
			wantErr:  transaction.ErrAmountPrecision,
			wantKind: apperr.KindInvalidInput,
		},
		{
			name: "TrailingZerosAccepted",
			args: args{params: func() transaction.CreateParams {
				p := validParams()
				p.Amount = decimal.RequireFromString("45.500")
				return p
			}()},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
						tx.ID = uuid.New()
						return nil
					})
			},
		},
		{
			name: "DescriptionNotUTF8",
			args: args{params: func() transaction.CreateParams {
				p := validParams()
				p.Description = "Caf\xe9"
				return p
			}()},
			wantKind: apperr.KindInvalidInput,
		},
		{
			name: "UnknownType",
			args: args{params: func() transaction.CreateParams {
				p := validParams()
				p.Type = "transfer"
				return p
			}()},
			wantErr:  transaction.ErrInvalidType,
			wantKind: apperr.KindInvalidInput,
		},
		{
			name: "MissingDate",
			args: args{params: func() transaction.CreateParams {
				p := validParams()
				p.Date = time.Time{}
				return p
			}()},
			wantErr:  transaction.ErrInvalidDate,
			wantKind: apperr.KindInvalidInput,
		},
		{
			name: "BlankCategory",
			args: args{params: func() transaction.CreateParams {
				p := validParams()
				p.Category = "   "
				return p
			}()},
			wantKind: apperr.KindInvalidInput,
		},
		{
			name: "RepoError",
			args: args{params: validParams()},
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					CreateTransaction(gomock.Any(), gomock.Any()).
					Return(errors.New("db error"))
			},
			wantKind: apperr.KindUpstreamFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := transaction.NewService(repo)
			got, err := svc.Create(context.Background(), owner, tt.args.params)

			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))

				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, owner, got.UserID)
			assert.Equal(t, "Food", got.Category)
		})
	}
}

func TestService_Create_NormalizesDate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).Return(nil)

	params := validParams()
	params.Date = time.Date(2024, 3, 5, 18, 30, 0, 0, time.FixedZone("X", 3600))
	params.Category = "  Food "

	got, err := transaction.NewService(repo).Create(context.Background(), uuid.New(), params)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), got.Date)
	assert.Equal(t, "Food", got.Category)
}

func TestService_List(t *testing.T) {
	owner := uuid.New()
	search := "piz"
	filter := transaction.ListFilter{Search: &search, Type: new(transaction.TypeExpense)}

	type testCase struct {
		name      string
		setupMock func(m *transaction.MockRepository)
		wantLen   int
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), owner, filter).
					Return([]*transaction.Transaction{
						{ID: uuid.New(), UserID: owner},
						{ID: uuid.New(), UserID: owner},
					}, nil)
			},
			wantLen: 2,
		},
		{
			name: "Error",
			setupMock: func(m *transaction.MockRepository) {
				m.EXPECT().
					ListTransactions(gomock.Any(), owner, filter).
					Return(nil, errors.New("list error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			tt.setupMock(repo)

			got, err := transaction.NewService(repo).List(context.Background(), owner, filter)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestService_Update(t *testing.T) {
	owner := uuid.New()
	id := uuid.New()

	t.Run("ReplacesAllFields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().
			UpdateTransaction(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
				assert.Equal(t, id, tx.ID)
				assert.Equal(t, owner, tx.UserID)
				assert.Equal(t, "Rent", tx.Category)
				assert.Equal(t, transaction.TypeExpense, tx.Type)
				assert.True(t, decimal.NewFromInt(1200).Equal(tx.Amount))
				return nil
			})

		params := validParams()
		params.Category = "Rent"
		params.Amount = decimal.NewFromInt(1200)

		got, err := transaction.NewService(repo).Update(context.Background(), owner, id, params)
		require.NoError(t, err)
		assert.Equal(t, id, got.ID)
	})

	t.Run("NotOwned", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)
		repo.EXPECT().UpdateTransaction(gomock.Any(), gomock.Any()).Return(transaction.ErrNotFound)

		_, err := transaction.NewService(repo).Update(context.Background(), owner, id, validParams())
		assert.ErrorIs(t, err, transaction.ErrNotFound)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("InvalidSkipsStore", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		repo := transaction.NewMockRepository(ctrl)

		params := validParams()
		params.Amount = decimal.Zero

		_, err := transaction.NewService(repo).Update(context.Background(), owner, id, params)
		assert.ErrorIs(t, err, transaction.ErrInvalidAmount)
	})
}

func TestService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner, id := uuid.New(), uuid.New()

	repo := transaction.NewMockRepository(ctrl)
	repo.EXPECT().DeleteTransaction(gomock.Any(), owner, id).Return(transaction.ErrNotFound)

	err := transaction.NewService(repo).Delete(context.Background(), owner, id)
	assert.ErrorIs(t, err, transaction.ErrNotFound)
}

func TestService_Categories(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name   string
		stored []string
		want   []string
	}{
		{name: "Defaults", stored: nil, want: transaction.DefaultCategories},
		{name: "Distinct", stored: []string{"Rent", "Food", "Rent"}, want: []string{"Food", "Rent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := transaction.NewMockRepository(ctrl)
			repo.EXPECT().ListCategories(gomock.Any(), owner).Return(tt.stored, nil)

			got, err := transaction.NewService(repo).Categories(context.Background(), owner)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_CreateBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	owner := uuid.New()
	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)
	svc := transaction.NewService(repo)

	params := []transaction.CreateParams{validParams(), validParams()}

	repo.EXPECT().BeginImport(gomock.Any(), owner).Return(itx, nil)
	itx.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Len(2)).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			for _, tx := range txs {
				assert.Equal(t, owner, tx.UserID)
			}
			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil)

	txs, err := svc.CreateBatch(context.Background(), owner, params)
	require.NoError(t, err)
	assert.Len(t, txs, 2)
}

func TestService_CreateBatch_InvalidItemWritesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	svc := transaction.NewService(repo)

	bad := validParams()
	bad.Type = "refund"

	_, err := svc.CreateBatch(context.Background(), uuid.New(), []transaction.CreateParams{validParams(), bad})
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "item 2")
}

func TestService_CreateBatch_CommitFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := transaction.NewMockRepository(ctrl)
	itx := transaction.NewMockImportTx(ctrl)

	repo.EXPECT().BeginImport(gomock.Any(), gomock.Any()).Return(itx, nil)
	itx.EXPECT().CreateTransactions(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))
	itx.EXPECT().Rollback().Return(nil)

	_, err := transaction.NewService(repo).CreateBatch(context.Background(), uuid.New(), []transaction.CreateParams{validParams()})
	assert.Error(t, err)
}
