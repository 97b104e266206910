package importer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/importer"
	"github.com/smartledger/smartledger/internal/transaction"
)

const sample = "Date,Type,Category,Amount,Description\n" +
	"2024-03-01,income,Salary,3000,March pay\n" +
	"2024-03-05,expense,Food,45.50,Pizza\n"

func TestService_Import(t *testing.T) {
	owner := uuid.New()

	tests := []struct {
		name      string
		input     string
		setupMock func(m *importer.MockBatchCreator)
		wantCount int
		wantErr   bool
	}{
		{
			name:  "Success",
			input: sample,
			setupMock: func(m *importer.MockBatchCreator) {
				m.EXPECT().
					CreateBatch(gomock.Any(), owner, gomock.Len(2)).
					DoAndReturn(func(_ context.Context, _ uuid.UUID, params []transaction.CreateParams) ([]*transaction.Transaction, error) {
						return make([]*transaction.Transaction, len(params)), nil
					})
			},
			wantCount: 2,
		},
		{
			name:      "HeaderOnlySkipsStore",
			input:     "Date,Type,Category,Amount\n",
			wantCount: 0,
		},
		{
			name:    "InvalidRowWritesNothing",
			input:   sample + "2024-03-06,expense,Food,-1,Refund\n",
			wantErr: true,
		},
		{
			name:  "StoreFailure",
			input: sample,
			setupMock: func(m *importer.MockBatchCreator) {
				m.EXPECT().CreateBatch(gomock.Any(), owner, gomock.Any()).Return(nil, errors.New("commit failed"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			mockTxs := importer.NewMockBatchCreator(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(mockTxs)
			}

			got, err := importer.NewService(mockTxs).Import(context.Background(), owner, strings.NewReader(tt.input))

			if tt.wantErr {
				require.Error(t, err)
				assert.Zero(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, got)
		})
	}
}

func TestService_Import_InvalidRowNamesLine(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := importer.NewService(importer.NewMockBatchCreator(ctrl)).
		Import(context.Background(), uuid.New(), strings.NewReader(sample+"2024-13-01,expense,Food,1,x\n"))

	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	assert.Equal(t, "line 4: date must be formatted YYYY-MM-DD", apperr.Message(err))
}
