package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/budget"
	"github.com/smartledger/smartledger/internal/dashboard"
	"github.com/smartledger/smartledger/internal/export"
	ledgerHttp "github.com/smartledger/smartledger/internal/http"
	accountHandler "github.com/smartledger/smartledger/internal/http/account"
	budgetHandler "github.com/smartledger/smartledger/internal/http/budget"
	dashboardHandler "github.com/smartledger/smartledger/internal/http/dashboard"
	exportHandler "github.com/smartledger/smartledger/internal/http/export"
	importHandler "github.com/smartledger/smartledger/internal/http/importcsv"
	insightHandler "github.com/smartledger/smartledger/internal/http/insight"
	matchingHandler "github.com/smartledger/smartledger/internal/http/matching"
	txHandler "github.com/smartledger/smartledger/internal/http/transaction"
	"github.com/smartledger/smartledger/internal/importer"
	"github.com/smartledger/smartledger/internal/insight"
	"github.com/smartledger/smartledger/internal/matching"
	"github.com/smartledger/smartledger/internal/transaction"
	"github.com/smartledger/smartledger/internal/user"
)

type fixture struct {
	txs     *transaction.MockRepository
	budgets *budget.MockRepository
	rules   *matching.MockRepository
	users   *user.MockRepository
	tokens  *auth.JWT
	router  http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := &fixture{
		txs:     transaction.NewMockRepository(ctrl),
		budgets: budget.NewMockRepository(ctrl),
		rules:   matching.NewMockRepository(ctrl),
		users:   user.NewMockRepository(ctrl),
		tokens:  auth.NewJWT("test-secret", time.Hour),
	}

	var (
		transactionService = transaction.NewService(f.txs)
		budgetService      = budget.NewService(f.budgets)
		matchingService    = matching.NewService(f.rules)
		insightService     = insight.NewService(
			insight.NewMockRepository(ctrl),
			insight.Disabled{},
			transactionService,
			budgetService,
			matchingService,
			nil,
		)
	)

	f.router = ledgerHttp.New(
		ledgerHttp.Options{ServiceName: "SmartLedger", AllowedOrigins: []string{"*"}},
		f.tokens,
		ledgerHttp.Handlers{
			Accounts:     accountHandler.NewHandler(user.NewService(f.users, f.tokens)),
			Transactions: txHandler.NewHandler(transactionService),
			Import:       importHandler.NewHandler(importer.NewService(transactionService)),
			Export:       exportHandler.NewHandler(export.NewService(transactionService)),
			Budgets:      budgetHandler.NewHandler(budgetService),
			Dashboard:    dashboardHandler.NewHandler(dashboard.NewService(transactionService, nil)),
			Insights:     insightHandler.NewHandler(insightService),
			Rules:        matchingHandler.NewHandler(matchingService),
		},
	)

	return f
}

func (f *fixture) do(t *testing.T, owner uuid.UUID, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	if owner != uuid.Nil {
		token, err := f.tokens.Issue(auth.Identity{UserID: owner, Email: "ana@example.com"})
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestRouter_Health(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, uuid.Nil, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"SmartLedger"}`, rec.Body.String())
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{
		"/api/transactions",
		"/api/budgets",
		"/api/dashboard",
		"/api/categories",
		"/api/ai/insights",
		"/api/auth/me",
		"/api/transactions/export/csv",
	} {
		t.Run(target, func(t *testing.T) {
			rec := f.do(t, uuid.Nil, http.MethodGet, target, "")

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "unauthorized", decodeError(t, rec).Error.Kind)
		})
	}
}

func TestRouter_CreateTransactionStampsOwner(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	intruder := uuid.New()

	f.txs.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
			assert.Equal(t, owner, tx.UserID)
			tx.ID = uuid.New()
			tx.CreatedAt = time.Now()
			return nil
		})

	body := `{"user_id":"` + intruder.String() + `","amount":45.5,"type":"Expense",` +
		`"category":"Food","description":"Pizza","date":"2024-03-05"}`

	rec := f.do(t, owner, http.MethodPost, "/api/transactions", body)

	require.Equal(t, http.StatusCreated, rec.Code)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, owner.String(), got["user_id"])
	assert.Equal(t, "expense", got["type"])
	assert.Equal(t, "2024-03-05", got["date"])
	assert.Contains(t, rec.Body.String(), `"amount":45.50`)
}

func TestRouter_ForeignTransactionIsNotFound(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	id := uuid.New()

	f.txs.EXPECT().GetTransaction(gomock.Any(), owner, id).Return(nil, transaction.ErrNotFound)

	rec := f.do(t, owner, http.MethodGet, "/api/transactions/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Error.Kind)
}

func TestRouter_MalformedIDIsNotFound(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, uuid.New(), http.MethodDelete, "/api/transactions/not-a-uuid", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_InvalidTransaction(t *testing.T) {
	f := newFixture(t)

	body := `{"amount":0,"type":"expense","category":"Food","date":"2024-03-05"}`
	rec := f.do(t, uuid.New(), http.MethodPost, "/api/transactions", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", decodeError(t, rec).Error.Kind)
}

func TestRouter_BudgetConflict(t *testing.T) {
	f := newFixture(t)

	f.budgets.EXPECT().CreateBudget(gomock.Any(), gomock.Any()).Return(budget.ErrConflict)

	body := `{"category":"Food","limit":300,"month":3,"year":2024}`
	rec := f.do(t, uuid.New(), http.MethodPost, "/api/budgets", body)

	assert.Equal(t, http.StatusConflict, rec.Code)

	got := decodeError(t, rec)
	assert.Equal(t, "conflict", got.Error.Kind)
	assert.Equal(t, "budget already exists for this category and period", got.Error.Message)
}

func TestRouter_ExportIsNotShadowedByID(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	f.txs.EXPECT().
		ListTransactions(gomock.Any(), owner, transaction.ListFilter{Type: new(transaction.TypeExpense)}).
		Return([]*transaction.Transaction{{
			UserID:      owner,
			Amount:      decimal.RequireFromString("45.50"),
			Type:        transaction.TypeExpense,
			Category:    "Food",
			Description: "Pizza",
			Date:        time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		}}, nil)

	rec := f.do(t, owner, http.MethodGet, "/api/transactions/export/csv?type=expense", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"transactions_")
	assert.Equal(t, "Date,Type,Category,Amount,Description\n2024-03-05,expense,Food,45.5,Pizza\n", rec.Body.String())
}

func TestRouter_ImportRawBody(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()
	ctrl := gomock.NewController(t)
	itx := transaction.NewMockImportTx(ctrl)

	f.txs.EXPECT().BeginImport(gomock.Any(), owner).Return(itx, nil)
	itx.EXPECT().
		CreateTransactions(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, txs []*transaction.Transaction) error {
			require.Len(t, txs, 2)
			for _, tx := range txs {
				assert.Equal(t, owner, tx.UserID)
			}
			return nil
		})
	itx.EXPECT().Commit().Return(nil)
	itx.EXPECT().Rollback().Return(nil).AnyTimes()

	csv := "Date,Type,Category,Amount,Description\n" +
		"2024-03-01,income,Salary,3000.00,March pay\n" +
		"2024-03-05,expense,Food,45.50,Pizza\n"

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import/csv", strings.NewReader(csv))
	req.Header.Set("Content-Type", "text/csv")

	token, err := f.tokens.Issue(auth.Identity{UserID: owner})
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"imported":2,"message":"Imported 2 transactions"}`, rec.Body.String())
}

func TestRouter_Categories(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	f.txs.EXPECT().ListCategories(gomock.Any(), owner).Return([]string{"Rent", "Food"}, nil)

	rec := f.do(t, owner, http.MethodGet, "/api/categories", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories":["Food","Rent"]}`, rec.Body.String())
}

func TestRouter_CategorizePrefersRule(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	f.rules.EXPECT().FindCategory(gomock.Any(), owner, "NETFLIX.COM").Return("Entertainment", nil)

	rec := f.do(t, owner, http.MethodPost, "/api/ai/categorize-transaction?description=NETFLIX.COM&amount=15.99", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"category":"Entertainment","confidence":"high","source":"rule"}`, rec.Body.String())
}

func TestRouter_RegisterThenMe(t *testing.T) {
	f := newFixture(t)
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	var stored *user.User

	f.users.EXPECT().
		CreateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *user.User) error {
			assert.Equal(t, "ana@example.com", u.Email)
			assert.NotEqual(t, "secret1", u.PasswordHash)
			u.ID = uuid.New()
			u.CreatedAt = created
			stored = u
			return nil
		})

	rec := f.do(t, uuid.Nil, http.MethodPost, "/api/auth/register",
		`{"email":" Ana@Example.com ","password":"secret1","full_name":"Ana Silva"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var session struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			ID    uuid.UUID `json:"id"`
			Email string    `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "bearer", session.TokenType)
	assert.Equal(t, stored.ID, session.User.ID)
	assert.NotContains(t, rec.Body.String(), "password")

	f.users.EXPECT().GetUser(gomock.Any(), stored.ID).Return(stored, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	me := httptest.NewRecorder()
	f.router.ServeHTTP(me, req)

	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"full_name":"Ana Silva"`)
}

func TestRouter_LoginWrongPassword(t *testing.T) {
	f := newFixture(t)

	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)

	f.users.EXPECT().
		GetUserByEmail(gomock.Any(), "ana@example.com").
		Return(&user.User{ID: uuid.New(), Email: "ana@example.com", PasswordHash: hash}, nil)

	rec := f.do(t, uuid.Nil, http.MethodPost, "/api/auth/login", `{"email":"ana@example.com","password":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid email or password", decodeError(t, rec).Error.Message)
}

func TestRouter_EmptyDashboard(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	f.txs.EXPECT().ListTransactions(gomock.Any(), owner, transaction.ListFilter{}).Return(nil, nil)

	rec := f.do(t, owner, http.MethodGet, "/api/dashboard", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"total_balance": 0.00,
		"monthly_income": 0.00,
		"monthly_expenses": 0.00,
		"spending_by_category": {},
		"recent_transactions": []
	}`, rec.Body.String())
}

func TestRouter_AnomaliesWithoutModel(t *testing.T) {
	f := newFixture(t)
	owner := uuid.New()

	f.txs.EXPECT().ListTransactions(gomock.Any(), owner, gomock.Any()).Return(nil, nil)

	rec := f.do(t, owner, http.MethodPost, "/api/ai/expense-anomaly-detection", "")

	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Anomalies []json.RawMessage `json:"anomalies"`
		Message   string            `json:"message"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Empty(t, got.Anomalies)
	assert.NotEmpty(t, got.Message)
}
