package store_test

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartledger/smartledger/internal/budget"
	"github.com/smartledger/smartledger/internal/budget/store"
	"github.com/smartledger/smartledger/internal/database"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.New(context.Background(), url, database.Pool{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))

	return db
}

func createUser(t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()

	var id uuid.UUID

	err := db.QueryRow(
		`INSERT INTO users (email, full_name, password_hash) VALUES ($1, 'Test', 'x') RETURNING id`,
		uuid.NewString()+"@example.com",
	).Scan(&id)
	require.NoError(t, err)

	return id
}

func newBudget(owner uuid.UUID, category string, month int) *budget.Budget {
	return &budget.Budget{
		UserID:   owner,
		Category: category,
		Limit:    decimal.RequireFromString("250.00"),
		Month:    month,
		Year:     2024,
	}
}

func TestStore_ConcurrentCreateYieldsOneBudget(t *testing.T) {
	db := openTestDB(t)
	s := store.New(db)
	owner := createUser(t, db)

	const attempts = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)

	for range attempts {
		wg.Go(func() {
			err := s.CreateBudget(context.Background(), newBudget(owner, "Food", 3))

			mu.Lock()
			defer mu.Unlock()

			switch {
			case err == nil:
				created++
			case assert.ErrorIs(t, err, budget.ErrConflict):
				conflicts++
			}
		})
	}

	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, attempts-1, conflicts)
}

func TestStore_UpdateOntoExistingKeyConflicts(t *testing.T) {
	db := openTestDB(t)
	s := store.New(db)
	ctx := context.Background()
	owner := createUser(t, db)

	march := newBudget(owner, "Food", 3)
	april := newBudget(owner, "Food", 4)
	require.NoError(t, s.CreateBudget(ctx, march))
	require.NoError(t, s.CreateBudget(ctx, april))

	april.Month = 3
	assert.ErrorIs(t, s.UpdateBudget(ctx, april), budget.ErrConflict)

	month := 4
	got, err := s.ListBudgets(ctx, owner, budget.ListFilter{Month: &month})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, april.ID, got[0].ID)
}

func TestStore_OwnerIsolation(t *testing.T) {
	db := openTestDB(t)
	s := store.New(db)
	ctx := context.Background()

	alice, bob := createUser(t, db), createUser(t, db)

	bobs := newBudget(bob, "Rent", 3)
	require.NoError(t, s.CreateBudget(ctx, bobs))

	// The same key is free for a different owner.
	require.NoError(t, s.CreateBudget(ctx, newBudget(alice, "Rent", 3)))

	got, err := s.ListBudgets(ctx, alice, budget.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, alice, got[0].UserID)

	hijack := *bobs
	hijack.UserID = alice
	hijack.Limit = decimal.RequireFromString("1")
	assert.ErrorIs(t, s.UpdateBudget(ctx, &hijack), budget.ErrNotFound)
	assert.ErrorIs(t, s.DeleteBudget(ctx, alice, bobs.ID), budget.ErrNotFound)
}
