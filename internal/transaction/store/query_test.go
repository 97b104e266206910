package store

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/smartledger/smartledger/internal/transaction"
)

func TestBuildListQuery_OwnerClauseAlwaysPresent(t *testing.T) {
	owner := uuid.New()
	category := "Food"
	search := "piz"
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	filters := map[string]transaction.ListFilter{
		"Empty":    {},
		"Category": {Category: &category},
		"Type":     {Type: new(transaction.TypeIncome)},
		"Search":   {Search: &search},
		"All": {
			Category:  &category,
			Type:      new(transaction.TypeExpense),
			Search:    &search,
			StartDate: &start,
			EndDate:   &end,
		},
	}

	for name, filter := range filters {
		t.Run(name, func(t *testing.T) {
			query, args := buildListQuery(owner, filter)

			assert.Contains(t, query, "WHERE user_id = $1")
			assert.NotContains(t, strings.ToUpper(query), " OR ")
			assert.Equal(t, owner, args[0])
			assert.Equal(t, strings.Count(query, "$"), len(args))
			assert.True(t, strings.HasSuffix(query, "ORDER BY date DESC, created_at DESC"))
		})
	}
}

func TestBuildListQuery_SearchIsEscapedSubstring(t *testing.T) {
	search := "50%_off"

	query, args := buildListQuery(uuid.New(), transaction.ListFilter{Search: &search})

	assert.Contains(t, query, `description ILIKE '%' || $2 || '%'`)
	assert.Equal(t, `50\%\_off`, args[1])
}

func TestBuildListQuery_EmptySearchIgnored(t *testing.T) {
	empty := ""

	query, args := buildListQuery(uuid.New(), transaction.ListFilter{Search: &empty})

	assert.NotContains(t, query, "ILIKE")
	assert.Len(t, args, 1)
}
