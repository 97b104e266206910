package dashboard

import (
	"cmp"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/transaction"
)

// RecentLimit is the number of transactions shown in Summary.Recent.
const RecentLimit = 5

type Summary struct {
	TotalBalance       decimal.Decimal
	MonthlyIncome      decimal.Decimal
	MonthlyExpenses    decimal.Decimal
	SpendingByCategory map[string]decimal.Decimal
	Recent             []*transaction.Transaction
}

// MonthWindow returns the first and last day of the calendar month containing now.
func MonthWindow(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	return start, end
}

// Summarize aggregates txs relative to the month containing now. Sums are
// accumulated exactly and rounded to cents only in the result.
func Summarize(txs []*transaction.Transaction, now time.Time) Summary {
	start, end := MonthWindow(now)

	var income, expenses, monthIncome, monthExpenses decimal.Decimal

	byCategory := map[string]decimal.Decimal{}

	for _, tx := range txs {
		day := time.Date(tx.Date.Year(), tx.Date.Month(), tx.Date.Day(), 0, 0, 0, 0, time.UTC)
		inMonth := !day.Before(start) && !day.After(end)

		switch tx.Type {
		case transaction.TypeIncome:
			income = income.Add(tx.Amount)

			if inMonth {
				monthIncome = monthIncome.Add(tx.Amount)
			}
		case transaction.TypeExpense:
			expenses = expenses.Add(tx.Amount)

			if inMonth {
				monthExpenses = monthExpenses.Add(tx.Amount)
				byCategory[tx.Category] = byCategory[tx.Category].Add(tx.Amount)
			}
		}
	}

	for category, total := range byCategory {
		byCategory[category] = total.Round(2)
	}

	return Summary{
		TotalBalance:       income.Sub(expenses).Round(2),
		MonthlyIncome:      monthIncome.Round(2),
		MonthlyExpenses:    monthExpenses.Round(2),
		SpendingByCategory: byCategory,
		Recent:             recent(txs),
	}
}

func recent(txs []*transaction.Transaction) []*transaction.Transaction {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b *transaction.Transaction) int {
		return cmp.Compare(b.Date.Unix(), a.Date.Unix())
	})

	if len(sorted) > RecentLimit {
		sorted = sorted[:RecentLimit]
	}

	if sorted == nil {
		sorted = []*transaction.Transaction{}
	}

	return sorted
}
