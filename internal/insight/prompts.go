package insight

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/transaction"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func insightPrompt(kind string, txs []*transaction.Transaction, budgetCount int) string {
	income, expenses := totals(txs)

	var b strings.Builder

	b.WriteString("You are a financial advisor AI. Analyze the following user financial data and provide a personalized insight.\n\n")
	fmt.Fprintf(&b, "Insight Type: %s\n", kind)
	fmt.Fprintf(&b, "Total Income: %s\n", money(income))
	fmt.Fprintf(&b, "Total Expenses: %s\n", money(expenses))
	fmt.Fprintf(&b, "Net Savings: %s\n\n", money(income.Sub(expenses)))
	b.WriteString("Spending by Category:\n")
	writeCategories(&b, categoryTotals(txs))
	fmt.Fprintf(&b, "\nNumber of Budgets Set: %d\n\n", budgetCount)
	fmt.Fprintf(&b, "Provide a concise, actionable insight (2-3 sentences) based on the data above. Focus on %s specifically.", kind)

	return b.String()
}

func categorizePrompt(description string, amount decimal.Decimal) string {
	return fmt.Sprintf(`Categorize this transaction into ONE of these categories:
%s

Transaction: %q
Amount: %s

Return ONLY the category name, nothing else.`, strings.Join(ModelCategories, ", "), description, money(amount))
}

func predictPrompt(months []MonthTotal, txs []*transaction.Transaction) string {
	var b strings.Builder

	b.WriteString("As a financial analyst AI, predict next month's spending based on this data:\n\n")
	b.WriteString("Historical Monthly Spending:\n")

	for _, m := range months {
		fmt.Fprintf(&b, "%s: %s\n", m.Month, money(m.Total))
	}

	counts := map[string]int{}
	for _, tx := range txs {
		counts[tx.Category]++
	}

	b.WriteString("\nCategory-wise spending patterns:\n")

	byCategory := categoryTotals(txs)
	for _, name := range slices.Sorted(maps.Keys(byCategory)) {
		fmt.Fprintf(&b, "%s: %s across %d transactions\n", name, money(byCategory[name]), counts[name])
	}

	b.WriteString("\nProvide:\n1. Predicted total spending for next month (just the number)\n" +
		"2. Top 3 categories to watch\n3. One money-saving tip\n\n" +
		"Format: Just numbers and short phrases, be concise.")

	return b.String()
}

func goalsPrompt(income, expenses, savingsRate decimal.Decimal, largest string, largestAmount decimal.Decimal, budgetCount int) string {
	return fmt.Sprintf(`As a certified financial planner, suggest 3 SMART financial goals for this user:

Financial Profile:
- Total Income: %s
- Total Expenses: %s
- Current Savings Rate: %s%%
- Largest Expense Category: %s (%s)
- Active Budgets: %d

Provide 3 specific, measurable, achievable goals with timeframes. Format each as:
Goal: [goal name]
Target: [specific number/percentage]
Timeline: [timeframe]
Action: [one specific action step]

Keep it concise and actionable.`,
		money(income), money(expenses), savingsRate.StringFixed(1), largest, money(largestAmount), budgetCount)
}

func recommendPrompt(category string, avg, highest, lowest, monthlyIncome decimal.Decimal) string {
	return fmt.Sprintf(`As a financial advisor, recommend an optimal monthly budget for the %s category:

Historical Data (last 3 months):
- Average monthly spending: %s
- Highest month: %s
- Lowest month: %s
- User's monthly income: %s

Recommend a realistic budget amount and explain why. Be concise (2-3 sentences).`,
		category, money(avg), money(highest), money(lowest), money(monthlyIncome))
}

func anomalyPrompt(avg decimal.Decimal, txs []*transaction.Transaction, anomalies []Anomaly) string {
	counts := map[string]int{}
	for _, tx := range txs {
		counts[tx.Category]++
	}

	frequencies := make([]string, 0, len(counts))
	for _, name := range slices.Sorted(maps.Keys(counts)) {
		frequencies = append(frequencies, fmt.Sprintf("%s (%dx)", name, counts[name]))
	}

	var b strings.Builder

	b.WriteString("As a fraud detection AI, analyze these potentially unusual transactions:\n\n")
	fmt.Fprintf(&b, "Average transaction: %s\n", money(avg))
	fmt.Fprintf(&b, "Typical categories and frequencies: %s\n\n", strings.Join(frequencies, ", "))
	b.WriteString("Unusual transactions (>2x average):\n")

	for _, a := range anomalies {
		fmt.Fprintf(&b, "- %s: %s in %s", a.Date.Format(time.DateOnly), money(a.Amount), a.Category)

		if a.Description != "" {
			fmt.Fprintf(&b, " (%s)", a.Description)
		}

		b.WriteString("\n")
	}

	b.WriteString("\nAre these legitimate unusual expenses or potential concerns? Provide brief analysis.")

	return b.String()
}

func writeCategories(b *strings.Builder, byCategory map[string]decimal.Decimal) {
	for _, name := range slices.Sorted(maps.Keys(byCategory)) {
		fmt.Fprintf(b, "- %s: %s\n", name, money(byCategory[name]))
	}
}
