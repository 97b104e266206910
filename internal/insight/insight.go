// Package insight produces best-effort financial advice from a user's ledger
// with a text generation model. Model failures degrade the advice text and
// never fail the caller.
package insight

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/apperr"
)

const (
	// TTL is how long a stored insight stays listed.
	TTL = 7 * 24 * time.Hour
	// ListLimit caps List results.
	ListLimit = 10
	// HistoryLimit is the number of recent transactions summarized for Generate.
	HistoryLimit = 100

	ConfidenceHigh = "high"
	ConfidenceLow  = "low"

	TrendIncreasing = "increasing"
	TrendStable     = "stable"

	SourceRule  = "rule"
	SourceModel = "model"
)

const (
	fallbackInsight     = "Insights are unavailable right now. Keep tracking your spending and check back later."
	fallbackPrediction  = "A prediction is unavailable right now."
	fallbackGoals       = "Goal suggestions are unavailable right now. A common target is saving 20% of your income."
	fallbackExplanation = "A detailed explanation is unavailable right now. The recommendation adds a 10% buffer to your average monthly spending."
	fallbackAnalysis    = "A detailed analysis is unavailable right now. Review the listed transactions to confirm they are expected."

	msgNoBudgetHistory  = "No historical data for %s. Start tracking to get recommendations."
	msgNotEnoughHistory = "Not enough transaction history for anomaly detection."
	msgNoAnomalies      = "No unusual spending detected. Your expenses are consistent!"
)

// Types are the accepted insight types.
var Types = []string{"spending", "budget", "savings", "general"}

// ModelCategories are the answers accepted from the model when categorizing.
var ModelCategories = []string{
	"Food", "Rent", "Transport", "Entertainment", "Utilities", "Healthcare",
	"Shopping", "Salary", "Investment", "Education", "Travel", "Other",
}

var ErrDisabled = apperr.New(apperr.KindUpstreamFailure, "ai features are not configured")

type Insight struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Type      string
	Text      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Categorization struct {
	Category   string
	Confidence string
	Source     string
}

type MonthTotal struct {
	Month string // YYYY-MM
	Total decimal.Decimal
}

type Prediction struct {
	Text              string
	HistoricalAverage decimal.Decimal
	Trend             string
	Months            []MonthTotal
}

type Goals struct {
	Text                    string
	CurrentSavingsRate      decimal.Decimal
	RecommendedSavingsRate  decimal.Decimal
	PotentialMonthlySavings decimal.Decimal
}

type BudgetRecommendation struct {
	Category       string
	Recommended    decimal.Decimal
	CurrentAverage decimal.Decimal
	Explanation    string
	Message        string
}

type Anomaly struct {
	Date        time.Time
	Amount      decimal.Decimal
	Category    string
	Description string
	// Deviation is the percentage by which Amount exceeds the average expense.
	Deviation decimal.Decimal
}

type AnomalyReport struct {
	Anomalies      []Anomaly
	Analysis       string
	Message        string
	AverageExpense decimal.Decimal
}
