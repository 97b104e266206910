package insight

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/budget"
	"github.com/smartledger/smartledger/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=insight
type Repository interface {
	CreateInsight(ctx context.Context, in *Insight) error
	ListInsights(ctx context.Context, owner uuid.UUID, now time.Time, limit int) ([]*Insight, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type TransactionLister interface {
	List(ctx context.Context, owner uuid.UUID, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

type BudgetLister interface {
	List(ctx context.Context, owner uuid.UUID, filter budget.ListFilter) ([]*budget.Budget, error)
}

type RuleSuggester interface {
	Suggest(ctx context.Context, owner uuid.UUID, description string) (string, error)
}

type Service struct {
	repo    Repository
	model   Generator
	txs     TransactionLister
	budgets BudgetLister
	rules   RuleSuggester
	now     func() time.Time
}

func NewService(
	repo Repository,
	model Generator,
	txs TransactionLister,
	budgets BudgetLister,
	rules RuleSuggester,
	now func() time.Time,
) *Service {
	if now == nil {
		now = time.Now
	}

	return &Service{
		repo:    repo,
		model:   model,
		txs:     txs,
		budgets: budgets,
		rules:   rules,
		now:     now,
	}
}

// Generate asks the model for an insight of the given type over owner's
// recent history and stores it. When the model fails a generic insight is
// returned and nothing is stored.
func (s *Service) Generate(ctx context.Context, owner uuid.UUID, kind string) (*Insight, error) {
	kind = strings.ToLower(strings.TrimSpace(kind))
	if !slices.Contains(Types, kind) {
		return nil, apperr.Invalid("insight_type must be one of: " + strings.Join(Types, ", "))
	}

	txs, budgets, err := s.loadHistory(ctx, owner)
	if err != nil {
		return nil, err
	}

	if len(txs) > HistoryLimit {
		txs = txs[:HistoryLimit]
	}

	now := s.now()
	in := &Insight{
		UserID:    owner,
		Type:      kind,
		CreatedAt: now,
		ExpiresAt: now.Add(TTL),
	}

	text, ok := s.generate(ctx, "insight", insightPrompt(kind, txs, len(budgets)))
	if !ok {
		in.Text = fallbackInsight
		return in, nil
	}

	in.Text = text

	if err := s.repo.CreateInsight(ctx, in); err != nil {
		return nil, err
	}

	return in, nil
}

func (s *Service) List(ctx context.Context, owner uuid.UUID) ([]*Insight, error) {
	return s.repo.ListInsights(ctx, owner, s.now(), ListLimit)
}

// Categorize proposes a category for a transaction description. The owner's
// own rules take precedence over the model.
func (s *Service) Categorize(ctx context.Context, owner uuid.UUID, description string, amount decimal.Decimal) (Categorization, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return Categorization{}, apperr.Invalid("description is required")
	}

	category, err := s.rules.Suggest(ctx, owner, description)
	if err != nil {
		return Categorization{}, err
	}

	if category != "" {
		return Categorization{Category: category, Confidence: ConfidenceHigh, Source: SourceRule}, nil
	}

	unknown := Categorization{Category: "Other", Confidence: ConfidenceLow, Source: SourceModel}

	answer, ok := s.generate(ctx, "categorize", categorizePrompt(description, amount))
	if !ok {
		return unknown, nil
	}

	answer = strings.Trim(strings.TrimSpace(answer), ".\"'")
	for _, c := range ModelCategories {
		if strings.EqualFold(answer, c) {
			return Categorization{Category: c, Confidence: ConfidenceHigh, Source: SourceModel}, nil
		}
	}

	return unknown, nil
}

// PredictSpending summarizes the last 90 days of expenses per month and asks
// the model for next month's outlook.
func (s *Service) PredictSpending(ctx context.Context, owner uuid.UUID) (Prediction, error) {
	txs, err := s.listSince(ctx, owner, 90, transaction.TypeExpense)
	if err != nil {
		return Prediction{}, err
	}

	months := monthlyTotals(txs)

	p := Prediction{
		HistoricalAverage: average(months).Round(2),
		Trend:             TrendStable,
		Months:            months,
	}

	if len(months) >= 2 && months[len(months)-1].Total.GreaterThan(months[0].Total) {
		p.Trend = TrendIncreasing
	}

	p.Text = s.generateOr(ctx, "predict", predictPrompt(months, txs), fallbackPrediction)

	return p, nil
}

var recommendedSavingsRate = decimal.NewFromInt(20)

// Goals computes the owner's lifetime savings rate and asks the model for
// savings goals.
func (s *Service) Goals(ctx context.Context, owner uuid.UUID) (Goals, error) {
	txs, budgets, err := s.loadHistory(ctx, owner)
	if err != nil {
		return Goals{}, err
	}

	income, expenses := totals(txs)
	net := income.Sub(expenses)

	goals := Goals{
		CurrentSavingsRate:      decimal.Zero,
		RecommendedSavingsRate:  recommendedSavingsRate,
		PotentialMonthlySavings: decimal.Zero,
	}

	if income.IsPositive() {
		goals.CurrentSavingsRate = net.Div(income).Mul(decimal.NewFromInt(100)).Round(1)
		goals.PotentialMonthlySavings = income.Mul(decimal.RequireFromString("0.2")).Sub(net).
			Div(decimal.NewFromInt(12)).Round(2)
	}

	largestName, largestAmount := largestCategory(txs)

	goals.Text = s.generateOr(ctx, "goals",
		goalsPrompt(income, expenses, goals.CurrentSavingsRate, largestName, largestAmount, len(budgets)),
		fallbackGoals,
	)

	return goals, nil
}

// RecommendBudget suggests a monthly limit for category: the 90-day average
// of monthly spending plus a 10% buffer.
func (s *Service) RecommendBudget(ctx context.Context, owner uuid.UUID, category string) (BudgetRecommendation, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return BudgetRecommendation{}, apperr.Invalid("category is required")
	}

	recent, err := s.listSince(ctx, owner, 90, "")
	if err != nil {
		return BudgetRecommendation{}, err
	}

	var spent []*transaction.Transaction

	income := decimal.Zero

	for _, tx := range recent {
		switch {
		case tx.Type == transaction.TypeIncome:
			income = income.Add(tx.Amount)
		case tx.Category == category:
			spent = append(spent, tx)
		}
	}

	rec := BudgetRecommendation{
		Category:       category,
		Recommended:    decimal.Zero,
		CurrentAverage: decimal.Zero,
	}

	if len(spent) == 0 {
		rec.Message = fmt.Sprintf(msgNoBudgetHistory, category)
		return rec, nil
	}

	months := monthlyTotals(spent)
	avg := average(months)

	rec.CurrentAverage = avg.Round(2)
	rec.Recommended = avg.Mul(decimal.RequireFromString("1.1")).Round(2)

	lowest, highest := months[0].Total, months[0].Total
	for _, m := range months[1:] {
		lowest = decimal.Min(lowest, m.Total)
		highest = decimal.Max(highest, m.Total)
	}

	monthlyIncome := income.Div(decimal.NewFromInt(3))

	rec.Explanation = s.generateOr(ctx, "recommend",
		recommendPrompt(category, avg, highest, lowest, monthlyIncome),
		fallbackExplanation,
	)

	return rec, nil
}

const (
	anomalyMinHistory = 10
	anomalyMaxResults = 5
)

// Anomalies flags expenses of the last 60 days larger than twice the
// average expense of that period.
func (s *Service) Anomalies(ctx context.Context, owner uuid.UUID) (AnomalyReport, error) {
	txs, err := s.listSince(ctx, owner, 60, transaction.TypeExpense)
	if err != nil {
		return AnomalyReport{}, err
	}

	report := AnomalyReport{Anomalies: []Anomaly{}, AverageExpense: decimal.Zero}

	if len(txs) < anomalyMinHistory {
		report.Message = msgNotEnoughHistory
		return report, nil
	}

	_, total := totals(txs)
	avg := total.Div(decimal.NewFromInt(int64(len(txs))))
	threshold := avg.Mul(decimal.NewFromInt(2))

	report.AverageExpense = avg.Round(2)

	hundred := decimal.NewFromInt(100)

	for _, tx := range txs {
		if !tx.Amount.GreaterThan(threshold) {
			continue
		}

		report.Anomalies = append(report.Anomalies, Anomaly{
			Date:        tx.Date,
			Amount:      tx.Amount,
			Category:    tx.Category,
			Description: tx.Description,
			Deviation:   tx.Amount.Div(avg).Sub(decimal.NewFromInt(1)).Mul(hundred).Round(1),
		})

		if len(report.Anomalies) == anomalyMaxResults {
			break
		}
	}

	if len(report.Anomalies) == 0 {
		report.Message = msgNoAnomalies
		return report, nil
	}

	report.Analysis = s.generateOr(ctx, "anomalies", anomalyPrompt(avg, txs, report.Anomalies), fallbackAnalysis)

	return report, nil
}

// loadHistory fetches all of owner's transactions and budgets concurrently.
func (s *Service) loadHistory(ctx context.Context, owner uuid.UUID) ([]*transaction.Transaction, []*budget.Budget, error) {
	var (
		txs     []*transaction.Transaction
		budgets []*budget.Budget
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		txs, err = s.txs.List(gctx, owner, transaction.ListFilter{})

		return err
	})

	g.Go(func() error {
		var err error
		budgets, err = s.budgets.List(gctx, owner, budget.ListFilter{})

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("loading history: %w", err)
	}

	return txs, budgets, nil
}

// listSince returns owner's transactions dated within the last days days,
// newest first, optionally restricted to one type.
func (s *Service) listSince(ctx context.Context, owner uuid.UUID, days int, kind transaction.Type) ([]*transaction.Transaction, error) {
	now := s.now().UTC()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)

	filter := transaction.ListFilter{StartDate: &since}

	if kind != "" {
		filter.Type = &kind
	}

	txs, err := s.txs.List(ctx, owner, filter)
	if err != nil {
		return nil, fmt.Errorf("loading transactions: %w", err)
	}

	return txs, nil
}

func (s *Service) generate(ctx context.Context, op, prompt string) (string, bool) {
	text, err := s.model.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("ai generation failed", "op", op, "error", err)
		return "", false
	}

	text = strings.TrimSpace(text)

	return text, text != ""
}

func (s *Service) generateOr(ctx context.Context, op, prompt, fallback string) string {
	if text, ok := s.generate(ctx, op, prompt); ok {
		return text
	}

	return fallback
}

func totals(txs []*transaction.Transaction) (income, expenses decimal.Decimal) {
	for _, tx := range txs {
		switch tx.Type {
		case transaction.TypeIncome:
			income = income.Add(tx.Amount)
		case transaction.TypeExpense:
			expenses = expenses.Add(tx.Amount)
		}
	}

	return income, expenses
}

// monthlyTotals sums amounts per calendar month in chronological order.
func monthlyTotals(txs []*transaction.Transaction) []MonthTotal {
	byMonth := map[string]decimal.Decimal{}
	for _, tx := range txs {
		key := tx.Date.Format("2006-01")
		byMonth[key] = byMonth[key].Add(tx.Amount)
	}

	months := make([]MonthTotal, 0, len(byMonth))
	for _, key := range slices.Sorted(maps.Keys(byMonth)) {
		months = append(months, MonthTotal{Month: key, Total: byMonth[key]})
	}

	return months
}

func average(months []MonthTotal) decimal.Decimal {
	if len(months) == 0 {
		return decimal.Zero
	}

	sum := decimal.Zero
	for _, m := range months {
		sum = sum.Add(m.Total)
	}

	return sum.Div(decimal.NewFromInt(int64(len(months))))
}

func categoryTotals(txs []*transaction.Transaction) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}

	for _, tx := range txs {
		if tx.Type == transaction.TypeExpense {
			out[tx.Category] = out[tx.Category].Add(tx.Amount)
		}
	}

	return out
}

// largestCategory returns the expense category with the highest total, ties
// broken alphabetically, or "None" when there are no expenses.
func largestCategory(txs []*transaction.Transaction) (string, decimal.Decimal) {
	byCategory := categoryTotals(txs)
	if len(byCategory) == 0 {
		return "None", decimal.Zero
	}

	names := slices.SortedFunc(maps.Keys(byCategory), func(a, b string) int {
		if c := byCategory[b].Cmp(byCategory[a]); c != 0 {
			return c
		}

		return cmp.Compare(a, b)
	})

	return names[0], byCategory[names[0]]
}
