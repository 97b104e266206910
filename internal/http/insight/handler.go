package insight

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/http/respond"
	"github.com/smartledger/smartledger/internal/insight"
)

type Handler struct {
	svc *insight.Service
}

func NewHandler(svc *insight.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/insights", h.generate)
	r.Get("/insights", h.list)
	r.Post("/categorize-transaction", h.categorize)
	r.Post("/predict-spending", h.predict)
	r.Post("/financial-goals", h.goals)
	r.Post("/smart-budget-recommendation", h.recommendBudget)
	r.Post("/expense-anomaly-detection", h.anomalies)
}

type insightResponse struct {
	InsightType string    `json:"insight_type"`
	InsightText string    `json:"insight_text"`
	CreatedAt   time.Time `json:"created_at"`
}

func toInsightResponse(in *insight.Insight) insightResponse {
	return insightResponse{
		InsightType: in.Type,
		InsightText: in.Text,
		CreatedAt:   in.CreatedAt,
	}
}

type generateRequest struct {
	InsightType string `json:"insight_type"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req generateRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	in, err := h.svc.Generate(r.Context(), owner, req.InsightType)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toInsightResponse(in))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	insights, err := h.svc.List(r.Context(), owner)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]insightResponse, len(insights))
	for i, in := range insights {
		resp[i] = toInsightResponse(in)
	}

	respond.JSON(w, http.StatusOK, resp)
}

type categorizeRequest struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type categorizeResponse struct {
	Category   string `json:"category"`
	Confidence string `json:"confidence"`
	Source     string `json:"source"`
}

// categorize reads description and amount from the query string, falling
// back to a JSON body.
func (h *Handler) categorize(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req categorizeRequest

	q := r.URL.Query()
	if q.Has("description") {
		req.Description = q.Get("description")

		if s := q.Get("amount"); s != "" {
			amount, err := decimal.NewFromString(s)
			if err != nil {
				respond.Error(w, r, apperr.Invalid("amount must be a number"))
				return
			}

			req.Amount = amount
		}
	} else if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	c, err := h.svc.Categorize(r.Context(), owner, req.Description, req.Amount)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, categorizeResponse{
		Category:   c.Category,
		Confidence: c.Confidence,
		Source:     c.Source,
	})
}

type monthResponse struct {
	Month string      `json:"month"`
	Total json.Number `json:"total"`
}

type predictionResponse struct {
	Prediction        string          `json:"prediction"`
	HistoricalAverage json.Number     `json:"historical_average"`
	Trend             string          `json:"trend"`
	Months            []monthResponse `json:"months"`
}

func (h *Handler) predict(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	p, err := h.svc.PredictSpending(r.Context(), owner)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := predictionResponse{
		Prediction:        p.Text,
		HistoricalAverage: respond.Money(p.HistoricalAverage),
		Trend:             p.Trend,
		Months:            make([]monthResponse, len(p.Months)),
	}

	for i, m := range p.Months {
		resp.Months[i] = monthResponse{Month: m.Month, Total: respond.Money(m.Total)}
	}

	respond.JSON(w, http.StatusOK, resp)
}

type goalsResponse struct {
	Goals                   string      `json:"goals"`
	CurrentSavingsRate      json.Number `json:"current_savings_rate"`
	RecommendedSavingsRate  json.Number `json:"recommended_savings_rate"`
	PotentialMonthlySavings json.Number `json:"potential_monthly_savings"`
}

func (h *Handler) goals(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	g, err := h.svc.Goals(r.Context(), owner)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, goalsResponse{
		Goals:                   g.Text,
		CurrentSavingsRate:      json.Number(g.CurrentSavingsRate.StringFixed(1)),
		RecommendedSavingsRate:  json.Number(g.RecommendedSavingsRate.StringFixed(1)),
		PotentialMonthlySavings: respond.Money(g.PotentialMonthlySavings),
	})
}

type recommendRequest struct {
	Category string `json:"category"`
}

type recommendResponse struct {
	Category          string      `json:"category"`
	RecommendedBudget json.Number `json:"recommended_budget"`
	CurrentAverage    json.Number `json:"current_average"`
	Explanation       string      `json:"explanation,omitempty"`
	Message           string      `json:"message,omitempty"`
}

func (h *Handler) recommendBudget(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	req := recommendRequest{Category: r.URL.Query().Get("category")}
	if req.Category == "" {
		if err := respond.DecodeJSON(r, &req); err != nil {
			respond.Error(w, r, err)
			return
		}
	}

	rec, err := h.svc.RecommendBudget(r.Context(), owner, req.Category)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, recommendResponse{
		Category:          rec.Category,
		RecommendedBudget: respond.Money(rec.Recommended),
		CurrentAverage:    respond.Money(rec.CurrentAverage),
		Explanation:       rec.Explanation,
		Message:           rec.Message,
	})
}

type anomalyResponse struct {
	Date        respond.Date `json:"date"`
	Amount      json.Number  `json:"amount"`
	Category    string       `json:"category"`
	Description string       `json:"description"`
	Deviation   json.Number  `json:"deviation"`
}

type anomalyReportResponse struct {
	Anomalies      []anomalyResponse `json:"anomalies"`
	Analysis       string            `json:"analysis,omitempty"`
	Message        string            `json:"message,omitempty"`
	AverageExpense json.Number       `json:"average_expense"`
}

func (h *Handler) anomalies(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	report, err := h.svc.Anomalies(r.Context(), owner)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := anomalyReportResponse{
		Anomalies:      make([]anomalyResponse, len(report.Anomalies)),
		Analysis:       report.Analysis,
		Message:        report.Message,
		AverageExpense: respond.Money(report.AverageExpense),
	}

	for i, a := range report.Anomalies {
		resp.Anomalies[i] = anomalyResponse{
			Date:        respond.Date(a.Date),
			Amount:      respond.Money(a.Amount),
			Category:    a.Category,
			Description: a.Description,
			Deviation:   json.Number(a.Deviation.StringFixed(1)),
		}
	}

	respond.JSON(w, http.StatusOK, resp)
}
