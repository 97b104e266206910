package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/dashboard"
	"github.com/smartledger/smartledger/internal/http/respond"
	"github.com/smartledger/smartledger/internal/transaction"
)

type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.summary)
}

type recentResponse struct {
	ID          uuid.UUID        `json:"id"`
	Amount      json.Number      `json:"amount"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        respond.Date     `json:"date"`
	CreatedAt   time.Time        `json:"created_at"`
}

type summaryResponse struct {
	TotalBalance       json.Number            `json:"total_balance"`
	MonthlyIncome      json.Number            `json:"monthly_income"`
	MonthlyExpenses    json.Number            `json:"monthly_expenses"`
	SpendingByCategory map[string]json.Number `json:"spending_by_category"`
	RecentTransactions []recentResponse       `json:"recent_transactions"`
}

func toResponse(s dashboard.Summary) summaryResponse {
	resp := summaryResponse{
		TotalBalance:       respond.Money(s.TotalBalance),
		MonthlyIncome:      respond.Money(s.MonthlyIncome),
		MonthlyExpenses:    respond.Money(s.MonthlyExpenses),
		SpendingByCategory: make(map[string]json.Number, len(s.SpendingByCategory)),
		RecentTransactions: make([]recentResponse, len(s.Recent)),
	}

	for category, total := range s.SpendingByCategory {
		resp.SpendingByCategory[category] = respond.Money(total)
	}

	for i, tx := range s.Recent {
		resp.RecentTransactions[i] = recentResponse{
			ID:          tx.ID,
			Amount:      respond.Money(tx.Amount),
			Type:        tx.Type,
			Category:    tx.Category,
			Description: tx.Description,
			Date:        respond.Date(tx.Date),
			CreatedAt:   tx.CreatedAt,
		}
	}

	return resp
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	s, err := h.svc.Summary(r.Context(), owner)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(s))
}
