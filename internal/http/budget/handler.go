package budget

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/budget"
	"github.com/smartledger/smartledger/internal/http/respond"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

type budgetRequest struct {
	Category string          `json:"category"`
	Limit    decimal.Decimal `json:"limit"`
	Month    int             `json:"month"`
	Year     int             `json:"year"`
}

func (req budgetRequest) params() budget.Params {
	return budget.Params{
		Category: req.Category,
		Limit:    req.Limit,
		Month:    req.Month,
		Year:     req.Year,
	}
}

type budgetResponse struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Category  string      `json:"category"`
	Limit     json.Number `json:"limit"`
	Month     int         `json:"month"`
	Year      int         `json:"year"`
	CreatedAt time.Time   `json:"created_at"`
}

func toResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:        b.ID,
		UserID:    b.UserID,
		Category:  b.Category,
		Limit:     respond.Money(b.Limit),
		Month:     b.Month,
		Year:      b.Year,
		CreatedAt: b.CreatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req budgetRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Create(r.Context(), owner, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	month, err := queryInt(r, "month")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	year, err := queryInt(r, "year")
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	budgets, err := h.svc.List(r.Context(), owner, budget.ListFilter{Month: month, Year: year})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]budgetResponse, len(budgets))
	for i, b := range budgets {
		resp[i] = toResponse(b)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	owner, id, err := ownerAndID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req budgetRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	b, err := h.svc.Update(r.Context(), owner, id, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(b))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	owner, id, err := ownerAndID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), owner, id); err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string]string{"message": "Budget deleted successfully"})
}

func queryInt(r *http.Request, name string) (*int, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperr.Invalid(name + " must be an integer")
	}

	return &n, nil
}

func ownerAndID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, budget.ErrNotFound
	}

	return owner, id, nil
}
