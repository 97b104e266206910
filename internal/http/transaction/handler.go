package transaction

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/http/respond"
	"github.com/smartledger/smartledger/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

// transactionRequest carries no owner: the owner always comes from the token.
type transactionRequest struct {
	Amount      decimal.Decimal  `json:"amount"`
	Type        transaction.Type `json:"type"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Date        respond.Date     `json:"date"`
}

func (req transactionRequest) params() transaction.CreateParams {
	return transaction.CreateParams{
		Amount:      req.Amount,
		Type:        transaction.Type(strings.ToLower(strings.TrimSpace(string(req.Type)))),
		Category:    req.Category,
		Description: req.Description,
		Date:        req.Date.Time(),
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req transactionRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Create(r.Context(), owner, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	filter, err := ParseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	txs, err := h.svc.List(r.Context(), owner, filter)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(txs))
}

// ParseFilter reads the list query parameters. The CSV export accepts the
// same ones.
func ParseFilter(r *http.Request) (transaction.ListFilter, error) {
	q := r.URL.Query()
	filter := transaction.ListFilter{}

	if s := strings.TrimSpace(q.Get("category")); s != "" {
		filter.Category = new(s)
	}

	if s := strings.TrimSpace(q.Get("type")); s != "" {
		t := transaction.Type(strings.ToLower(s))
		if !t.Valid() {
			return filter, transaction.ErrInvalidType
		}

		filter.Type = new(t)
	}

	if s := q.Get("search"); strings.TrimSpace(s) != "" {
		filter.Search = new(s)
	}

	if s := q.Get("start_date"); s != "" {
		t, err := respond.ParseDate(s)
		if err != nil {
			return filter, apperr.Invalid("start_date: " + err.Error())
		}

		filter.StartDate = new(t)
	}

	if s := q.Get("end_date"); s != "" {
		t, err := respond.ParseDate(s)
		if err != nil {
			return filter, apperr.Invalid("end_date: " + err.Error())
		}

		filter.EndDate = new(t)
	}

	return filter, nil
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	owner, id, err := ownerAndID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Get(r.Context(), owner, id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	owner, id, err := ownerAndID(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var req transactionRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.Error(w, r, err)
		return
	}

	tx, err := h.svc.Update(r.Context(), owner, id, req.params())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toResponse(tx))
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

	respond.JSON(w, http.StatusOK, map[string]string{"message": "Transaction deleted successfully"})
}

// Categories lists the categories the caller has used, or the defaults.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	categories, err := h.svc.Categories(r.Context(), owner)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, map[string][]string{"categories": categories})
}

func ownerAndID(r *http.Request) (uuid.UUID, uuid.UUID, error) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, transaction.ErrNotFound
	}

	return owner, id, nil
}
