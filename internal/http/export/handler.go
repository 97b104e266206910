package export

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/export"
	"github.com/smartledger/smartledger/internal/http/respond"
	httptx "github.com/smartledger/smartledger/internal/http/transaction"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/export/csv", h.download)
}

// download streams the caller's transactions as a CSV attachment. The file
// is rendered in memory first so a failure can still be reported as JSON.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	filter, err := httptx.ParseFilter(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	var buf bytes.Buffer

	if _, err := h.svc.Export(r.Context(), owner, filter, &buf); err != nil {
		respond.Error(w, r, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", h.now().Format("20060102"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
