package importcsv

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/auth"
	"github.com/smartledger/smartledger/internal/http/respond"
	"github.com/smartledger/smartledger/internal/importer"
)

// maxUpload bounds the size of an uploaded CSV file.
const maxUpload = 10 << 20

type Handler struct {
	svc *importer.Service
}

func NewHandler(svc *importer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/import/csv", h.importCSV)
}

type importResponse struct {
	Imported int    `json:"imported"`
	Message  string `json:"message"`
}

// importCSV accepts either a multipart form with a "file" field or the CSV
// document as the raw request body.
func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	owner, err := auth.OwnerFrom(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	body, closeBody, err := upload(r)
	if err != nil {
		respond.Error(w, r, err)
		return
	}
	defer closeBody()

	n, err := h.svc.Import(r.Context(), owner, body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = apperr.Invalid(fmt.Sprintf("file exceeds %d bytes", tooLarge.Limit))
		}

		respond.Error(w, r, err)

		return
	}

	respond.JSON(w, http.StatusCreated, importResponse{
		Imported: n,
		Message:  fmt.Sprintf("Imported %d transactions", n),
	})
}

func upload(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	if err := r.ParseMultipartForm(maxUpload); err != nil {
		return nil, nil, apperr.Invalid("failed to parse form: " + err.Error())
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, apperr.Invalid("file field is required")
	}

	return file, func() { file.Close() }, nil
}
