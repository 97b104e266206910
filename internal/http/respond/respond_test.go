package respond_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartledger/smartledger/internal/apperr"
	"github.com/smartledger/smartledger/internal/http/respond"
)

func TestError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
		wantMsg    string
	}{
		{"InvalidInput", apperr.Invalid("amount must be greater than zero"), http.StatusBadRequest, "invalid_input", "amount must be greater than zero"},
		{"Unauthorized", apperr.New(apperr.KindUnauthorized, "invalid token"), http.StatusUnauthorized, "unauthorized", "invalid token"},
		{"WrappedNotFound", fmt.Errorf("loading: %w", apperr.New(apperr.KindNotFound, "budget not found")), http.StatusNotFound, "not_found", "budget not found"},
		{"Conflict", apperr.New(apperr.KindConflict, "exists"), http.StatusConflict, "conflict", "exists"},
		{"PartialFailure", apperr.New(apperr.KindPartialFailure, "some rows failed"), http.StatusUnprocessableEntity, "partial_failure", "some rows failed"},
		{"Upstream", apperr.Wrap(apperr.KindUpstreamFailure, errors.New("503"), "ai unavailable"), http.StatusBadGateway, "upstream_failure", "ai unavailable"},
		{"Unclassified", errors.New("pq: connection refused"), http.StatusInternalServerError, "upstream_failure", "internal error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/x", nil)

			respond.Error(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body struct {
				Error struct {
					Kind    string `json:"kind"`
					Message string `json:"message"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Error.Kind)
			assert.Equal(t, tt.wantMsg, body.Error.Message)
			assert.NotContains(t, rec.Body.String(), "connection refused")
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ A int }

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	err := respond.DecodeJSON(req, &v)

	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}
