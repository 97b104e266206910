package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smartledger/smartledger/internal/apperr"
)

func TestKindOf(t *testing.T) {
	sentinel := apperr.New(apperr.KindNotFound, "budget not found")

	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{name: "Direct", err: sentinel, want: apperr.KindNotFound},
		{name: "Wrapped", err: fmt.Errorf("updating budget: %w", sentinel), want: apperr.KindNotFound},
		{name: "Plain", err: errors.New("connection refused"), want: apperr.KindUpstreamFailure},
		{name: "Invalid", err: apperr.Invalid("amount must be positive"), want: apperr.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.KindOf(tt.err))
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := apperr.Wrap(apperr.KindUpstreamFailure, cause, "store unavailable")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "store unavailable: dial tcp: timeout", err.Error())
	assert.Equal(t, "store unavailable", apperr.Message(fmt.Errorf("listing: %w", err)))
	assert.Equal(t, "internal error", apperr.Message(cause))
}
