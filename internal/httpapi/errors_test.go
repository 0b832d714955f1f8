package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/nikolayk812/rentals/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInsufficientStock, http.StatusConflict},
		{domain.ErrOverRelease, http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrConcurrentUpdate, http.StatusConflict},
		{domain.ErrInvalidArgument, http.StatusBadRequest},
		{domain.ErrInvalidDateRange, http.StatusBadRequest},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden},
		{domain.ErrTimeout, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("store.InTx: %w", fmt.Errorf("inner: %w", tt.err))
			assert.Equal(t, tt.want, statusFor(wrapped))
		})
	}
}

func TestPublicMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "internal error", publicMessage(http.StatusInternalServerError, errors.New("dial tcp 10.0.0.1:5432")))
	assert.Equal(t, "not found", publicMessage(http.StatusNotFound, domain.ErrNotFound))
}
