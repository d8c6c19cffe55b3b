package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"mysteries-backend/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrUnauthorized, http.StatusForbidden},
		{services.ErrInvalidSecret, http.StatusUnauthorized},
		{services.ErrWrongDeposit, http.StatusPaymentRequired},
		{services.ErrWrongPrice, http.StatusPaymentRequired},
		{services.ErrInsufficientPoints, http.StatusPaymentRequired},
		{services.ErrNotFound, http.StatusNotFound},
		{services.ErrNotClaimed, http.StatusNotFound},
		{services.ErrAlreadyOwned, http.StatusConflict},
		{services.ErrAlreadyQueued, http.StatusConflict},
		{services.ErrCapacityExceeded, http.StatusUnprocessableEntity},
		{services.ErrOverflow, http.StatusUnprocessableEntity},
		{services.ErrInvalidRange, http.StatusUnprocessableEntity},
		{services.ErrLineCorrupted, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
			wrapped := fmt.Errorf("%w: user 7", tt.err)
			assert.Equal(t, tt.want, statusFor(wrapped))
		})
	}
}
