package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	pulse_errors "pulse-chat/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		err    error
		status int
	}{
		{pulse_errors.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("%w: content is blank", pulse_errors.ErrInvalidInput), http.StatusBadRequest},
		{pulse_errors.ErrUnauthorized, http.StatusUnauthorized},
		{pulse_errors.ErrForbidden, http.StatusForbidden},
		{pulse_errors.ErrNotFound, http.StatusNotFound},
		{pulse_errors.ErrConflict, http.StatusConflict},
		{pulse_errors.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{pulse_errors.ErrRateLimited, http.StatusTooManyRequests},
		{pulse_errors.ErrUnavailable, http.StatusServiceUnavailable},
		{errors.New("database on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
	}
}

func TestRespondErrorHidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, errors.New("pq: connection refused host=10.0.0.3"))

	assert.NotContains(t, w.Body.String(), "10.0.0.3")
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
