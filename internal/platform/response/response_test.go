package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shareit/service-booking/internal/platform/apperr"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", apperr.New(apperr.KindNotFound, "NOT_FOUND", "Item 1 not found"), http.StatusNotFound},
		{"forbidden", apperr.New(apperr.KindForbidden, "FORBIDDEN", "no"), http.StatusForbidden},
		{"bad request", apperr.NewValidationError("bad"), http.StatusBadRequest},
		{"conflict", apperr.New(apperr.KindConflict, "CONFLICT", "stale"), http.StatusConflict},
		{"internal", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestError_HidesInternalDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.NotContains(t, body.Error.Message, "pq")
}

func TestError_WritesCodeAndMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Error(c, apperr.New(apperr.KindForbidden, "NOT_OWNER", "user is not the owner of the item"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	var body Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "NOT_OWNER", body.Error.Code)
	assert.Equal(t, "user is not the owner of the item", body.Error.Message)
}
