package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const userHeader = "X-Sharer-User-Id"

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCallerIDMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", CallerIDMiddleware(userHeader), func(c *gin.Context) {
		id, ok := GetCallerID(c)
		assert.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(userHeader, id.String())
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id.String(), w.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(userHeader, "42")
	assert.Equal(t, http.StatusBadRequest, serve(r, req).Code)
}

func TestAdminTokenMiddleware(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }

	r := gin.New()
	r.GET("/", AdminTokenMiddleware("s3cret"), ok)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminTokenHeader, "s3cret")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(AdminTokenHeader, "nope")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	disabled := gin.New()
	disabled.GET("/", AdminTokenMiddleware(""), ok)
	assert.Equal(t, http.StatusForbidden, serve(disabled, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(), RecoveryMiddleware(zap.NewNop()), LoggerMiddleware(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	w := serve(r, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}
