package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newSecureRouter(production bool, reached *bool) *gin.Engine {
	r := gin.New()
	r.Use(SecureHeaders(production))
	r.GET("/inventory/stock", func(c *gin.Context) {
		*reached = true
		c.Status(http.StatusOK)
	})
	return r
}

func TestSecureHeaders_Development(t *testing.T) {
	var reached bool
	w := httptest.NewRecorder()
	newSecureRouter(false, &reached).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://api.local/inventory/stock", nil))

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "default-src 'none'")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestSecureHeaders_Production(t *testing.T) {
	t.Run("plain http is redirected", func(t *testing.T) {
		var reached bool
		w := httptest.NewRecorder()
		newSecureRouter(true, &reached).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "http://api.example.com/inventory/stock", nil))

		assert.False(t, reached)
		assert.Equal(t, http.StatusMovedPermanently, w.Code)
		assert.Equal(t, "https://api.example.com/inventory/stock", w.Header().Get("Location"))
	})

	t.Run("https behind proxy gets hsts", func(t *testing.T) {
		var reached bool
		req := httptest.NewRequest(http.MethodGet, "http://api.example.com/inventory/stock", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		w := httptest.NewRecorder()
		newSecureRouter(true, &reached).ServeHTTP(w, req)

		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=31536000")
	})
}
