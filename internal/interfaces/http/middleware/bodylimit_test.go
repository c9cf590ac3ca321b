package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(limit int64) *gin.Engine {
		r := gin.New()
		r.Use(BodyLimit(limit))
		r.Any("/inventory/transfers", func(c *gin.Context) {
			if _, err := io.ReadAll(c.Request.Body); err != nil {
				var tooLarge *http.MaxBytesError
				if errors.As(err, &tooLarge) {
					c.String(http.StatusRequestEntityTooLarge, "cut off at %d", tooLarge.Limit)
					return
				}
				c.Status(http.StatusBadRequest)
				return
			}
			c.String(http.StatusOK, "ok")
		})
		return r
	}

	tests := []struct {
		name          string
		method        string
		body          string
		contentLength int64
		limit         int64
		wantStatus    int
		wantBody      string
	}{
		{"within limit", http.MethodPost, `{"status":"pending"}`, 20, 1024, http.StatusOK, "ok"},
		{"declared length over limit", http.MethodPost, strings.Repeat("x", 200), 200, 100, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE"},
		{"bodiless GET", http.MethodGet, "", 0, 10, http.StatusOK, "ok"},
		{"streamed body over limit", http.MethodPost, strings.Repeat("x", 100), -1, 50, http.StatusRequestEntityTooLarge, "cut off at 50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/inventory/transfers", strings.NewReader(tt.body))
			req.ContentLength = tt.contentLength
			w := httptest.NewRecorder()
			newRouter(tt.limit).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}
