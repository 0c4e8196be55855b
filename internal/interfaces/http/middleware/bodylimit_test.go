package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(maxBytes int64) *gin.Engine {
	router := gin.New()
	router.Use(BodyLimit(maxBytes))
	router.POST("/reports/generate", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestBodyLimit(t *testing.T) {
	t.Run("passes a small generation payload", func(t *testing.T) {
		router := newLimitedRouter(1024)

		body := strings.NewReader(`{"report_type":"policy_performance","format":"pdf"}`)
		req := httptest.NewRequest("POST", "/reports/generate", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects declared oversize body before the handler runs", func(t *testing.T) {
		router := newLimitedRouter(100)

		body := strings.NewReader(strings.Repeat("x", 200))
		req := httptest.NewRequest("POST", "/reports/generate", body)
		req.ContentLength = 200
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		assert.Contains(t, w.Body.String(), "REQUEST_TOO_LARGE")
	})

	t.Run("bodyless requests pass through", func(t *testing.T) {
		router := gin.New()
		router.Use(BodyLimit(10))
		router.GET("/reports/activity", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"success": true})
		})

		req := httptest.NewRequest("GET", "/reports/activity", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("caps chunked bodies without a Content-Length", func(t *testing.T) {
		router := newLimitedRouter(50)

		body := strings.NewReader(strings.Repeat("x", 100))
		req := httptest.NewRequest("POST", "/reports/generate", body)
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// MaxBytesReader fails the read inside the handler
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
