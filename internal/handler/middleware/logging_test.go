//go:build unit

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"packtrack/internal/handler/middleware"
	"packtrack/internal/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(middleware.LoggingMiddleware(config.LogConfig{
		Level:      "error",
		TimeFormat: "2006-01-02 15:04:05.000",
	}))

	var requestID string
	engine.GET("/ping", func(c *gin.Context) {
		requestID = middleware.GetRequestID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, requestID)
}
