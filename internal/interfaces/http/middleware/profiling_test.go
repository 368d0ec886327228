package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestPageFromRoute(t *testing.T) {
	tests := []struct {
		route string
		want  string
	}{
		{"/", "home"},
		{"/gallery", "gallery"},
		{"/products/:id", "products"},
		{"/cart/items/:id/decrease", "cart"},
		{"/admin/artworks", "admin"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			assert.Equal(t, tt.want, pageFromRoute(tt.route))
		})
	}
}

func TestProfilingWithConfig(t *testing.T) {
	var labels []string
	router := gin.New()
	router.Use(Profiling())
	router.GET("/products/:id", func(c *gin.Context) {
		labels = profilingLabels(c)
		c.Status(http.StatusOK)
	})
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"method", "GET", "route", "/products/:id", "page", "products"}, labels)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProfilingDisabled(t *testing.T) {
	router := gin.New()
	router.Use(ProfilingWithConfig(ProfilingConfig{Enabled: false}))
	router.GET("/", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}
