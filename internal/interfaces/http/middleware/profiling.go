package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelMethod = "method"
	ProfilingLabelRoute  = "route"
	ProfilingLabelPage   = "page"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	// Enabled controls whether profiling labels are added to requests.
	Enabled bool
	// SkipPaths are paths that don't need profiling labels (e.g., health checks).
	SkipPaths []string
}

// DefaultProfilingConfig returns default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health"},
	}
}

// Profiling returns profiling middleware with default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig runs the handler chain under Pyroscope labels so profiles
// can be filtered by method, route pattern and storefront page.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}

		pyroscope.TagWrapper(c.Request.Context(), pyroscope.Labels(profilingLabels(c)...), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

// profilingLabels returns key/value pairs for the matched route
func profilingLabels(c *gin.Context) []string {
	labels := []string{ProfilingLabelMethod, c.Request.Method}
	route := c.FullPath()
	if route == "" {
		return labels
	}
	labels = append(labels, ProfilingLabelRoute, route)
	if page := pageFromRoute(route); page != "" {
		labels = append(labels, ProfilingLabelPage, page)
	}
	return labels
}

// pageFromRoute derives the storefront page from a route pattern.
// Example: "/products/:id" -> "products", "/" -> "home"
func pageFromRoute(route string) string {
	if route == "/" {
		return "home"
	}
	for _, part := range strings.Split(route, "/") {
		if part == "" || strings.HasPrefix(part, ":") {
			continue
		}
		return part
	}
	return ""
}
