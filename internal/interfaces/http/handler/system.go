package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/artcase/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// HealthChecker is a dependency the health endpoint probes
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves the health endpoint
type SystemHandler struct {
	BaseHandler
	name      string
	startTime time.Time
	checks    map[string]HealthChecker
	timeout   time.Duration
}

// NewSystemHandler creates a new SystemHandler. checks maps a dependency name
// to its probe.
func NewSystemHandler(name string, checks map[string]HealthChecker) *SystemHandler {
	return &SystemHandler{
		name:      name,
		startTime: time.Now(),
		checks:    checks,
		timeout:   2 * time.Second,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Name      string            `json:"name"`
	GoVersion string            `json:"go_version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Health reports liveness and the state of each dependency. A failed probe
// answers 503.
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Name:      h.name,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	status := http.StatusOK
	if len(h.checks) > 0 {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		resp.Checks = make(map[string]string, len(h.checks))
		for name, check := range h.checks {
			if err := check.Ping(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}
