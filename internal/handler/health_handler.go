package handler

import (
	"net/http"

	"pulse-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// HealthCheck is a dependency probe. Each check reports "ok" or the
// failure; a failed check flips the overall status to 503.
type HealthCheck func(c *gin.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(c); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}
	c.JSON(status, httpdto.NewSuccessResponse(results))
}
